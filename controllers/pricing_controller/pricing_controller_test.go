package pricing_controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCourtPath = "/courts/0191e2a6-7b9a-7c1d-8e4f-0123456789ab/pricing-rules"

func setupPricingRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewPricingService(nil)
	r := gin.New()
	r.POST("/courts/:court_id/pricing-rules", svc.CreateRule)
	r.GET("/courts/:court_id/pricing-rules", svc.ListRules)
	return r
}

func postRule(t *testing.T, r *gin.Engine, path string, req CreateRuleRequest) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	httpReq := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	return w
}

func ptrInt16(v int16) *int16    { return &v }
func ptrString(v string) *string { return &v }

func TestCreateRuleRejectsBadCourtID(t *testing.T) {
	r := setupPricingRouter()
	w := postRule(t, r, "/courts/nope/pricing-rules", CreateRuleRequest{
		RuleType: "RECURRING", DayOfWeek: ptrInt16(0),
		StartTime: "06:00", EndTime: "22:00", PricePer30Min: 500,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRuleRejectsUnknownType(t *testing.T) {
	r := setupPricingRouter()
	w := postRule(t, r, testCourtPath, CreateRuleRequest{
		RuleType: "SEASONAL", DayOfWeek: ptrInt16(0),
		StartTime: "06:00", EndTime: "22:00", PricePer30Min: 500,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "rule_type")
}

func TestCreateRuleTypeExclusivity(t *testing.T) {
	r := setupPricingRouter()
	cases := []struct {
		name string
		req  CreateRuleRequest
	}{
		{"recurring without day", CreateRuleRequest{
			RuleType: "RECURRING",
			StartTime: "06:00", EndTime: "22:00", PricePer30Min: 500,
		}},
		{"recurring with date", CreateRuleRequest{
			RuleType: "RECURRING", DayOfWeek: ptrInt16(0), Date: ptrString("2026-08-24"),
			StartTime: "06:00", EndTime: "22:00", PricePer30Min: 500,
		}},
		{"one time without date", CreateRuleRequest{
			RuleType:  "ONE_TIME",
			StartTime: "06:00", EndTime: "22:00", PricePer30Min: 500,
		}},
		{"one time with day", CreateRuleRequest{
			RuleType: "ONE_TIME", Date: ptrString("2026-08-24"), DayOfWeek: ptrInt16(0),
			StartTime: "06:00", EndTime: "22:00", PricePer30Min: 500,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postRule(t, r, testCourtPath, tc.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateRuleRejectsDayOutOfRange(t *testing.T) {
	r := setupPricingRouter()
	for _, dow := range []int16{-1, 7} {
		w := postRule(t, r, testCourtPath, CreateRuleRequest{
			RuleType: "RECURRING", DayOfWeek: ptrInt16(dow),
			StartTime: "06:00", EndTime: "22:00", PricePer30Min: 500,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "day_of_week %d", dow)
	}
}

func TestCreateRuleRejectsBadDate(t *testing.T) {
	r := setupPricingRouter()
	w := postRule(t, r, testCourtPath, CreateRuleRequest{
		RuleType: "ONE_TIME", Date: ptrString("August 24, 2026"),
		StartTime: "06:00", EndTime: "22:00", PricePer30Min: 500,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRuleRejectsBadWindow(t *testing.T) {
	r := setupPricingRouter()
	cases := []struct {
		name       string
		start, end string
	}{
		{"malformed start", "six", "22:00"},
		{"malformed end", "06:00", "24:30"},
		{"start equals end", "10:00", "10:00"},
		{"start after end", "22:00", "06:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postRule(t, r, testCourtPath, CreateRuleRequest{
				RuleType: "RECURRING", DayOfWeek: ptrInt16(3),
				StartTime: tc.start, EndTime: tc.end, PricePer30Min: 500,
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateRuleRejectsNonPositivePrice(t *testing.T) {
	r := setupPricingRouter()
	w := postRule(t, r, testCourtPath, CreateRuleRequest{
		RuleType: "RECURRING", DayOfWeek: ptrInt16(3),
		StartTime: "06:00", EndTime: "22:00", PricePer30Min: -50,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "price_per_30_min")
}

func TestCreateRuleRequiresAuth(t *testing.T) {
	r := setupPricingRouter()
	w := postRule(t, r, testCourtPath, CreateRuleRequest{
		RuleType: "RECURRING", DayOfWeek: ptrInt16(3),
		StartTime: "06:00", EndTime: "22:00", PricePer30Min: 500,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListRulesRejectsBadCourtID(t *testing.T) {
	r := setupPricingRouter()
	req := httptest.NewRequest(http.MethodGet, "/courts/abc/pricing-rules", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
