package schedule_controller

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

func setupScheduleRouter() (*gin.Engine, *ScheduleService) {
	gin.SetMode(gin.TestMode)
	svc := NewScheduleService(nil)
	r := gin.New()
	r.PUT("/courts/:court_id/availability/recurring", svc.SetRecurringAvailability)
	r.PUT("/courts/:court_id/availability/overrides", svc.SetDateOverride)
	return r, svc
}

func putJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetRecurringRejectsBadCourtID(t *testing.T) {
	r, _ := setupScheduleRouter()
	dow := int16(0)
	w := putJSON(t, r, "/courts/not-a-uuid/availability/recurring", SetRecurringRequest{
		DayOfWeek: &dow, StartTime: "06:00", EndTime: "22:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetRecurringRejectsDayOutOfRange(t *testing.T) {
	r, _ := setupScheduleRouter()
	for _, dow := range []int16{-1, 7, 12} {
		d := dow
		w := putJSON(t, r, "/courts/0191e2a6-7b9a-7c1d-8e4f-0123456789ab/availability/recurring", SetRecurringRequest{
			DayOfWeek: &d, StartTime: "06:00", EndTime: "22:00",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "day_of_week %d", dow)
		assert.Contains(t, w.Body.String(), "day_of_week")
	}
}

func TestSetRecurringRejectsBadTimes(t *testing.T) {
	r, _ := setupScheduleRouter()
	dow := int16(2)
	cases := []struct {
		name       string
		start, end string
	}{
		{"malformed start", "6am", "22:00"},
		{"malformed end", "06:00", "25:61"},
		{"start equals end", "10:00", "10:00"},
		{"start after end", "18:00", "09:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := putJSON(t, r, "/courts/0191e2a6-7b9a-7c1d-8e4f-0123456789ab/availability/recurring", SetRecurringRequest{
				DayOfWeek: &dow, StartTime: tc.start, EndTime: tc.end,
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSetRecurringRequiresAuth(t *testing.T) {
	r, _ := setupScheduleRouter()
	dow := int16(4)
	w := putJSON(t, r, "/courts/0191e2a6-7b9a-7c1d-8e4f-0123456789ab/availability/recurring", SetRecurringRequest{
		DayOfWeek: &dow, StartTime: "06:00", EndTime: "22:00",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetOverrideRejectsBadDate(t *testing.T) {
	r, _ := setupScheduleRouter()
	w := putJSON(t, r, "/courts/0191e2a6-7b9a-7c1d-8e4f-0123456789ab/availability/overrides", SetOverrideRequest{
		Date: "24-08-2026", OverrideType: "CLOSE",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "date")
}

func TestSetOverrideRejectsUnknownType(t *testing.T) {
	r, _ := setupScheduleRouter()
	w := putJSON(t, r, "/courts/0191e2a6-7b9a-7c1d-8e4f-0123456789ab/availability/overrides", SetOverrideRequest{
		Date: "2026-08-24", OverrideType: "HOLIDAY",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "override_type")
}

func TestSetOverrideOpenRequiresTimes(t *testing.T) {
	r, _ := setupScheduleRouter()
	start := "08:00"
	cases := []struct {
		name string
		req  SetOverrideRequest
	}{
		{"no times", SetOverrideRequest{Date: "2026-08-24", OverrideType: "OPEN"}},
		{"missing end", SetOverrideRequest{Date: "2026-08-24", OverrideType: "OPEN", StartTime: &start}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := putJSON(t, r, "/courts/0191e2a6-7b9a-7c1d-8e4f-0123456789ab/availability/overrides", tc.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSetOverrideOpenRejectsInvertedWindow(t *testing.T) {
	r, _ := setupScheduleRouter()
	start, end := "20:00", "08:00"
	w := putJSON(t, r, "/courts/0191e2a6-7b9a-7c1d-8e4f-0123456789ab/availability/overrides", SetOverrideRequest{
		Date: "2026-08-24", OverrideType: "OPEN", StartTime: &start, EndTime: &end,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetOverrideCloseRequiresAuth(t *testing.T) {
	r, _ := setupScheduleRouter()
	w := putJSON(t, r, "/courts/0191e2a6-7b9a-7c1d-8e4f-0123456789ab/availability/overrides", SetOverrideRequest{
		Date: "2026-08-24", OverrideType: "CLOSE",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
