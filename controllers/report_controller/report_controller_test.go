package report_controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/courtbook/courtbook/models/booking_models"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
)

func filterContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/manage/bookings?"+rawQuery, nil)
	c.Request = req
	return c
}

func TestParseFilter(t *testing.T) {
	courtID := uuid.Must(uuid.NewV7())

	c := filterContext(t, "court_id="+courtID.String()+"&status=CONFIRMED&date=2026-08-24")
	f, err := parseFilter(c)
	require.NoError(t, err)
	require.NotNil(t, f.CourtID)
	assert.Equal(t, courtID, *f.CourtID)
	require.NotNil(t, f.Status)
	assert.Equal(t, shared_models.BookingConfirmed, *f.Status)
	require.NotNil(t, f.Date)
	assert.Equal(t, "2026-08-24", f.Date.Format("2006-01-02"))

	c = filterContext(t, "")
	f, err = parseFilter(c)
	require.NoError(t, err)
	assert.Nil(t, f.CourtID)
	assert.Nil(t, f.Status)
	assert.Nil(t, f.Date)
}

func TestParseFilterRejectsBadValues(t *testing.T) {
	for _, query := range []string{
		"court_id=not-a-uuid",
		"status=SOMETIME",
		"date=24/08/2026",
	} {
		c := filterContext(t, query)
		_, err := parseFilter(c)
		var verr *utils.ValidationError
		assert.ErrorAs(t, err, &verr, "query %q", query)
	}
}

func TestListBookingsRequiresManagerRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewReportService(nil)
	r := gin.New()
	r.GET("/manage/bookings", svc.ListBookings)

	req := httptest.NewRequest(http.MethodGet, "/manage/bookings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingsToExcel(t *testing.T) {
	invoice := "INV-ABCD1234-20260824-000042"
	bookings := []booking_models.Booking{
		{
			ID:         uuid.Must(uuid.NewV7()),
			CourtID:    uuid.Must(uuid.NewV7()),
			StartTime:  time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2026, 8, 24, 11, 30, 0, 0, time.UTC),
			TotalPrice: 1800,
			Status:     shared_models.BookingConfirmed,
			InvoiceNumber: &invoice,
		},
		{
			ID:         uuid.Must(uuid.NewV7()),
			CourtID:    uuid.Must(uuid.NewV7()),
			StartTime:  time.Date(2026, 8, 25, 18, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2026, 8, 25, 19, 0, 0, 0, time.UTC),
			TotalPrice: 1400,
			Status:     shared_models.BookingPendingPayment,
		},
	}

	buf, err := bookingsToExcel(bookings)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Booking ID", rows[0][0])
	assert.Equal(t, bookings[0].ID.String(), rows[1][0])
	assert.Equal(t, "24.08.2026 10:00", rows[1][2])
	assert.Equal(t, "CONFIRMED", rows[1][5])
	assert.Equal(t, invoice, rows[1][6])
	assert.Equal(t, "PENDING_PAYMENT", rows[2][5])
	if len(rows[2]) > 6 {
		assert.Equal(t, "", rows[2][6])
	}
}

func TestBookingsToExcelEmpty(t *testing.T) {
	buf, err := bookingsToExcel(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotContains(t, f.GetSheetList(), "Sheet1")
}
