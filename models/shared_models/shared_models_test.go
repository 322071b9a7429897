package shared_models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	for _, valid := range []string{"PENDING_PAYMENT", "CONFIRMED", "FAILED", "CANCELLED_MANUAL"} {
		status, err := ParseBookingStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(status))
	}

	_, err := ParseBookingStatus("confirmed")
	assert.Error(t, err)
	_, err = ParseBookingStatus("REFUNDED")
	assert.Error(t, err)
}

func TestBookingStatusTerminalAndBlocking(t *testing.T) {
	assert.False(t, BookingPendingPayment.Terminal())
	assert.True(t, BookingConfirmed.Terminal())
	assert.True(t, BookingFailed.Terminal())
	assert.True(t, BookingCancelledManual.Terminal())

	assert.True(t, BookingPendingPayment.Blocking())
	assert.True(t, BookingConfirmed.Blocking())
	assert.False(t, BookingFailed.Blocking())
	assert.False(t, BookingCancelledManual.Blocking())
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.False(t, PaymentCreated.Terminal())
	assert.True(t, PaymentSuccess.Terminal())
	assert.True(t, PaymentFailed.Terminal())
}

func TestDayOfWeekMondayBased(t *testing.T) {
	// 2026-08-24 is a Monday.
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int16(0), DayOfWeek(monday))
	assert.Equal(t, int16(5), DayOfWeek(monday.AddDate(0, 0, 5))) // Saturday
	assert.Equal(t, int16(6), DayOfWeek(monday.AddDate(0, 0, 6))) // Sunday
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("06:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(360), tod)

	tod, err = ParseTimeOfDay("18:30:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(1110), tod)

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("6pm")
	assert.Error(t, err)
}

func TestParseTimeOfDayMidnightEnd(t *testing.T) {
	tod, err := ParseTimeOfDay("24:00")
	require.NoError(t, err)
	assert.Equal(t, MinutesPerDay, tod)
	assert.Equal(t, "24:00", tod.String())

	tod, err = ParseTimeOfDay("24:00:00")
	require.NoError(t, err)
	assert.Equal(t, MinutesPerDay, tod)

	_, err = ParseTimeOfDay("24:30")
	assert.Error(t, err)

	// 24:00 anchored on a date is midnight of the following day.
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, date.AddDate(0, 0, 1), MinutesPerDay.At(date))
}

func TestTimeOfDayRoundTrip(t *testing.T) {
	tod := TimeOfDay(930) // 15:30
	assert.Equal(t, "15:30", tod.String())
	assert.Equal(t, tod, TimeOfDayFromMicroseconds(tod.Microseconds()))

	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	at := tod.At(date)
	assert.Equal(t, 15, at.Hour())
	assert.Equal(t, 30, at.Minute())
	assert.Equal(t, tod, FromClock(at))
}
