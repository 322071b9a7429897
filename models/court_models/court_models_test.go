package court_models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/courtbook/courtbook/utils"
)

func TestValidateDuration(t *testing.T) {
	court := &Court{MinBookingMinutes: 30, MaxBookingMinutes: 180}
	start := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		minutes int
		wantErr bool
	}{
		{"minimum duration", 30, false},
		{"mid range", 90, false},
		{"maximum duration", 180, false},
		{"zero duration", 0, true},
		{"not a slot multiple", 45, true},
		{"above maximum", 210, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := court.ValidateDuration(start, start.Add(time.Duration(tt.minutes)*time.Minute))
			if tt.wantErr {
				assert.True(t, utils.IsValidation(err), "expected validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDurationBelowCourtMinimum(t *testing.T) {
	court := &Court{MinBookingMinutes: 60, MaxBookingMinutes: 180}
	start := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	err := court.ValidateDuration(start, start.Add(30*time.Minute))
	assert.True(t, utils.IsValidation(err))
	assert.NoError(t, court.ValidateDuration(start, start.Add(60*time.Minute)))
}

func TestValidateDurationNegative(t *testing.T) {
	court := &Court{MinBookingMinutes: 30, MaxBookingMinutes: 180}
	start := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	err := court.ValidateDuration(start, start.Add(-30*time.Minute))
	assert.True(t, utils.IsValidation(err))
}
