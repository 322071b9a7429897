package availability_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtbook/courtbook/models/shared_models"
)

func recurringWindow(start, end shared_models.TimeOfDay) RecurringAvailability {
	return RecurringAvailability{StartTime: start, EndTime: end, IsActive: true}
}

func TestResolveWindowsNoOverride(t *testing.T) {
	recurring := []RecurringAvailability{
		recurringWindow(360, 720),   // 06:00-12:00
		recurringWindow(960, 1320),  // 16:00-22:00
	}

	windows := ResolveWindows(nil, recurring)
	require.Len(t, windows, 2)
	assert.Equal(t, Window{Start: 360, End: 720}, windows[0])
	assert.Equal(t, Window{Start: 960, End: 1320}, windows[1])
}

func TestResolveWindowsCloseOverride(t *testing.T) {
	recurring := []RecurringAvailability{recurringWindow(360, 1320)}
	override := &DateOverride{OverrideType: shared_models.OverrideClose}

	assert.Empty(t, ResolveWindows(override, recurring))
}

func TestResolveWindowsOpenOverrideReplacesTemplate(t *testing.T) {
	recurring := []RecurringAvailability{
		recurringWindow(360, 720),
		recurringWindow(960, 1320),
	}
	start := shared_models.TimeOfDay(600) // 10:00
	end := shared_models.TimeOfDay(840)   // 14:00
	override := &DateOverride{
		OverrideType: shared_models.OverrideOpen,
		StartTime:    &start,
		EndTime:      &end,
	}

	windows := ResolveWindows(override, recurring)
	require.Len(t, windows, 1)
	assert.Equal(t, Window{Start: 600, End: 840}, windows[0])
}

func TestResolveWindowsNoDataMeansClosed(t *testing.T) {
	assert.Empty(t, ResolveWindows(nil, nil))
}
