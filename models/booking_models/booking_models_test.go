package booking_models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtbook/courtbook/models/availability_models"
	"github.com/courtbook/courtbook/models/shared_models"
)

func at(h, m int) time.Time {
	return time.Date(2026, 8, 24, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"partial, second starts inside first", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"partial, second ends inside first", at(10, 30), at(11, 30), at(10, 0), at(11, 0), true},
		{"second contained in first", at(10, 0), at(12, 0), at(10, 30), at(11, 0), true},
		{"first contained in second", at(10, 30), at(11, 0), at(10, 0), at(12, 0), true},
		{"back to back, first then second", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"back to back, second then first", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"disjoint", at(8, 0), at(9, 0), at(15, 0), at(16, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestTileWindowsFullDay(t *testing.T) {
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC) // Monday
	windows := []availability_models.Window{{Start: 360, End: 1320}} // 06:00-22:00

	slots := TileWindows(date, windows, shared_models.SlotMinutes)
	require.Len(t, slots, 32)
	assert.Equal(t, at(6, 0), slots[0].StartTime)
	assert.Equal(t, at(6, 30), slots[0].EndTime)
	assert.Equal(t, at(21, 30), slots[31].StartTime)
	assert.Equal(t, at(22, 0), slots[31].EndTime)
}

func TestTileWindowsDropsPartialTrailingSlot(t *testing.T) {
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	windows := []availability_models.Window{{Start: 600, End: 650}} // 10:00-10:50

	slots := TileWindows(date, windows, shared_models.SlotMinutes)
	require.Len(t, slots, 1)
	assert.Equal(t, at(10, 0), slots[0].StartTime)
	assert.Equal(t, at(10, 30), slots[0].EndTime)
}

func TestTileWindowsMultipleWindows(t *testing.T) {
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	windows := []availability_models.Window{
		{Start: 360, End: 420},   // 06:00-07:00
		{Start: 1200, End: 1290}, // 20:00-21:30
	}

	slots := TileWindows(date, windows, shared_models.SlotMinutes)
	assert.Len(t, slots, 5)
}

func TestTileWindowsEmpty(t *testing.T) {
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, TileWindows(date, nil, shared_models.SlotMinutes))
}
