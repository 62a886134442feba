package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDefaultWindow(t *testing.T) {
	got := DefaultWindow().Generate()

	require.Len(t, got, 16)
	assert.Equal(t, "09:00", got[0])
	assert.Equal(t, "16:30", got[len(got)-1])

	seen := make(map[string]bool)
	for i, s := range got {
		assert.False(t, seen[s], "duplicate slot %s", s)
		seen[s] = true
		if i == 0 {
			continue
		}
		prev, _ := ParseClock(got[i-1])
		cur, _ := ParseClock(s)
		assert.Equal(t, 30*time.Minute, cur-prev)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	w := DefaultWindow()
	assert.Equal(t, w.Generate(), w.Generate())
}

func TestGenerateStopsBeforeMidnight(t *testing.T) {
	w := Window{Start: 23 * time.Hour, End: 24 * time.Hour, Step: 45 * time.Minute}
	assert.Equal(t, []string{"23:00"}, w.Generate())
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		step    int
		want    int
		wantErr error
	}{
		{name: "default", start: "09:00", end: "17:00", step: 30, want: 16},
		{name: "hourly", start: "8:00", end: "12:00", step: 60, want: 4},
		{name: "reversed", start: "17:00", end: "09:00", step: 30, wantErr: ErrInvalidWindow},
		{name: "zero step", start: "09:00", end: "17:00", step: 0, wantErr: ErrInvalidWindow},
		{name: "bad clock", start: "9h", end: "17:00", step: 30, wantErr: ErrInvalidClock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseWindow(tt.start, tt.end, tt.step)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, w.Generate(), tt.want)
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "9:00", want: 9 * time.Hour},
		{in: "14:30", want: 14*time.Hour + 30*time.Minute},
		{in: "24:00", want: 24 * time.Hour},
		{in: "24:30", wantErr: true},
		{in: "12:5", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "10:60", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAtUsesWallClockInLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	day := time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC)
	got, err := At(day, "14:30", loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 10, 14, 30, 0, 0, loc), got)
	assert.Equal(t, "2025-06-10T18:30:00Z", got.UTC().Format(time.RFC3339))
}
