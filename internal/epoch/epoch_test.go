package epoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outbe/tribute-attest/internal/protoerr"
)

func TestIsoToDays(t *testing.T) {
	tests := []struct {
		input string
		want  Day
	}{
		{"2025-01-01", 0},
		{"2025-01-02", 1},
		{"2025-01-09", 8},
		{"2025-02-01", 31},
		{"2025-12-31", 364},
		{"2026-01-01", 365},
		{"2028-02-29", 1154},
		{"2030-01-01", 1826},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := IsoToDays(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.ISO(), "ISO must invert IsoToDays")
		})
	}
}

func TestIsoToDays_Errors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"2024-12-31", protoerr.MsgDateBeforeEpoch},
		{"1800-01-01", protoerr.MsgDateBeforeEpoch},
		{"01-01-2025", protoerr.MsgInvalidDateFormat},
		{"2025-1-1", protoerr.MsgInvalidDateFormat},
		{"2025/01/01", protoerr.MsgInvalidDateFormat},
		{"2025-01-01T00:00:00Z", protoerr.MsgInvalidDateFormat},
		{" 2025-01-01", protoerr.MsgInvalidDateFormat},
		{"", protoerr.MsgInvalidDateFormat},
		{"2025-13-01", protoerr.MsgInvalidDate},
		{"2025-00-10", protoerr.MsgInvalidDate},
		{"2025-01-32", protoerr.MsgInvalidDate},
		{"2025-01-00", protoerr.MsgInvalidDate},
		{"2025-02-30", protoerr.MsgInvalidDate},
		{"2025-02-29", protoerr.MsgInvalidDate},
		{"2025-04-31", protoerr.MsgInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := IsoToDays(tt.input)
			require.Error(t, err)

			var de *protoerr.DateError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.message, de.Message)
		})
	}
}

func TestFromUnix(t *testing.T) {
	base := Epoch.Unix()

	d, err := FromUnix(base)
	require.NoError(t, err)
	assert.Equal(t, Day(0), d)

	d, err = FromUnix(base + secondsPerDay - 1)
	require.NoError(t, err)
	assert.Equal(t, Day(0), d, "last second of the day stays on the day")

	d, err = FromUnix(base + 197*secondsPerDay + 3600)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-17", d.ISO())

	_, err = FromUnix(base - 1)
	assert.True(t, protoerr.IsDateError(err))

	d, err = FromUnix(base + (1<<32-1)*secondsPerDay)
	require.NoError(t, err)
	assert.Equal(t, Day(1<<32-1), d)

	_, err = FromUnix(base + (1<<32+5)*secondsPerDay)
	var dateErr *protoerr.DateError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, protoerr.MsgDayOutOfRange, dateErr.Message)
}

func TestFromTime_UsesUTC(t *testing.T) {
	tz := time.FixedZone("UTC+10", 10*3600)
	// 2025-03-02 05:00 at UTC+10 is 2025-03-01 19:00 UTC.
	d, err := FromTime(time.Date(2025, time.March, 2, 5, 0, 0, 0, tz))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", d.ISO())
}

func TestNormalizeUnix(t *testing.T) {
	assert.Equal(t, int64(1705276800), NormalizeUnix(1705276800))
	assert.Equal(t, int64(1705276800), NormalizeUnix(1705276800+86399))
	assert.Equal(t, int64(-86400), NormalizeUnix(-1))
}

func TestParse(t *testing.T) {
	d, err := Parse("365")
	require.NoError(t, err)
	assert.Equal(t, Day(365), d)

	d, err = Parse("2026-01-01")
	require.NoError(t, err)
	assert.Equal(t, Day(365), d)

	_, err = Parse("-1")
	assert.True(t, protoerr.IsDateError(err))
}

func TestDay_String(t *testing.T) {
	assert.Equal(t, "1826", Day(1826).String())
	assert.Equal(t, Epoch, Day(0).Time())
}
