// Package epoch converts calendar dates and timestamps into logical days:
// integer day counts since 2025-01-01T00:00:00Z.
//
// A logical day is the only date form accepted by commitment ID derivation.
// Date strings are parsed strictly. Calendar validation is explicit, because
// auto-normalizing date arithmetic would turn "2025-02-30" into March 2nd.
package epoch

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/outbe/tribute-attest/internal/protoerr"
)

// Epoch is day zero.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 86400

// Day is a logical day index relative to Epoch.
type Day uint32

var isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// IsoToDays parses a strict YYYY-MM-DD date (UTC) into its logical day.
func IsoToDays(s string) (Day, error) {
	m := isoDate.FindStringSubmatch(s)
	if m == nil {
		return 0, protoerr.Date(protoerr.MsgInvalidDateFormat, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	if month < 1 || month > 12 {
		return 0, protoerr.Date(protoerr.MsgInvalidDate, s)
	}
	if day < 1 || day > daysIn(year, time.Month(month)) {
		return 0, protoerr.Date(protoerr.MsgInvalidDate, s)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	d, err := FromTime(t)
	if err != nil {
		return 0, protoerr.Date(protoerr.MsgDateBeforeEpoch, s)
	}
	return d, nil
}

// FromTime returns the logical day containing t (in UTC).
func FromTime(t time.Time) (Day, error) {
	return FromUnix(t.Unix())
}

// FromUnix returns the logical day containing the Unix timestamp sec.
func FromUnix(sec int64) (Day, error) {
	delta := sec - Epoch.Unix()
	if delta < 0 {
		return 0, protoerr.Date(protoerr.MsgDateBeforeEpoch, time.Unix(sec, 0).UTC().Format(time.RFC3339))
	}
	days := delta / secondsPerDay
	if days > math.MaxUint32 {
		return 0, protoerr.Date(protoerr.MsgDayOutOfRange, time.Unix(sec, 0).UTC().Format(time.RFC3339))
	}
	return Day(days), nil
}

// NormalizeUnix truncates a Unix timestamp to midnight UTC of the same day.
func NormalizeUnix(sec int64) int64 {
	days := sec / secondsPerDay
	if sec < 0 && sec%secondsPerDay != 0 {
		days--
	}
	return days * secondsPerDay
}

// Parse accepts either a YYYY-MM-DD date or a decimal logical day.
func Parse(s string) (Day, error) {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return Day(n), nil
	}
	return IsoToDays(s)
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return Epoch.AddDate(0, 0, int(d))
}

// ISO returns the day as YYYY-MM-DD.
func (d Day) ISO() string {
	return d.Time().Format(time.DateOnly)
}

// String returns the decimal day index.
func (d Day) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
