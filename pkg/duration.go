package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDuration = errors.New("invalid duration")

// [D [day[s], ]][[HH:]MM:]SS[.ffffff]
var durationRegex = regexp.MustCompile(`^(?:(\d+) (?:days?, )?)?((?:\d+:){0,2}\d+)(?:[.,](\d{1,6})\d{0,6})?$`)

const day = 24 * time.Hour

// Duration is a time.Duration that travels over the wire as "[D ]HH:MM:SS[.ffffff]".
type Duration time.Duration

func NewDuration(d time.Duration) *Duration {
	pd := Duration(d)
	return &pd
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return FormatDuration(time.Duration(d))
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, err)
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// ParseDuration accepts "SS", "MM:SS", "HH:MM:SS", each optionally prefixed
// by a day count ("2 03:00:00", "1 day, 00:30:00") and suffixed by up to six
// fractional second digits.
func ParseDuration(s string) (time.Duration, error) {
	m := durationRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var total time.Duration
	if m[1] != "" {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("%w: days: %s", ErrInvalidDuration, err)
		}
		if total, err = addUnits(total, days, day); err != nil {
			return 0, fmt.Errorf("%w: %q", err, s)
		}
	}

	parts := strings.Split(m[2], ":")
	units := []time.Duration{time.Second, time.Minute, time.Hour}
	for i := range parts {
		v, err := strconv.Atoi(parts[len(parts)-1-i])
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidDuration, err)
		}
		if total, err = addUnits(total, v, units[i]); err != nil {
			return 0, fmt.Errorf("%w: %q", err, s)
		}
	}

	if m[3] != "" {
		micros, err := strconv.Atoi(m[3] + strings.Repeat("0", 6-len(m[3])))
		if err != nil {
			return 0, fmt.Errorf("%w: microseconds: %s", ErrInvalidDuration, err)
		}
		if total, err = addUnits(total, micros, time.Microsecond); err != nil {
			return 0, fmt.Errorf("%w: %q", err, s)
		}
	}

	return total, nil
}

// addUnits returns total + n*unit, failing instead of wrapping past math.MaxInt64.
func addUnits(total time.Duration, n int, unit time.Duration) (time.Duration, error) {
	if n < 0 || int64(n) > (math.MaxInt64-int64(total))/int64(unit) {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidDuration)
	}
	return total + time.Duration(n)*unit, nil
}

// FormatDuration renders d as "[D ]HH:MM:SS[.ffffff]". Negative durations are clamped to zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := d / day
	d -= days * day
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	micros := d / time.Microsecond

	s := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	if days > 0 {
		s = fmt.Sprintf("%d %s", days, s)
	}
	if micros > 0 {
		s = fmt.Sprintf("%s.%06d", s, micros)
	}
	return s
}
