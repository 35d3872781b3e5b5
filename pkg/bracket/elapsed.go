package bracket

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseElapsed parses a recorded result such as "0:01:23.456789". A leading
// "N day(s), " prefix is accepted for results longer than a day.
func ParseElapsed(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty elapsed time")
	}

	var days int64
	if i := strings.Index(s, ", "); i >= 0 {
		dayPart := strings.Fields(s[:i])
		if len(dayPart) != 2 || !strings.HasPrefix(dayPart[1], "day") {
			return 0, fmt.Errorf("invalid elapsed time %q", s)
		}
		n, err := strconv.ParseInt(dayPart[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid elapsed time %q: %w", s, err)
		}
		days = n
		s = s[i+2:]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid elapsed time %q: want H:MM:SS", s)
	}
	h, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", s, err)
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", s, err)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", s, err)
	}
	if h < 0 || m < 0 || m >= 60 || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("elapsed time %q out of range", s)
	}

	d := time.Duration(days)*24*time.Hour +
		time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second)).Round(time.Microsecond)
	return d, nil
}

// FormatElapsed writes d in the form ParseElapsed reads, with microsecond
// precision when d has a fractional second.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Microsecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	us := (d - s*time.Second) / time.Microsecond
	if us == 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d:%02d.%06d", h, m, s, us)
}

// FormatClock renders a running timer as MM:SS.cc, or H:MM:SS.cc past an hour.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := d / (10 * time.Millisecond)
	h := cs / 360000
	m := cs / 6000 % 60
	s := cs / 100 % 60
	cs %= 100
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
	}
	return fmt.Sprintf("%02d:%02d.%02d", m, s, cs)
}
