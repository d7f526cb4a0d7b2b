package scripts

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// FormatISO renders t as ISO-8601 with milliseconds, in UTC unless local.
func FormatISO(t time.Time, local bool) string {
	if local {
		return t.Local().Format(isoMillis)
	}
	return t.UTC().Format(isoMillis)
}

// ParseTime accepts RFC3339 (with or without fractional seconds) or unix
// seconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Newf("cannot parse %q as RFC3339 or unix seconds", s)
	}
	return t, nil
}

// ISO prints at (or now when at is empty) as ISO-8601.
func ISO(w io.Writer, at string, local bool, now func() time.Time) error {
	t := now()
	if at != "" {
		parsed, err := ParseTime(at)
		if err != nil {
			return err
		}
		t = parsed
	}
	_, err := fmt.Fprintln(w, FormatISO(t, local))
	return err
}
