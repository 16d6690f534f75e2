// Package daybounds stores the user's wake and sleep times on disk.
package daybounds

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"kanori/internal/service"
)

// ClockLayout is the HH:MM format of wake and sleep.
const ClockLayout = "15:04"

// ErrInvalidTime is returned for a wake or sleep value that is not HH:MM.
var ErrInvalidTime = errors.New("invalid time, want HH:MM")

// Load reads the bounds at path. Both the current {wake, sleep} object and the
// older {date: {wake, sleep}} map are accepted; for the map the first entry
// wins. A missing, unreadable or malformed file yields nil.
func Load(path string) *service.DayBounds {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if b, ok := parseBounds(data); ok {
		return &b
	}
	if b, ok := firstEntry(data); ok {
		return &b
	}
	return nil
}

func parseBounds(data []byte) (service.DayBounds, bool) {
	var raw struct {
		Wake  *string `json:"wake"`
		Sleep *string `json:"sleep"`
	}
	if err := json.Unmarshal(data, &raw); err != nil || raw.Wake == nil || raw.Sleep == nil {
		return service.DayBounds{}, false
	}
	return service.DayBounds{Wake: *raw.Wake, Sleep: *raw.Sleep}, true
}

// firstEntry decodes the value of the first key of a JSON object, in document order.
func firstEntry(data []byte) (service.DayBounds, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return service.DayBounds{}, false
	}
	if _, err := dec.Token(); err != nil {
		return service.DayBounds{}, false
	}
	var value json.RawMessage
	if err := dec.Decode(&value); err != nil {
		return service.DayBounds{}, false
	}
	return parseBounds(value)
}

// Parse validates and normalizes a wake/sleep pair.
func Parse(wake, sleep string) (service.DayBounds, error) {
	w, err := parseClock(wake)
	if err != nil {
		return service.DayBounds{}, err
	}
	s, err := parseClock(sleep)
	if err != nil {
		return service.DayBounds{}, err
	}
	return service.DayBounds{Wake: w, Sleep: s}, nil
}

func parseClock(v string) (string, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(v))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, v)
	}
	return t.Format(ClockLayout), nil
}

// Save writes b to path in the current format.
func Save(path string, b service.DayBounds) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write day bounds: %w", err)
	}
	return nil
}

// Clear removes the bounds at path. Clearing absent bounds is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear day bounds: %w", err)
	}
	return nil
}
