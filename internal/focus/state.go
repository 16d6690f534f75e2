package focus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/natefinch/atomic"

	"kanori/internal/service"
)

// State is the tracker bookkeeping kept between CLI invocations.
type State struct {
	// Active is the running session, nil when idle.
	Active *service.FocusSession `json:"active,omitempty"`

	// PausedAt is set while the active session is paused.
	PausedAt *time.Time `json:"paused_at,omitempty"`

	// PausedMillis is the total of completed pause windows.
	PausedMillis int64 `json:"paused_ms,omitempty"`

	// BlockMinutes is the realized focus time per schedule block.
	BlockMinutes map[int64]int `json:"block_minutes,omitempty"`
}

func (s *State) resetPause() {
	s.PausedAt = nil
	s.PausedMillis = 0
}

// readState loads the state file. A missing file is an idle tracker.
func readState(path string) (State, error) {
	var st State
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("read focus state: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parse focus state %s: %w", path, err)
	}
	return st, nil
}

func writeState(path string, st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write focus state: %w", err)
	}
	return nil
}
