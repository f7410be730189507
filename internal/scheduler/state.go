package scheduler

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"WolfHunter/internal/model"
)

// AlertState is the per-timeframe alert latch, persisted so a restart does not repeat alerts.
type AlertState struct {
	Alerted   map[model.Timeframe]bool `json:"alerted"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// LoadAlertState reads the alert state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadAlertState(filePath string) (*AlertState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &AlertState{Alerted: map[model.Timeframe]bool{}}, nil
		}
		return nil, err
	}
	var state AlertState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode alert state: %w", err)
	}
	if state.Alerted == nil {
		state.Alerted = map[model.Timeframe]bool{}
	}
	return &state, nil
}

// SaveAlertState writes the alert state to a JSON file via a temp file and rename.
func SaveAlertState(filePath string, state *AlertState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

// LoadState restores the alert latch from StateFile. No-op when StateFile is empty.
func (s *Scheduler) LoadState() error {
	if s.StateFile == "" {
		return nil
	}
	state, err := LoadAlertState(s.StateFile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for tf, on := range state.Alerted {
		if tf.Valid() {
			s.alerted[tf] = on
		}
	}
	return nil
}

func (s *Scheduler) saveState() {
	if s.StateFile == "" {
		return
	}
	s.mu.Lock()
	state := &AlertState{Alerted: make(map[model.Timeframe]bool, len(s.alerted))}
	for tf, on := range s.alerted {
		state.Alerted[tf] = on
	}
	s.mu.Unlock()
	if err := SaveAlertState(s.StateFile, state); err != nil {
		log.Printf("[ERROR] save alert state: %v", err)
	}
}
