package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the population state at one tick.
type Snapshot struct {
	Version int       `json:"version"`
	Seed    int64     `json:"seed"`
	Tick    int64     `json:"tick"`
	SimTime time.Time `json:"sim_time"`

	Animals []AnimalState `json:"animals"`
	Packs   []PackState   `json:"packs"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AnimalState holds one animal's observable state.
type AnimalState struct {
	ID      string `json:"id"`
	Species string `json:"species"`
	Type    string `json:"type"`
	Age     int    `json:"age"`

	X float64 `json:"x"`
	Y float64 `json:"y"`

	Satiety   float64 `json:"satiety"`
	Hydration float64 `json:"hydration"`
	FoodEaten float64 `json:"food_eaten_kg,omitempty"`

	PackID   int  `json:"pack_id"`
	Leading  bool `json:"leading,omitempty"`
	Pregnant bool `json:"pregnant,omitempty"`
}

// PackState summarizes one pack.
type PackState struct {
	ID      int    `json:"id"`
	Size    int    `json:"size"`
	Father  string `json:"father,omitempty"`
	Mother  string `json:"mother,omitempty"`
	Hunting bool   `json:"hunting,omitempty"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
