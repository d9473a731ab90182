package sim

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pthm-cable/einp/components"
)

// NewLogger builds the process logger. format is "json" or "text".
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// logWorldState logs the census and pack state.
func (s *Simulation) logWorldState() {
	census := s.world.Census()
	attrs := make([]any, 0, 2*len(census)+6)
	attrs = append(attrs, "tick", s.tick.Load())
	if now, err := s.clock.Now(); err == nil {
		attrs = append(attrs, "time", now)
	}
	for _, sp := range components.AllSpecies() {
		attrs = append(attrs, sp.String(), census[sp])
	}

	var hunting int
	for _, p := range s.packs.Packs() {
		if _, ok := p.Hunt(); ok {
			hunting++
		}
	}
	attrs = append(attrs, "packs", s.packs.Active(), "hunting", hunting)
	s.logger.Info("world_state", attrs...)
}
