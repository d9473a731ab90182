package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHuntBreakthrough BookmarkType = "hunt_breakthrough"
	BookmarkHerdCrash        BookmarkType = "herd_crash"
	BookmarkWolfRecovery     BookmarkType = "wolf_recovery"
	BookmarkWolvesExtinct    BookmarkType = "wolves_extinct"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
)

// stableWindows is how many consecutive calm windows make a stable ecosystem.
const stableWindows = 5

// Bookmark marks a notable moment in the run.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches window stats for population swings.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentWolfMin int // lowest wolf count since the last recovery
	herdPeak      int // highest herbivore count since the last crash
	calmWindows   int
	wolvesSeen    bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableWindows {
		historySize = stableWindows
	}
	return &BookmarkDetector{
		history:       make([]WindowStats, historySize),
		historySize:   historySize,
		recentWolfMin: -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	if bd.historyFull || bd.historyIdx > 0 {
		add(bd.checkHuntBreakthrough(stats))
		add(bd.checkWolfRecovery(stats))
		add(bd.checkHerdCrash(stats))
		add(bd.checkStableEcosystem(stats))
	}
	add(bd.checkWolvesExtinct(stats))

	bd.addToHistory(stats)

	if bd.recentWolfMin < 0 || stats.Wolf < bd.recentWolfMin {
		bd.recentWolfMin = stats.Wolf
	}
	if h := stats.Herbivores(); h > bd.herdPeak {
		bd.herdPeak = h
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	n = min(n, count)
	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkHuntBreakthrough(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var kills, rolls int
	for _, h := range history {
		kills += h.Kills
		rolls += h.Kills + h.HuntsFailed
	}
	if rolls == 0 || kills == 0 {
		return nil
	}
	avg := float64(kills) / float64(rolls)

	if stats.KillRate > avg*2 && stats.Kills >= 3 {
		return &Bookmark{
			Type:        BookmarkHuntBreakthrough,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Kill rate %.2f is %.1fx average (%.2f)", stats.KillRate, stats.KillRate/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkWolfRecovery(stats WindowStats) *Bookmark {
	if bd.recentWolfMin <= 0 || bd.recentWolfMin > 3 {
		return nil
	}
	if stats.Wolf >= bd.recentWolfMin*3 && stats.Wolf >= 6 {
		oldMin := bd.recentWolfMin
		bd.recentWolfMin = stats.Wolf
		return &Bookmark{
			Type:        BookmarkWolfRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Wolves recovered from %d to %d", oldMin, stats.Wolf),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkHerdCrash(stats WindowStats) *Bookmark {
	if bd.herdPeak == 0 {
		return nil
	}
	herd := stats.Herbivores()
	drop := 1 - float64(herd)/float64(bd.herdPeak)
	if drop > 0.30 && herd < bd.herdPeak-10 {
		oldPeak := bd.herdPeak
		bd.herdPeak = herd
		return &Bookmark{
			Type:        BookmarkHerdCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", drop*100, oldPeak, herd),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkWolvesExtinct(stats WindowStats) *Bookmark {
	if stats.Wolf > 0 {
		bd.wolvesSeen = true
		return nil
	}
	if !bd.wolvesSeen {
		return nil
	}
	bd.wolvesSeen = false
	return &Bookmark{
		Type:        BookmarkWolvesExtinct,
		Tick:        stats.WindowEndTick,
		Description: "Last wolf died",
	}
}

// checkStableEcosystem fires once when both populations have held within a
// 20% coefficient of variation for stableWindows consecutive windows.
func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	if stats.Herbivores() < 10 || stats.Wolf < 3 {
		bd.calmWindows = 0
		return nil
	}

	window := append(bd.recent(3), stats)
	if len(window) < 4 {
		return nil
	}
	herd := make([]float64, len(window))
	wolves := make([]float64, len(window))
	for i, h := range window {
		herd[i] = float64(h.Herbivores())
		wolves[i] = float64(h.Wolf)
	}

	if calm(herd) && calm(wolves) {
		bd.calmWindows++
	} else {
		bd.calmWindows = 0
	}

	if bd.calmWindows == stableWindows {
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable ecosystem with %d herbivores, %d wolves over %d+ windows", stats.Herbivores(), stats.Wolf, stableWindows),
		}
	}
	return nil
}

// calm reports whether the coefficient of variation is below 20%.
func calm(xs []float64) bool {
	mean, variance := stat.PopMeanVariance(xs, nil)
	if mean == 0 {
		return false
	}
	return variance/(mean*mean) < 0.04
}
