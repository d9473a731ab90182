package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/einp/components"
)

func newGrid(t *testing.T, points ...components.Position) (*SpatialGrid, *ecs.Map1[components.Position], []ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld()
	posMap := ecs.NewMap1[components.Position](w)
	grid := NewSpatialGrid(1000, 1000, 100)

	entities := make([]ecs.Entity, len(points))
	for i := range points {
		p := points[i]
		entities[i] = posMap.NewEntity(&p)
		grid.Insert(entities[i], p)
	}
	return grid, posMap, entities
}

func TestQueryRadiusInto(t *testing.T) {
	grid, posMap, es := newGrid(t,
		components.Position{X: 500, Y: 500},
		components.Position{X: 560, Y: 500},
		components.Position{X: 520, Y: 500},
		components.Position{X: 900, Y: 900},
	)

	got := grid.QueryRadiusInto(nil, components.Position{X: 500, Y: 500}, 100, posMap)
	want := []ecs.Entity{es[0], es[2], es[1]}
	if len(got) != len(want) {
		t.Fatalf("got %d neighbors, want %d", len(got), len(want))
	}
	for i, n := range got {
		if n.E != want[i] {
			t.Errorf("neighbor %d = %v, want %v", i, n.E, want[i])
		}
	}

	all := grid.QueryRadiusInto(got[:0], components.Position{X: 0, Y: 0}, -1, posMap)
	if len(all) != 4 {
		t.Errorf("unbounded query returned %d, want 4", len(all))
	}
	if all[3].E != es[3] {
		t.Errorf("farthest entity = %v, want %v", all[3].E, es[3])
	}
}

func TestNearest(t *testing.T) {
	grid, posMap, es := newGrid(t,
		components.Position{X: 150, Y: 150},
		components.Position{X: 450, Y: 150},
		components.Position{X: 950, Y: 950},
	)
	origin := components.Position{X: 100, Y: 100}

	e, ok := grid.Nearest(origin, posMap, func(ecs.Entity) bool { return true })
	if !ok || e != es[0] {
		t.Errorf("Nearest = %v, %v; want %v", e, ok, es[0])
	}

	// The predicate skips the closest one.
	e, ok = grid.Nearest(origin, posMap, func(e ecs.Entity) bool { return e != es[0] })
	if !ok || e != es[1] {
		t.Errorf("Nearest with filter = %v, %v; want %v", e, ok, es[1])
	}

	_, ok = grid.Nearest(origin, posMap, func(ecs.Entity) bool { return false })
	if ok {
		t.Error("Nearest found an entity the predicate rejects")
	}
}

func TestClearEmptiesGrid(t *testing.T) {
	grid, posMap, _ := newGrid(t, components.Position{X: 10, Y: 10})
	grid.Clear()
	if got := grid.QueryRadiusInto(nil, components.Position{}, -1, posMap); len(got) != 0 {
		t.Errorf("after Clear found %d entities", len(got))
	}
}

func TestInsertClampsOutOfBounds(t *testing.T) {
	grid, posMap, es := newGrid(t, components.Position{X: -50, Y: 2000})
	got := grid.QueryRadiusInto(nil, components.Position{X: 0, Y: 1000}, 1100, posMap)
	if len(got) != 1 || got[0].E != es[0] {
		t.Errorf("out-of-bounds entity not found: %v", got)
	}
}
