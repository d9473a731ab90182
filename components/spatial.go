package components

// Position is a planar coordinate in metres. X grows east, Y grows north.
type Position struct {
	X, Y float64
}

// Equal reports whether two positions are identical.
func (p Position) Equal(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}
