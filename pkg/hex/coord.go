package hex

import "fmt"

// CellID identifies a board cell by elevation layer and offset grid position.
type CellID struct {
	Elevation int
	Row       int
	Col       int
}

// ID builds a CellID.
func ID(elevation, row, col int) CellID {
	return CellID{Elevation: elevation, Row: row, Col: col}
}

// Less orders ids by elevation, then row, then column.
func (c CellID) Less(o CellID) bool {
	if c.Elevation != o.Elevation {
		return c.Elevation < o.Elevation
	}
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// Compare returns -1, 0 or +1 following Less.
func (c CellID) Compare(o CellID) int {
	switch {
	case c == o:
		return 0
	case c.Less(o):
		return -1
	default:
		return 1
	}
}

// Below returns the id directly beneath c on the given elevation.
func (c CellID) Below(elevation int) CellID {
	return CellID{Elevation: elevation, Row: c.Row, Col: c.Col}
}

func (c CellID) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.Elevation, c.Row, c.Col)
}

// Axial represents axial coordinates (q, r) for pointy-top orientation.
type Axial struct {
	Q int
	R int
}

// Cube represents cube coordinates (x, y, z) with x+y+z=0.
type Cube struct {
	X int
	Y int
	Z int
}

// ToCube converts axial to cube.
func (a Axial) ToCube() Cube {
	x := a.Q
	z := a.R
	y := -x - z
	return Cube{X: x, Y: y, Z: z}
}

// ToAxial converts the offset position of c to axial coordinates.
// Odd rows sit half a cell to the right of even rows.
func (c CellID) ToAxial() Axial {
	return Axial{Q: c.Col - (c.Row-(c.Row&1))/2, R: c.Row}
}

// DistanceCube returns hex distance between two cube coords.
func DistanceCube(a, b Cube) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	dz := abs(a.Z - b.Z)
	if dx > dy && dx > dz {
		return dx
	}
	if dy > dz {
		return dy
	}
	return dz
}

// Distance returns the number of single-cell steps between a and b within
// one elevation layer. Elevation is ignored.
func Distance(a, b CellID) int {
	return DistanceCube(a.ToAxial().ToCube(), b.ToAxial().ToCube())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
