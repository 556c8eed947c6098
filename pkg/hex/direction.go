package hex

// Direction indexes one of the six neighbour slots of a cell.
type Direction int

const (
	CenterLeft Direction = iota
	TopLeft
	TopRight
	CenterRight
	BottomRight
	BottomLeft
)

// NumDirections is the number of neighbour slots per cell.
const NumDirections = 6

var directionNames = [NumDirections]string{
	"center-left", "top-left", "top-right", "center-right", "bottom-right", "bottom-left",
}

// offset is a (row, col) step.
type offset struct{ dr, dc int }

// Neighbour offsets for even and odd rows, indexed by Direction.
var (
	evenRowOffsets = [NumDirections]offset{
		{0, -1}, {+1, -1}, {+1, 0}, {0, +1}, {-1, 0}, {-1, -1},
	}
	oddRowOffsets = [NumDirections]offset{
		{0, -1}, {+1, 0}, {+1, +1}, {0, +1}, {-1, +1}, {-1, 0},
	}
)

// Wrap maps any integer onto 0..5.
func Wrap(d int) Direction {
	d %= NumDirections
	if d < 0 {
		d += NumDirections
	}
	return Direction(d)
}

// Opposite returns the direction pointing back.
func (d Direction) Opposite() Direction { return Wrap(int(d) + 3) }

func (d Direction) String() string {
	return directionNames[Wrap(int(d))]
}

// Neighbor returns the id one step from c in direction d, on the same
// elevation. d wraps modulo 6.
func (c CellID) Neighbor(d Direction) CellID {
	table := &evenRowOffsets
	if c.Row&1 == 1 {
		table = &oddRowOffsets
	}
	o := table[Wrap(int(d))]
	return CellID{Elevation: c.Elevation, Row: c.Row + o.dr, Col: c.Col + o.dc}
}

// Neighbors returns the six neighbour ids of c in direction order.
func (c CellID) Neighbors() [NumDirections]CellID {
	var out [NumDirections]CellID
	for d := Direction(0); d < NumDirections; d++ {
		out[d] = c.Neighbor(d)
	}
	return out
}
