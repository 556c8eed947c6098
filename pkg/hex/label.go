package hex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedLabel is returned when a cell label cannot be parsed.
var ErrMalformedLabel = errors.New("hex: malformed cell label")

// FormatLabel renders id in the scene naming scheme "(e, r, c)_suffix".
func FormatLabel(id CellID, suffix string) string {
	return id.String() + "_" + suffix
}

// ParseLabel extracts the CellID from a label such as "(2, 4, 7)_Panel".
// Only the text before the first underscore is considered and it must hold
// exactly three integers.
func ParseLabel(s string) (CellID, error) {
	head, _, found := strings.Cut(s, "_")
	if !found {
		return CellID{}, fmt.Errorf("%w: %q has no suffix separator", ErrMalformedLabel, s)
	}
	head = strings.TrimSpace(head)
	head = strings.TrimPrefix(head, "(")
	head = strings.TrimSuffix(head, ")")

	parts := strings.Split(head, ",")
	if len(parts) != 3 {
		return CellID{}, fmt.Errorf("%w: %q needs 3 coordinates, got %d", ErrMalformedLabel, s, len(parts))
	}

	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return CellID{}, fmt.Errorf("%w: %q: %v", ErrMalformedLabel, s, err)
		}
		vals[i] = v
	}
	return CellID{Elevation: vals[0], Row: vals[1], Col: vals[2]}, nil
}
