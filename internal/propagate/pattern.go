package propagate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gravitas-games/hexboard/pkg/hex"
)

var (
	// ErrUnknownPattern is returned for a pattern name or value that is not Linear or Circular.
	ErrUnknownPattern = errors.New("propagate: unknown pattern")

	// ErrInvalidPattern is returned when spread or reach is not a finite number.
	ErrInvalidPattern = errors.New("propagate: invalid pattern parameters")
)

// Pattern is a spread shape together with its parameters. The set of
// patterns is closed: Linear and Circular.
type Pattern interface {
	fmt.Stringer
	pattern()
}

// Linear extends Reach cells along Direction and fans out sideways by
// Spread. Both budgets are truncated toward zero when tested and shrink by
// one per step.
type Linear struct {
	Direction hex.Direction
	Spread    float64
	Reach     float64
}

// Circular fills an approximate disc of radius Spread around the origin.
type Circular struct {
	Spread float64
}

func (Linear) pattern()   {}
func (Circular) pattern() {}

func (l Linear) String() string {
	return fmt.Sprintf("linear(dir=%d, spread=%g, reach=%g)", hex.Wrap(int(l.Direction)), l.Spread, l.Reach)
}

func (c Circular) String() string {
	return fmt.Sprintf("circular(spread=%g)", c.Spread)
}

// ParsePattern builds a pattern from its wire name. Direction and reach are
// ignored for circular patterns.
func ParsePattern(name string, direction int, spread, reach float64) (Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return Linear{Direction: hex.Wrap(direction), Spread: spread, Reach: reach}, nil
	case "circular":
		return Circular{Spread: spread}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// InBudget reports whether v is a finite budget no larger than limit.
func InBudget(v, limit float64) bool {
	return finite(v) && v <= limit
}

// Validate reports ErrInvalidPattern when a budget of p is not finite or
// exceeds limit, and ErrUnknownPattern for foreign Pattern types.
func Validate(p Pattern, limit float64) error {
	switch p := p.(type) {
	case Linear:
		if !InBudget(p.Spread, limit) || !InBudget(p.Reach, limit) {
			return fmt.Errorf("%w: %v outside budget %g", ErrInvalidPattern, p, limit)
		}
	case Circular:
		if !InBudget(p.Spread, limit) {
			return fmt.Errorf("%w: %v outside budget %g", ErrInvalidPattern, p, limit)
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnknownPattern, p)
	}
	return nil
}
