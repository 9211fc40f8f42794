package resource

import (
	"fmt"
	"math"
	"strconv"
)

// PixelRatio selects the display density variant of a resource. The zero
// value is not a valid ratio.
type PixelRatio struct {
	value float64
}

func NewPixelRatio(v float64) (PixelRatio, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return PixelRatio{}, fmt.Errorf("%w: %v", ErrInvalidRatio, v)
	}
	return PixelRatio{value: v}, nil
}

func (r PixelRatio) Value() float64 { return r.value }

func (r PixelRatio) IsZero() bool { return r.value == 0 }

// String is the shortest decimal form that round-trips: 1, 2, 1.5.
func (r PixelRatio) String() string {
	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

// Suffix is substituted for {ratio}: empty for 1, "@<ratio>x" otherwise.
func (r PixelRatio) Suffix() string {
	if r.value == 1 {
		return ""
	}
	return "@" + r.String() + "x"
}
