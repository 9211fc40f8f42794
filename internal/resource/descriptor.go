package resource

import (
	"fmt"
)

// Descriptor identifies one tile resource: a template, a pixel ratio and a
// coordinate. It is an immutable value. The zero Descriptor names no
// resource: it resolves to "" and its key matches no constructed descriptor.
type Descriptor struct {
	template *Template
	ratio    PixelRatio
	coord    TileCoordinate
}

// NewDescriptor only guards against components that were never constructed;
// the components validate themselves.
func NewDescriptor(tmpl *Template, ratio PixelRatio, coord TileCoordinate) (Descriptor, error) {
	if tmpl == nil {
		return Descriptor{}, fmt.Errorf("%w: nil template", ErrUnresolvableTemplate)
	}
	if ratio.IsZero() {
		return Descriptor{}, fmt.Errorf("%w: ratio not set", ErrInvalidRatio)
	}

	return Descriptor{
		template: tmpl,
		ratio:    ratio,
		coord:    coord,
	}, nil
}

// NewTile builds a descriptor from raw values, validating each component.
func NewTile(pattern string, ratio float64, x, y, z int) (Descriptor, error) {
	tmpl, err := ParseTemplate(pattern)
	if err != nil {
		return Descriptor{}, err
	}

	r, err := NewPixelRatio(ratio)
	if err != nil {
		return Descriptor{}, err
	}

	coord, err := NewTileCoordinate(x, y, z)
	if err != nil {
		return Descriptor{}, err
	}

	return NewDescriptor(tmpl, r, coord)
}

func (d Descriptor) Template() *Template        { return d.template }
func (d Descriptor) Ratio() PixelRatio          { return d.ratio }
func (d Descriptor) Coordinate() TileCoordinate { return d.coord }

// IsZero reports whether d was not built by NewDescriptor or NewTile.
func (d Descriptor) IsZero() bool {
	return d.template == nil
}

func (d Descriptor) CanonicalKey() Key {
	var pattern string
	if d.template != nil {
		pattern = d.template.pattern
	}

	return Key{
		Kind:     KindTile,
		Template: pattern,
		Ratio:    d.ratio.String(),
		Z:        d.coord.z,
		X:        d.coord.x,
		Y:        d.coord.y,
	}
}

// Resolve returns the fetchable locator.
func (d Descriptor) Resolve() string {
	if d.template == nil {
		return ""
	}
	return d.template.Expand(d.coord, d.ratio)
}

func (d Descriptor) String() string {
	return d.CanonicalKey().String()
}
