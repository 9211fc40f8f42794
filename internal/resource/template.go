package resource

import (
	"fmt"
	"strconv"
	"strings"
)

type Placeholder int

const (
	PlaceholderZoom Placeholder = iota + 1
	PlaceholderX
	PlaceholderY
	PlaceholderRatio
)

var placeholderTokens = map[string]Placeholder{
	"z":     PlaceholderZoom,
	"zoom":  PlaceholderZoom,
	"x":     PlaceholderX,
	"y":     PlaceholderY,
	"ratio": PlaceholderRatio,
}

func (p Placeholder) String() string {
	switch p {
	case PlaceholderZoom:
		return "zoom"
	case PlaceholderX:
		return "x"
	case PlaceholderY:
		return "y"
	case PlaceholderRatio:
		return "ratio"
	default:
		return "unknown"
	}
}

// segment is either literal text or a placeholder, never both.
type segment struct {
	literal     string
	placeholder Placeholder
}

// Template is a parsed URL pattern. It is immutable and may be shared by any
// number of descriptors.
type Template struct {
	pattern  string
	segments []segment
}

// ParseTemplate rejects any {token} outside of z, zoom, x, y and ratio. A "{"
// with no closing "}" is kept as literal text.
func ParseTemplate(pattern string) (*Template, error) {
	var segments []segment
	var lit strings.Builder

	rest := pattern
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			lit.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open+1:], '}')
		if end < 0 {
			lit.WriteString(rest)
			break
		}

		token := rest[open+1 : open+1+end]
		if inner := strings.IndexByte(token, '{'); inner >= 0 {
			// only the innermost brace pair can be a placeholder
			lit.WriteString(rest[:open+1+inner])
			rest = rest[open+1+inner:]
			continue
		}

		p, ok := placeholderTokens[token]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported placeholder {%s} in %q", ErrUnresolvableTemplate, token, pattern)
		}

		lit.WriteString(rest[:open])
		if lit.Len() > 0 {
			segments = append(segments, segment{literal: lit.String()})
			lit.Reset()
		}
		segments = append(segments, segment{placeholder: p})
		rest = rest[open+1+end+1:]
	}
	if lit.Len() > 0 {
		segments = append(segments, segment{literal: lit.String()})
	}

	return &Template{
		pattern:  pattern,
		segments: segments,
	}, nil
}

func (t *Template) Pattern() string {
	return t.pattern
}

// Placeholders lists placeholders in order of appearance.
func (t *Template) Placeholders() []Placeholder {
	var out []Placeholder
	for _, s := range t.segments {
		if s.placeholder != 0 {
			out = append(out, s.placeholder)
		}
	}
	return out
}

func (t *Template) Expand(coord TileCoordinate, ratio PixelRatio) string {
	var b strings.Builder
	b.Grow(len(t.pattern) + 16)

	for _, s := range t.segments {
		switch s.placeholder {
		case PlaceholderZoom:
			b.WriteString(strconv.Itoa(coord.z))
		case PlaceholderX:
			b.WriteString(strconv.Itoa(coord.x))
		case PlaceholderY:
			b.WriteString(strconv.Itoa(coord.y))
		case PlaceholderRatio:
			b.WriteString(ratio.Suffix())
		default:
			b.WriteString(s.literal)
		}
	}

	return b.String()
}
