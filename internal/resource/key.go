package resource

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

type Kind uint8

const (
	KindTile Kind = iota + 1
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindTile:
		return "tile"
	case KindURL:
		return "url"
	default:
		return "unknown"
	}
}

// Key is the canonical cache key of a resource. Two keys are equal iff every
// field is equal, so Key can be used directly as a map key.
type Key struct {
	Kind     Kind
	Template string
	Ratio    string
	Z        int
	X        int
	Y        int
}

// URLKey keys a resource stored under a plain URL rather than a tile template.
func URLKey(url string) Key {
	return Key{
		Kind:     KindURL,
		Template: url,
	}
}

// Digest is a SHA-256 hex digest of a length-prefixed encoding of the key,
// for backends that need a flat string key.
func (k Key) Digest() string {
	buf := make([]byte, 0, len(k.Template)+len(k.Ratio)+32)
	buf = append(buf, byte(k.Kind))
	buf = binary.AppendUvarint(buf, uint64(len(k.Template)))
	buf = append(buf, k.Template...)
	buf = binary.AppendUvarint(buf, uint64(len(k.Ratio)))
	buf = append(buf, k.Ratio...)
	buf = binary.AppendVarint(buf, int64(k.Z))
	buf = binary.AppendVarint(buf, int64(k.X))
	buf = binary.AppendVarint(buf, int64(k.Y))

	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

func (k Key) String() string {
	if k.Kind == KindURL {
		return fmt.Sprintf("url:%s", k.Template)
	}
	return fmt.Sprintf("tile:%s:%s:%d/%d/%d", k.Template, k.Ratio, k.Z, k.X, k.Y)
}
