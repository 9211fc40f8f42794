package resource

import (
	"cmp"
	"fmt"

	"github.com/paulmach/orb/maptile"
)

// MaxZoom keeps x and y inside the uint32 tile space.
const MaxZoom = 32

// TileCoordinate is a quadtree address: at zoom z the grid is 2^z by 2^z tiles.
type TileCoordinate struct {
	x int
	y int
	z int
}

func NewTileCoordinate(x, y, z int) (TileCoordinate, error) {
	if z < 0 || z > MaxZoom {
		return TileCoordinate{}, fmt.Errorf("%w: zoom %d out of range [0, %d]", ErrInvalidCoordinate, z, MaxZoom)
	}

	size := int64(1) << uint(z)
	if x < 0 || int64(x) >= size {
		return TileCoordinate{}, fmt.Errorf("%w: x %d out of range [0, %d) at zoom %d", ErrInvalidCoordinate, x, size, z)
	}
	if y < 0 || int64(y) >= size {
		return TileCoordinate{}, fmt.Errorf("%w: y %d out of range [0, %d) at zoom %d", ErrInvalidCoordinate, y, size, z)
	}

	return TileCoordinate{x: x, y: y, z: z}, nil
}

func FromTile(t maptile.Tile) (TileCoordinate, error) {
	return NewTileCoordinate(int(t.X), int(t.Y), int(t.Z))
}

func (c TileCoordinate) X() int { return c.x }
func (c TileCoordinate) Y() int { return c.y }
func (c TileCoordinate) Z() int { return c.z }

func (c TileCoordinate) Tile() maptile.Tile {
	return maptile.New(uint32(c.x), uint32(c.y), maptile.Zoom(c.z))
}

// Compare orders by zoom, then x, then y.
func (c TileCoordinate) Compare(other TileCoordinate) int {
	if r := cmp.Compare(c.z, other.z); r != 0 {
		return r
	}
	if r := cmp.Compare(c.x, other.x); r != 0 {
		return r
	}
	return cmp.Compare(c.y, other.y)
}

func (c TileCoordinate) Less(other TileCoordinate) bool {
	return c.Compare(other) < 0
}

func (c TileCoordinate) String() string {
	return fmt.Sprintf("%d/%d/%d", c.z, c.x, c.y)
}
