package usecase

import (
	"errors"
	"fmt"
	"math"

	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

var (
	ErrInvalidRegion          = errors.New("invalid offline region")
	ErrTileCountLimitExceeded = errors.New("offline tile count limit exceeded")
)

const (
	// Web Mercator latitude limit.
	maxLatitude = 85.05112877980659

	// MaxRegionZoom is the deepest zoom a region may span. Tile math works in
	// uint32, where the 2^32 tiles per axis of zoom 32 do not fit.
	MaxRegionZoom = resource.MaxZoom - 1

	// maxPlannedTiles bounds PlanRegion, which materializes every descriptor.
	maxPlannedTiles = math.MaxInt32
)

// Region is a tile pyramid: every tile touching Bounds for each zoom in
// [MinZoom, MaxZoom]. Bounds may not cross the antimeridian.
type Region struct {
	Template *resource.Template
	Ratio    resource.PixelRatio
	Bounds   orb.Bound
	MinZoom  int
	MaxZoom  int
}

type tileRange struct {
	z          int
	minX, maxX int
	minY, maxY int
}

func (r tileRange) count() int64 {
	return int64(r.maxX-r.minX+1) * int64(r.maxY-r.minY+1)
}

func (r Region) validate() error {
	if r.Template == nil {
		return fmt.Errorf("%w: missing template", ErrInvalidRegion)
	}
	if r.Ratio.IsZero() {
		return fmt.Errorf("%w: missing pixel ratio", ErrInvalidRegion)
	}
	if r.MinZoom < 0 || r.MaxZoom > MaxRegionZoom || r.MinZoom > r.MaxZoom {
		return fmt.Errorf("%w: zoom range [%d, %d]", ErrInvalidRegion, r.MinZoom, r.MaxZoom)
	}

	minLon, minLat := r.Bounds.Min.Lon(), r.Bounds.Min.Lat()
	maxLon, maxLat := r.Bounds.Max.Lon(), r.Bounds.Max.Lat()
	for _, v := range []float64{minLon, minLat, maxLon, maxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bounds", ErrInvalidRegion)
		}
	}
	if minLon > maxLon || minLat > maxLat {
		return fmt.Errorf("%w: bounds min %v exceeds max %v", ErrInvalidRegion, r.Bounds.Min, r.Bounds.Max)
	}
	if minLon < -180 || maxLon > 180 || minLat < -90 || maxLat > 90 {
		return fmt.Errorf("%w: bounds outside of lon/lat range", ErrInvalidRegion)
	}

	return nil
}

func (r Region) ranges() []tileRange {
	nw := orb.Point{r.Bounds.Min.Lon(), clampLat(r.Bounds.Max.Lat())}
	se := orb.Point{r.Bounds.Max.Lon(), clampLat(r.Bounds.Min.Lat())}

	out := make([]tileRange, 0, r.MaxZoom-r.MinZoom+1)
	for z := r.MinZoom; z <= r.MaxZoom; z++ {
		last := (1 << uint(z)) - 1
		topLeft := maptile.At(nw, maptile.Zoom(z))
		bottomRight := maptile.At(se, maptile.Zoom(z))

		out = append(out, tileRange{
			z:    z,
			minX: clampIndex(int(topLeft.X), last),
			maxX: clampIndex(int(bottomRight.X), last),
			minY: clampIndex(int(topLeft.Y), last),
			maxY: clampIndex(int(bottomRight.Y), last),
		})
	}
	return out
}

// CountTiles returns how many tiles PlanRegion would produce.
func CountTiles(r Region) (int64, error) {
	if err := r.validate(); err != nil {
		return 0, err
	}

	var total int64
	for _, tr := range r.ranges() {
		total += tr.count()
	}
	return total, nil
}

// PlanRegion lists the descriptors of every tile in the region ordered by
// zoom, then x, then y. A limit <= 0 disables the configured tile count
// check, but a plan is never larger than maxPlannedTiles.
func PlanRegion(r Region, limit int) ([]resource.Descriptor, error) {
	total, err := checkTileCount(r, limit)
	if err != nil {
		return nil, err
	}
	if total > maxPlannedTiles {
		return nil, fmt.Errorf("%w: region has %d tiles, a plan holds at most %d", ErrTileCountLimitExceeded, total, maxPlannedTiles)
	}

	out := make([]resource.Descriptor, 0, total)
	err = walkRegion(r, func(d resource.Descriptor) bool {
		out = append(out, d)
		return true
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func checkTileCount(r Region, limit int) (int64, error) {
	total, err := CountTiles(r)
	if err != nil {
		return 0, err
	}
	if limit > 0 && total > int64(limit) {
		return 0, fmt.Errorf("%w: region has %d tiles, limit is %d", ErrTileCountLimitExceeded, total, limit)
	}
	return total, nil
}

// walkRegion calls fn for each tile in plan order until fn returns false.
func walkRegion(r Region, fn func(resource.Descriptor) bool) error {
	for _, tr := range r.ranges() {
		for x := tr.minX; x <= tr.maxX; x++ {
			for y := tr.minY; y <= tr.maxY; y++ {
				coord, err := resource.NewTileCoordinate(x, y, tr.z)
				if err != nil {
					return err
				}
				d, err := resource.NewDescriptor(r.Template, r.Ratio, coord)
				if err != nil {
					return err
				}
				if !fn(d) {
					return nil
				}
			}
		}
	}
	return nil
}

func clampLat(lat float64) float64 {
	return math.Max(-maxLatitude, math.Min(maxLatitude, lat))
}

func clampIndex(v, last int) int {
	if v < 0 {
		return 0
	}
	if v > last {
		return last
	}
	return v
}
