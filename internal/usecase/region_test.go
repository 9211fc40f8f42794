package usecase

import (
	"testing"

	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var world = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

func testRegion(t *testing.T, bounds orb.Bound, minZoom, maxZoom int) Region {
	t.Helper()
	tmpl, err := resource.ParseTemplate(testPattern)
	require.NoError(t, err)
	ratio, err := resource.NewPixelRatio(1)
	require.NoError(t, err)

	return Region{
		Template: tmpl,
		Ratio:    ratio,
		Bounds:   bounds,
		MinZoom:  minZoom,
		MaxZoom:  maxZoom,
	}
}

func TestCountTilesWholeWorld(t *testing.T) {
	n, err := CountTiles(testRegion(t, world, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(1+4+16), n)
}

func TestPlanRegionOrdering(t *testing.T) {
	plan, err := PlanRegion(testRegion(t, world, 0, 1), 0)
	require.NoError(t, err)
	require.Len(t, plan, 5)

	var got []string
	for _, d := range plan {
		got = append(got, d.Coordinate().String())
	}
	assert.Equal(t, []string{"0/0/0", "1/0/0", "1/0/1", "1/1/0", "1/1/1"}, got)

	for i := 1; i < len(plan); i++ {
		assert.True(t, plan[i-1].Coordinate().Less(plan[i].Coordinate()))
		assert.Same(t, plan[0].Template(), plan[i].Template())
	}
}

func TestPlanRegionSingleTile(t *testing.T) {
	point := orb.Bound{Min: orb.Point{-101.25, 49}, Max: orb.Point{-101.25, 49}}

	plan, err := PlanRegion(testRegion(t, point, 4, 4), 0)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "https://tiles.example/4/3/5.png", plan[0].Resolve())
}

func TestPlanRegionTileCountLimit(t *testing.T) {
	_, err := PlanRegion(testRegion(t, world, 0, 2), 20)
	assert.ErrorIs(t, err, ErrTileCountLimitExceeded)

	plan, err := PlanRegion(testRegion(t, world, 0, 2), 21)
	require.NoError(t, err)
	assert.Len(t, plan, 21)
}

func TestPlanRegionRejectsInvalidRegions(t *testing.T) {
	tests := []struct {
		name   string
		region func() Region
	}{
		{"inverted zoom", func() Region { return testRegion(t, world, 3, 2) }},
		{"negative zoom", func() Region { return testRegion(t, world, -1, 2) }},
		{"zoom above max", func() Region { return testRegion(t, world, 0, resource.MaxZoom+1) }},
		{"zoom outside uint32 tile space", func() Region { return testRegion(t, world, 0, MaxRegionZoom+1) }},
		{"inverted bounds", func() Region {
			return testRegion(t, orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{-10, -10}}, 0, 1)
		}},
		{"longitude out of range", func() Region {
			return testRegion(t, orb.Bound{Min: orb.Point{-190, 0}, Max: orb.Point{0, 10}}, 0, 1)
		}},
		{"missing template", func() Region {
			r := testRegion(t, world, 0, 1)
			r.Template = nil
			return r
		}},
		{"missing ratio", func() Region {
			r := testRegion(t, world, 0, 1)
			r.Ratio = resource.PixelRatio{}
			return r
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanRegion(tt.region(), 0)
			assert.ErrorIs(t, err, ErrInvalidRegion)
		})
	}
}

func TestPlanRegionAtMaxZoomCoversBounds(t *testing.T) {
	p := orb.Point{10.0001, 10.0001}
	point := orb.Bound{Min: p, Max: p}

	plan, err := PlanRegion(testRegion(t, point, MaxRegionZoom-1, MaxRegionZoom), 0)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	parent, deepest := plan[0].Coordinate(), plan[1].Coordinate()
	assert.Equal(t, MaxRegionZoom, deepest.Z())
	assert.Equal(t, parent.X(), deepest.X()/2)
	assert.Equal(t, parent.Y(), deepest.Y()/2)
	assert.NotZero(t, deepest.X())
	assert.True(t, deepest.Tile().Bound().Contains(p))
}

func TestPlanRegionUnlimitedHugeRegion(t *testing.T) {
	region := testRegion(t, world, 0, MaxRegionZoom)

	total, err := CountTiles(region)
	require.NoError(t, err)
	assert.Greater(t, total, int64(maxPlannedTiles))

	assert.NotPanics(t, func() {
		_, err = PlanRegion(region, 0)
	})
	assert.ErrorIs(t, err, ErrTileCountLimitExceeded)
}
