package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

type SeedReport struct {
	Total      int64         `json:"total"`
	Cached     int64         `json:"cached"`
	Downloaded int64         `json:"downloaded"`
	Failed     int64         `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// Seed downloads every tile of the region that is not cached yet. Failed
// tiles are counted in the report; only cancellation or an invalid region
// fail the whole run. Tiles are generated as workers free up, so the size of
// the region does not bound memory.
func (uc *ResourceUseCase) Seed(ctx context.Context, r Region) (SeedReport, error) {
	start := time.Now()

	total, err := checkTileCount(r, uc.opts.TileCountLimit)
	if err != nil {
		uc.logger.Warn("failed to plan offline region", "error", err)
		return SeedReport{}, err
	}

	uc.logger.Info("seeding offline region",
		"template", r.Template.Pattern(),
		"ratio", r.Ratio.String(),
		"min_zoom", r.MinZoom,
		"max_zoom", r.MaxZoom,
		"tiles", total,
		"workers", uc.opts.SeedWorkers,
	)

	var cached, downloaded, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(uc.opts.SeedWorkers)

	walkErr := walkRegion(r, func(d resource.Descriptor) bool {
		if ctx.Err() != nil {
			return false
		}

		g.Go(func() error {
			_, src, err := uc.Get(ctx, d)
			switch {
			case err != nil:
				failed.Add(1)
				metrics.SeededTiles.WithLabelValues("failed").Inc()
			case src == SourceCache:
				cached.Add(1)
				metrics.SeededTiles.WithLabelValues("cached").Inc()
			default:
				downloaded.Add(1)
				metrics.SeededTiles.WithLabelValues("downloaded").Inc()
			}
			return nil
		})
		return true
	})
	g.Wait()

	report := SeedReport{
		Total:      total,
		Cached:     cached.Load(),
		Downloaded: downloaded.Load(),
		Failed:     failed.Load(),
		Duration:   time.Since(start),
	}

	if walkErr != nil {
		uc.logger.Error("failed to enumerate offline region", "error", walkErr)
		return report, walkErr
	}

	if err := ctx.Err(); err != nil {
		uc.logger.Warn("offline region seeding cancelled", "report", report, "error", err)
		return report, err
	}

	uc.logger.Info("offline region seeded",
		"total", report.Total,
		"cached", report.Cached,
		"downloaded", report.Downloaded,
		"failed", report.Failed,
		"duration", report.Duration,
	)

	return report, nil
}
