package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/jaennil/guide_helper/backend/offline/internal/app"
	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/internal/usecase"
	"github.com/jaennil/guide_helper/backend/offline/pkg/config"
	"github.com/jaennil/guide_helper/backend/offline/pkg/logger"
	"github.com/paulmach/orb"
	flag "github.com/spf13/pflag"
)

type options struct {
	template string
	ratio    float64
	bbox     string
	minZoom  int
	maxZoom  int
}

func main() {
	var opts options
	flag.StringVarP(&opts.template, "template", "t", "", "URL template with {z} {x} {y} {ratio} placeholders (default UPSTREAM_TEMPLATE)")
	flag.Float64VarP(&opts.ratio, "ratio", "r", 1, "pixel ratio")
	flag.StringVarP(&opts.bbox, "bbox", "b", "", "bounds as minLon,minLat,maxLon,maxLat")
	flag.IntVar(&opts.minZoom, "min-zoom", 0, "lowest zoom level")
	flag.IntVar(&opts.maxZoom, "max-zoom", 10, "highest zoom level")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		log.Fatalln("failed to load config: ", err)
	}

	if opts.template == "" {
		opts.template = cfg.Upstream.Template
	}

	if err := run(cfg, opts); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts options) error {
	l := logger.NewZapLogger(cfg.Logger)
	defer l.Sync()

	shutdown, err := app.Init(cfg, l)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	region, err := buildRegion(opts)
	if err != nil {
		return err
	}

	uc, closer, err := app.NewResourceUseCase(cfg, l)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := uc.Seed(ctx, region)
	if err != nil {
		return err
	}

	fmt.Printf("total=%d cached=%d downloaded=%d failed=%d duration=%s\n",
		report.Total, report.Cached, report.Downloaded, report.Failed, report.Duration)
	return nil
}

func buildRegion(opts options) (usecase.Region, error) {
	tmpl, err := resource.ParseTemplate(opts.template)
	if err != nil {
		return usecase.Region{}, err
	}

	ratio, err := resource.NewPixelRatio(opts.ratio)
	if err != nil {
		return usecase.Region{}, err
	}

	bounds, err := parseBBox(opts.bbox)
	if err != nil {
		return usecase.Region{}, err
	}

	return usecase.Region{
		Template: tmpl,
		Ratio:    ratio,
		Bounds:   bounds,
		MinZoom:  opts.minZoom,
		MaxZoom:  opts.maxZoom,
	}, nil
}

func parseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox must be minLon,minLat,maxLon,maxLat, got %q", s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox value %q: %w", p, err)
		}
		v[i] = f
	}

	return orb.Bound{
		Min: orb.Point{v[0], v[1]},
		Max: orb.Point{v[2], v[3]},
	}, nil
}
