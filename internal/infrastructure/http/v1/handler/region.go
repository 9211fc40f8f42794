package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaennil/guide_helper/backend/offline/internal/infrastructure/http/v1/dto"
	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/internal/usecase"
	"github.com/paulmach/orb"
)

func (h *Handler) SeedRegion(c *gin.Context) {
	l := requestLogger(c)

	var req dto.RegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, ErrFailedToDecodeRequestBody)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		l.Warn("invalid region request", "error", err)
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	region, err := h.regionFromRequest(req)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	report, err := h.resourceUseCase.Seed(c.Request.Context(), region)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidRegion), errors.Is(err, usecase.ErrTileCountLimitExceeded):
			h.RespondWithError(c, http.StatusUnprocessableEntity, err)
		default:
			h.RespondWithInternalServerError(c, err)
		}
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "region seeded", dto.RegionResponse{
		Total:      report.Total,
		Cached:     report.Cached,
		Downloaded: report.Downloaded,
		Failed:     report.Failed,
		Duration:   report.Duration.String(),
	})
}

func (h *Handler) regionFromRequest(req dto.RegionRequest) (usecase.Region, error) {
	tmpl, err := h.templateFromRequest(req.Template)
	if err != nil {
		return usecase.Region{}, err
	}

	if req.Ratio == 0 {
		req.Ratio = 1
	}
	ratio, err := resource.NewPixelRatio(req.Ratio)
	if err != nil {
		return usecase.Region{}, err
	}

	return usecase.Region{
		Template: tmpl,
		Ratio:    ratio,
		Bounds: orb.Bound{
			Min: orb.Point{req.Bounds.MinLon, req.Bounds.MinLat},
			Max: orb.Point{req.Bounds.MaxLon, req.Bounds.MaxLat},
		},
		MinZoom: req.MinZoom,
		MaxZoom: req.MaxZoom,
	}, nil
}
