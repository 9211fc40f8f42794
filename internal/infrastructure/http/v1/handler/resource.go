package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/internal/usecase"
)

const maxResourceSize = 16 << 20

func (h *Handler) Tile(c *gin.Context) {
	l := requestLogger(c)

	d, err := h.descriptorFromRequest(c)
	if err != nil {
		l.Warn("invalid tile request", "path", c.Request.URL.Path, "query", c.Request.URL.RawQuery, "error", err)
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	data, src, err := h.resourceUseCase.Get(c.Request.Context(), d)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		l.Error("failed to get tile", "key", d.String(), "url", d.Resolve(), "error", err)
		c.Error(err)
		h.RespondWithJSON(c, http.StatusBadGateway, ErrUpstream.Error(), nil)
		return
	}

	c.Header("X-Resource-Source", string(src))
	c.Header("X-Resource-Key", d.CanonicalKey().Digest())
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func (h *Handler) PutTile(c *gin.Context) {
	l := requestLogger(c)

	d, err := h.descriptorFromRequest(c)
	if err != nil {
		l.Warn("invalid tile put", "path", c.Request.URL.Path, "error", err)
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	data, err := readBody(c)
	if err != nil {
		requestLogger(c).Warn("failed to read resource body", "path", c.Request.URL.Path, "error", err)
		h.respondWithBodyError(c, err)
		return
	}

	if err := h.resourceUseCase.PutTile(c.Request.Context(), d, data); err != nil {
		h.RespondWithInternalServerError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "stored tile", gin.H{
		"key":  d.CanonicalKey().Digest(),
		"size": len(data),
	})
}

func (h *Handler) PutResource(c *gin.Context) {
	url := c.Query("url")

	data, err := readBody(c)
	if err != nil {
		requestLogger(c).Warn("failed to read resource body", "path", c.Request.URL.Path, "error", err)
		h.respondWithBodyError(c, err)
		return
	}

	if err := h.resourceUseCase.PutURL(c.Request.Context(), url, data); err != nil {
		if errors.Is(err, usecase.ErrEmptyURL) {
			h.RespondWithError(c, http.StatusBadRequest, err)
			return
		}
		h.RespondWithInternalServerError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "stored resource", gin.H{
		"key":  resource.URLKey(url).Digest(),
		"size": len(data),
	})
}

func (h *Handler) ClearCache(c *gin.Context) {
	if err := h.resourceUseCase.Clear(c.Request.Context()); err != nil {
		h.RespondWithInternalServerError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "cache cleared", nil)
}

func (h *Handler) descriptorFromRequest(c *gin.Context) (resource.Descriptor, error) {
	strX := c.Param("x")
	strY := c.Param("y")
	strZ := c.Param("z")

	x, err := strconv.Atoi(strX)
	if err != nil {
		return resource.Descriptor{}, errors.New("x should be integer")
	}

	y, err := strconv.Atoi(strY)
	if err != nil {
		return resource.Descriptor{}, errors.New("y should be integer")
	}

	z, err := strconv.Atoi(strZ)
	if err != nil {
		return resource.Descriptor{}, errors.New("z should be integer")
	}

	tmpl, err := h.templateFromRequest(c.Query("template"))
	if err != nil {
		return resource.Descriptor{}, err
	}

	ratioValue := 1.0
	if strRatio := c.Query("ratio"); strRatio != "" {
		ratioValue, err = strconv.ParseFloat(strRatio, 64)
		if err != nil {
			return resource.Descriptor{}, errors.New("ratio should be a number")
		}
	}

	ratio, err := resource.NewPixelRatio(ratioValue)
	if err != nil {
		return resource.Descriptor{}, err
	}

	coord, err := resource.NewTileCoordinate(x, y, z)
	if err != nil {
		return resource.Descriptor{}, err
	}

	return resource.NewDescriptor(tmpl, ratio, coord)
}

func (h *Handler) templateFromRequest(pattern string) (*resource.Template, error) {
	if pattern == "" {
		if h.defaultTemplate == nil {
			return nil, ErrMissingTemplate
		}
		return h.defaultTemplate, nil
	}
	return resource.ParseTemplate(pattern)
}

// readBody reads at most maxResourceSize bytes and fails with
// ErrResourceTooLarge instead of returning a truncated body.
func readBody(c *gin.Context) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxResourceSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxResourceSize {
		return nil, ErrResourceTooLarge
	}
	return data, nil
}

func (h *Handler) respondWithBodyError(c *gin.Context, err error) {
	if errors.Is(err, ErrResourceTooLarge) {
		h.RespondWithError(c, http.StatusRequestEntityTooLarge, err)
		return
	}
	h.RespondWithError(c, http.StatusBadRequest, ErrFailedToReadRequestBody)
}
