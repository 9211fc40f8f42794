package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/internal/usecase"
	"github.com/jaennil/guide_helper/backend/offline/pkg/logger"
)

const (
	internalServerErrorText = "the server encountered an error and could not process your request"
)

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type Handler struct {
	validate        *validator.Validate
	resourceUseCase *usecase.ResourceUseCase
	defaultTemplate *resource.Template
}

// NewHandler takes the template used when a request names none; it may be nil.
func NewHandler(v *validator.Validate, uc *usecase.ResourceUseCase, defaultTemplate *resource.Template) *Handler {
	return &Handler{
		validate:        v,
		resourceUseCase: uc,
		defaultTemplate: defaultTemplate,
	}
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, "OK")
}

func (h *Handler) RespondWithInternalServerError(c *gin.Context, err error) {
	requestLogger(c).Error("internal server error",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	)
	c.Error(err)
	h.RespondWithJSON(c, http.StatusInternalServerError, internalServerErrorText, nil)
}

func (h *Handler) RespondWithError(c *gin.Context, code int, err error) {
	c.Error(err)
	h.RespondWithJSON(c, code, err.Error(), nil)
}

func (h *Handler) RespondWithJSON(c *gin.Context, code int, message string, data any) {
	success := code < 400

	r := response{
		Success: success,
		Message: message,
		Data:    data,
	}

	c.JSON(code, r)
}

func requestLogger(c *gin.Context) logger.Logger {
	if l, ok := c.Get("logger"); ok {
		if l, ok := l.(logger.Logger); ok {
			return l
		}
	}
	return logger.FromContext(c.Request.Context())
}
