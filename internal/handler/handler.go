package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/auth"
	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/dto"
	"github.com/BarkinBalci/socials-sync-service/internal/service"
)

// TokenVerifier resolves bearer tokens into identities
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type Handler struct {
	socialService service.SocialServicer
	verifier      TokenVerifier
	router        *gin.Engine
	upgrader      websocket.Upgrader
	log           *zap.Logger
}

func NewHandler(socialService service.SocialServicer, verifier TokenVerifier, log *zap.Logger) *Handler {
	h := &Handler{
		socialService: socialService,
		verifier:      verifier,
		router:        gin.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		log: log,
	}

	h.router.Use(gin.Recovery())
	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	socials := h.router.Group("/socials", h.authenticate)
	socials.GET("", h.listSocials)
	socials.GET("/stream", h.streamSocials)
	socials.POST("", h.createSocial)
	socials.POST("/:id/interest", h.toggleInterest)
	socials.DELETE("/:id", h.deleteSocial)
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// authenticate resolves the bearer token (or access_token query parameter, for
// websocket clients) and stores the identity in the request context
func (h *Handler) authenticate(c *gin.Context) {
	var token string
	if header := c.GetHeader("Authorization"); header != "" {
		var ok bool
		token, ok = strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "unauthenticated",
				Message: "unsupported authorization scheme",
			})
			return
		}
	} else {
		token = c.Query("access_token")
	}
	if strings.TrimSpace(token) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "unauthenticated",
			Message: "missing bearer token",
		})
		return
	}

	identity, err := h.verifier.Verify(token)
	if err != nil {
		h.log.Warn("Rejected bearer token", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "unauthenticated",
			Message: err.Error(),
		})
		return
	}

	c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
	c.Next()
}

// listSocials handles GET /socials
func (h *Handler) listSocials(c *gin.Context) {
	snapshot, err := h.socialService.CurrentSnapshot(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	user, _ := auth.CurrentUser(c.Request.Context())
	c.JSON(http.StatusOK, service.BuildSnapshotResponse(snapshot, user.Key(), nil))
}

// createSocial handles POST /socials
func (h *Handler) createSocial(c *gin.Context) {
	var req dto.CreateSocialRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid social request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.socialService.CreateSocial(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// toggleInterest handles POST /socials/:id/interest
func (h *Handler) toggleInterest(c *gin.Context) {
	resp, err := h.socialService.ToggleInterest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// deleteSocial handles DELETE /socials/:id
func (h *Handler) deleteSocial(c *gin.Context) {
	if err := h.socialService.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// writeError maps the error taxonomy onto HTTP statuses
func (h *Handler) writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"

	var syncErr *domain.SyncFailure
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrInvalidSocial):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusForbidden, "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConcurrentModification):
		status, code = http.StatusConflict, "concurrent_modification"
	case errors.As(err, &syncErr):
		status, code = http.StatusServiceUnavailable, "sync_failure"
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}
