package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/navmenu-api/internal/middleware"
	"github.com/noah-isme/navmenu-api/internal/models"
	"github.com/noah-isme/navmenu-api/internal/service"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
	"github.com/noah-isme/navmenu-api/pkg/response"
)

type viewerLoader interface {
	Load(ctx context.Context, userID string) (*models.ViewerContext, error)
}

// NavigationHandler serves the assembled render model for a placement.
type NavigationHandler struct {
	service         *service.NavigationService
	viewers         viewerLoader
	defaultLanguage string
}

// NewNavigationHandler constructs a navigation handler.
func NewNavigationHandler(svc *service.NavigationService, viewers viewerLoader, defaultLanguage string) *NavigationHandler {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &NavigationHandler{service: svc, viewers: viewers, defaultLanguage: defaultLanguage}
}

// Render godoc
// @Summary Render navigation for a placement
// @Description Assemble the visible, ordered menus for the current viewer
// @Tags Navigation
// @Produce json
// @Param placement query string true "Placement tag"
// @Success 200 {object} response.Envelope
// @Router /navigation [get]
func (h *NavigationHandler) Render(c *gin.Context) {
	placement := c.Query("placement")
	if placement == "" {
		response.Error(c, appErrors.Validation(map[string]string{"placement": "field is required"}))
		return
	}

	viewer, err := h.resolveViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	model, cacheHit, err := h.service.Assemble(c.Request.Context(), placement, viewer)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := map[string]interface{}{"cache_hit": cacheHit}
	if len(model.Warnings) > 0 {
		meta["warnings"] = model.Warnings
	}
	response.JSON(c, http.StatusOK, model, nil, meta)
}

// resolveViewer builds the viewer context: authenticated users get their
// roles, cohorts and language from the provider; anonymous viewers get empty
// sets and a language from the request.
func (h *NavigationHandler) resolveViewer(c *gin.Context) (models.ViewerContext, error) {
	claims, ok := middleware.Claims(c)
	if !ok {
		return models.ViewerContext{
			Language: h.requestLanguage(c),
			Now:      time.Now().UTC(),
		}, nil
	}

	viewer, err := h.viewers.Load(c.Request.Context(), claims.UserID)
	if err != nil {
		return models.ViewerContext{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load viewer context")
	}
	if viewer.Language == "" {
		viewer.Language = h.requestLanguage(c)
	}
	return *viewer, nil
}

func (h *NavigationHandler) requestLanguage(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return lang
	}
	if accept := c.GetHeader("Accept-Language"); accept != "" {
		first := strings.SplitN(accept, ",", 2)[0]
		if tag := strings.TrimSpace(strings.SplitN(first, ";", 2)[0]); tag != "" {
			return tag
		}
	}
	return h.defaultLanguage
}
