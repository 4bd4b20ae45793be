package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/navmenu-api/internal/models"
	"github.com/noah-isme/navmenu-api/internal/service"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
	"github.com/noah-isme/navmenu-api/pkg/response"
)

// MenuHandler exposes menu configuration endpoints.
type MenuHandler struct {
	service *service.MenuService
}

// NewMenuHandler constructs a menu handler.
func NewMenuHandler(svc *service.MenuService) *MenuHandler {
	return &MenuHandler{service: svc}
}

// List godoc
// @Summary List menus
// @Description List configured menus with filters
// @Tags Menus
// @Produce json
// @Param location query string false "Filter by placement tag"
// @Param type query string false "Filter by menu type"
// @Param search query string false "Search in titles"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /menus [get]
func (h *MenuHandler) List(c *gin.Context) {
	var filter models.MenuFilter
	filter.Location = c.Query("location")
	if menuType := c.Query("type"); menuType != "" {
		filter.Type = models.MenuType(menuType)
	}
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	menus, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, menus, pagination)
}

// Get godoc
// @Summary Get menu
// @Tags Menus
// @Produce json
// @Param id path string true "Menu ID"
// @Success 200 {object} response.Envelope
// @Router /menus/{id} [get]
func (h *MenuHandler) Get(c *gin.Context) {
	menu, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, menu, nil)
}

// Create godoc
// @Summary Create menu
// @Tags Menus
// @Accept json
// @Produce json
// @Param payload body service.MenuPayload true "Menu payload"
// @Success 201 {object} response.Envelope
// @Router /menus [post]
func (h *MenuHandler) Create(c *gin.Context) {
	var req service.MenuPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	menu, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, menu)
}

// Update godoc
// @Summary Update menu
// @Tags Menus
// @Accept json
// @Produce json
// @Param id path string true "Menu ID"
// @Param payload body service.MenuPayload true "Menu payload"
// @Success 200 {object} response.Envelope
// @Router /menus/{id} [put]
func (h *MenuHandler) Update(c *gin.Context) {
	var req service.MenuPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	menu, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, menu, nil)
}

// Delete godoc
// @Summary Delete menu
// @Description Delete a menu and every item it owns
// @Tags Menus
// @Produce json
// @Param id path string true "Menu ID"
// @Success 204
// @Router /menus/{id} [delete]
func (h *MenuHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
