package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/navmenu-api/internal/service"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
	"github.com/noah-isme/navmenu-api/pkg/response"
)

// MenuItemHandler exposes menu item configuration endpoints.
type MenuItemHandler struct {
	service *service.MenuItemService
}

// NewMenuItemHandler constructs a menu item handler.
func NewMenuItemHandler(svc *service.MenuItemService) *MenuItemHandler {
	return &MenuItemHandler{service: svc}
}

// ListByMenu godoc
// @Summary List menu items
// @Tags Menu Items
// @Produce json
// @Param id path string true "Menu ID"
// @Success 200 {object} response.Envelope
// @Router /menus/{id}/items [get]
func (h *MenuItemHandler) ListByMenu(c *gin.Context) {
	items, err := h.service.ListByMenu(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create menu item
// @Tags Menu Items
// @Accept json
// @Produce json
// @Param id path string true "Menu ID"
// @Param payload body service.MenuItemPayload true "Item payload"
// @Success 201 {object} response.Envelope
// @Router /menus/{id}/items [post]
func (h *MenuItemHandler) Create(c *gin.Context) {
	var req service.MenuItemPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Get godoc
// @Summary Get menu item
// @Tags Menu Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Router /items/{id} [get]
func (h *MenuItemHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update menu item
// @Tags Menu Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body service.MenuItemPayload true "Item payload"
// @Success 200 {object} response.Envelope
// @Router /items/{id} [put]
func (h *MenuItemHandler) Update(c *gin.Context) {
	var req service.MenuItemPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete menu item
// @Tags Menu Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 204
// @Router /items/{id} [delete]
func (h *MenuItemHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
