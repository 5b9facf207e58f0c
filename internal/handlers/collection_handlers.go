package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sitecms/internal/common"
	"sitecms/internal/metrics"
	"sitecms/internal/services"
)

type CollectionHandlers struct {
	collectionService services.CollectionService
}

func NewCollectionHandlers(collectionService services.CollectionService) *CollectionHandlers {
	return &CollectionHandlers{collectionService: collectionService}
}

// CollectionRequest is the body of POST /api/collections.
type CollectionRequest struct {
	Action         string         `json:"action"`
	CollectionName string         `json:"collectionName"`
	Item           map[string]any `json:"item"`
}

// ListItems returns the items of one collection, newest first.
//
// @Summary List collection items
// @Tags collections
// @Produce json
// @Param name query string true "Collection name"
// @Success 200 {array} map[string]interface{}
// @Failure 400 {object} common.ErrorResponse
// @Failure 500 {object} common.ErrorResponse
// @Router /api/collections [get]
func (h *CollectionHandlers) ListItems(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	name := c.QueryParam("name")
	if name == "" {
		return common.SendClientError(c, "Collection name is required")
	}

	items, err := h.collectionService.List(c.Request().Context(), tenantID, name)
	if err != nil {
		return common.SendError(c, err)
	}
	metrics.RecordCollectionOperation("list")
	return c.JSON(http.StatusOK, items)
}

// MutateItem saves or deletes one collection item.
//
// @Summary Save or delete a collection item
// @Tags collections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CollectionRequest true "Action"
// @Success 200 {object} common.SuccessResponse
// @Failure 400 {object} common.ErrorResponse
// @Failure 401 {object} common.ErrorResponse
// @Failure 500 {object} common.ErrorResponse
// @Router /api/collections [post]
func (h *CollectionHandlers) MutateItem(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req CollectionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.CollectionName == "" || req.Action == "" {
		return common.SendClientError(c, "Collection name and action are required")
	}

	id, err := h.collectionService.Apply(c.Request().Context(), tenantID, req.Action, req.CollectionName, req.Item)
	if err != nil {
		return common.SendError(c, err)
	}
	metrics.RecordCollectionOperation(req.Action)
	return c.JSON(http.StatusOK, common.SuccessResponse{Success: true, ID: id})
}
