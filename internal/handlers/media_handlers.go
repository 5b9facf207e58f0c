package handlers

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"sitecms/internal/common"
	"sitecms/internal/services"
)

type MediaHandlers struct {
	mediaService services.MediaService
}

func NewMediaHandlers(mediaService services.MediaService) *MediaHandlers {
	return &MediaHandlers{mediaService: mediaService}
}

// Upload stores an image for use in collection items.
//
// @Summary Upload an image
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 201 {object} models.MediaObject
// @Failure 400 {object} common.ErrorResponse
// @Failure 401 {object} common.ErrorResponse
// @Router /api/media [post]
func (h *MediaHandlers) Upload(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	file, err := c.FormFile("file")
	if err != nil {
		return common.SendClientError(c, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendClientError(c, "cannot read upload")
	}
	defer src.Close()

	obj, err := h.mediaService.Upload(c.Request().Context(), tenantID, file.Filename, file.Header.Get(echo.HeaderContentType), file.Size, src)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, obj)
}

// MediaURL is a fresh link to an uploaded image.
type MediaURL struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// URL issues a new presigned link for an uploaded image, for pages whose
// stored link has expired.
//
// @Summary Refresh an image link
// @Tags media
// @Produce json
// @Param key path string true "Object key"
// @Success 200 {object} MediaURL
// @Failure 404 {object} common.ErrorResponse
// @Router /api/media/{key} [get]
func (h *MediaHandlers) URL(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	key, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return common.SendClientError(c, "invalid key")
	}
	u, err := h.mediaService.URL(c.Request().Context(), tenantID, key)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, MediaURL{Key: key, URL: u})
}

// Delete removes an uploaded image.
//
// @Summary Delete an image
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param key path string true "Object key"
// @Success 200 {object} common.SuccessResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /api/media/{key} [delete]
func (h *MediaHandlers) Delete(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	key, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return common.SendClientError(c, "invalid key")
	}
	if err := h.mediaService.Delete(c.Request().Context(), tenantID, key); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, common.SuccessResponse{Success: true, ID: key})
}
