package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"supportdesk/internal/common"
	"supportdesk/internal/services"
)

// AttachmentHandlers handles ticket attachment uploads and downloads
type AttachmentHandlers struct {
	attachmentService services.AttachmentService
}

func NewAttachmentHandlers(attachmentService services.AttachmentService) *AttachmentHandlers {
	return &AttachmentHandlers{attachmentService: attachmentService}
}

// UploadAttachment handles a multipart file upload for a ticket
func (h *AttachmentHandlers) UploadAttachment(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	ticketID, err := common.ValidateUUID(c.Param("ticketId"), "ticketId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read uploaded file")
	}
	defer src.Close()

	attachment, err := h.attachmentService.Upload(
		c.Request().Context(),
		tc,
		ticketID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		src,
		fileHeader.Size,
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, attachment)
}

// ListAttachments handles listing a ticket's attachments
func (h *AttachmentHandlers) ListAttachments(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	ticketID, err := common.ValidateUUID(c.Param("ticketId"), "ticketId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	attachments, err := h.attachmentService.List(c.Request().Context(), tc, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"attachments": attachments})
}

// DownloadAttachment handles issuing a short-lived download URL
func (h *AttachmentHandlers) DownloadAttachment(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	url, err := h.attachmentService.PresignedURL(c.Request().Context(), tc, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"url": url})
}

// DeleteAttachment handles deleting an attachment and its stored object
func (h *AttachmentHandlers) DeleteAttachment(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.attachmentService.Delete(c.Request().Context(), tc, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
