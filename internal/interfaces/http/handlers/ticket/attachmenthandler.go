package ticket

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/id"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
	"github.com/orris-inc/ticketdesk/internal/shared/utils"
)

type AttachmentHandler struct {
	uploadAttachmentUC usecases.UploadAttachmentExecutor
	deleteAttachmentUC usecases.DeleteAttachmentExecutor
	openAttachmentUC   usecases.OpenAttachmentExecutor
	maxUploadBytes     int64
	logger             logger.Interface
}

func NewAttachmentHandler(
	uploadAttachmentUC usecases.UploadAttachmentExecutor,
	deleteAttachmentUC usecases.DeleteAttachmentExecutor,
	openAttachmentUC usecases.OpenAttachmentExecutor,
	maxUploadBytes int64,
	logger logger.Interface,
) *AttachmentHandler {
	return &AttachmentHandler{
		uploadAttachmentUC: uploadAttachmentUC,
		deleteAttachmentUC: deleteAttachmentUC,
		openAttachmentUC:   openAttachmentUC,
		maxUploadBytes:     maxUploadBytes,
		logger:             logger,
	}
}

// UploadAttachment handles POST /api/tickets/:id/entries/:entryId/attachments
// with the file in multipart field "file".
func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	ticketID, entryID, err := parseEntryPath(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	limitBody(c, h.maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		h.logger.Warnw("invalid multipart body for upload", "ticket_id", ticketID, "entry_id", entryID, "error", err)
		utils.ErrorResponseWithError(c, multipartError(err, h.maxUploadBytes))
		return
	}
	defer func() { _ = form.RemoveAll() }()

	headers := form.File["file"]
	if len(headers) == 0 {
		utils.ErrorResponseWithError(c, errors.NewValidationError("file is required", "field=file"))
		return
	}

	files, opened, err := openUploads(headers[:1])
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	defer opened.Close()

	result, err := h.uploadAttachmentUC.Execute(c.Request.Context(), usecases.UploadAttachmentCommand{
		TicketID: ticketID,
		EntryID:  entryID,
		File:     files[0],
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, UploadAttachmentResponse{
		Attachment: result.Attachment,
		Ticket:     result.Ticket,
	}, "Attachment uploaded successfully")
}

// DeleteAttachment handles DELETE /api/tickets/:id/entries/:entryId/attachments/:attachmentId
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	ticketID, entryID, err := parseEntryPath(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	attachmentID, err := utils.ParseSIDParam(c, "attachmentId", id.PrefixAttachment, "attachment")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.deleteAttachmentUC.Execute(c.Request.Context(), usecases.DeleteAttachmentCommand{
		TicketID:     ticketID,
		EntryID:      entryID,
		AttachmentID: attachmentID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Attachment deleted successfully", result)
}

// Download handles GET /uploads/:storageName
func (h *AttachmentHandler) Download(c *gin.Context) {
	result, err := h.openAttachmentUC.Execute(c.Request.Context(), usecases.OpenAttachmentQuery{
		StorageName: c.Param("storageName"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	defer result.Content.Close()

	headers := map[string]string{
		"Content-Disposition":    mime.FormatMediaType("inline", map[string]string{"filename": result.OriginalName}),
		"X-Content-Type-Options": "nosniff",
	}
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.ContentType, result.Content, headers)
}
