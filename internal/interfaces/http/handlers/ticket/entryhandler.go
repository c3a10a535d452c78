package ticket

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
	"github.com/orris-inc/ticketdesk/internal/shared/utils"
)

type EntryHandler struct {
	addEntryUC     usecases.AddEntryExecutor
	updateEntryUC  usecases.UpdateEntryExecutor
	deleteEntryUC  usecases.DeleteEntryExecutor
	saveEntryUC    usecases.SaveEntryExecutor
	maxUploadBytes int64
	logger         logger.Interface
}

func NewEntryHandler(
	addEntryUC usecases.AddEntryExecutor,
	updateEntryUC usecases.UpdateEntryExecutor,
	deleteEntryUC usecases.DeleteEntryExecutor,
	saveEntryUC usecases.SaveEntryExecutor,
	maxUploadBytes int64,
	logger logger.Interface,
) *EntryHandler {
	return &EntryHandler{
		addEntryUC:     addEntryUC,
		updateEntryUC:  updateEntryUC,
		deleteEntryUC:  deleteEntryUC,
		saveEntryUC:    saveEntryUC,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// AddEntry handles POST /api/tickets/:id/entries
func (h *EntryHandler) AddEntry(c *gin.Context) {
	ticketID, err := parseTicketID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for add entry", "ticket_id", ticketID, "error", err)
		utils.ErrorResponseWithError(c, utils.BindError(err))
		return
	}

	result, err := h.addEntryUC.Execute(c.Request.Context(), usecases.AddEntryCommand{
		TicketID: ticketID,
		Step:     req.Step,
		Solution: req.Solution,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, AddEntryResponse{EntryID: result.EntryID, Ticket: result.Ticket}, "Entry added successfully")
}

// UpdateEntry handles PATCH /api/tickets/:id/entries/:entryId
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	ticketID, entryID, err := parseEntryPath(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update entry", "ticket_id", ticketID, "entry_id", entryID, "error", err)
		utils.ErrorResponseWithError(c, utils.BindError(err))
		return
	}

	result, err := h.updateEntryUC.Execute(c.Request.Context(), usecases.UpdateEntryCommand{
		TicketID: ticketID,
		EntryID:  entryID,
		Step:     req.Step,
		Solution: req.Solution,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Entry updated successfully", result)
}

// DeleteEntry handles DELETE /api/tickets/:id/entries/:entryId
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	ticketID, entryID, err := parseEntryPath(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.deleteEntryUC.Execute(c.Request.Context(), usecases.DeleteEntryCommand{
		TicketID: ticketID,
		EntryID:  entryID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Entry deleted successfully", result)
}

// SaveEntry handles PUT /api/tickets/:id/entries/:entryId, the editor's
// combined save. Multipart fields: step, solution, remove_attachment_ids[]
// and files[]. Omitted text fields are left unchanged.
func (h *EntryHandler) SaveEntry(c *gin.Context) {
	ticketID, entryID, err := parseEntryPath(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	limitBody(c, h.maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		h.logger.Warnw("invalid multipart body for save entry", "ticket_id", ticketID, "entry_id", entryID, "error", err)
		utils.ErrorResponseWithError(c, multipartError(err, h.maxUploadBytes))
		return
	}
	defer func() { _ = form.RemoveAll() }()

	cmd := usecases.SaveEntryCommand{
		TicketID:            ticketID,
		EntryID:             entryID,
		RemoveAttachmentIDs: formValues(form, "remove_attachment_ids[]", "remove_attachment_ids"),
	}
	if v, ok := form.Value["step"]; ok && len(v) > 0 {
		cmd.Step = &v[0]
	}
	if v, ok := form.Value["solution"]; ok && len(v) > 0 {
		cmd.Solution = &v[0]
	}

	files, opened, err := openUploads(formFiles(form, "files[]", "files"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	defer opened.Close()
	cmd.Files = files

	result, err := h.saveEntryUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Entry saved successfully", SaveEntryResponse{
		Ticket:               result.Ticket,
		AddedAttachmentIDs:   result.AddedAttachmentIDs,
		RemovedAttachmentIDs: result.RemovedAttachmentIDs,
		OrphanedFiles:        result.OrphanedFiles,
	})
}
