package ticket

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
	"github.com/orris-inc/ticketdesk/internal/shared/utils"
)

type SearchHandler struct {
	searchEntriesUC usecases.SearchEntriesExecutor
	logger          logger.Interface
}

func NewSearchHandler(searchEntriesUC usecases.SearchEntriesExecutor, logger logger.Interface) *SearchHandler {
	return &SearchHandler{
		searchEntriesUC: searchEntriesUC,
		logger:          logger,
	}
}

// Search handles GET /api/search?q=&limit=
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warnw("invalid search query", "error", err)
		utils.ErrorResponseWithError(c, utils.BindError(err))
		return
	}

	result, err := h.searchEntriesUC.Execute(c.Request.Context(), req.ToQuery())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", SearchResponse{
		Query: result.Query,
		Total: result.Total,
		Hits:  result.Hits,
	})
}
