package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/requestdata"
	"github.com/formaplus/elearning-backend/internal/services"
)

type SelectionHandler struct {
	log              *logger.Logger
	selectionService services.SelectionService
}

func NewSelectionHandler(log *logger.Logger, selectionService services.SelectionService) *SelectionHandler {
	return &SelectionHandler{
		log:              log.With("handler", "SelectionHandler"),
		selectionService: selectionService,
	}
}

func (h *SelectionHandler) Select(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_id", err)
		return
	}
	created, formation, err := h.selectionService.Select(c.Request.Context(), rd.Role, rd.UserID, id)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"created": created, "formation": formation})
}

func (h *SelectionHandler) ListMine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	formations, err := h.selectionService.ListSelections(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("List selections failed", "user_id", rd.UserID, "error", err)
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"formations": formations})
}
