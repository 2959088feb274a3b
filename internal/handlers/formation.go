package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/requestdata"
	"github.com/formaplus/elearning-backend/internal/services"
)

type FormationHandler struct {
	log            *logger.Logger
	catalogService services.CatalogService
}

func NewFormationHandler(log *logger.Logger, catalogService services.CatalogService) *FormationHandler {
	return &FormationHandler{
		log:            log.With("handler", "FormationHandler"),
		catalogService: catalogService,
	}
}

func (h *FormationHandler) List(c *gin.Context) {
	formations, err := h.catalogService.ListAll(c.Request.Context())
	if err != nil {
		h.log.Error("List formations failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	h.catalogService.EnrichDurations(c.Request.Context(), formations)
	RespondOK(c, gin.H{"formations": formations})
}

func (h *FormationHandler) Domains(c *gin.Context) {
	domains, err := h.catalogService.DistinctDomains(c.Request.Context())
	if err != nil {
		h.log.Error("List domains failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"domains": domains})
}

func (h *FormationHandler) ListByDomain(c *gin.Context) {
	domain := c.Param("domain")
	formations, err := h.catalogService.ListByDomain(c.Request.Context(), domain)
	if err != nil {
		h.log.Error("List by domain failed", "domain", domain, "error", err)
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	if len(formations) == 0 {
		RespondOK(c, gin.H{"formations": []any{}, "notice": "Aucune formation trouvée pour le domaine : " + domain})
		return
	}
	RespondOK(c, gin.H{"formations": formations})
}

func (h *FormationHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_id", err)
		return
	}
	formation, err := h.catalogService.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"formation": formation})
}

// Download streams a stored file, or redirects when the entry references
// an external link.
func (h *FormationHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_id", err)
		return
	}
	formation, rc, err := h.catalogService.Download(c.Request.Context(), id)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	if rc == nil {
		c.Redirect(http.StatusFound, formation.Link)
		return
	}
	defer rc.Close()
	c.Header("Content-Disposition", `attachment; filename="`+formation.BucketKey+`"`)
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", rc, nil)
}

// formationInput reads the add/edit form, spooling an uploaded file into a
// temp path the service can probe.
func (h *FormationHandler) formationInput(c *gin.Context) (services.FormationInput, func(), error) {
	in := services.FormationInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Domain:      c.PostForm("domain"),
		Type:        c.PostForm("type"),
		Link:        c.PostForm("link"),
	}
	cleanup := func() {}

	file, err := c.FormFile("file")
	if err != nil {
		// No upload attached; link-only entry.
		return in, cleanup, nil
	}
	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+"_"+filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		return in, cleanup, err
	}
	in.UploadPath = tmpPath
	in.UploadName = file.Filename
	cleanup = func() { _ = os.Remove(tmpPath) }
	return in, cleanup, nil
}

func (h *FormationHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	in, cleanup, err := h.formationInput(c)
	defer cleanup()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_upload", err)
		return
	}
	formation, err := h.catalogService.Create(c.Request.Context(), rd.Role, rd.UserID, in)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"formation": formation})
}

// CreatePersonal lets a learner add their own formation.
func (h *FormationHandler) CreatePersonal(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	in, cleanup, err := h.formationInput(c)
	defer cleanup()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_upload", err)
		return
	}
	formation, err := h.catalogService.CreatePersonal(c.Request.Context(), rd.Role, rd.UserID, in)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"formation": formation})
}

func (h *FormationHandler) Update(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_id", err)
		return
	}
	in, cleanup, err := h.formationInput(c)
	defer cleanup()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_upload", err)
		return
	}
	formation, err := h.catalogService.Update(c.Request.Context(), rd.Role, rd.UserID, id, in)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"formation": formation})
}

func (h *FormationHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_id", err)
		return
	}
	if err := h.catalogService.Delete(c.Request.Context(), rd.Role, rd.UserID, id); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
