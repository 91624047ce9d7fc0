package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pricing-compliance-portal/internal/database"
	"pricing-compliance-portal/internal/ingest"
	"pricing-compliance-portal/internal/models"
	"pricing-compliance-portal/internal/ratelimit"
	"pricing-compliance-portal/internal/search"
)

// UploadHandler serves the ingestion endpoint and the read API over
// ingested projects and units.
type UploadHandler struct {
	store          database.Store
	orchestrator   *ingest.Orchestrator
	limiter        *ratelimit.RateLimiter
	search         *search.SearchClient
	maxUploadBytes int64
}

// NewUploadHandler creates an upload handler. search may be nil.
func NewUploadHandler(store database.Store, orch *ingest.Orchestrator, limiter *ratelimit.RateLimiter, searchClient *search.SearchClient, maxUploadBytes int64) *UploadHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &UploadHandler{
		store:          store,
		orchestrator:   orch,
		limiter:        limiter,
		search:         searchClient,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload ingests one price-data file for the calling account.
// Form fields: file (required), project_id or project_name (optional).
func (h *UploadHandler) Upload(c *gin.Context) {
	owner := Owner(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "file too large",
			"limit": h.maxUploadBytes,
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	// The pipeline works on a fully buffered file; streaming is out of scope
	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	hint := ingest.TargetHint{
		ProjectID: c.PostForm("project_id"),
		NameHint:  c.PostForm("project_name"),
	}
	batch := ingest.RawBatch{FileName: fileHeader.Filename, Data: data}

	result, err := h.orchestrator.Ingest(c.Request.Context(), owner, batch, hint)
	if err != nil {
		status := http.StatusInternalServerError
		body := gin.H{"error": err.Error()}
		switch {
		case errors.Is(err, ingest.ErrUnsupportedFileType),
			errors.Is(err, ingest.ErrMalformedData):
			status = http.StatusBadRequest
		case errors.Is(err, ingest.ErrTargetNotOwned):
			status = http.StatusForbidden
		case errors.Is(err, ingest.ErrPersistenceFailed):
			// The project may have been emptied; a re-upload recovers it
			status = http.StatusServiceUnavailable
			body["retryable"] = true
		case errors.Is(err, ingest.ErrTargetResolutionFailed):
			status = http.StatusInternalServerError
		}
		log.Printf("[upload] owner=%s file=%s failed: %v", owner, fileHeader.Filename, err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListProjects returns the calling account's projects
func (h *UploadHandler) ListProjects(c *gin.Context) {
	projects, err := h.store.ListProjects(Owner(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProjectUnits returns a page of one project's units
func (h *UploadHandler) GetProjectUnits(c *gin.Context) {
	project, err := h.store.GetProject(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if project == nil || project.OwnerID != Owner(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	units, total, err := h.store.GetProjectUnits(project.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"units":   units,
		"total":   total,
	})
}

// RecentUploads returns the calling account's latest upload logs
func (h *UploadHandler) RecentUploads(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	logs, err := h.store.RecentUploadLogs(Owner(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploads": logs,
		"count":   len(logs),
	})
}

// RateLimitStats returns current upload quota usage for the account
func (h *UploadHandler) RateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.limiter.GetStats(Owner(c)))
}

// Reindex rebuilds the search index from the database, project by project
func (h *UploadHandler) Reindex(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not configured"})
		return
	}

	units, err := h.store.AllUnits()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byProject := make(map[string][]models.Unit)
	for _, u := range units {
		byProject[u.ProjectID] = append(byProject[u.ProjectID], u)
	}

	reindexed, failed := 0, 0
	for projectID, projectUnits := range byProject {
		if err := h.search.ReplaceProjectUnits(projectID, projectUnits); err != nil {
			log.Printf("[search] Failed to reindex project %s: %v", projectID, err)
			failed++
			continue
		}
		reindexed++
	}

	c.JSON(http.StatusOK, gin.H{
		"projects_reindexed": reindexed,
		"projects_failed":    failed,
		"units_total":        len(units),
	})
}

// SearchUnits queries the search index, scoped to the calling account
func (h *UploadHandler) SearchUnits(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not configured"})
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	req := search.SearchRequest{
		OwnerID: Owner(c),
		Query:   c.Query("q"),
		Limit:   limit,
		Offset:  offset,
		Status:  c.Query("status"),
		Kind:    c.Query("kind"),
	}
	if v := c.Query("min_price_m2"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.MinPriceM2 = &f
		}
	}
	if v := c.Query("max_price_m2"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.MaxPriceM2 = &f
		}
	}

	result, err := h.search.Search(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
