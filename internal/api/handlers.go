package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quillmed/chartextract/internal/audit"
	"github.com/quillmed/chartextract/internal/auth"
	"github.com/quillmed/chartextract/internal/parse"
	"github.com/quillmed/chartextract/internal/record"
	"github.com/quillmed/chartextract/internal/search"
	"github.com/quillmed/chartextract/internal/store"
)

type Handler struct {
	parser  *parse.Parser
	store   store.Service
	archive store.ArchiveService
	search  search.Service
	auth    auth.Service
	audit   audit.Service
	logger  *zap.Logger
}

func NewHandler(
	parser *parse.Parser,
	storeService store.Service,
	archiveService store.ArchiveService,
	searchService search.Service,
	authService auth.Service,
	auditService audit.Service,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		parser:  parser,
		store:   storeService,
		archive: archiveService,
		search:  searchService,
		auth:    authService,
		audit:   auditService,
		logger:  logger,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type parseRequest struct {
	Text string `json:"text" binding:"required"`
}

// ParseDocument runs the extractor without persisting anything. This is
// the stateless text-in, record-out endpoint.
func (h *Handler) ParseDocument(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	rec := h.parser.Parse(req.Text)

	h.audit.LogEvent(c.Request.Context(), &audit.Event{
		EventType: audit.EventParse,
		UserID:    c.GetString("username"),
		Action:    "PARSE",
		Resource:  "document",
		RequestID: c.GetString("request_id"),
		Status:    "success",
	})

	c.JSON(http.StatusOK, gin.H{
		"record":  rec,
		"summary": record.FormatSummary(rec),
	})
}

type createDocumentRequest struct {
	Text       string `json:"text" binding:"required"`
	SourceFile string `json:"source_file"`
}

// CreateDocument parses a document and persists the resulting record,
// archiving the raw text and indexing the summary for search. A document
// whose (title, date) already exists is rejected as a duplicate.
func (h *Handler) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	rec := h.parser.Parse(req.Text)
	rec.SourceFile = req.SourceFile

	if err := rec.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no extractable fields in document"})
		return
	}

	ctx := c.Request.Context()

	if _, err := h.store.FindByTitleAndDate(ctx, rec.Title(), rec.VisitDate); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "record with same title and date already exists"})
		return
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		h.internalError(c, "dedup check failed", err)
		return
	}

	if err := h.store.Create(ctx, rec); err != nil {
		h.internalError(c, "failed to store record", err)
		return
	}

	if err := h.archive.Archive(ctx, &store.ArchivedDocument{
		RecordID:   rec.ID,
		SourceFile: req.SourceFile,
		RawText:    req.Text,
	}); err != nil {
		h.logger.Warn("failed to archive raw text", zap.String("record_id", rec.ID), zap.Error(err))
	}

	if err := h.search.IndexRecord(ctx, rec); err != nil {
		h.logger.Warn("failed to index record", zap.String("record_id", rec.ID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{"record": rec})
}

func (h *Handler) GetRecord(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		h.internalError(c, "failed to load record", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) GetRecordSummary(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		h.internalError(c, "failed to load record", err)
		return
	}

	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(record.FormatSummary(rec)))
}

func (h *Handler) ListRecords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.internalError(c, "failed to list records", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		h.internalError(c, "failed to delete record", err)
		return
	}

	if err := h.search.DeleteRecord(c.Request.Context(), id); err != nil {
		h.logger.Warn("failed to remove record from index", zap.String("record_id", id), zap.Error(err))
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) SearchRecords(c *gin.Context) {
	query := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			to = &t
		}
	}

	hits, err := h.search.Search(c.Request.Context(), query, from, to, size)
	if err != nil {
		h.internalError(c, "search failed", err)
		return
	}

	h.audit.LogEvent(c.Request.Context(), &audit.Event{
		EventType: audit.EventSearch,
		UserID:    c.GetString("username"),
		Action:    "SEARCH",
		Resource:  "clinical_record",
		RequestID: c.GetString("request_id"),
		Status:    "success",
	})

	c.JSON(http.StatusOK, gin.H{"hits": hits, "count": len(hits)})
}

func (h *Handler) GetAuditLogs(c *gin.Context) {
	from, _ := strconv.Atoi(c.DefaultQuery("from", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))

	filters := map[string]interface{}{}
	if eventType := c.Query("event_type"); eventType != "" {
		filters["event_type"] = eventType
	}
	if resourceID := c.Query("resource_id"); resourceID != "" {
		filters["resource_id"] = resourceID
	}

	events, err := h.audit.QueryEvents(c.Request.Context(), filters, from, size)
	if err != nil {
		h.internalError(c, "failed to query audit events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err), zap.String("request_id", c.GetString("request_id")))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
