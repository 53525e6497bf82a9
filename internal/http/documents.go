package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mellowmark/internal/domain"
	"mellowmark/internal/service"
)

// saveRequest accepts "text" as well as "content" for the body; older editor
// builds send "text".
type saveRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
	Text    *string `json:"text"`
}

func (r saveRequest) body() string {
	switch {
	case r.Content != nil:
		return *r.Content
	case r.Text != nil:
		return *r.Text
	default:
		return ""
	}
}

type DocumentSummaryResponse struct {
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
}

func (h *Handler) saveDocument(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.docs.Save(c.Request.Context(), currentUserID(c), req.Title, req.body()); err != nil {
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
			return
		}
		h.logger.WithError(err).Error("save document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) loadDocument(c *gin.Context) {
	doc, err := h.docs.Load(c.Request.Context(), currentUserID(c), c.Param("title"))
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		h.logger.WithError(err).Error("load document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": doc.Content})
}

func (h *Handler) listDocuments(c *gin.Context) {
	docs, err := h.docs.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.WithError(err).Error("list documents")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching files"})
		return
	}

	resp := make([]DocumentSummaryResponse, len(docs))
	for i := range docs {
		resp[i] = summaryToResponse(docs[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "files": resp})
}

func (h *Handler) uploadDocument(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	f, err := header.Open()
	if err != nil {
		h.logger.WithError(err).Error("open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading file"})
		return
	}
	defer f.Close()

	doc, err := h.docs.Upload(c.Request.Context(), currentUserID(c), header.Filename, f)
	if err != nil {
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
			return
		}
		h.logger.WithError(err).Error("upload document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "title": doc.Title, "content": doc.Content})
}

func summaryToResponse(doc domain.DocumentSummary) DocumentSummaryResponse {
	return DocumentSummaryResponse{
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
	}
}
