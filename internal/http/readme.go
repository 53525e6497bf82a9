package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mellowmark/internal/service"
)

type generateReadmeRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *Handler) generateReadme(c *gin.Context) {
	var req generateReadmeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": service.ValidationErrors{{Field: "url", Message: "Url is required"}}})
		return
	}

	doc, err := h.readmes.Generate(c.Request.Context(), currentUserID(c), req.URL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRepositoryURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid GitHub repository URL"})
			return
		}
		h.logger.WithError(err).WithField("url", req.URL).Error("README generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate README"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "title": doc.Title, "readme": doc.Content})
}
