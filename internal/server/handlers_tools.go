package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"toolshelf/internal/catalog"
)

func (s *Server) handleListTools(c *gin.Context) {
	q := catalog.ParseQuery(c.Request.URL.Query())
	page, err := s.catalog.List(c.Request.Context(), q)
	if err != nil {
		s.logger.Error("list tools failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal server error", "failed to load tools")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleCategories(c *gin.Context) {
	categories, err := s.catalog.Categories(c.Request.Context())
	if err != nil {
		s.logger.Error("list categories failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal server error", "failed to load categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
