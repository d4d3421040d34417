package server

import (
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"containerbeheer/server/api"
)

// GetLog serves the newest logbook rows for external tooling.
func (s *Server) GetLog(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := s.store.RecentEntries(c.Request.Context(), limit)
	if err != nil {
		log.Errorf("Failed to read the logbook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read the logbook"})
		return
	}
	c.JSON(http.StatusOK, api.LogResponse{Entries: entries, Count: len(entries)})
}
