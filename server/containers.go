package server

import (
	"net/http"
	"sort"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"containerbeheer/models"
	"containerbeheer/server/api"
)

// GetContainers serves the enriched table, optionally filtered by category
// and on-route flag ("Ja"/"Nee"), sorted by mean fill level descending and
// split into pending vs already-handled rows.
func (s *Server) GetContainers(c *gin.Context) {
	records, err := s.store.LoadSnapshot(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to load snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load the container table"})
		return
	}

	category := c.Query("category")
	onRoute := c.Query("on_route")

	filtered := make([]models.ContainerRecord, 0, len(records))
	for i := range records {
		if category != "" && records[i].Category != category {
			continue
		}
		if onRoute != "" && models.JaNee(records[i].OnRoute) != onRoute {
			continue
		}
		filtered = append(filtered, records[i])
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].MeanFill > filtered[j].MeanFill
	})

	resp := api.ContainersResponse{
		Pending: []api.ContainerView{},
		Handled: []api.ContainerView{},
		Count:   len(filtered),
	}
	for i := range filtered {
		view := api.ViewOf(&filtered[i])
		if filtered[i].Handled {
			resp.Handled = append(resp.Handled, view)
		} else {
			resp.Pending = append(resp.Pending, view)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetCategories serves the sorted distinct categories of the active set.
func (s *Server) GetCategories(c *gin.Context) {
	records, err := s.store.LoadSnapshot(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to load snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load the container table"})
		return
	}

	seen := map[string]bool{}
	categories := []string{}
	for i := range records {
		if !seen[records[i].Category] {
			seen[records[i].Category] = true
			categories = append(categories, records[i].Category)
		}
	}
	sort.Strings(categories)

	c.JSON(http.StatusOK, api.CategoriesResponse{
		Categories: categories,
		Count:      len(categories),
	})
}
