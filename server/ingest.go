package server

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"containerbeheer/aggr"
	"containerbeheer/ingest"
	"containerbeheer/normalize"
	"containerbeheer/server/api"
)

// Ingest accepts the two CSV uploads (multipart fields "fleet" and "route"),
// builds a fresh snapshot and replaces the previous one in full. A
// validation failure leaves the existing snapshot untouched.
func (s *Server) Ingest(c *gin.Context) {
	fleet, err := readCSVUpload(c, "fleet")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	route, err := readCSVUpload(c, "route")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := normalize.Normalize(fleet, route)
	if err != nil {
		var verr *normalize.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error()})
			return
		}
		log.Errorf("Normalization failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process upload"})
		return
	}
	aggr.Recompute(records)

	if err := s.store.SaveSnapshot(c.Request.Context(), records); err != nil {
		log.Errorf("Failed to save snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save the snapshot"})
		return
	}

	c.JSON(http.StatusOK, api.IngestResponse{
		ActiveCount: len(records),
		FleetRows:   fleet.Len(),
		RouteStops:  route.Len(),
	})
}

func readCSVUpload(c *gin.Context, field string) (*ingest.Table, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, errors.New("missing upload file " + field)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ReadCSV(f)
}
