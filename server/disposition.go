package server

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"containerbeheer/disposition"
	"containerbeheer/ledger"
	"containerbeheer/server/api"
)

// MarkHandled marks one container as handled and logs the action. The
// response is exactly one of: success with a change count, a no-op, or an
// error with reason.
func (s *Server) MarkHandled(c *gin.Context) {
	var args api.DispositionArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", api.EndPointMarkHandled, err)
		return
	}

	rec, err := s.tracker.MarkHandled(c.Request.Context(), args.Container)
	if err != nil {
		if errors.Is(err, disposition.ErrAlreadyHandled) {
			c.JSON(http.StatusOK, api.DispositionResponse{Status: "noop", Changed: 0})
			return
		}
		dispositionError(c, err)
		return
	}

	view := api.ViewOf(rec)
	c.JSON(http.StatusOK, api.DispositionResponse{Status: "ok", Changed: 1, Container: &view})
}

// RemoveContainer takes one container out of the active set and logs the
// action; the remaining set is re-aggregated before it is saved.
func (s *Server) RemoveContainer(c *gin.Context) {
	var args api.DispositionArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", api.EndPointRemove, err)
		return
	}

	if _, err := s.tracker.Remove(c.Request.Context(), args.Container); err != nil {
		dispositionError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.DispositionResponse{Status: "ok", Changed: 1})
}

func dispositionError(c *gin.Context, err error) {
	var notFound *disposition.NotFoundError
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.Is(err, ledger.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "changed by another session, refresh and retry"})
	default:
		log.Errorf("Disposition failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "the action could not be recorded, nothing was saved"})
	}
}
