// Package server exposes the pipeline over HTTP for the upload UI and the
// table/map renderers.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"containerbeheer/config"
	"containerbeheer/disposition"
	"containerbeheer/ledger"
	"containerbeheer/server/api"
	"containerbeheer/version"
)

type Server struct {
	cfg     *config.Config
	store   ledger.Store
	tracker *disposition.Tracker
}

func New(cfg *config.Config, store ledger.Store) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		tracker: disposition.NewTracker(store),
	}
}

// Router wires the endpoints. Mutating endpoints are POST; the table and
// category reads are GET.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET(api.EndPointHealth, s.Health)
	router.GET(api.EndPointVersion, func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get("containerbeheer"))
	})

	apiV3 := router.Group("/api/v3")
	{
		apiV3.POST(api.EndPointIngest, s.Ingest)
		apiV3.GET(api.EndPointGetContainers, s.GetContainers)
		apiV3.GET(api.EndPointGetCategories, s.GetCategories)
		apiV3.POST(api.EndPointGetMap, s.GetMap)
		apiV3.POST(api.EndPointMarkHandled, s.MarkHandled)
		apiV3.POST(api.EndPointRemove, s.RemoveContainer)
		apiV3.GET(api.EndPointGetLog, s.GetLog)
	}

	return router
}

// Run starts the service and blocks.
func (s *Server) Run() error {
	log.Infof("Containerbeheer service starting on port %s", s.cfg.Port)
	return s.Router().Run(fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port))
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "containerbeheer",
	})
}
