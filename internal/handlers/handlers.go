package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/kioskgallery/internal/config"
	"github.com/cristianadrielbraun/kioskgallery/internal/logging"
	"github.com/cristianadrielbraun/kioskgallery/internal/pipeline"
	"github.com/cristianadrielbraun/kioskgallery/internal/publish"
	"github.com/cristianadrielbraun/kioskgallery/internal/qrforge"
	"github.com/cristianadrielbraun/kioskgallery/internal/ranking"
	"github.com/cristianadrielbraun/kioskgallery/internal/snapshot"
)

// Handler holds the dependencies shared by the HTTP handlers. It keeps no
// per-request state.
type Handler struct {
	cfg      *config.Config
	logger   *slog.Logger
	ranker   *ranking.Engine
	ingester *snapshot.Ingester
	forger   *qrforge.Forger
	pipeline *pipeline.Pipeline
}

// New wires a Handler from configuration. The publisher is injected so callers can
// swap the image host.
func New(cfg *config.Config, publisher publish.Publisher, logger *slog.Logger) *Handler {
	logger = logging.OrNop(logger)

	ingester := snapshot.NewIngester(cfg.Paths.UploadDir, logger)
	ingester.MinBytes = cfg.Snapshot.MinBytes
	if cfg.Snapshot.IDStrategy == config.IDStrategyTimestamp {
		ingester.NewID = snapshot.TimestampID
	}

	forger := qrforge.New(cfg.Paths.QRDir, cfg.Server.QRPublicPath, logger)
	forger.Version = cfg.QR.Version
	forger.ModuleSize = cfg.QR.ModuleSize
	forger.Border = cfg.QR.Border

	return &Handler{
		cfg:      cfg,
		logger:   logger,
		ranker:   ranking.New(logger),
		ingester: ingester,
		forger:   forger,
		pipeline: &pipeline.Pipeline{
			Ingester:  ingester,
			Publisher: publisher,
			Forger:    forger,
			Logger:    logger,
		},
	}
}

// Router builds the gin engine with every route and static mount registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(h.logger))

	// Static assets
	r.Static(h.cfg.Server.AssetPath, h.cfg.Paths.AssetDir)
	r.Static(h.cfg.Server.QRPublicPath, h.cfg.Paths.QRDir)

	r.GET("/images.json", h.ImagesJSON)
	r.GET("/sorted-images", h.SortedImages)
	r.POST("/generate-qr", h.GenerateQR)
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/qr", h.QRPreview)
	}
	return r
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
