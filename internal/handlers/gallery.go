package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/kioskgallery/internal/catalog"
	"github.com/cristianadrielbraun/kioskgallery/internal/colorscore"
)

// ImagesJSON serves the catalog. It never fails: a missing asset directory yields an
// empty list.
func (h *Handler) ImagesJSON(c *gin.Context) {
	names, err := catalog.Load(h.cfg.Paths.AssetDir, h.cfg.ManifestPath(), h.logger)
	if err != nil {
		h.logger.Warn("catalog unavailable, serving empty list", "dir", h.cfg.Paths.AssetDir, "error", err)
		names = nil
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}

// SortedImages scores the filtered catalog on every request and returns it in
// descending order of the requested metric.
func (h *Handler) SortedImages(c *gin.Context) {
	metric := colorscore.ParseMetric(c.Query("metric"))
	category := c.Query("category")

	names, err := h.ranker.Sort(c.Request.Context(), h.cfg.Paths.AssetDir, metric, category)
	if err != nil {
		if catalog.IsUnavailable(err) {
			h.logger.Error("asset directory unavailable", "dir", h.cfg.Paths.AssetDir, "error", err)
		} else {
			h.logger.Error("sorting images failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}
