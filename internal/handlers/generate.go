package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/kioskgallery/internal/pipeline"
	"github.com/cristianadrielbraun/kioskgallery/internal/snapshot"
)

// GenerateQR runs a capture through the publish pipeline. The HTTP status is always
// 200; clients inspect the success flag.
func (h *Handler) GenerateQR(c *gin.Context) {
	payload, ok := c.GetPostForm("image_data")
	if !ok {
		c.JSON(http.StatusOK, pipeline.Envelope{Success: false, Error: snapshot.ErrMissingInput.Error()})
		return
	}

	out := h.pipeline.Run(c.Request.Context(), payload)
	c.JSON(http.StatusOK, pipeline.Assemble(out))
}
