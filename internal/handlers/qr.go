package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/kioskgallery/internal/qrforge"
)

// QRPreview renders a QR code for the url query parameter without persisting it.
// Passing download=1 asks the browser to save the image.
func (h *Handler) QRPreview(c *gin.Context) {
	normalizedURL, err := qrforge.NormalizeURL(c.Query("url"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Buffer first so an encoding failure can still be reported as JSON.
	var buf bytes.Buffer
	version, err := h.forger.Render(&buf, normalizedURL)
	if err != nil {
		h.logger.Error("qr preview failed", "url", normalizedURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("X-QR-Version", strconv.Itoa(version))
	if download, _ := strconv.ParseBool(c.DefaultQuery("download", "false")); download {
		c.Header("Content-Disposition", `attachment; filename="qrcode.png"`)
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
