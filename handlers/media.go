package handlers

import (
	"errors"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/inkpub/micropub/internal/media"
	"github.com/inkpub/micropub/internal/micropub"
	"github.com/inkpub/micropub/pkg/metrics"
)

// MediaHandler serves the media endpoint.
type MediaHandler struct {
	Uploader *media.Uploader
}

// RegisterMediaRoutes mounts the media endpoint at the root of rg.
func RegisterMediaRoutes(rg gin.IRoutes, h *MediaHandler) {
	rg.POST("", h.Upload)
	rg.GET("", h.Query)
}

func (h *MediaHandler) Upload(c *gin.Context) {
	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.Uploader.MaxBytes())+maxFormMemory)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, micropub.InvalidRequest("file is larger than the %s upload limit", humanize.Bytes(h.Uploader.MaxBytes())))
		} else {
			writeError(c, micropub.InvalidRequest("missing file: %v", err))
		}
		metrics.MediaUploads.WithLabelValues("error").Inc()
		return
	}
	f, err := fh.Open()
	if err != nil {
		metrics.MediaUploads.WithLabelValues("error").Inc()
		writeError(c, err)
		return
	}
	defer f.Close()

	m, err := h.Uploader.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
	metrics.MediaUploads.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", m.URL)
	c.JSON(http.StatusCreated, gin.H{"success": "create", "success_description": "Media uploaded to " + m.URL})
}

// Query answers q=last with the most recent upload.
func (h *MediaHandler) Query(c *gin.Context) {
	if q := c.Query("q"); q != "last" {
		writeError(c, micropub.InvalidRequest("unsupported query %q", q))
		return
	}
	m, err := h.Uploader.Last(c.Request.Context())
	if errors.Is(err, media.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
