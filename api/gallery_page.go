package api

import (
	"errors"
	"net/http"

	"bitwise74/media-gallery/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GalleryPage renders the gallery with everything currently stored. A
// missing storage directory is a deployment problem, so unlike the
// listing API this route fails loudly with a 500
func (a *API) GalleryPage(c *gin.Context) {
	entries, err := a.Store.List()
	if err != nil {
		if errors.Is(err, storage.ErrDirMissing) {
			zap.L().Error("Storage directory not found", zap.String("dir", a.Config.StorageDir))

			c.String(http.StatusInternalServerError, "Error: Video directory not found. Please create it and add videos.")
			return
		}

		zap.L().Error("Failed to scan storage directory", zap.Error(err))

		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Entries": entries,
	})
}
