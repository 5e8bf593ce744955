package api

import (
	"errors"
	"net/http"

	"bitwise74/media-gallery/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MediaList returns the current gallery listing as JSON. The frontend
// polls this after an upload, so a missing directory degrades to an
// empty gallery instead of an error
func (a *API) MediaList(c *gin.Context) {
	entries, err := a.Store.List()
	if err != nil {
		if !errors.Is(err, storage.ErrDirMissing) {
			zap.L().Error("Failed to scan storage directory", zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{
			"videos": []string{},
		})
		return
	}

	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		urls = append(urls, e.URL)
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": urls,
	})
}
