package api

import (
	"errors"
	"net/http"
	"strings"

	"bitwise74/media-gallery/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// uploadResult is the soft-failure envelope the frontend inspects.
// User mistakes never surface as HTTP errors here, only as success=false
type uploadResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MediaUpload accepts a single multipart file, validates its extension
// against the whitelist and stores it under a uuid-prefixed name.
// Oversized bodies never reach this handler, the BodySizeLimiter
// middleware rejects them first
func (a *API) MediaUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		// Clients that don't announce a Content-Length slip past the
		// limiter's fast reject and hit the MaxBytesReader wall while
		// the form is being parsed. That's a size rejection, not a
		// missing file
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "http: request body too large") {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "Request body size exceeds limit",
			})
			return
		}

		c.JSON(http.StatusOK, uploadResult{
			Success: false,
			Message: "No file selected",
		})
		return
	}

	if err := validators.FileValidator(fh, a.Store); err != nil {
		switch {
		case errors.Is(err, validators.ErrNoFile):
			c.JSON(http.StatusOK, uploadResult{
				Success: false,
				Message: "No file selected",
			})
		case errors.Is(err, validators.ErrFileNameTooLong):
			c.JSON(http.StatusOK, uploadResult{
				Success: false,
				Message: "File name is too long",
			})
		default:
			c.JSON(http.StatusOK, uploadResult{
				Success: false,
				Message: "Invalid file type. Please upload videos (mp4, avi, mov, etc.) or images (jpg, png, etc.)",
			})
		}
		return
	}

	f, err := fh.Open()
	if err != nil {
		zap.L().Error("Failed to open uploaded file",
			zap.String("request_id", requestID),
			zap.Error(err),
		)

		c.JSON(http.StatusOK, uploadResult{
			Success: false,
			Message: "Upload failed: " + err.Error(),
		})
		return
	}
	defer f.Close()

	stored, err := a.Store.Save(fh.Filename, f)
	if err != nil {
		zap.L().Error("Failed to store uploaded file",
			zap.String("request_id", requestID),
			zap.String("name", fh.Filename),
			zap.Error(err),
		)

		c.JSON(http.StatusOK, uploadResult{
			Success: false,
			Message: "Upload failed: " + err.Error(),
		})
		return
	}

	zap.L().Info("File uploaded",
		zap.String("request_id", requestID),
		zap.String("stored", stored),
		zap.Int64("size", fh.Size),
	)

	c.JSON(http.StatusOK, uploadResult{
		Success: true,
		Message: "File uploaded successfully!",
	})
}
