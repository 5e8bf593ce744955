// Package api contains all endpoints available
package api

import (
	"embed"
	"html/template"
	"time"

	"bitwise74/media-gallery/config"
	"bitwise74/media-gallery/middleware"
	"bitwise74/media-gallery/storage"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

//go:embed templates/index.html
var templateFS embed.FS

type API struct {
	Router *gin.Engine
	Store  *storage.MediaStore
	Config *config.Config
}

func NewRouter(cfg *config.Config) (*API, error) {
	return newRouterWithStore(cfg, storage.NewMediaStore(cfg))
}

func newRouterWithStore(cfg *config.Config, store *storage.MediaStore) (*API, error) {
	a := &API{
		Store:  store,
		Config: cfg,
	}

	makeLogger(cfg.LogLevel)

	router := gin.New()
	a.Router = router

	// The gallery ships its own frontend at /, so CORS is only needed
	// when an external frontend origin is configured
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	// GET /			-> Renders the gallery page
	router.GET("/", a.GalleryPage)

	// POST /upload			-> Stores a new media file
	router.POST("/upload", middleware.BodySizeLimiter(cfg.MaxUploadSize), a.MediaUpload)

	// GET /static/videos/:name	-> Serves stored media directly
	router.StaticFS(cfg.PublicPath, a.Store.HTTPFileSystem())

	main := router.Group("/api")
	{
		// GET /api/videos 	-> Returns the current gallery listing
		main.GET("/videos", a.MediaList)

		// HEAD /api/heartbeat 	-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	return a, nil
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
