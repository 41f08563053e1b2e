package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/framekeep/framekeep/internal/config"
	"github.com/framekeep/framekeep/internal/middleware"
	"github.com/framekeep/framekeep/internal/modules/handler"
	"github.com/framekeep/framekeep/internal/modules/serializer"
)

type RouterDeps struct {
	Config          *config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	AssetHandler    *handler.AssetHandler
	StackHandler    *handler.StackHandler
	TrashHandler    *handler.TrashHandler
	DownloadHandler *handler.DownloadHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.UserAuth(d.DB))

		asset := v1.Group("/asset")
		{
			asset.GET("", d.AssetHandler.ListAssets)
			asset.POST("/upload", d.AssetHandler.UploadAsset)
			asset.GET("/:asset_id", d.AssetHandler.GetAsset)
			asset.GET("/:asset_id/original", d.AssetHandler.GetOriginalURL)
			asset.DELETE("", d.AssetHandler.DeleteAssets)
			asset.PUT("/restore", d.AssetHandler.RestoreAssets)
			asset.PUT("/stack", d.StackHandler.UpdateStack)
		}

		trash := v1.Group("/trash")
		{
			trash.POST("/restore", d.TrashHandler.RestoreTrash)
			trash.POST("/empty", d.TrashHandler.EmptyTrash)
		}

		download := v1.Group("/download")
		{
			download.POST("/info", d.DownloadHandler.GetDownloadInfo)
			download.POST("/archive", d.DownloadHandler.DownloadArchive)
		}
	}
	return r
}
