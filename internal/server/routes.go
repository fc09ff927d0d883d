package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mintgate/mediavault/internal/server/handlers/upload"
	"github.com/mintgate/mediavault/internal/server/middlewares"
	"github.com/mintgate/mediavault/internal/version"
)

func SetupRoutes(svc *Services, config *Config) http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = 16 << 20 // 16 MiB

	uploadH := upload.New(svc.Assembler, svc.Multipart, svc.Ingest)

	r.Use(middlewares.Logger())
	r.Use(gin.Recovery())
	r.Use(middlewares.GZIP())
	r.Use(cors.Default())

	r.GET("/", IndexHandler)
	r.GET("/healthz", HealthHandler)

	rateLimit := config.HTTP.RateLimit
	if rateLimit == "" {
		rateLimit = DefaultRateLimit
	}

	v1 := r.Group("/api/v1")
	v1.Use(middlewares.RateLimiter(rateLimit))
	v1.Use(middlewares.SessionAuth(svc.Auth))
	{
		v1.POST("/upload/chunk", uploadH.ChunkUpload)
		v1.GET("/upload/chunk", uploadH.ChunkStatus)
		v1.DELETE("/upload/chunk", uploadH.ChunkCancel)

		v1.POST("/upload/file", uploadH.FileUpload)
		v1.POST("/upload/metadata", uploadH.MetadataUpload)

		v1.POST("/upload/multipart/init", uploadH.MultipartInit)
		v1.POST("/upload/multipart/part", uploadH.MultipartPart)
		v1.POST("/upload/multipart/complete", uploadH.MultipartComplete)
		v1.POST("/upload/multipart/abort", uploadH.MultipartAbort)
		v1.GET("/upload/multipart/status", uploadH.MultipartStatus)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func IndexHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, version.DetailedWithApp())
}

func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
