// Command media runs the media endpoint on its own, for deployments that
// serve uploads from a separate host.
package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpub/micropub/handlers"
	"github.com/inkpub/micropub/internal/database"
	"github.com/inkpub/micropub/internal/history"
	"github.com/inkpub/micropub/internal/media"
	"github.com/inkpub/micropub/internal/publication"
	"github.com/inkpub/micropub/internal/store"
	"github.com/inkpub/micropub/internal/tokens"
	"github.com/inkpub/micropub/pkg/logger"
	"github.com/inkpub/micropub/pkg/middleware"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	port := os.Getenv("MEDIA_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}
	me := os.Getenv("PUBLICATION_ME")
	secret := os.Getenv("JWT_SECRET")
	if me == "" || secret == "" {
		logger.Fatalf("PUBLICATION_ME and JWT_SECRET are required")
	}

	st, err := newStore()
	if err != nil {
		logger.Fatalf("store: %v", err)
	}

	// Prefer the Redis-backed repository when REDIS_ADDR is provided.
	var repo media.Repository = media.NewMemoryRepository()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client, err := database.ConnectRedis(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0, 5*time.Second)
		if err != nil {
			logger.Warnf("cannot connect to Redis (%v), using memory-backed media repository", err)
		} else {
			defer client.Close()
			repo = media.NewRedisRepository(client, "media:")
		}
	}

	var rec history.Recorder = history.Noop{}
	if path := os.Getenv("HISTORY_FILE"); path != "" {
		rec = history.NewFileRecorder(path)
	}

	uploader, err := media.NewUploader(publication.New(me), st, repo, rec, os.Getenv("MEDIA_MAX_UPLOAD"))
	if err != nil {
		logger.Fatalf("media: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	g := r.Group("/media", middleware.AuthMiddleware(tokens.NewHMACVerifier(secret, me)), middleware.RequireScope("media"))
	handlers.RegisterMediaRoutes(g, &handlers.MediaHandler{Uploader: uploader})

	logger.Infof("media service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatalf("%v", err)
	}
}

func newStore() (store.Store, error) {
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		return store.NewMinIOStore(&store.MinIOConfig{
			Endpoint:  endpoint,
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
			Region:    os.Getenv("MINIO_REGION"),
			Bucket:    os.Getenv("MINIO_BUCKET"),
			Prefix:    os.Getenv("MINIO_PREFIX"),
		})
	}
	logger.Warnf("MINIO_ENDPOINT not set, keeping media in memory")
	return store.NewMemoryStore(), nil
}
