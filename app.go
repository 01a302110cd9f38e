package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpub/micropub/handlers"
	"github.com/inkpub/micropub/internal/config"
	"github.com/inkpub/micropub/internal/database"
	"github.com/inkpub/micropub/internal/history"
	"github.com/inkpub/micropub/internal/media"
	"github.com/inkpub/micropub/internal/mf2"
	"github.com/inkpub/micropub/internal/micropub"
	"github.com/inkpub/micropub/internal/oidc"
	"github.com/inkpub/micropub/internal/post/repository"
	"github.com/inkpub/micropub/internal/publication"
	"github.com/inkpub/micropub/internal/revocation"
	"github.com/inkpub/micropub/internal/store"
	"github.com/inkpub/micropub/internal/tokens"
	"github.com/inkpub/micropub/pkg/logger"
	"github.com/inkpub/micropub/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// app holds the wired collaborators of the server.
type app struct {
	cfg       *config.Config
	pub       *publication.Config
	store     store.Store
	posts     repository.Repository
	history   history.Recorder
	mediaRepo media.Repository
	verifier  middleware.Verifier
	redis     *redis.Client
	mongo     *mongo.Client
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	pub, err := loadPublication(cfg)
	if err != nil {
		return nil, err
	}
	a.pub = pub

	a.store, err = newStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled() {
		client, err := database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, 5*time.Second)
		if err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
		} else {
			a.redis = client
			revocation.SetClient(client)
			logger.Infof("Connected to Redis: %s", cfg.Redis.Addr())
		}
	}

	if cfg.MongoDB.URI != "" {
		a.mongo = connectMongo(ctx, cfg)
	}
	if a.mongo != nil {
		db := a.mongo.Database(cfg.MongoDB.Database)
		a.posts = repository.NewMongoRepo(db.Collection("posts"))
		a.history = history.NewMongoRecorder(db.Collection("history"))
	} else {
		a.posts = repository.NewMemoryRepo()
		if cfg.Publication.HistoryFile != "" {
			a.history = history.NewFileRecorder(cfg.Publication.HistoryFile)
		} else {
			a.history = history.Noop{}
		}
	}

	if a.redis != nil {
		a.mediaRepo = media.NewRedisRepository(a.redis, "media:")
	} else {
		a.mediaRepo = media.NewMemoryRepository()
	}

	a.verifier = newVerifier(ctx, cfg, pub.Me)
	return a, nil
}

func loadPublication(cfg *config.Config) (*publication.Config, error) {
	return publication.LoadFile(cfg.Publication.ConfigFile, cfg.Publication.Me)
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "github":
		gh := cfg.Store.GitHub
		return store.NewGitHubStore(store.GitHubConfig{
			Token:   gh.Token,
			User:    gh.User,
			Repo:    gh.Repo,
			Branch:  gh.Branch,
			BaseURL: gh.APIURL,
		}, &http.Client{Timeout: 30 * time.Second})
	case "minio":
		m := cfg.Store.MinIO
		return store.NewMinIOStore(&store.MinIOConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			UseSSL:    m.UseSSL,
			Region:    m.Region,
			Bucket:    m.Bucket,
			Prefix:    m.Prefix,
		})
	case "memory", "":
		logger.Warnf("using in-memory content store; posts are lost on restart")
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// newVerifier prefers OIDC, then the shared HS256 secret, then the
// insecure verifier when explicitly allowed. nil means no verifier.
func newVerifier(ctx context.Context, cfg *config.Config, me string) middleware.Verifier {
	if cfg.Auth.OIDCIssuer != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCClientID)
		if err == nil {
			return ver
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	if cfg.Auth.JWTSecret != "" {
		return tokens.NewHMACVerifier(cfg.Auth.JWTSecret, me)
	}
	if cfg.Auth.AllowInsecure {
		logger.Warn("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier(me)
	}
	return nil
}

// connectMongo returns nil when MongoDB stays unreachable; posts are then
// kept in memory.
func connectMongo(ctx context.Context, cfg *config.Config) *mongo.Client {
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		logger.Warnf("could not connect to MongoDB, posts are kept in memory: %v", err)
		return nil
	}
	logger.Infof("Connected to MongoDB database %s", cfg.MongoDB.Database)
	return client
}

func (a *app) close(ctx context.Context) {
	if a.mongo != nil {
		_ = a.mongo.Disconnect(ctx)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// rejectAll stands in for the auth middleware when no verifier is configured.
func rejectAll(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "error_description": "token verification is not configured"})
}

func (a *app) router() *gin.Engine {
	r := gin.New()

	// Lightweight CORS middleware so browser based Micropub clients can post.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Location")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", a.ready)

	handlers.RegisterSwagger(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var auth gin.HandlerFunc = rejectAll
	if a.verifier != nil {
		auth = middleware.AuthMiddleware(a.verifier)
		handlers.RegisterTokenRoutes(r.Group("/token"), &handlers.TokenHandler{Verifier: a.verifier, DefaultTTL: a.cfg.Auth.TokenTTL})
	}
	chain := []gin.HandlerFunc{auth}
	if rl := a.cfg.RateLimit; rl.Enabled {
		if rl.UseRedis && a.redis != nil {
			chain = append(chain, middleware.RedisRateLimitMiddleware(a.redis, rl.RPS, rl.Burst, rl.Window))
		} else {
			chain = append(chain, middleware.RateLimitMiddleware(rl.RPS, rl.Burst))
		}
	}

	svc := micropub.NewService(a.pub, a.store, a.posts, a.history)
	mp := &handlers.MicropubHandler{
		Service: svc,
		Config:  a.pub,
		AppURL:  a.cfg.Server.URL,
		Resolver: mf2.ChainResolver{
			&mf2.DocumentResolver{Lookup: svc.Lookup},
			&mf2.HTTPResolver{Client: &http.Client{Timeout: 10 * time.Second}},
		},
	}
	handlers.RegisterMicropubRoutes(r.Group("/micropub", chain...), mp)

	uploader, err := media.NewUploader(a.pub, a.store, a.mediaRepo, a.history, a.cfg.Media.MaxUpload)
	if err != nil {
		logger.Warnf("media endpoint disabled: %v", err)
	} else {
		mediaChain := append(append([]gin.HandlerFunc{}, chain...), middleware.RequireScope("media"))
		handlers.RegisterMediaRoutes(r.Group("/media", mediaChain...), &handlers.MediaHandler{Uploader: uploader})
	}
	return r
}

// ready returns 200 only when the verifier and every configured
// dependency is available.
func (a *app) ready(c *gin.Context) {
	deps := map[string]bool{
		"store":    a.store != nil,
		"verifier": a.verifier != nil,
		"redis":    !a.cfg.Redis.Enabled() || a.redis != nil,
		"mongo":    a.cfg.MongoDB.URI == "" || a.mongo != nil,
	}
	ready := true
	for _, ok := range deps {
		ready = ready && ok
	}
	body := gin.H{"deps": deps, "uptime": time.Since(startTime).String()}
	if !ready {
		body["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	c.JSON(http.StatusOK, body)
}
