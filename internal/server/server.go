// Package server assembles the HTTP API, the realtime endpoint and their
// backing stores into one fiber application.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/auth"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/cache"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/config"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/events"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/handlers"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/media"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/metrics"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/middleware"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/presence"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/realtime"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/repository"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/service"
)

const connectWait = 30 * time.Second

type Server struct {
	cfg *config.Config
	log *zap.Logger
	app *fiber.App

	mongo    *mongo.Client
	redis    *redis.Client
	producer *events.Producer
	manager  *realtime.Manager
	cancel   context.CancelFunc
}

// routeDeps is everything the route table needs, kept apart from the
// connections so the table can be built without live backends.
type routeDeps struct {
	handlers *handlers.Handlers
	manager  *realtime.Manager
	verifier *auth.Verifier
	registry *presence.Registry
	limiter  *middleware.IPRateLimiter
	gatherer prometheus.Gatherer
	ping     func(ctx context.Context) error
	mediaDir string
}

// New connects to the configured backends and builds the application.
// Redis and Kafka are optional; MongoDB is not.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	s := &Server{cfg: cfg, log: log}

	client, err := repository.Connect(ctx, cfg.Mongo.URI, connectWait, log)
	if err != nil {
		return nil, err
	}
	s.mongo = client
	db := client.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		s.closeBackends(context.Background())
		return nil, err
	}

	var (
		mirror   realtime.PresenceMirror
		lastSeen service.LastSeenReader
	)
	if cfg.Redis.Enabled {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, connectWait, log)
		if err != nil {
			s.closeBackends(context.Background())
			return nil, err
		}
		s.redis = rdb
		store := cache.NewPresenceStore(rdb, cfg.Redis.Prefix, cfg.Redis.PresenceTTL)
		mirror, lastSeen = store, store
	}

	var publisher realtime.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		s.producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicMessageSent)
		publisher = s.producer
		log.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.TopicMessageSent))
	}

	var (
		objects  media.Store
		mediaDir string
	)
	if cfg.Media.S3.Bucket != "" {
		objects, err = media.NewS3Store(ctx, media.S3Options{
			Bucket:     cfg.Media.S3.Bucket,
			Region:     cfg.Media.S3.Region,
			Endpoint:   cfg.Media.S3.Endpoint,
			PublicRead: cfg.Media.S3.PublicRead,
			PresignTTL: cfg.Media.S3.PresignTTL,
		})
	} else {
		var disk *media.DiskStore
		disk, err = media.NewDiskStore(cfg.Media.Dir, cfg.Media.URLPrefix)
		if disk != nil {
			objects, mediaDir = disk, disk.Dir()
		}
	}
	if err != nil {
		s.closeBackends(context.Background())
		return nil, err
	}
	log.Info("media store ready", zap.String("bucket", cfg.Media.S3.Bucket), zap.String("dir", mediaDir))
	mediaSvc := media.NewService(objects, cfg.Media.MaxBytes)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(reg)
	}

	users := repository.NewUserRepository(db, cfg.Mongo.OpTimeout)
	conversations := repository.NewConversationRepository(db, cfg.Mongo.OpTimeout)
	messages := repository.NewMessageRepository(db, cfg.Mongo.OpTimeout)
	posts := repository.NewPostRepository(db, cfg.Mongo.OpTimeout)

	registry := presence.NewRegistry()
	issuer := auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	verifier := auth.NewVerifier(cfg.JWT.Secret)

	chat := service.NewChatService(conversations, messages, users, log)
	router := realtime.NewRouter(registry, chat, publisher, m, log)
	s.manager = realtime.NewManager(registry, router, mirror, m, log, realtime.Options{
		PingInterval:    cfg.WS.PingInterval,
		PongWait:        cfg.WS.PongWait,
		WriteWait:       cfg.WS.WriteDeadline,
		MaxMessageSize:  cfg.WS.MaxMessageSize,
		SendBuffer:      cfg.WS.SendBuffer,
		EventsPerSecond: cfg.WS.EventsPerSecond,
		EventBurst:      cfg.WS.EventBurst,
		Origins:         cfg.App.AllowedOrigins,
	})

	h := &handlers.Handlers{
		Auth:     handlers.NewAuthHandler(service.NewAuthService(users, issuer, cfg.Security.BcryptCost, log)),
		Users:    handlers.NewUserHandler(service.NewProfileService(users, mediaSvc, registry, lastSeen, log)),
		Posts:    handlers.NewPostHandler(service.NewPostService(posts, users, mediaSvc, log)),
		Messages: handlers.NewMessageHandler(chat),
	}

	limiter := middleware.NewIPRateLimiter(cfg.App.RateLimitPerMin, cfg.App.RateLimitPerMin/4, log)
	bg, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go limiter.Cleanup(bg)

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = reg
	}
	s.app = s.buildApp(routeDeps{
		handlers: h,
		manager:  s.manager,
		verifier: verifier,
		registry: registry,
		limiter:  limiter,
		gatherer: gatherer,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		mediaDir: mediaDir,
	})
	return s, nil
}

func (s *Server) buildApp(d routeDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "linkedin-clone-backend",
		ReadTimeout:  s.cfg.App.ReadTimeout,
		WriteTimeout: s.cfg.App.WriteTimeout,
		BodyLimit:    s.cfg.App.BodyLimitBytes,
		ErrorHandler: handlers.ErrorHandler(s.log),
	})

	app.Use(recover.New())
	app.Use(corsHandler(s.cfg.App.AllowedOrigins))
	app.Use(middleware.RequestLogger(s.log))
	if d.limiter != nil {
		app.Use("/api", d.limiter.Handler())
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("API is running...")
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := d.ping(ctx); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "online": d.registry.Len()})
	})
	if d.gatherer != nil {
		app.Get("/metrics", metrics.Handler(d.gatherer))
	}
	if d.mediaDir != "" {
		app.Static(s.cfg.Media.URLPrefix, d.mediaDir)
	}

	d.handlers.Register(app, auth.Middleware(d.verifier))
	d.manager.Mount(app, "/ws", d.verifier)
	return app
}

func corsHandler(origins []string) fiber.Handler {
	if len(origins) == 0 {
		return cors.New()
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	})
}

func (s *Server) App() *fiber.App { return s.app }

// Start blocks serving HTTP on the configured port.
func (s *Server) Start() error {
	s.log.Info("server listening", zap.String("addr", s.cfg.Addr()), zap.String("env", s.cfg.App.Env))
	return s.app.Listen(s.cfg.Addr())
}

// Shutdown closes realtime connections first, then stops accepting HTTP
// requests and finally releases the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.manager.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("realtime shutdown: %w", err))
	}
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.closeBackends(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Server) closeBackends(ctx context.Context) error {
	var errs []error
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka close: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.mongo != nil {
		if err := s.mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongo disconnect: %w", err))
		}
	}
	return errors.Join(errs...)
}
