// Package server assembles the portal from configuration: datastores,
// providers, services and the gin engine.
package server

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/dojoportal/config"
	"github.com/yoockh/dojoportal/internal/api/handlers"
	"github.com/yoockh/dojoportal/internal/api/middleware"
	"github.com/yoockh/dojoportal/internal/api/routes"
	"github.com/yoockh/dojoportal/internal/cache"
	"github.com/yoockh/dojoportal/internal/dependencies/clock"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/providers/auth"
	"github.com/yoockh/dojoportal/internal/realtime"
	"github.com/yoockh/dojoportal/internal/records"
	"github.com/yoockh/dojoportal/internal/repositories/memory"
	mongorepo "github.com/yoockh/dojoportal/internal/repositories/mongo"
	pgrepo "github.com/yoockh/dojoportal/internal/repositories/postgres"
	"github.com/yoockh/dojoportal/internal/services"
	"github.com/yoockh/dojoportal/internal/storage"
)

type Server struct {
	Engine   *gin.Engine
	Accounts services.AccountService
	Media    services.MediaService
	Funds    records.Service[models.FundRecord, models.FundDraft]
	Players  records.Service[models.PlayerRecord, models.PlayerDraft]

	closers []func()
}

// Close releases datastore clients in reverse order of creation.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

type backend struct {
	provider auth.Provider
	revoked  func(string) bool
	profiles pgrepo.ProfileRepository
	funds    pgrepo.RecordRepository[models.FundRecord]
	players  pgrepo.RecordRepository[models.PlayerRecord]
	media    mongorepo.MediaRepository
	blobs    storage.BlobStore
	bus      realtime.Bus
	cache    cache.Cache
	closers  []func()
}

func memoryBackend(cfg config.App) *backend {
	provider := auth.NewMemoryProvider(cfg.JWTSecret, time.Hour)
	return &backend{
		provider: provider,
		revoked:  provider.Revoked,
		profiles: memory.NewProfileRepo(),
		funds:    memory.NewRecordRepo[models.FundRecord](),
		players:  memory.NewRecordRepo[models.PlayerRecord](),
		media:    memory.NewMediaRepo(),
		blobs:    storage.NewMemoryStore(),
		bus:      realtime.NewMemoryBus(),
		cache:    cache.Nop{},
	}
}

func cloudBackend(ctx context.Context, cfg config.App, log logrus.FieldLogger) (*backend, error) {
	b := &backend{}

	if err := config.InitPostgres(cfg.PostgresURI); err != nil {
		return nil, err
	}
	if err := config.MigratePostgres(); err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connected")

	if err := config.InitMongo(cfg.MongoURI); err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = config.MongoClient.Disconnect(context.Background()) })
	if err := config.EnsureMongoIndexes(cfg.MongoDB); err != nil {
		log.WithError(err).Warn("mongo index creation failed")
	}
	log.Info("MongoDB connected")

	if err := config.InitRedis(cfg.RedisAddr); err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = config.RedisClient.Close() })
	log.Info("Redis connected")

	gcs, err := storage.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, cfg.GCSSignedURLTTL)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = gcs.Close() })

	var gotrueURL string
	if cfg.SupabaseURL != "" {
		gotrueURL = strings.TrimRight(cfg.SupabaseURL, "/") + "/auth/v1"
	}

	b.provider = auth.NewSupabase(cfg.SupabaseProjectRef, cfg.SupabaseAnonKey, gotrueURL)
	b.profiles = pgrepo.NewProfileRepo(config.PostgresDB)
	b.funds = pgrepo.NewRecordRepo[models.FundRecord](config.PostgresDB)
	b.players = pgrepo.NewRecordRepo[models.PlayerRecord](config.PostgresDB)
	b.media = mongorepo.NewMediaRepo(config.MongoClient.Database(cfg.MongoDB))
	b.blobs = gcs
	b.bus = realtime.NewRedisBus(config.RedisClient)
	b.cache = cache.NewRedisCache(config.RedisClient, "dojoportal:")
	return b, nil
}

func New(ctx context.Context, cfg config.App, log *logrus.Logger) (*Server, error) {
	var (
		b   *backend
		err error
	)
	if cfg.DataBackend == config.BackendMemory {
		log.Warn("DATA_BACKEND=memory: data is lost on restart")
		b = memoryBackend(cfg)
	} else if b, err = cloudBackend(ctx, cfg, log); err != nil {
		return nil, err
	}

	clk := clock.New()
	notifier := auth.NewNotifier(b.bus, log)

	profiles := services.NewProfileService(b.profiles, b.cache, clk, log)
	media := services.NewMediaService(b.media, b.blobs, b.bus, clk, log)
	accounts := services.NewAccountService(b.provider, profiles, notifier, services.Secrets{
		SetupSecret:     cfg.SetupSecret,
		AdminInviteCode: cfg.AdminInviteCode,
	}, log)
	funds := records.NewService(records.FundKind, b.funds, b.bus, clk, log)
	players := records.NewService(records.PlayerKind, b.players, b.bus, clk, log)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		JWT: middleware.JWTConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Revoked:  b.revoked,
		},
		Profiles: profiles,
		Origins:  cfg.CORSOrigins,
		Log:      log,

		Auth:    handlers.NewAuthHandler(accounts),
		Setup:   handlers.NewSetupHandler(accounts),
		Profile: handlers.NewProfileHandler(),
		Media:   handlers.NewMediaHandler(media),
		Funds:   handlers.NewFundsHandler(funds),
		Players: handlers.NewPlayersHandler(players),
		WS: handlers.NewWSHandler(handlers.WSDeps{
			Media:     media,
			Funds:     funds,
			Players:   players,
			Profiles:  profiles,
			Events:    notifier,
			Bus:       b.bus,
			Scheduler: clk,
			Interval:  cfg.CarouselInterval,
			Origins:   cfg.CORSOrigins,
			Log:       log,
		}),
	})

	return &Server{
		Engine:   r,
		Accounts: accounts,
		Media:    media,
		Funds:    funds,
		Players:  players,
		closers:  b.closers,
	}, nil
}
