package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodgram/admin"
	"foodgram/auth"
	"foodgram/authz"
	"foodgram/config"
	"foodgram/db"
	"foodgram/ingredients"
	"foodgram/logging"
	"foodgram/media"
	"foodgram/memstore"
	"foodgram/middleware"
	"foodgram/mongostore"
	"foodgram/mq"
	"foodgram/ratelim"
	"foodgram/rdx"
	"foodgram/recipes"
	"foodgram/routes"
	"foodgram/seed"
	"foodgram/store"
	"foodgram/structs"
	"foodgram/tags"
	"foodgram/users"
	"foodgram/utils"

	"github.com/rs/cors"
)

// backends are the storage and session services chosen by storage.driver.
type backends struct {
	store    *store.Store
	denylist rdx.Denylist
	csrf     rdx.CSRFStore
	events   mq.Publisher
	close    func(context.Context)
}

func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	if cfg.Storage.Driver == "memory" {
		logging.Warn().Msg("using in-memory storage; data is lost on exit")
		return &backends{
			store:    memstore.New(),
			denylist: rdx.NewMemoryDenylist(),
			csrf:     rdx.NewMemoryCSRF(cfg.Auth.CSRFTTL),
			events:   mq.Nop{},
			close:    func(context.Context) {},
		}, nil
	}

	client, database, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	conn, err := rdx.Connect(ctx, cfg.Redis)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	listenCtx, stopListening := context.WithCancel(context.Background())
	go mq.StartEventLogger(listenCtx, conn)

	return &backends{
		store:    mongostore.New(database),
		denylist: rdx.NewRedisDenylist(conn),
		csrf:     rdx.NewRedisCSRF(conn, cfg.Auth.CSRFTTL),
		events:   mq.NewRedisPublisher(conn),
		close: func(ctx context.Context) {
			stopListening()
			if err := conn.Close(); err != nil {
				logging.Warn().Err(err).Msg("close redis")
			}
			if err := client.Disconnect(ctx); err != nil {
				logging.Warn().Err(err).Msg("disconnect mongo")
			}
		},
	}, nil
}

func main() {
	seedPath := flag.String("seed", "", "load ingredients and tags from a JSON fixture before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	b, err := openBackends(startCtx, cfg)
	cancelStart()
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("open storage")
	}

	if *seedPath != "" {
		if _, err := seed.LoadFile(context.Background(), b.store, *seedPath); err != nil {
			logging.Fatal().Err(err).Str("path", *seedPath).Msg("load fixture")
		}
	}

	policy, err := authz.NewPolicy()
	if err != nil {
		logging.Fatal().Err(err).Msg("load authorization policy")
	}

	stopCleanup := make(chan struct{})
	limiter := ratelim.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Run(time.Minute, stopCleanup)

	mediaStore := media.NewStore(cfg.Media.Root, cfg.Media.URL, cfg.Media.MaxWidth)
	presenter := &structs.Presenter{Store: b.store, Media: mediaStore}
	paginator := utils.Paginator{PageSize: cfg.Pagination.PageSize, MaxPageSize: cfg.Pagination.MaxPageSize}
	authenticator := middleware.NewAuthenticator([]byte(cfg.Auth.JWTSecret), b.denylist)

	deps := &routes.Deps{
		Auth:    authenticator,
		Policy:  policy,
		Limiter: limiter,
		Recipes: &recipes.Handler{
			Store:     b.store,
			Present:   presenter,
			Media:     mediaStore,
			Events:    b.events,
			Paginator: paginator,
			Domain:    cfg.Site.Domain,
		},
		Users: &users.Handler{
			Store:     b.store,
			Present:   presenter,
			Media:     mediaStore,
			Events:    b.events,
			Paginator: paginator,
		},
		Sessions: &auth.Handler{
			Users:    b.store.Users,
			Auth:     authenticator,
			Denylist: b.denylist,
			CSRF:     b.csrf,
			TokenTTL: cfg.Auth.TokenTTL,
		},
		Tags:        &tags.Handler{Tags: b.store.Tags},
		Ingredients: &ingredients.Handler{Ingredients: b.store.Ingredients},
		Admin:       &admin.Handler{Store: b.store, Paginator: paginator},
		MediaRoot:   cfg.Media.Root,
	}
	if cfg.Auth.EnforceCSRF {
		deps.CSRF = b.csrf
	}
	router := routes.NewRouter(deps)

	// CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-CSRFToken"},
		AllowCredentials: true,
	}).Handler(router)
	handler := middleware.Logging(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}
	server.RegisterOnShutdown(func() {
		close(stopCleanup)
	})

	go func() {
		logging.Info().Str("addr", cfg.Server.Port).Str("driver", cfg.Storage.Driver).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("listen")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logging.Info().Msg("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	b.close(ctx)
	logging.Info().Msg("server stopped")
}
