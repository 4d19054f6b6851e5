package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/paintball-league/internal/config"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/account/google"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/mail"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/session"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/storage"
	"github.com/riskibarqy/paintball-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/paintball-league/internal/platform/id"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
	"github.com/riskibarqy/paintball-league/internal/platform/password"
	"github.com/riskibarqy/paintball-league/internal/platform/resilience"
	"github.com/riskibarqy/paintball-league/internal/platform/worker"
	"github.com/riskibarqy/paintball-league/internal/usecase"
)

const workerDrainTimeout = 5 * time.Second

type closer struct {
	name string
	fn   func(context.Context) error
}

// App owns the HTTP server and the connections and pools behind it.
type App struct {
	Server *http.Server

	logger  *logging.Logger
	db      *sqlx.DB
	closers []closer
}

// New builds every store, client and service from cfg. On error the resources
// opened so far are released.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (_ *App, err error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger.Named("app")}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	accounts, verifications, err := a.buildAccountStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	docs, err := a.buildDocumentStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	objects, err := buildObjectStore(cfg)
	if err != nil {
		return nil, err
	}
	revocations, err := a.buildRevocationStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	accounts, docs, urlCache := withCache(cfg, accounts, docs)

	secret, err := a.sessionSecret(cfg)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(session.Config{
		Secret: secret,
		Issuer: cfg.ServiceName,
		TTL:    cfg.AuthSessionTTL,
	}, id.NewUUIDGenerator(), revocations, logger)

	pool, err := worker.NewPool(cfg.MailDispatchWorkers, logger)
	if err != nil {
		return nil, err
	}
	a.onClose("worker pool", func(context.Context) error { return pool.Release(workerDrainTimeout) })

	googleClient := google.NewClient(google.Config{
		TokenInfoURL:   cfg.GoogleTokenInfoURL,
		ClientID:       cfg.GoogleClientID,
		Timeout:        cfg.GoogleTimeout,
		CacheTTL:       cfg.CacheTTL,
		CircuitBreaker: circuitBreakerConfig(cfg.GoogleCircuit),
	}, logger)

	mailer, delivery := buildMailers(cfg, logger)

	authService := usecase.NewAuthService(usecase.AuthDependencies{
		Accounts:      accounts,
		Verifications: verifications,
		Hasher:        password.NewHasher(cfg.AuthBcryptCost),
		Sessions:      sessions,
		Google:        googleClient,
		Mailer:        mailer,
		Runner:        pool,
		Logger:        logger,
	}, usecase.AuthConfig{
		VerificationTTL: cfg.AuthVerificationTTL,
		VerifyURL:       cfg.PublicBaseURL + "/v1/auth/verify",
	})
	registrationService := usecase.NewRegistrationService(authService, docs, logger)
	profileService := usecase.NewProfileService(
		docs,
		objects,
		storage.NewURLResolver(objects, cfg.StoragePublicBaseURL),
		urlCache,
		usecase.ProfileServiceConfig{
			ReadTimeout:    cfg.ProfileReadTimeout,
			MaxPictureSize: cfg.StorageMaxUploadSize,
		},
		logger,
	)
	diagnosticsService := usecase.NewDiagnosticsService(docs)
	mailService := usecase.NewMailDeliveryService(delivery)

	handler := httpapi.NewHandler(
		authService,
		registrationService,
		profileService,
		diagnosticsService,
		mailService,
		cfg.StorageMaxUploadSize,
		logger,
	)
	router := httpapi.NewRouter(handler, sessions, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	a.logger.Info("app wired",
		"account_store", cfg.AccountStoreDriver,
		"document_store", cfg.DocumentStoreDriver,
		"storage", cfg.StorageDriver,
		"session_revocation", cfg.SessionRevocationDriver,
		"cache_enabled", cfg.CacheEnabled,
		"qstash_enabled", cfg.QStashEnabled,
	)

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			a.logger.Warn("close resource failed", "resource", c.name, "error", err)
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// sessionSecret falls back to a per-process random secret outside prod, which
// invalidates issued tokens on restart.
func (a *App) sessionSecret(cfg config.Config) ([]byte, error) {
	if cfg.AuthJWTSecret != "" {
		return []byte(cfg.AuthJWTSecret), nil
	}
	if cfg.AppEnv == config.EnvProd {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required when APP_ENV=%s", config.EnvProd)
	}

	generated, err := id.NewRandomGenerator().NewID()
	if err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	a.logger.Warn("AUTH_JWT_SECRET empty; using a random secret for this process", "env", cfg.AppEnv)
	return []byte(generated), nil
}

// buildMailers returns the mailer used when a verification link is issued and
// the one used when a queued mail is finally delivered.
func buildMailers(cfg config.Config, logger *logging.Logger) (usecase.VerificationMailer, usecase.VerificationMailer) {
	var delivery usecase.VerificationMailer = mail.NewLogMailer(logger)
	if cfg.MailDriver == config.DriverHTTP {
		delivery = mail.NewHTTPMailer(mail.HTTPMailerConfig{
			Endpoint:       cfg.MailAPIURL,
			APIKey:         cfg.MailAPIKey,
			From:           cfg.MailFrom,
			Timeout:        cfg.MailTimeout,
			CircuitBreaker: circuitBreakerConfig(cfg.MailCircuit),
		}, logger)
	}
	if !cfg.QStashEnabled {
		return delivery, delivery
	}

	publisher := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker:   circuitBreakerConfig(cfg.QStashCircuit),
	}, logger)
	return mail.NewQueueMailer(publisher), delivery
}

func circuitBreakerConfig(c config.Circuit) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          c.Enabled,
		FailureThreshold: c.FailureCount,
		OpenTimeout:      c.OpenTimeout,
		HalfOpenMaxReq:   c.HalfOpenMaxReq,
	}.Normalized()
}
