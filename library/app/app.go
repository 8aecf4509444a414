package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/config"
	"github.com/naratama/library-service/library/internal/events"
	"github.com/naratama/library-service/library/internal/handler"
	"github.com/naratama/library-service/library/internal/mailer"
	"github.com/naratama/library-service/library/internal/payment"
	"github.com/naratama/library-service/library/internal/repository"
	"github.com/naratama/library-service/library/internal/server"
	"github.com/naratama/library-service/library/internal/service"
	"github.com/naratama/library-service/library/internal/session"
	"github.com/naratama/library-service/library/migrations"
	"github.com/naratama/library-service/pkg/kafka"
	"github.com/naratama/library-service/pkg/logger"
	"github.com/naratama/library-service/pkg/openid"
	"github.com/naratama/library-service/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	ctx := context.Background()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	svc, publisher, err := newService(db, cfg, log)
	if err != nil {
		log.Fatal("service init", zap.Error(err))
	}

	rdb, err := session.NewClient(ctx, cfg.Session)
	if err != nil {
		log.Fatal("redis init", zap.Error(err))
	}
	sessions := session.NewStore(rdb, cfg.Session.TTL)

	var oauth handler.OAuthProvider
	if cfg.Google.Enabled() {
		provider, err := openid.NewProvider(ctx, cfg.Google)
		if err != nil {
			log.Error("google login disabled", zap.Error(err))
		} else {
			oauth = provider
		}
	}

	h := handler.New(handler.Services{
		Auth:          svc,
		Users:         svc,
		Books:         svc,
		Loans:         svc,
		Rooms:         svc,
		Announcements: svc,
		Payments:      svc,
	}, sessions, oauth, handler.Config{
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.Secure || cfg.Production(),
		FrontendURL:  cfg.FrontendURL,
		Production:   cfg.Production(),
		RPS:          cfg.Server.RPS,
		BodyLimit:    cfg.Server.BodyLimit,
	}, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ", zap.String("addr", srv.Addr()))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if publisher != nil {
		if err = publisher.Close(); err != nil {
			log.Error("publisher close", zap.Error(err))
		}
	}
	if err = rdb.Close(); err != nil {
		log.Error("redis close", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}

// newService wires the business layer. The returned publisher is nil when
// no brokers are configured.
func newService(db *pgxpool.Pool, cfg *config.Config, log *zap.Logger) (*service.Service, *events.Publisher, error) {
	repo, err := repository.NewRepository(db, cfg.Tx, log)
	if err != nil {
		return nil, nil, errors.Wrap(err, "repository")
	}
	opts := []service.Option{service.WithLimits(cfg.Limits)}
	if cfg.Mailer.Enabled() {
		opts = append(opts, service.WithMailer(mailer.New(cfg.Mailer, log)))
	} else {
		log.Warn("SMTP not configured, OTP mails are dropped")
	}

	var publisher *events.Publisher
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, nil, errors.Wrap(err, "kafka.NewProducer")
		}
		publisher = events.NewPublisher(producer, cfg.Kafka.Topic, log)
		opts = append(opts, service.WithPublisher(publisher))
	}

	svc := service.NewService(repo, payment.NewClient(cfg.Payment, log), log, opts...)
	return svc, publisher, nil
}

// Migrate runs a goose command against the configured database.
func Migrate(ctx context.Context, cfg *config.Config, command string) error {
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, nil)
	if err != nil {
		return err
	}
	defer db.Close()
	return postgres.Migrate(db, migrations.MigrationFiles, command)
}
