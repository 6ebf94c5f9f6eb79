package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"

	"github.com/dtroode/gophsocial/internal/apiclient"
	"github.com/dtroode/gophsocial/internal/config"
	"github.com/dtroode/gophsocial/internal/feed"
	"github.com/dtroode/gophsocial/internal/logger"
	"github.com/dtroode/gophsocial/internal/model"
	"github.com/dtroode/gophsocial/internal/notify"
	"github.com/dtroode/gophsocial/internal/persist"
	"github.com/dtroode/gophsocial/internal/repository/postgres"
	storage "github.com/dtroode/gophsocial/internal/storage/minio"
	"github.com/dtroode/gophsocial/internal/store"
	"github.com/dtroode/gophsocial/internal/token"
)

// app is the composition root shared by every command.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	out    io.Writer

	client    *apiclient.Client
	registry  *prometheus.Registry
	notifier  model.Notifier
	recorder  *notify.Recorder
	users     *store.UserStore
	posts     *store.PostStore
	comments  *store.CommentStore
	directory *feed.Directory
	assembler *feed.Assembler
	persister *persist.Persister

	// discard skips the flush after a command that dropped the session.
	discard bool
}

func openBackend(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.SnapshotStore, func(), error) {
	switch cfg.Persistence.Backend {
	case config.BackendPostgres:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}
		return postgres.NewSnapshotRepository(db), closeDB, nil

	case config.BackendMinio:
		minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return storageClient, func() {}, nil

	case config.BackendMemory:
		return persist.NewMemoryStore(), func() {}, nil

	default:
		dir, err := snapshotDir(cfg.Persistence.Dir)
		if err != nil {
			return nil, nil, err
		}
		fileStore, err := persist.NewFileStore(afero.NewOsFs(), dir)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using file snapshots", "dir", fileStore.Dir())
		return fileStore, func() {}, nil
	}
}

func snapshotDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, "gophsocial"), nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *logger.Logger, backend model.SnapshotStore, out io.Writer) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	metrics, err := apiclient.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	client, err := apiclient.New(cfg.API.BaseURL, logger,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	directory, err := feed.NewDirectory(cfg.Feed.DirectorySize, logger)
	if err != nil {
		return nil, err
	}

	recorder := notify.NewRecorder()
	notifier := notify.Fanout{notify.NewConsole(out), recorder}
	sink := store.WithProfileSink(directory)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		client:    client,
		registry:  registry,
		notifier:  notifier,
		recorder:  recorder,
		users:     store.NewUserStore(client, notifier, logger, sink),
		posts:     store.NewPostStore(client, notifier, logger, sink),
		comments:  store.NewCommentStore(client, notifier, logger, sink),
		directory: directory,
		assembler: feed.NewAssembler(directory),
		persister: persist.NewPersister(backend, logger),
	}

	if err := a.persister.Register(a.users, a.posts, a.comments); err != nil {
		return nil, err
	}
	if err := a.persister.RestoreAll(ctx); err != nil {
		logger.Warn("failed to restore previous session", "error", err)
	}

	a.startSession(ctx)
	return a, nil
}

// startSession stages the viewer from the configured access token.
func (a *app) startSession(ctx context.Context) {
	accessToken := a.cfg.API.AccessToken
	if accessToken == "" {
		a.logger.Debug("no access token configured")
		return
	}

	inspector := token.NewInspector(token.WithSecret(a.cfg.API.TokenSecret))
	session, err := inspector.Inspect(accessToken)
	if err != nil {
		if errors.Is(err, model.ErrTokenExpired) {
			a.notifier.Warning("Session expired, please log in again")
		}
		a.logger.Warn("access token rejected", "error", err)
		a.users.SetAuthenticated(false)
		return
	}

	a.client.SetToken(accessToken)
	a.users.SetAccount(session.Account)
	a.users.SetCurrentUser(session.Account)
	a.users.SetUserName(session.Account.Username)
	a.users.SetAuthenticated(true)

	if profile, ok := a.users.Profile(); ok {
		a.directory.Remember(ctx, profile)
	}
	a.logger.Debug("session started", "account_id", session.Account.ID, "expires_at", session.ExpiresAt)
}

func (a *app) close() {
	a.directory.Close()
}
