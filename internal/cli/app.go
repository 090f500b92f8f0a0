package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nidhogg/nuka-memory/internal/cache"
	"github.com/nidhogg/nuka-memory/internal/config"
	"github.com/nidhogg/nuka-memory/internal/embedding"
	"github.com/nidhogg/nuka-memory/internal/events"
	"github.com/nidhogg/nuka-memory/internal/memory"
	pgstore "github.com/nidhogg/nuka-memory/internal/store"
	"github.com/nidhogg/nuka-memory/internal/vectorstore"
)

// app holds the components a command runs against.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	store  *pgstore.Store
	index  *vectorstore.Index
	rdb    *redis.Client
	stream *events.StreamPublisher
	svc    *memory.Service
}

// openApp loads config and wires the memory service. The vector index and
// Redis are optional and skipped when not configured.
func openApp(ctx context.Context) (*app, error) {
	a, err := openBase()
	if err != nil {
		return nil, err
	}
	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func openBase() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) openStore(ctx context.Context) error {
	if a.cfg.Database.Postgres.DSN == "" {
		return fmt.Errorf("database.postgres.dsn is required")
	}
	s, err := pgstore.New(ctx, a.cfg.Database.Postgres.DSN, a.logger)
	if err != nil {
		return err
	}
	a.store = s
	return nil
}

func (a *app) openRedis(ctx context.Context) error {
	if a.cfg.Database.Redis.URL == "" {
		return nil
	}
	rdb, err := cache.Connect(ctx, a.cfg.Database.Redis.URL)
	if err != nil {
		return err
	}
	a.rdb = rdb
	a.stream = events.NewStreamPublisher(rdb, a.cfg.Memory.EventsStream, a.logger)
	a.logger.Info("Redis connected")
	return nil
}

func (a *app) wire(ctx context.Context) error {
	if err := a.openStore(ctx); err != nil {
		return err
	}
	if err := a.store.Migrate(ctx, a.cfg.MigrationsDir); err != nil {
		return err
	}

	ec := a.cfg.Embedding
	embedder, err := embedding.New(ctx, embedding.Config{
		Provider:  ec.Provider,
		Endpoint:  ec.Endpoint,
		Model:     ec.Model,
		APIKey:    ec.APIKey,
		Dimension: ec.Dimension,
	})
	if err != nil {
		return err
	}

	deps := memory.Deps{
		Embedder:             embedder,
		Memories:             a.store,
		Focus:                a.store,
		Modes:                a.store,
		Logger:               a.logger.Named("memory"),
		DefaultTopK:          a.cfg.Memory.DefaultTopK,
		MetadataContentLimit: a.cfg.Memory.MetadataContentLimit,
	}

	qc := vectorstore.QdrantConfig{
		Host:       a.cfg.Database.Qdrant.Host,
		Port:       a.cfg.Database.Qdrant.Port,
		Collection: a.cfg.Database.Qdrant.Collection,
	}
	if qc.Configured() {
		idx, err := vectorstore.Open(qc, a.logger)
		if err != nil {
			return err
		}
		a.index = idx
		dim, err := vectorDimension(ctx, embedder)
		if err != nil {
			return err
		}
		if err := idx.EnsureCollection(ctx, uint64(dim)); err != nil {
			return err
		}
		deps.Index = idx
		a.logger.Info("Qdrant ready", zap.String("collection", idx.Collection()))
	} else {
		a.logger.Warn("Qdrant not configured, searches return no results")
	}

	observers := memory.Observers{events.NewLogObserver(a.logger)}
	if err := a.openRedis(ctx); err != nil {
		return err
	}
	if a.rdb != nil {
		deps.Focus = cache.NewFocusCache(a.store, a.rdb, a.logger)
		deps.Modes = cache.NewModeCache(a.store, a.rdb, a.logger)
		observers = append(observers, a.stream)
	}
	deps.Observer = observers

	svc, err := memory.NewService(deps)
	if err != nil {
		return err
	}
	a.svc = svc
	return nil
}

// vectorDimension asks the provider for one embedding when no dimension is
// configured.
func vectorDimension(ctx context.Context, p embedding.Provider) (int, error) {
	if d := p.Dimension(); d > 0 {
		return d, nil
	}
	vecs, err := p.Embed(ctx, []string{"dimension probe"})
	if err != nil {
		return 0, fmt.Errorf("probe embedding dimension: %w", err)
	}
	return len(vecs[0]), nil
}

// Close releases every connection the app opened.
func (a *app) Close() {
	if a.index != nil {
		a.index.Close()
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	a.logger.Sync()
}
