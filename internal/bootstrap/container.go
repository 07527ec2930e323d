package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"chemviz-client/internal/config"
	"chemviz-client/internal/export"
	"chemviz-client/internal/gateway"
	"chemviz-client/internal/orchestrator"
	"chemviz-client/internal/pkg/logger"
	"chemviz-client/internal/session"
	"chemviz-client/pkg/events"

	"github.com/redis/go-redis/v9"
)

type Container struct {
	Config *config.Config
	Logger logger.ILogger
	Bus    *events.Bus

	Gateway      *gateway.Client
	Session      *session.Store
	Orchestrator *orchestrator.Orchestrator
	Exporter     *export.Trigger

	closers []func() error
}

func NewContainer(cfg *config.Config, log logger.ILogger, opts ...gateway.Option) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	// 1. Event Bus
	c.Bus = events.NewBus(log)
	c.closers = append(c.closers, c.Bus.Close)

	// 2. Token Storage
	storage, err := c.newTokenStorage()
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	// 3. Gateway and Session
	gwOpts := append([]gateway.Option{gateway.WithTimeout(cfg.HTTPTimeout())}, opts...)
	c.Gateway = gateway.NewClient(cfg.API.BaseURL, log, gwOpts...)
	c.Session = session.NewStore(storage, c.Gateway, c.Bus, log)
	c.Gateway.SetTokenSource(c.Session)

	// 4. Orchestrator and Export
	c.Orchestrator = orchestrator.New(c.Gateway, c.Bus, log)
	c.Session.OnClear(c.Orchestrator.Reset)
	c.Exporter = export.NewTrigger(c.Gateway, export.NewFileSaver(cfg.Output.DownloadDir), log)

	return c, nil
}

func (c *Container) newTokenStorage() (session.TokenStorage, error) {
	cfg := c.Config.Session
	switch cfg.Store {
	case config.TokenStoreMemory:
		return session.NewMemoryStorage(""), nil
	case config.TokenStoreRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			c.Logger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.RedisURL}
		}
		rdb := redis.NewClient(opt)
		c.closers = append(c.closers, rdb.Close)
		return session.NewRedisStorage(rdb, cfg.RedisKeyPrefix), nil
	case config.TokenStoreFile, "":
		return session.NewFileStorage(cfg.TokenFile), nil
	default:
		return nil, fmt.Errorf("unknown TOKEN_STORE %q", cfg.Store)
	}
}

// StartEventLog writes every state-change event to the client log until ctx
// is done.
func (c *Container) StartEventLog(ctx context.Context) error {
	types := []string{
		events.SessionStarted, events.SessionCleared, events.DatasetActivated,
		events.EquipmentLoaded, events.HistoryRefreshed, events.StateReset, events.OperationFailed,
	}
	for _, t := range types {
		ch, err := c.Bus.Subscribe(ctx, t)
		if err != nil {
			return err
		}
		go func() {
			for evt := range ch {
				c.Logger.Info("EVENTS", evt.EventType(), evt.Payload())
			}
		}()
	}
	return nil
}

// Init restores the persisted session.
func (c *Container) Init(ctx context.Context) error {
	return c.Session.Init(ctx)
}

func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
