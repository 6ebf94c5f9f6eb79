// Package persist saves and restores store snapshots through a
// model.SnapshotStore backend.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/dtroode/gophsocial/internal/logger"
	"github.com/dtroode/gophsocial/internal/model"
)

// Snapshotter is a state container that can be serialized.
type Snapshotter interface {
	SnapshotName() string
	Snapshot() ([]byte, error)
	Restore(payload []byte) error
}

// Persister moves snapshots of the registered containers between memory
// and a backend.
type Persister struct {
	backend model.SnapshotStore
	logger  *logger.Logger

	mu    sync.Mutex
	items []Snapshotter
}

func NewPersister(backend model.SnapshotStore, logger *logger.Logger) *Persister {
	return &Persister{
		backend: backend,
		logger:  logger.Component("persist"),
	}
}

// Register adds snapshotters. Names must be unique.
func (p *Persister) Register(items ...Snapshotter) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, item := range items {
		for _, known := range p.items {
			if known.SnapshotName() == item.SnapshotName() {
				return fmt.Errorf("snapshotter %q already registered", item.SnapshotName())
			}
		}
		p.items = append(p.items, item)
	}
	return nil
}

func (p *Persister) registered() []Snapshotter {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Snapshotter, len(p.items))
	copy(out, p.items)
	return out
}

// SaveAll writes every registered snapshot. It keeps going after a failure
// and returns all errors joined.
func (p *Persister) SaveAll(ctx context.Context) error {
	var errs []error
	for _, item := range p.registered() {
		name := item.SnapshotName()
		payload, err := item.Snapshot()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to snapshot %s: %w", name, err))
			continue
		}
		if err := p.backend.Save(ctx, name, payload); err != nil {
			errs = append(errs, fmt.Errorf("failed to save %s: %w", name, err))
			continue
		}
		p.logger.Debug("snapshot saved", "name", name, "bytes", len(payload))
	}
	return errors.Join(errs...)
}

// RestoreAll loads every registered snapshot. A snapshot that was never
// saved is skipped.
func (p *Persister) RestoreAll(ctx context.Context) error {
	var errs []error
	for _, item := range p.registered() {
		name := item.SnapshotName()
		payload, err := p.backend.Load(ctx, name)
		if errors.Is(err, model.ErrNotFound) {
			p.logger.Debug("no snapshot to restore", "name", name)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to load %s: %w", name, err))
			continue
		}
		if err := item.Restore(payload); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", name, err))
			continue
		}
		p.logger.Info("snapshot restored", "name", name)
	}
	return errors.Join(errs...)
}

// DeleteAll removes every registered snapshot from the backend. In-memory
// state is left as is.
func (p *Persister) DeleteAll(ctx context.Context) error {
	var errs []error
	for _, item := range p.registered() {
		name := item.SnapshotName()
		if err := p.backend.Delete(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", name, err))
			continue
		}
		p.logger.Debug("snapshot deleted", "name", name)
	}
	return errors.Join(errs...)
}

// Schedule flushes snapshots on the cron spec until the returned cron is
// stopped. The caller owns starting and stopping it.
func (p *Persister) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cronLogger{p.logger}))
	_, err := c.AddFunc(spec, func() {
		if err := p.SaveAll(ctx); err != nil {
			p.logger.Error("scheduled flush failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule flush %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger routes cron's logging into the structured logger.
type cronLogger struct {
	logger *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
