package model

import "context"

// SnapshotStore durably keeps named store snapshots between runs.
type SnapshotStore interface {
	Save(ctx context.Context, name string, payload []byte) error
	Load(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}
