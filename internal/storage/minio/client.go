package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/dtroode/gophsocial/internal/model"
)

const (
	snapshotPrefix = "snapshots"
	contentType    = "application/json"
)

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}
func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}

var _ model.SnapshotStore = (*Client)(nil)

// Client keeps store snapshots as JSON objects in a bucket.
type Client struct {
	api    minioAPI
	bucket string
}

// NewClient creates a snapshot store using a real *minio.Client instance.
func NewClient(ctx context.Context, client *minio.Client, bucket string) (*Client, error) {
	return NewClientWithAPI(ctx, minioClientWrapper{c: client}, bucket)
}

// NewClientWithAPI allows injecting a mockable API (used in tests).
func NewClientWithAPI(ctx context.Context, api minioAPI, bucket string) (*Client, error) {
	c := &Client{
		api:    api,
		bucket: bucket,
	}

	err := c.ensureBucketExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return c, nil
}

func (c *Client) ensureBucketExists(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func objectKey(name string) string {
	return path.Join(snapshotPrefix, name+".json")
}

// Save overwrites the snapshot object of name.
func (c *Client) Save(ctx context.Context, name string, payload []byte) error {
	_, err := c.api.PutObject(ctx, c.bucket, objectKey(name), bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot %s: %w", name, err)
	}
	return nil
}

// Load reads the snapshot object of name. A missing object is
// model.ErrNotFound.
func (c *Client) Load(ctx context.Context, name string) ([]byte, error) {
	obj, err := c.api.GetObject(ctx, c.bucket, objectKey(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, c.loadError(name, err)
	}
	defer obj.Close()

	// minio reports a missing key on first read, not on GetObject.
	payload, err := io.ReadAll(obj)
	if err != nil {
		return nil, c.loadError(name, err)
	}
	return payload, nil
}

func (c *Client) loadError(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return model.ErrNotFound
	}
	return fmt.Errorf("failed to download snapshot %s: %w", name, err)
}

// Delete removes the snapshot object of name.
func (c *Client) Delete(ctx context.Context, name string) error {
	err := c.api.RemoveObject(ctx, c.bucket, objectKey(name), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	return nil
}
