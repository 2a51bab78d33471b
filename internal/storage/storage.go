package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/smallbiznis/faktura/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("storage_not_configured")
	ErrInvalidKey    = errors.New("invalid_object_key")
)

// Client wraps the object store used for payment receipts and report
// exports. All keys are namespaced under the configured prefix.
type Client struct {
	raw    *minio.Client
	log    *zap.Logger
	bucket string
	prefix string
}

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
}

func NewClient(p Params) (*Client, error) {
	cfg := p.Cfg.Storage
	if cfg.Endpoint == "" {
		// Object storage is optional outside production. Calls fail
		// with ErrNotConfigured instead of panicking at startup.
		return &Client{log: p.Log.Named("storage")}, nil
	}

	raw, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		raw:    raw,
		log:    p.Log.Named("storage"),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Upload stores an object and returns its key.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if c == nil || c.raw == nil {
		return "", ErrNotConfigured
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrInvalidKey
	}
	key = c.prefix + key

	_, err := c.raw.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Download fetches an object by key.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.raw == nil {
		return nil, ErrNotConfigured
	}
	obj, err := c.raw.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

// PresignedURL returns a time-limited download link for a stored object.
func (c *Client) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if c == nil || c.raw == nil {
		return "", ErrNotConfigured
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrInvalidKey
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	u, err := c.raw.PresignedGetObject(ctx, c.bucket, key, ttl, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

var Module = fx.Module("storage",
	fx.Provide(NewClient),
)
