// Package storage writes snapshot backups to an S3 compatible bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"unsritalk/internal/config"
	"unsritalk/internal/security"
)

type BackupStore struct {
	client *minio.Client
	cfg    config.ObjectStoreConfig
	secret string
}

func NewBackupStore(cfg config.ObjectStoreConfig, secret string) (*BackupStore, error) {
	endpoint, useSSL, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &BackupStore{
		client: client,
		cfg:    cfg,
		secret: secret,
	}, nil
}

// normalizeEndpoint accepts either host:port or a full URL, whose scheme then decides TLS.
func normalizeEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	if endpoint == "" {
		return "", false, fmt.Errorf("object store endpoint not configured")
	}
	if !strings.HasPrefix(endpoint, "http") {
		return endpoint, useSSL, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse endpoint: %w", err)
	}
	return u.Host, u.Scheme == "https", nil
}

func (s *BackupStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}

// PutBackup uploads one JSON snapshot and returns its object key.
func (s *BackupStore) PutBackup(ctx context.Context, namespace string, takenAt time.Time, body []byte) (string, error) {
	key := BackupKey(s.secret, namespace, takenAt)

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"namespace": namespace,
			"taken-at":  takenAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// BackupKey lays backups out by namespace and day. The trailing tag is signed so keys
// cannot be enumerated from a timestamp alone.
func BackupKey(secret string, namespace string, takenAt time.Time) string {
	at := takenAt.UTC()
	stamp := at.Format("20060102T150405Z")
	tag := security.SignResource(secret, namespace, stamp)[:16]
	return fmt.Sprintf("backups/%s/%s/%s-%s.json",
		strings.TrimSuffix(namespace, "-"),
		at.Format("2006/01/02"),
		stamp,
		tag,
	)
}
