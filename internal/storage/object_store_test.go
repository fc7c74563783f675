package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unsritalk/internal/config"
	"unsritalk/internal/security"
)

func TestBackupKeyLayout(t *testing.T) {
	at := time.Date(2024, time.July, 20, 0, 0, 5, 0, time.UTC)

	key := BackupKey("s3cret", "unsri-talk-", at)
	tag := security.SignResource("s3cret", "unsri-talk-", "20240720T000005Z")[:16]
	assert.Equal(t, "backups/unsri-talk/2024/07/20/20240720T000005Z-"+tag+".json", key)

	assert.NotEqual(t, key, BackupKey("other", "unsri-talk-", at))
}

func TestNormalizeEndpoint(t *testing.T) {
	host, ssl, err := normalizeEndpoint("https://minio.internal:9000", false)
	require.NoError(t, err)
	assert.Equal(t, "minio.internal:9000", host)
	assert.True(t, ssl)

	host, ssl, err = normalizeEndpoint("minio:9000", false)
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", host)
	assert.False(t, ssl)

	_, _, err = normalizeEndpoint("", false)
	assert.Error(t, err)
}

func TestNewBackupStore(t *testing.T) {
	store, err := NewBackupStore(config.ObjectStoreConfig{
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "unsri-talk-backups",
		Region:    "us-east-1",
	}, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "unsri-talk-backups", store.cfg.Bucket)
}
