package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "test-secret")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "sqlite", cfg.Storage.Driver)
		assert.Equal(t, "memory", cfg.Drafts.Store)
		assert.Equal(t, 24*time.Hour, cfg.Drafts.TTL)
		assert.Equal(t, 30*time.Second, cfg.OCR.Timeout)
		assert.Equal(t, "test-secret", cfg.JWTSecretKey)
		assert.Equal(t, int64(8<<20), cfg.MaxRequestBytes)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "test-secret")
		t.Setenv("PORT", "9090")
		t.Setenv("STORAGE_DRIVER", "Postgres")
		t.Setenv("DATABASE_URL", "postgres://localhost/billsplit")
		t.Setenv("DRAFT_STORE", "redis")
		t.Setenv("DRAFT_TTL", "2h")
		t.Setenv("REDIS_DB", "3")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "postgres", cfg.Storage.Driver)
		assert.Equal(t, "redis", cfg.Drafts.Store)
		assert.Equal(t, 2*time.Hour, cfg.Drafts.TTL)
		assert.Equal(t, 3, cfg.Redis.DB)
	})

	t.Run("config file", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "test-secret")
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("OCR_API_URL: https://ocr.example.com/documents\nLOG_FORMAT: json\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://ocr.example.com/documents", cfg.OCR.APIURL)
		assert.Equal(t, "json", cfg.LogFormat)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			env  map[string]string
		}{
			{"missing secret", map[string]string{"JWT_SECRET_KEY": ""}},
			{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
			{"postgres without url", map[string]string{"STORAGE_DRIVER": "postgres"}},
			{"unknown draft store", map[string]string{"DRAFT_STORE": "disk"}},
			{"zero ttl", map[string]string{"DRAFT_TTL": "0s"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Setenv("JWT_SECRET_KEY", "test-secret")
				for k, v := range tt.env {
					t.Setenv(k, v)
				}
				_, err := Load("")
				assert.Error(t, err)
			})
		}
	})
}
