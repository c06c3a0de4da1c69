// pkg/httpclient/httpclient_test.go
package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "default config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "nil config uses default",
			config:  nil,
			wantErr: false,
		},
		{
			name: "invalid timeout",
			config: &Config{
				Timeout: -1 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "rate limit without burst",
			config: &Config{
				Timeout: 30 * time.Second,
				RateLimitConfig: &RateLimitConfig{
					RequestsPerSecond: 10,
					BurstSize:         0,
				},
			},
			wantErr: true,
		},
		{
			name: "no rate limiter",
			config: &Config{
				Timeout: 30 * time.Second,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestDownloadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("payload"))
		case "/auth":
			if r.Header.Get("Authorization") != "token tok" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Write([]byte("private payload"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewClient(nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("success writes file with mode", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.bin")
		require.NoError(t, client.DownloadFile(ctx, server.URL+"/ok", nil, dest, 0600))

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))

		info, err := os.Stat(dest)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("headers are sent", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.bin")
		headers := map[string]string{"Authorization": "token tok"}
		require.NoError(t, client.DownloadFile(ctx, server.URL+"/auth", headers, dest, 0644))

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "private payload", string(data))
	})

	t.Run("non-2xx is an error and no file is left", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.bin")
		err := client.DownloadFile(ctx, server.URL+"/missing", nil, dest, 0644)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")

		_, statErr := os.Stat(dest)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("transport error", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.bin")
		err := client.DownloadFile(ctx, "http://127.0.0.1:1/nope", nil, dest, 0644)
		assert.Error(t, err)
	})
}

func TestClientSetsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client, err := NewClient(nil)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, client.DownloadFile(context.Background(), server.URL, nil, dest, 0644))
	assert.Equal(t, DefaultConfig().UserAgent, gotUA)
}
