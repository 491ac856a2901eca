package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

func testConfig(addr string) VaultConfig {
	return VaultConfig{
		Enabled:   true,
		Addr:      addr,
		Token:     "s.test",
		Mount:     "secret",
		Path:      "mindcare/api",
		KVVersion: 2,
		Timeout:   time.Second,
	}
}

func TestVaultConfigFromEnv(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "TRUE")
	t.Setenv("VAULT_ADDR", "http://vault:8200")
	t.Setenv("VAULT_KV_VERSION", "1")
	t.Setenv("VAULT_TIMEOUT_MS", "250")

	cfg := VaultConfigFromEnv()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http://vault:8200", cfg.Addr)
	assert.Equal(t, "secret", cfg.Mount)
	assert.Equal(t, 1, cfg.KVVersion)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.False(t, cfg.Overwrite)
}

func TestSecretURL(t *testing.T) {
	cfg := testConfig("http://vault:8200/")

	url, err := cfg.secretURL()
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/data/mindcare/api", url)

	cfg.KVVersion = 1
	url, err = cfg.secretURL()
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/mindcare/api", url)

	cfg.KVVersion = 3
	_, err = cfg.secretURL()
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	cfg = testConfig("http://vault:8200")
	cfg.Token = ""
	_, err = cfg.secretURL()
	assert.Error(t, err)
}

func TestVaultLoader_Apply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/secret/data/mindcare/api", r.URL.Path)
		assert.Equal(t, "s.test", r.Header.Get("X-Vault-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"MINDCARE_TEST_DB_PASSWORD":"hunter2","MINDCARE_TEST_DB_PORT":5433,"MINDCARE_TEST_PRESET":"from-vault"},"metadata":{"version":3}}}`))
	}))
	defer server.Close()

	t.Setenv("MINDCARE_TEST_DB_PASSWORD", "")
	t.Setenv("MINDCARE_TEST_DB_PORT", "")
	t.Setenv("MINDCARE_TEST_PRESET", "from-env")

	result, err := NewVaultLoader(testConfig(server.URL)).Apply(context.Background())

	require.NoError(t, err)
	assert.Equal(t, VaultResult{Loaded: 2, Skipped: 1}, result)
	assert.Equal(t, "hunter2", os.Getenv("MINDCARE_TEST_DB_PASSWORD"))
	assert.Equal(t, "5433", os.Getenv("MINDCARE_TEST_DB_PORT"))
	assert.Equal(t, "from-env", os.Getenv("MINDCARE_TEST_PRESET"))
}

func TestVaultLoader_DisabledIsNoop(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	result, err := NewVaultLoader(cfg).Apply(context.Background())

	require.NoError(t, err)
	assert.Zero(t, result)
}

func TestVaultLoader_Fetch(t *testing.T) {
	t.Run("kv v1", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"REDIS_PASSWORD":"pw","REDIS_ENABLED":true,"EMPTY":null}}`))
		}))
		defer server.Close()

		cfg := testConfig(server.URL)
		cfg.KVVersion = 1
		secret, err := NewVaultLoader(cfg).Fetch(context.Background())

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"REDIS_PASSWORD": "pw", "REDIS_ENABLED": "true", "EMPTY": ""}, secret)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"data":{"data":{"K":"v"}}}`))
		}))
		defer server.Close()

		secret, err := NewVaultLoader(testConfig(server.URL)).Fetch(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "v", secret["K"])
		assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := NewVaultLoader(testConfig(server.URL)).Fetch(context.Background())

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("kv v2 payload without inner data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"K":"v"}}`))
		}))
		defer server.Close()

		_, err := NewVaultLoader(testConfig(server.URL)).Fetch(context.Background())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	})
}
