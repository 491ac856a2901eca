// Package secrets overlays process environment variables with a Vault KV secret
// so the env-driven config loader picks up credentials without code changes.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/zatekoja/mindcare/pkg/errors"
	"github.com/zatekoja/mindcare/pkg/retry"
)

const maxSecretBytes = 1 << 20

// VaultConfig holds Vault connection settings
type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	Overwrite bool
}

// VaultConfigFromEnv reads VAULT_* variables
func VaultConfigFromEnv() VaultConfig {
	cfg := VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     "secret",
		Path:      os.Getenv("VAULT_PATH"),
		KVVersion: 2,
		Timeout:   5 * time.Second,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
	}

	if mount := os.Getenv("VAULT_MOUNT"); mount != "" {
		cfg.Mount = mount
	}
	if v, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil {
		cfg.KVVersion = v
	}
	if ms, err := strconv.Atoi(os.Getenv("VAULT_TIMEOUT_MS")); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}

	return cfg
}

func (c VaultConfig) secretURL() (string, error) {
	addr := strings.TrimRight(c.Addr, "/")
	mount := strings.Trim(c.Mount, "/")
	path := strings.Trim(c.Path, "/")
	if addr == "" || c.Token == "" || mount == "" || path == "" {
		return "", apperrors.NewValidationError("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN, VAULT_MOUNT, VAULT_PATH)")
	}

	switch c.KVVersion {
	case 1:
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	case 2:
		return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
	default:
		return "", apperrors.NewValidationErrorf("unsupported vault KV version %d", c.KVVersion)
	}
}

// VaultResult counts the variables an Apply call touched
type VaultResult struct {
	Loaded  int
	Skipped int
}

// VaultLoader fetches a KV secret and exports its keys as environment variables
type VaultLoader struct {
	cfg    VaultConfig
	client *http.Client
	retry  retry.Config
}

// NewVaultLoader creates a new Vault loader
func NewVaultLoader(cfg VaultConfig) *VaultLoader {
	return &VaultLoader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		retry: retry.Config{
			MaxAttempts:     3,
			InitialDelay:    200 * time.Millisecond,
			MaxDelay:        time.Second,
			BackoffFactor:   2,
			MaxTotalTimeout: 3 * cfg.Timeout,
		},
	}
}

// Apply exports the secret's keys. Existing variables win unless Overwrite is set.
// A disabled loader is a no-op.
func (l *VaultLoader) Apply(ctx context.Context) (VaultResult, error) {
	var result VaultResult
	if !l.cfg.Enabled {
		return result, nil
	}

	data, err := l.Fetch(ctx)
	if err != nil {
		return result, err
	}

	for key, value := range data {
		if !l.cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped++
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return result, apperrors.NewInternalError(fmt.Sprintf("failed to export %s", key), err)
		}
		result.Loaded++
	}

	log.Info().
		Str("path", l.cfg.Path).
		Int("loaded", result.Loaded).
		Int("skipped", result.Skipped).
		Msg("Vault secrets applied")
	return result, nil
}

// Fetch reads the secret, retrying transport errors and 5xx responses
func (l *VaultLoader) Fetch(ctx context.Context) (map[string]string, error) {
	url, err := l.cfg.secretURL()
	if err != nil {
		return nil, err
	}

	var body []byte
	var permanent error
	err = retry.DoWithLog(ctx, l.retry, "Vault", func() error {
		b, status, getErr := l.get(ctx, url)
		if getErr != nil {
			return getErr
		}
		body = b
		switch {
		case status >= http.StatusInternalServerError:
			return fmt.Errorf("vault returned %d", status)
		case status < 200 || status >= 300:
			permanent = apperrors.NewExternalError(fmt.Sprintf("vault fetch failed with status %d", status), nil)
		}
		return nil
	}, retry.LogAttempts(&log.Logger, "Vault"))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch vault secret", err)
	}
	if permanent != nil {
		return nil, permanent
	}

	return decodeSecret(body, l.cfg.KVVersion)
}

func (l *VaultLoader) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("X-Vault-Token", l.cfg.Token)
	if l.cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", l.cfg.Namespace)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSecretBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// kvResponse covers both engine versions: v1 puts the secret in data, v2 in data.data
type kvResponse struct {
	Data map[string]json.RawMessage `json:"data"`
}

func decodeSecret(body []byte, kvVersion int) (map[string]string, error) {
	var resp kvResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewExternalError("invalid vault response", err)
	}
	if resp.Data == nil {
		return nil, apperrors.NewExternalError("vault response has no data", nil)
	}

	fields := resp.Data
	if kvVersion == 2 {
		inner, ok := resp.Data["data"]
		if !ok {
			return nil, apperrors.NewExternalError("vault KV v2 response has no data.data", nil)
		}
		if err := json.Unmarshal(inner, &fields); err != nil {
			return nil, apperrors.NewExternalError("invalid vault KV v2 payload", err)
		}
	}

	secret := make(map[string]string, len(fields))
	for key, raw := range fields {
		secret[key] = stringify(raw)
	}
	return secret, nil
}

// stringify unquotes JSON strings and keeps every other value in its JSON form. null becomes "".
func stringify(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
