package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/config"
	"gastos/internal/middleware/auth"
)

const secret = "0123456789abcdef0123456789abcdef"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:             "8081",
		DataBackend:      "sqlite",
		SQLiteDBPath:     filepath.Join(t.TempDir(), "gastos.db"),
		AuthorizedPhones: []string{"+5491100000001"},
		Timezone:         "UTC",
		APIJWTSecret:     secret,
		SyncBatchSize:    10,
		SyncInterval:     time.Minute,
		LogLevel:         "error",
	}
}

func execute(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(env{
		loadConfig: func() (*config.Config, error) { return cfg, nil },
		now:        time.Now,
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMessageCommandPersistsAcrossRuns(t *testing.T) {
	cfg := testConfig(t)

	out, err := execute(t, cfg, "message", "whatsapp:+5491100000001", "Comida", "300")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Gasto registrado: Comida: 300.00"), out)

	out, err = execute(t, cfg, "message", "+5491100000001", "mis gastos")
	require.NoError(t, err)
	assert.Contains(t, out, "ID 1: Comida - 300.00")
}

func TestMessageCommandRejectsUnknownSender(t *testing.T) {
	out, err := execute(t, testConfig(t), "message", "+1999", "Comida 300")
	require.NoError(t, err)
	assert.Contains(t, out, "No estas autorizado")
}

func TestMigrateCommand(t *testing.T) {
	cfg := testConfig(t)
	for i := 0; i < 2; i++ {
		out, err := execute(t, cfg, "migrate")
		require.NoError(t, err)
		assert.Contains(t, out, "migrations applied (sqlite)")
	}

	cfg.DataBackend = "memory"
	_, err := execute(t, cfg, "migrate")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	cfg := testConfig(t)
	out, err := execute(t, cfg, "token", "reporting", "--ttl", "1h")
	require.NoError(t, err)

	sub, err := auth.ParseToken(secret, strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "reporting", sub)

	cfg.APIJWTSecret = ""
	_, err = execute(t, cfg, "token", "reporting")
	assert.Error(t, err)
}
