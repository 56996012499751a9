package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalMatrix = `
[matrix]
homeserver = "https://matrix.example.org"
user = "@bot:example.org"
password = "secret"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalMatrix))
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.Matrix.CommandPrefix)
	assert.Equal(t, "0.0.0.0", cfg.Webhook.Host)
	assert.Equal(t, 9095, cfg.Webhook.Port)
	assert.Equal(t, DefaultTVDBBaseURL, cfg.TVDB.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.VerifyTLS(), "tls verification defaults to on")
	assert.True(t, cfg.StartupReport())
	assert.Empty(t, cfg.Warnings)
}

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalMatrix+`
target_room_id = "!abc:example.org"
command_prefix = "?"

[sonarr]
url = "sonarr:8989"
api_key = "s-key"

[radarr]
url = "http://radarr:7878"
api_key = "r-key"

[tls]
verify = false

[webhook]
host = "127.0.0.1"
port = 8080

[startup]
status_report = false
`))
	require.NoError(t, err)

	assert.Equal(t, "?", cfg.Matrix.CommandPrefix)
	assert.Equal(t, "!abc:example.org", cfg.Matrix.TargetRoomID)
	assert.True(t, cfg.Sonarr.Configured())
	assert.True(t, cfg.Radarr.Configured())
	assert.False(t, cfg.VerifyTLS())
	assert.False(t, cfg.StartupReport())
	assert.Equal(t, "127.0.0.1:8080", cfg.WebhookAddr())
}

func TestLoad_InvalidPrefixFallsBack(t *testing.T) {
	cfg, err := Load(writeConfig(t, strings.Replace(minimalMatrix, `password = "secret"`, `password = "secret"
command_prefix = "!!"`, 1)))
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.Matrix.CommandPrefix)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "command prefix")
}

func TestLoad_InvalidPortFallsBack(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalMatrix+`
[webhook]
port = 99999
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultWebhookPort, cfg.Webhook.Port)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "webhook port")
}

func TestLoad_MissingEnvVar(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalMatrix+`
[sonarr]
url = "http://sonarr"
api_key = "${ARRBOT_TEST_MISSING_KEY_98765}"
`))
	require.Error(t, err)
	assert.Nil(t, cfg)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"ARRBOT_TEST_MISSING_KEY_98765"}, cfgErr.Missing)
}

func TestLoad_EnvVarSubstituted(t *testing.T) {
	t.Setenv("ARRBOT_TEST_SONARR_KEY", "from-env")

	cfg, err := Load(writeConfig(t, minimalMatrix+`
[sonarr]
url = "http://sonarr"
api_key = "${ARRBOT_TEST_SONARR_KEY}"
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Sonarr.APIKey)
}

func TestLoad_DotEnvNextToConfig(t *testing.T) {
	path := writeConfig(t, minimalMatrix+`
[radarr]
url = "http://radarr"
api_key = "${ARRBOT_TEST_DOTENV_KEY}"
`)
	envPath := filepath.Join(filepath.Dir(path), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("ARRBOT_TEST_DOTENV_KEY=dotenv-value\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("ARRBOT_TEST_DOTENV_KEY") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-value", cfg.Radarr.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_BadTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[matrix\nhomeserver ="))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("ARRBOT_TEST_SIMPLE", "hello")
	t.Setenv("ARRBOT_TEST_EMPTY", "")

	tests := []struct {
		name        string
		in          string
		want        string
		wantMissing []string
	}{
		{"simple", "v = ${ARRBOT_TEST_SIMPLE}", "v = hello", nil},
		{"default used when unset", "v = ${ARRBOT_TEST_UNSET_1:-fallback}", "v = fallback", nil},
		{"default used when empty", "v = ${ARRBOT_TEST_EMPTY:-fallback}", "v = fallback", nil},
		{"empty default", "v = ${ARRBOT_TEST_UNSET_2:-}", "v = ", nil},
		{"env wins over default", "v = ${ARRBOT_TEST_SIMPLE:-fallback}", "v = hello", nil},
		{"missing left in place", "v = ${ARRBOT_TEST_UNSET_3}", "v = ${ARRBOT_TEST_UNSET_3}", []string{"ARRBOT_TEST_UNSET_3"}},
		{"missing reported once", "${ARRBOT_TEST_UNSET_4}${ARRBOT_TEST_UNSET_4}", "${ARRBOT_TEST_UNSET_4}${ARRBOT_TEST_UNSET_4}", []string{"ARRBOT_TEST_UNSET_4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, missing := substituteEnvVars(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}
