package config

import (
	"os"
	"testing"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJSON = `{
	"server_address": ":3000",
	"base_path": "/people",
	"file_storage_path": "json_storage.json",
	"database_dsn": "json-dsn",
	"db_connection_timeout": "3s",
	"allow_get_delete": false
}`

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	file, err := os.CreateTemp("", "config*.json")
	require.NoError(t, err)
	_, err = file.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	t.Cleanup(func() {
		err := os.Remove(file.Name())
		require.NoError(t, err)
	})
	return file.Name()
}

func TestDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/users", cfg.BasePath)
	assert.Equal(t, 10, cfg.PasswordHashCost)
	assert.Equal(t, 10*time.Second, cfg.DBConnectionTimeout)
	assert.True(t, cfg.AllowGetDelete)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.DBFileName)
}

func TestEnvParseKeepsUnsetFields(t *testing.T) {
	values := Config{}
	applyDefaults(&values, defaultConfig)

	t.Setenv("LOG_LEVEL", "debug")

	err := env.Parse(&values)
	require.NoError(t, err)

	assert.Equal(t, "debug", values.LogLevel)
	assert.Equal(t, ":8080", values.RunAddr)
}

func TestConfigPriorityJSONOnly(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.RunAddr)
	assert.Equal(t, "/people", cfg.BasePath)
	assert.Equal(t, "json_storage.json", cfg.DBFileName)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN)
	assert.Equal(t, 3*time.Second, cfg.DBConnectionTimeout)
	assert.False(t, cfg.AllowGetDelete)
}

func TestConfigPriorityJSONPlusEnv(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("ALLOW_GET_DELETE", "true")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.RunAddr) // env overrides json
	assert.True(t, cfg.AllowGetDelete)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN) // from JSON
}

func TestConfigPriorityAllSources(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("BASE_PATH", "/env")

	oldArgs := os.Args
	t.Cleanup(func() {
		os.Args = oldArgs
	})
	os.Args = []string{
		"testbin",
		"-a", ":6000",
		"-p", "/cli",
	}

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.RunAddr) // CLI > ENV > JSON
	assert.Equal(t, "/cli", cfg.BasePath)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN) // from JSON
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PASSWORD_HASH_COST", "12")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 12, cfg.PasswordHashCost)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
}

func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown log level", key: "LOG_LEVEL", value: "loud"},
		{name: "relative base path", key: "BASE_PATH", value: "users"},
		{name: "trailing slash in base path", key: "BASE_PATH", value: "/users/"},
		{name: "bad address", key: "SERVER_ADDRESS", value: "localhost"},
		{name: "hash cost too low", key: "PASSWORD_HASH_COST", value: "2"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv(testCase.key, testCase.value)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG", "/nonexistent/config.json")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}
