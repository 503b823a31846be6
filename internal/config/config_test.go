package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("TABLE_NAME", "persons")
	t.Setenv("COLLECTION_NAME", "faces")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("OBJECT_STORE_USE_SSL", "false")
	t.Setenv("REKOGNITION_MATCH_THRESHOLD", "92.5")

	cfg := Load()

	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "eu-west-1", cfg.ObjectStore.Region)
	assert.Equal(t, "persons", cfg.Store.TableName)
	assert.Equal(t, "faces", cfg.Recognition.CollectionID)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.ObjectStore.UseSSL)
	assert.Equal(t, 92.5, cfg.Recognition.MatchThreshold)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MATCH_MODE", "STORE_BACKEND", "FETCH_MAX_BYTES", "FETCH_TIMEOUT_SEC", "REKOGNITION_MAX_FACES", "PORT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, MatchModeSearch, cfg.Recognition.MatchMode)
	assert.Equal(t, StoreBackendDynamoDB, cfg.Store.Backend)
	assert.Equal(t, int64(5*1024*1024), cfg.Fetch.MaxBytes)
	assert.Equal(t, 0, cfg.Fetch.TimeoutSec)
	assert.Equal(t, 0, cfg.Recognition.MaxFaces)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoad_RegionFallback(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "us-east-2")

	cfg := Load()

	assert.Equal(t, "us-east-2", cfg.AWS.Region)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_FLOAT_VAR"

	os.Setenv(key, "0.75")
	assert.Equal(t, 0.75, getEnvFloat(key, 0))

	os.Setenv(key, "abc")
	assert.Equal(t, 1.5, getEnvFloat(key, 1.5))

	os.Unsetenv(key)
	assert.Equal(t, 1.5, getEnvFloat(key, 1.5))
}
