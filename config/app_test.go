package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemoryBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "Memory")
	t.Setenv("SUPABASE_JWT_SECRET", "")
	t.Setenv("CAROUSEL_INTERVAL", "3s")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://dojo.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.DataBackend)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 3*time.Second, cfg.CarouselInterval)
	assert.Equal(t, []string{"http://localhost:5173", "https://dojo.test"}, cfg.CORSOrigins)
	assert.Equal(t, "dojoportal", cfg.MongoDB)
}

func TestValidateCloudReportsMissing(t *testing.T) {
	err := App{DataBackend: BackendCloud, PostgresURI: "postgres://x"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
	assert.Contains(t, err.Error(), "SUPABASE_URL or SUPABASE_PROJECT_REF")
	assert.NotContains(t, err.Error(), "POSTGRES_URI")

	assert.Equal(t, "missing environment variables: MONGO_URI, REDIS_ADDR, GCS_BUCKET, "+
		"SUPABASE_ANON_KEY, SUPABASE_JWT_SECRET, SUPABASE_URL or SUPABASE_PROJECT_REF", err.Error())
	for i := 0; i < 20; i++ {
		assert.Equal(t, err.Error(), App{DataBackend: BackendCloud, PostgresURI: "postgres://x"}.Validate().Error())
	}
}

func TestValidateUnknownBackend(t *testing.T) {
	assert.Error(t, App{DataBackend: "sqlite"}.Validate())
}
