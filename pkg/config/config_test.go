package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.True(t, cfg.Workflow.AllowRedecision)
	assert.True(t, cfg.Workflow.MarkRequestSelected)
	assert.Equal(t, "No seleccionada", cfg.Workflow.DefaultRejectionReason)
	assert.Equal(t, 15*time.Second, cfg.Workflow.OperationTimeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_SobrescribeDesdeEnv(t *testing.T) {
	v := viper.New()
	v.Set("WORKFLOW_ALLOW_REDECISION", "false")
	v.Set("WORKFLOW_OPERATION_TIMEOUT_SECONDS", "3")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("HTTP_PORT", "9090")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.False(t, cfg.Workflow.AllowRedecision)
	assert.Equal(t, 3*time.Second, cfg.Workflow.OperationTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestFromViper_MotivoRechazoVacioEsError(t *testing.T) {
	v := viper.New()
	v.Set("WORKFLOW_DEFAULT_REJECTION_REASON", "")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_ProduccionExigeSecreto(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "compras", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/compras?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
