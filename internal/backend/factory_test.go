package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetit/internal/config"
	"budgetit/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		AMQPURL:      "amqp://localhost/",
		AMQPExchange: "budgetit",
		AMQPQueue:    "ledger_events",
	})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "/tmp/x.db", cfg.SQLiteDBPath)
	assert.False(t, cfg.RequireBroker)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)
	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown type", Config{Type: "sheets"}, true},
		{"broker required but missing", Config{Type: MemoryBackend, RequireBroker: true}, true},
		{"broker without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost/", AMQPExchange: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)

	t.Run("memory", func(t *testing.T) {
		res, err := factory.CreateBackend(ctx, Config{Type: MemoryBackend})
		require.NoError(t, err)
		assert.Nil(t, res.Publisher)
		assert.Nil(t, res.Broker)

		n, err := res.Store.CategoryCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, res.Cleanup())
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.db")
		res, err := factory.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
		require.NoError(t, err)
		defer res.Cleanup()

		c, err := res.Store.InsertCategory(ctx, core.Category{Name: "Food", Icon: core.IconOther, Color: core.ColorGray})
		require.NoError(t, err)
		assert.NotZero(t, c.ID)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := factory.CreateBackend(ctx, Config{Type: "sheets"})
		assert.Error(t, err)
	})
}
