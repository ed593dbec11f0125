package persistence

import (
	"context"
	"testing"

	"github.com/sadsod/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewDatabase_SQLite(t *testing.T) {
	db := newTestDatabase(t)

	assert.Equal(t, "sqlite", db.Driver)
	assert.NoError(t, db.Ping(context.Background()))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)

	for _, table := range []string{"products", "shipping_rates", "sub_regions", "orders", "order_items", "order_sequences", "admin_users"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "mysql"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported database driver "mysql"`)
}

func TestDatabase_Transaction(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	repo := NewGormProductRepository(db.DB)

	t.Run("rolls back on error", func(t *testing.T) {
		err := db.Transaction(ctx, func(tx *gorm.DB) error {
			seedProduct(t, repo.WithTx(tx), productAttrs("Rollback", 100))
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		exists, err := repo.ExistsBySlug(ctx, "rollback")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("commits on success", func(t *testing.T) {
		err := db.Transaction(ctx, func(tx *gorm.DB) error {
			seedProduct(t, repo.WithTx(tx), productAttrs("Commit", 100))
			return nil
		})
		require.NoError(t, err)

		exists, err := repo.ExistsBySlug(ctx, "commit")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
