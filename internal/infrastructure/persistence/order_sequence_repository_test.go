package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormOrderSequence_Next(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	seq := NewGormOrderSequence(db.DB)

	next := func(key string, seed func(context.Context) (int64, error)) int64 {
		var n int64
		err := db.Transaction(ctx, func(tx *gorm.DB) error {
			var err error
			n, err = seq.WithTx(tx).Next(ctx, key, seed)
			return err
		})
		require.NoError(t, err)
		return n
	}

	t.Run("starts at one and increments", func(t *testing.T) {
		assert.Equal(t, int64(1), next("SADSOD-261019-", nil))
		assert.Equal(t, int64(2), next("SADSOD-261019-", nil))
		assert.Equal(t, int64(3), next("SADSOD-261019-", nil))
	})

	t.Run("keys are independent", func(t *testing.T) {
		assert.Equal(t, int64(1), next("SADSOD-261020-", nil))
	})

	t.Run("seed runs once for a new key", func(t *testing.T) {
		calls := 0
		seed := func(context.Context) (int64, error) {
			calls++
			return 7, nil
		}
		assert.Equal(t, int64(8), next("SADSOD-261021-", seed))
		assert.Equal(t, int64(9), next("SADSOD-261021-", seed))
		assert.Equal(t, 1, calls)
	})

	t.Run("seed failure rolls back the new key", func(t *testing.T) {
		err := db.Transaction(ctx, func(tx *gorm.DB) error {
			_, err := seq.WithTx(tx).Next(ctx, "SADSOD-261022-", func(context.Context) (int64, error) {
				return 0, assert.AnError
			})
			return err
		})
		require.ErrorIs(t, err, assert.AnError)

		assert.Equal(t, int64(1), next("SADSOD-261022-", nil))
	})
}

func TestGormOrderSequence_NextSQL(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	seq := NewGormOrderSequence(gormDB)
	key := "SADSOD-261019-"

	mock.ExpectExec(`INSERT INTO "order_sequences" .* ON CONFLICT \("seq_key"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "order_sequences" SET "value"=\$1 WHERE seq_key = \$2`).
		WithArgs(int64(4), key).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "order_sequences" SET "value"=value \+ \$1 WHERE seq_key = \$2`).
		WithArgs(int64(1), key).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "order_sequences" WHERE seq_key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"seq_key", "value"}).AddRow(key, 5))

	n, err := seq.Next(context.Background(), key, func(context.Context) (int64, error) { return 4, nil })
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
