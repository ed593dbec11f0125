package persistence

import (
	"context"
	"fmt"

	"github.com/sadsod/storefront/internal/domain/trade"
	"github.com/sadsod/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderSequence implements OrderSequence on the order_sequences table.
// Next must run inside a transaction: the UPDATE row lock is what serialises
// concurrent callers until the order using the number is committed.
type GormOrderSequence struct {
	db *gorm.DB
}

// NewGormOrderSequence creates a new GormOrderSequence
func NewGormOrderSequence(db *gorm.DB) *GormOrderSequence {
	return &GormOrderSequence{db: db}
}

// WithTx returns a new sequence instance with the given transaction
func (s *GormOrderSequence) WithTx(tx *gorm.DB) *GormOrderSequence {
	return &GormOrderSequence{db: tx}
}

// Next increments and returns the counter for key
func (s *GormOrderSequence) Next(ctx context.Context, key string, seed func(ctx context.Context) (int64, error)) (int64, error) {
	db := s.db.WithContext(ctx)

	created := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seq_key"}},
		DoNothing: true,
	}).Create(&models.OrderSequenceModel{SeqKey: key, Value: 0})
	if created.Error != nil {
		return 0, fmt.Errorf("failed to create sequence %s: %w", key, created.Error)
	}

	if created.RowsAffected == 1 && seed != nil {
		start, err := seed(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to seed sequence %s: %w", key, err)
		}
		if start > 0 {
			if err := db.Model(&models.OrderSequenceModel{}).
				Where("seq_key = ?", key).
				UpdateColumn("value", start).Error; err != nil {
				return 0, fmt.Errorf("failed to seed sequence %s: %w", key, err)
			}
		}
	}

	bumped := db.Model(&models.OrderSequenceModel{}).
		Where("seq_key = ?", key).
		UpdateColumn("value", gorm.Expr("value + ?", 1))
	if bumped.Error != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", key, bumped.Error)
	}
	if bumped.RowsAffected != 1 {
		return 0, fmt.Errorf("sequence %s vanished while advancing", key)
	}

	var row models.OrderSequenceModel
	if err := db.Where("seq_key = ?", key).Take(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", key, err)
	}
	return row.Value, nil
}

// Ensure GormOrderSequence implements OrderSequence
var _ trade.OrderSequence = (*GormOrderSequence)(nil)
