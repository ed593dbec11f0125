package persistence

import (
	"context"

	"github.com/sadsod/storefront/internal/domain/identity"
	"github.com/sadsod/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAdminUserRepository implements AdminUserRepository using GORM
type GormAdminUserRepository struct {
	db *gorm.DB
}

// NewGormAdminUserRepository creates a new GormAdminUserRepository
func NewGormAdminUserRepository(db *gorm.DB) *GormAdminUserRepository {
	return &GormAdminUserRepository{db: db}
}

// FindByUsername finds an admin by username
func (r *GormAdminUserRepository) FindByUsername(ctx context.Context, username string) (*identity.AdminUser, error) {
	var model models.AdminUserModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Count returns the number of admin accounts
func (r *GormAdminUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminUserModel{}).Count(&count).Error
	return count, err
}

// Save creates or updates an admin account
func (r *GormAdminUserRepository) Save(ctx context.Context, user *identity.AdminUser) error {
	model := &models.AdminUserModel{}
	model.FromDomain(user)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// Ensure GormAdminUserRepository implements AdminUserRepository
var _ identity.AdminUserRepository = (*GormAdminUserRepository)(nil)
