package models

import (
	"time"

	"github.com/sadsod/storefront/internal/domain/identity"
)

// AdminUserModel is the persistence model for a back-office account.
type AdminUserModel struct {
	BaseModel
	Username     string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_admin_users_username"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (AdminUserModel) TableName() string {
	return "admin_users"
}

// ToDomain converts the persistence model to a domain AdminUser.
func (m *AdminUserModel) ToDomain() *identity.AdminUser {
	return &identity.AdminUser{
		BaseEntity:   m.BaseModel.ToDomain(),
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		LastLoginAt:  m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain AdminUser.
func (m *AdminUserModel) FromDomain(u *identity.AdminUser) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Username = u.Username
	m.PasswordHash = u.PasswordHash
	m.LastLoginAt = u.LastLoginAt
}
