package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// OneTimeCodeRepository stores verification codes keyed by purpose and subject.
type OneTimeCodeRepository interface {
	// Put stores code, replacing any earlier code for the same key.
	Put(ctx context.Context, code *models.OneTimeCode) error
	Get(ctx context.Context, purpose, subject string) (*models.OneTimeCode, error)
	Delete(ctx context.Context, purpose, subject string) error
}

// GORMOneTimeCodeRepository is a GORM implementation of OneTimeCodeRepository.
type GORMOneTimeCodeRepository struct {
	db *gorm.DB
}

// NewGORMOneTimeCodeRepository creates a new instance of GORMOneTimeCodeRepository.
func NewGORMOneTimeCodeRepository(db *gorm.DB) *GORMOneTimeCodeRepository {
	return &GORMOneTimeCodeRepository{db: db}
}

func (r *GORMOneTimeCodeRepository) Put(ctx context.Context, code *models.OneTimeCode) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "purpose"}, {Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "created_at"}),
	}).Create(code).Error
	if err != nil {
		return fmt.Errorf("failed to store one-time code: %w", translate(err))
	}
	return nil
}

func (r *GORMOneTimeCodeRepository) Get(ctx context.Context, purpose, subject string) (*models.OneTimeCode, error) {
	var code models.OneTimeCode
	err := r.db.WithContext(ctx).First(&code, "purpose = ? AND subject = ?", purpose, subject).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get one-time code: %w", translate(err))
	}
	return &code, nil
}

func (r *GORMOneTimeCodeRepository) Delete(ctx context.Context, purpose, subject string) error {
	err := r.db.WithContext(ctx).Where("purpose = ? AND subject = ?", purpose, subject).Delete(&models.OneTimeCode{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete one-time code: %w", translate(err))
	}
	return nil
}
