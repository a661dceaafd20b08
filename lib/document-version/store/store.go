package documentversionstore

import (
	dbmodels "docflow-backend/models/db"

	"gorm.io/gorm"
)

type Provider interface {
	Exists(documentVersionID string) (bool, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Exists(documentVersionID string) (bool, error) {
	var count int64
	err := i.db.
		Model(&dbmodels.DocumentVersion{}).
		Where("id = ?", documentVersionID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
