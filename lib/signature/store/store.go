package signaturestore

import (
	dbmodels "docflow-backend/models/db"

	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Signature) (id string, err error)
	Delete(id string) error
	ListByDocumentVersion(documentVersionID string) (list []dbmodels.Signature, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Signature) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) Delete(id string) error {
	return i.db.
		Where("id = ?", id).
		Delete(&dbmodels.Signature{}).
		Error
}

func (i impl) ListByDocumentVersion(documentVersionID string) (list []dbmodels.Signature, err error) {
	list = []dbmodels.Signature{}
	err = i.db.
		Where("document_version_id = ?", documentVersionID).
		Order("created_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
