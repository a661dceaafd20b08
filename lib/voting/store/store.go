package votingstore

import (
	"docflow-backend/models"
	dbmodels "docflow-backend/models/db"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Voting) (id string, err error)
	GetByID(id string) (rec *dbmodels.Voting, err error)
	ListByStatus(status models.VotingStatus) (list []dbmodels.Voting, err error)
	// Complete переводит ACTIVE -> COMPLETED, false если запись уже не в статусе ACTIVE
	Complete(id string, rate *float64, completedAt time.Time) (bool, error)
	// SetApprovalRate обновляет долю одобрения только у голосований в статусе ACTIVE
	SetApprovalRate(id string, rate *float64) (bool, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Voting) (id string, err error) {
	err = i.db.
		Omit("Requests").
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Voting, error) {
	rec := dbmodels.Voting{}
	err := i.db.
		Where("id = ?", id).
		Preload("Requests", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Preload("Requests.User").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) ListByStatus(status models.VotingStatus) (list []dbmodels.Voting, err error) {
	list = []dbmodels.Voting{}
	err = i.db.
		Where("status = ?", status).
		Order("created_at ASC").
		Preload("Requests", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Complete(id string, rate *float64, completedAt time.Time) (bool, error) {
	tx := i.db.
		Model(&dbmodels.Voting{}).
		Where("id = ?", id).
		Where("status = ?", models.VotingStatusActive).
		Updates(map[string]interface{}{
			"status":                models.VotingStatusCompleted,
			"current_approval_rate": rate,
			"completed_at":          completedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (i impl) SetApprovalRate(id string, rate *float64) (bool, error) {
	tx := i.db.
		Model(&dbmodels.Voting{}).
		Where("id = ?", id).
		Where("status = ?", models.VotingStatusActive).
		Update("current_approval_rate", rate)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
