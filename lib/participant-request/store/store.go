package participantrequeststore

import (
	"docflow-backend/models"
	dbmodels "docflow-backend/models/db"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.ParticipantRequest) (id string, err error)
	GetByID(id string) (rec *dbmodels.ParticipantRequest, err error)
	FindByVoting(votingID, userID string) (rec *dbmodels.ParticipantRequest, err error)
	// UpdateStatus меняет статус только если текущий равен from, false если запись уже изменена
	UpdateStatus(id string, from, to models.RequestStatus, comment string, decidedAt time.Time) (bool, error)
	ListByUser(userID string, statuses []models.RequestStatus) (list []dbmodels.ParticipantRequest, err error)
	ListByVoting(votingID string) (list []dbmodels.ParticipantRequest, err error)
	StatusCounts(votingID string) (map[models.RequestStatus]int64, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.ParticipantRequest) (id string, err error) {
	err = i.db.
		Omit("User").
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.ParticipantRequest, error) {
	rec := dbmodels.ParticipantRequest{}
	err := i.db.
		Where("id = ?", id).
		Preload("User").
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

func (i impl) FindByVoting(votingID, userID string) (*dbmodels.ParticipantRequest, error) {
	rec := dbmodels.ParticipantRequest{}
	err := i.db.
		Where("voting_id = ?", votingID).
		Where("user_id = ?", userID).
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

func (i impl) UpdateStatus(id string, from, to models.RequestStatus, comment string, decidedAt time.Time) (bool, error) {
	tx := i.db.
		Model(&dbmodels.ParticipantRequest{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Updates(map[string]interface{}{
			"status":     to,
			"comment":    comment,
			"decided_at": decidedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (i impl) ListByUser(userID string, statuses []models.RequestStatus) (list []dbmodels.ParticipantRequest, err error) {
	list = []dbmodels.ParticipantRequest{}
	tx := i.db.
		Where("user_id = ?", userID)
	if len(statuses) != 0 {
		values := make([]string, 0, len(statuses))
		for _, status := range statuses {
			values = append(values, string(status))
		}
		tx = tx.Where("status = ANY(?)", pq.Array(values))
	}
	err = tx.
		Order("created_at ASC").
		Order("position ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListByVoting(votingID string) (list []dbmodels.ParticipantRequest, err error) {
	list = []dbmodels.ParticipantRequest{}
	err = i.db.
		Where("voting_id = ?", votingID).
		Order("position ASC").
		Preload("User").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) StatusCounts(votingID string) (map[models.RequestStatus]int64, error) {
	rows := []struct {
		Status models.RequestStatus
		Cnt    int64
	}{}
	err := i.db.
		Model(&dbmodels.ParticipantRequest{}).
		Select("status, count(*) as cnt").
		Where("voting_id = ?", votingID).
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	result := make(map[models.RequestStatus]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Cnt
	}
	return result, nil
}
