package dbmodels

import (
	"docflow-backend/models"
	"time"
)

type ParticipantRequest struct {
	BaseModel
	UserID            string               `gorm:"type:varchar(36);uniqueIndex:idx_participant_request;index"`
	User              *User                `gorm:"foreignKey:UserID"`
	DocumentVersionID string               `gorm:"type:varchar(36);uniqueIndex:idx_participant_request"`
	VotingID          string               `gorm:"type:varchar(36);uniqueIndex:idx_participant_request;not null;default:''"` // пусто - разовый запрос подписи
	Position          int                  // порядок участника в голосовании
	Status            models.RequestStatus `gorm:"type:varchar(20);index"`
	Comment           string
	DecidedAt         *time.Time
}

func (r ParticipantRequest) IsAdHoc() bool {
	return r.VotingID == ""
}

func (r ParticipantRequest) GetUserName() string {
	if r.User != nil {
		return r.User.GetFullName()
	}
	return r.UserID
}

// RequestHistory журнал изменений запросов участников
type RequestHistory struct {
	BaseModel
	RequestID string               `gorm:"type:varchar(36);index"`
	VotingID  string               `gorm:"type:varchar(36)"`
	UserID    string               `gorm:"type:varchar(36)"`
	Status    models.RequestStatus `gorm:"type:varchar(20)"`
	Comment   string
}
