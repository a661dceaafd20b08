package dbmodels

import (
	"docflow-backend/models"
	"time"
)

type Voting struct {
	BaseModel
	DocumentVersionID   string              `gorm:"type:varchar(36);index"`
	InitiatorID         string              `gorm:"type:varchar(36)"`
	Status              models.VotingStatus `gorm:"type:varchar(20);index"`
	ApprovalThreshold   int                 // порог одобрения, 0..100 %
	CurrentApprovalRate *float64            // доля голосов "за", пересчитывается периодически
	Deadline            time.Time
	CompletedAt         *time.Time
	Requests            []ParticipantRequest `gorm:"foreignKey:VotingID"`
}

func (r Voting) IsActive() bool {
	return r.Status == models.VotingStatusActive
}
