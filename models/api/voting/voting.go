package votingapimodels

import (
	"docflow-backend/models"
	dbmodels "docflow-backend/models/db"
	"time"

	"github.com/pkg/errors"
)

type StartVotingData struct {
	DocumentVersionID string    `json:"document_version_id"` // ид версии документа
	Participants      []string  `json:"participants"`        // ид участников голосования
	ApprovalThreshold int       `json:"approval_threshold"`  // порог одобрения, %
	Deadline          time.Time `json:"deadline"`            // срок окончания голосования
}

func (r StartVotingData) Validate() error {
	if r.DocumentVersionID == "" {
		return errors.New("не указана версия документа")
	}
	if len(r.Participants) == 0 {
		return errors.New("не указаны участники голосования")
	}
	for _, userID := range r.Participants {
		if userID == "" {
			return errors.New("пустой идентификатор участника")
		}
	}
	if r.ApprovalThreshold < 0 || r.ApprovalThreshold > 100 {
		return errors.New("порог одобрения должен быть в диапазоне от 0 до 100")
	}
	if r.Deadline.IsZero() {
		return errors.New("не указан срок окончания голосования")
	}
	return nil
}

type CastVoteData struct {
	Decision models.VoteDecision `json:"decision"` // FOR/AGAINST
	Comment  string              `json:"comment"`
}

func (r CastVoteData) Validate() error {
	if !r.Decision.IsValid() {
		return errors.Errorf("недопустимое решение: %v", r.Decision)
	}
	return nil
}

type VotingFilter struct {
	Status models.VotingStatus `json:"status"`
}

func (r VotingFilter) Validate() error {
	if !r.Status.IsValid() {
		return errors.Errorf("недопустимый статус голосования: %v", r.Status)
	}
	return nil
}

type VotingView struct {
	ID                  string                   `json:"id"`
	DocumentVersionID   string                   `json:"document_version_id"`
	InitiatorID         string                   `json:"initiator_id,omitempty"`
	Status              models.VotingStatus      `json:"status"`
	StatusName          string                   `json:"status_name"`
	ApprovalThreshold   int                      `json:"approval_threshold"`
	CurrentApprovalRate *float64                 `json:"current_approval_rate"`
	ThresholdMet        *bool                    `json:"threshold_met,omitempty"` // только для завершённых голосований
	CreatedAt           time.Time                `json:"created_at"`
	Deadline            time.Time                `json:"deadline"`
	CompletedAt         *time.Time               `json:"completed_at,omitempty"`
	Requests            []ParticipantRequestView `json:"requests"`
}

func VotingConvert(rec dbmodels.Voting) VotingView {
	result := VotingView{
		ID:                  rec.ID,
		DocumentVersionID:   rec.DocumentVersionID,
		InitiatorID:         rec.InitiatorID,
		Status:              rec.Status,
		StatusName:          rec.Status.ToHuman(),
		ApprovalThreshold:   rec.ApprovalThreshold,
		CurrentApprovalRate: rec.CurrentApprovalRate,
		ThresholdMet:        ThresholdMet(rec),
		CreatedAt:           rec.CreatedAt,
		Deadline:            rec.Deadline,
		CompletedAt:         rec.CompletedAt,
		Requests:            make([]ParticipantRequestView, 0, len(rec.Requests)),
	}
	for _, req := range rec.Requests {
		result.Requests = append(result.Requests, ParticipantRequestConvert(req))
	}
	return result
}

// ThresholdMet достигнут ли порог одобрения. Считается по зафиксированной доле только у завершённого голосования.
func ThresholdMet(rec dbmodels.Voting) *bool {
	if rec.Status != models.VotingStatusCompleted || rec.CurrentApprovalRate == nil {
		return nil
	}
	met := *rec.CurrentApprovalRate*100 >= float64(rec.ApprovalThreshold)
	return &met
}

type ParticipantRequestView struct {
	ID                string               `json:"id"`
	UserID            string               `json:"user_id"`
	UserName          string               `json:"user_name"`
	DocumentVersionID string               `json:"document_version_id"`
	VotingID          *string              `json:"voting_id"` // null - разовый запрос подписи
	Status            models.RequestStatus `json:"status"`
	StatusName        string               `json:"status_name"`
	Comment           string               `json:"comment,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	DecidedAt         *time.Time           `json:"decided_at,omitempty"`
}

func ParticipantRequestConvert(rec dbmodels.ParticipantRequest) ParticipantRequestView {
	result := ParticipantRequestView{
		ID:                rec.ID,
		UserID:            rec.UserID,
		UserName:          rec.GetUserName(),
		DocumentVersionID: rec.DocumentVersionID,
		Status:            rec.Status,
		StatusName:        rec.Status.ToHuman(),
		Comment:           rec.Comment,
		CreatedAt:         rec.CreatedAt,
		DecidedAt:         rec.DecidedAt,
	}
	if !rec.IsAdHoc() {
		votingID := rec.VotingID
		result.VotingID = &votingID
	}
	return result
}
