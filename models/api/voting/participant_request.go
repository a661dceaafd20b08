package votingapimodels

import (
	"docflow-backend/models"
	dbmodels "docflow-backend/models/db"
	"time"

	"github.com/pkg/errors"
)

type SignRequestData struct {
	DocumentVersionID string `json:"document_version_id"`
	UserID            string `json:"user_id"` // кого просим подписать
}

func (r SignRequestData) Validate() error {
	if r.DocumentVersionID == "" {
		return errors.New("не указана версия документа")
	}
	if r.UserID == "" {
		return errors.New("не указан подписант")
	}
	return nil
}

type RequestFilter struct {
	Statuses []models.RequestStatus `json:"statuses"` // пусто - все статусы
}

func (r RequestFilter) Validate() error {
	for _, status := range r.Statuses {
		if !status.IsValid() {
			return errors.Errorf("недопустимый статус запроса: %v", status)
		}
	}
	return nil
}

type RejectData struct {
	Comment string `json:"comment"`
}

func (r RejectData) Validate() error {
	if r.Comment == "" {
		return errors.New("не указана причина отказа")
	}
	return nil
}

type SignatureView struct {
	ID                string    `json:"id"`
	DocumentVersionID string    `json:"document_version_id"`
	SignerID          string    `json:"signer_id"`
	RequestID         string    `json:"request_id,omitempty"`
	VotingID          string    `json:"voting_id,omitempty"`
	Hash              string    `json:"hash"`
	CreatedAt         time.Time `json:"created_at"`
}

func SignatureConvert(rec dbmodels.Signature) SignatureView {
	return SignatureView{
		ID:                rec.ID,
		DocumentVersionID: rec.DocumentVersionID,
		SignerID:          rec.SignerID,
		RequestID:         rec.RequestID,
		VotingID:          rec.VotingID,
		Hash:              rec.Hash,
		CreatedAt:         rec.CreatedAt,
	}
}

type RequestHistoryView struct {
	Status     models.RequestStatus `json:"status"`
	StatusName string               `json:"status_name"`
	UserID     string               `json:"user_id"`
	Comment    string               `json:"comment,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

func RequestHistoryConvert(rec dbmodels.RequestHistory) RequestHistoryView {
	return RequestHistoryView{
		Status:     rec.Status,
		StatusName: rec.Status.ToHuman(),
		UserID:     rec.UserID,
		Comment:    rec.Comment,
		CreatedAt:  rec.CreatedAt,
	}
}
