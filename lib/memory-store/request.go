package memorystore

import (
	requesthistorystore "docflow-backend/lib/participant-request/history-store"
	participantrequeststore "docflow-backend/lib/participant-request/store"
	"docflow-backend/models"
	dbmodels "docflow-backend/models/db"
	"time"

	"gorm.io/gorm"
)

var (
	_ participantrequeststore.Provider = (*RequestStore)(nil)
	_ requesthistorystore.Provider     = (*HistoryStore)(nil)
)

type RequestStore struct {
	s *Storage
}

func (r *RequestStore) Create(rec dbmodels.ParticipantRequest) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := requestKey(rec.UserID, rec.DocumentVersionID, rec.VotingID)
	if _, ok := r.s.requestKeys[key]; ok {
		return "", gorm.ErrDuplicatedKey
	}
	prepare(&rec.BaseModel)
	if _, ok := r.s.requests[rec.ID]; ok {
		return "", gorm.ErrDuplicatedKey
	}
	rec.User = nil
	r.s.requests[rec.ID] = rec
	r.s.requestKeys[key] = rec.ID
	r.s.requestOrder = append(r.s.requestOrder, rec.ID)
	return rec.ID, nil
}

func (r *RequestStore) GetByID(id string) (*dbmodels.ParticipantRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.requests[id]
	if !ok {
		return nil, nil
	}
	rec = r.s.withUser(rec)
	return &rec, nil
}

func (r *RequestStore) FindByVoting(votingID, userID string) (*dbmodels.ParticipantRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if votingID == "" {
		return nil, nil
	}
	for _, id := range r.s.requestOrder {
		rec := r.s.requests[id]
		if rec.VotingID == votingID && rec.UserID == userID {
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *RequestStore) UpdateStatus(id string, from, to models.RequestStatus, comment string, decidedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.requests[id]
	if !ok || rec.Status != from {
		return false, nil
	}
	rec.Status = to
	rec.Comment = comment
	rec.DecidedAt = &decidedAt
	rec.UpdatedAt = time.Now()
	r.s.requests[id] = rec
	return true, nil
}

func (r *RequestStore) ListByUser(userID string, statuses []models.RequestStatus) ([]dbmodels.ParticipantRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	filter := map[models.RequestStatus]bool{}
	for _, status := range statuses {
		filter[status] = true
	}
	list := []dbmodels.ParticipantRequest{}
	for _, id := range r.s.requestOrder {
		rec := r.s.requests[id]
		if rec.UserID != userID {
			continue
		}
		if len(filter) != 0 && !filter[rec.Status] {
			continue
		}
		list = append(list, rec)
	}
	return list, nil
}

func (r *RequestStore) ListByVoting(votingID string) ([]dbmodels.ParticipantRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.votingRequests(votingID), nil
}

func (r *RequestStore) StatusCounts(votingID string) (map[models.RequestStatus]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := map[models.RequestStatus]int64{}
	for _, rec := range r.s.requests {
		if rec.VotingID == votingID {
			result[rec.Status]++
		}
	}
	return result, nil
}

type HistoryStore struct {
	s *Storage
}

func (h *HistoryStore) Create(rec dbmodels.RequestHistory) (string, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	prepare(&rec.BaseModel)
	h.s.history = append(h.s.history, rec)
	return rec.ID, nil
}

func (h *HistoryStore) List(requestID string) ([]dbmodels.RequestHistory, error) {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	list := []dbmodels.RequestHistory{}
	for _, rec := range h.s.history {
		if rec.RequestID == requestID {
			list = append(list, rec)
		}
	}
	return list, nil
}
