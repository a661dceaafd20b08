package memorystore

import (
	votingstore "docflow-backend/lib/voting/store"
	"docflow-backend/models"
	dbmodels "docflow-backend/models/db"
	"sort"
	"time"

	"gorm.io/gorm"
)

var _ votingstore.Provider = (*VotingStore)(nil)

type VotingStore struct {
	s *Storage
}

func (v *VotingStore) Create(rec dbmodels.Voting) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	prepare(&rec.BaseModel)
	if _, ok := v.s.votings[rec.ID]; ok {
		return "", gorm.ErrDuplicatedKey
	}
	rec.Requests = nil
	v.s.votings[rec.ID] = rec
	return rec.ID, nil
}

func (v *VotingStore) GetByID(id string) (*dbmodels.Voting, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	rec, ok := v.s.votings[id]
	if !ok {
		return nil, nil
	}
	rec.Requests = v.s.votingRequests(id)
	return &rec, nil
}

func (v *VotingStore) ListByStatus(status models.VotingStatus) ([]dbmodels.Voting, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	list := []dbmodels.Voting{}
	for _, rec := range v.s.votings {
		if rec.Status != status {
			continue
		}
		rec.Requests = v.s.votingRequests(rec.ID)
		list = append(list, rec)
	}
	sort.SliceStable(list, func(a, b int) bool {
		return list[a].CreatedAt.Before(list[b].CreatedAt)
	})
	return list, nil
}

func (v *VotingStore) Complete(id string, rate *float64, completedAt time.Time) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	rec, ok := v.s.votings[id]
	if !ok || rec.Status != models.VotingStatusActive {
		return false, nil
	}
	rec.Status = models.VotingStatusCompleted
	rec.CurrentApprovalRate = copyRate(rate)
	rec.CompletedAt = &completedAt
	rec.UpdatedAt = time.Now()
	v.s.votings[id] = rec
	return true, nil
}

func (v *VotingStore) SetApprovalRate(id string, rate *float64) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	rec, ok := v.s.votings[id]
	if !ok || rec.Status != models.VotingStatusActive {
		return false, nil
	}
	rec.CurrentApprovalRate = copyRate(rate)
	rec.UpdatedAt = time.Now()
	v.s.votings[id] = rec
	return true, nil
}

func copyRate(rate *float64) *float64 {
	if rate == nil {
		return nil
	}
	value := *rate
	return &value
}
