package memorystore

import (
	documentversionstore "docflow-backend/lib/document-version/store"
	pushdatastore "docflow-backend/lib/notify/push-data-store"
	signaturestore "docflow-backend/lib/signature/store"
	usersstore "docflow-backend/lib/users/store"
	dbmodels "docflow-backend/models/db"
)

var (
	_ signaturestore.Provider       = (*SignatureStore)(nil)
	_ usersstore.Provider           = (*UserStore)(nil)
	_ documentversionstore.Provider = (*DocumentVersionStore)(nil)
	_ pushdatastore.Provider        = (*PushDataStore)(nil)
)

type SignatureStore struct {
	s *Storage
}

func (r *SignatureStore) Create(rec dbmodels.Signature) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prepare(&rec.BaseModel)
	r.s.signatures = append(r.s.signatures, rec)
	return rec.ID, nil
}

func (r *SignatureStore) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.signatures[:0]
	for _, rec := range r.s.signatures {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	r.s.signatures = kept
	return nil
}

func (r *SignatureStore) ListByDocumentVersion(documentVersionID string) ([]dbmodels.Signature, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []dbmodels.Signature{}
	for _, rec := range r.s.signatures {
		if rec.DocumentVersionID == documentVersionID {
			list = append(list, rec)
		}
	}
	return list, nil
}

type UserStore struct {
	s *Storage
}

func (r *UserStore) GetByID(userID string) (*dbmodels.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.users[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type DocumentVersionStore struct {
	s *Storage
}

func (r *DocumentVersionStore) Exists(documentVersionID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.versions[documentVersionID]
	return ok, nil
}

type PushDataStore struct {
	s *Storage
}

func (r *PushDataStore) Create(rec dbmodels.PushData) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prepare(&rec.BaseModel)
	r.s.push = append(r.s.push, rec)
	return nil
}

func (r *PushDataStore) List(userID string) ([]dbmodels.PushData, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []dbmodels.PushData{}
	for _, rec := range r.s.push {
		if rec.UserID == userID {
			list = append(list, rec)
		}
	}
	return list, nil
}

func (r *PushDataStore) Delete(ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	remove := map[string]bool{}
	for _, id := range ids {
		remove[id] = true
	}
	kept := r.s.push[:0]
	for _, rec := range r.s.push {
		if !remove[rec.ID] {
			kept = append(kept, rec)
		}
	}
	r.s.push = kept
	return nil
}
