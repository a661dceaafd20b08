package memorystore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	dbmodels "docflow-backend/models/db"

	"github.com/google/uuid"
)

// Storage хранилище в памяти процесса.
// Повторяет поведение postgres-хранилищ: условные обновления статусов и уникальность запросов участников.
type Storage struct {
	mu sync.RWMutex

	votings      map[string]dbmodels.Voting
	requests     map[string]dbmodels.ParticipantRequest
	requestKeys  map[string]string // user/version/voting -> request id
	requestOrder []string
	history      []dbmodels.RequestHistory
	signatures   []dbmodels.Signature
	users        map[string]dbmodels.User
	versions     map[string]dbmodels.DocumentVersion
	push         []dbmodels.PushData
}

func New() *Storage {
	return &Storage{
		votings:     map[string]dbmodels.Voting{},
		requests:    map[string]dbmodels.ParticipantRequest{},
		requestKeys: map[string]string{},
		users:       map[string]dbmodels.User{},
		versions:    map[string]dbmodels.DocumentVersion{},
	}
}

// PutUser добавляет пользователя в справочник, возвращает его ид
func (s *Storage) PutUser(rec dbmodels.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prepare(&rec.BaseModel)
	s.users[rec.ID] = rec
	return rec.ID
}

// PutDocumentVersion добавляет версию документа, возвращает её ид
func (s *Storage) PutDocumentVersion(rec dbmodels.DocumentVersion) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prepare(&rec.BaseModel)
	s.versions[rec.ID] = rec
	return rec.ID
}

func (s *Storage) Votings() *VotingStore {
	return &VotingStore{s: s}
}

func (s *Storage) Requests() *RequestStore {
	return &RequestStore{s: s}
}

func (s *Storage) History() *HistoryStore {
	return &HistoryStore{s: s}
}

func (s *Storage) Signatures() *SignatureStore {
	return &SignatureStore{s: s}
}

func (s *Storage) Users() *UserStore {
	return &UserStore{s: s}
}

func (s *Storage) DocumentVersions() *DocumentVersionStore {
	return &DocumentVersionStore{s: s}
}

func (s *Storage) PushData() *PushDataStore {
	return &PushDataStore{s: s}
}

func prepare(base *dbmodels.BaseModel) {
	if base.IsNew() {
		base.ID = uuid.NewString()
	}
	now := time.Now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func requestKey(userID, documentVersionID, votingID string) string {
	return fmt.Sprintf("%s/%s/%s", userID, documentVersionID, votingID)
}

// withUser вызывается под блокировкой хранилища
func (s *Storage) withUser(rec dbmodels.ParticipantRequest) dbmodels.ParticipantRequest {
	if user, ok := s.users[rec.UserID]; ok {
		rec.User = &user
	}
	return rec
}

// votingRequests вызывается под блокировкой хранилища
func (s *Storage) votingRequests(votingID string) []dbmodels.ParticipantRequest {
	list := []dbmodels.ParticipantRequest{}
	for _, id := range s.requestOrder {
		rec := s.requests[id]
		if rec.VotingID == votingID {
			list = append(list, s.withUser(rec))
		}
	}
	sort.SliceStable(list, func(a, b int) bool {
		return list[a].Position < list[b].Position
	})
	return list
}
