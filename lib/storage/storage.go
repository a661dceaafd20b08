package storage

import (
	documentversionstore "docflow-backend/lib/document-version/store"
	memorystore "docflow-backend/lib/memory-store"
	pushdatastore "docflow-backend/lib/notify/push-data-store"
	requesthistorystore "docflow-backend/lib/participant-request/history-store"
	participantrequeststore "docflow-backend/lib/participant-request/store"
	signaturestore "docflow-backend/lib/signature/store"
	usersstore "docflow-backend/lib/users/store"
	votingstore "docflow-backend/lib/voting/store"

	"gorm.io/gorm"
)

// Stores набор хранилищ, с которым работают обработчики
type Stores struct {
	Votings          votingstore.Provider
	Requests         participantrequeststore.Provider
	History          requesthistorystore.Provider
	Signatures       signaturestore.Provider
	Users            usersstore.Provider
	DocumentVersions documentversionstore.Provider
	PushData         pushdatastore.Provider
}

var Instance Stores

func InitPostgres(DB *gorm.DB) {
	Instance = NewPostgres(DB)
}

func InitMemory(s *memorystore.Storage) {
	Instance = NewMemory(s)
}

func NewPostgres(DB *gorm.DB) Stores {
	return Stores{
		Votings:          votingstore.NewInstance(DB),
		Requests:         participantrequeststore.NewInstance(DB),
		History:          requesthistorystore.NewInstance(DB),
		Signatures:       signaturestore.NewInstance(DB),
		Users:            usersstore.NewInstance(DB),
		DocumentVersions: documentversionstore.NewInstance(DB),
		PushData:         pushdatastore.NewInstance(DB),
	}
}

func NewMemory(s *memorystore.Storage) Stores {
	return Stores{
		Votings:          s.Votings(),
		Requests:         s.Requests(),
		History:          s.History(),
		Signatures:       s.Signatures(),
		Users:            s.Users(),
		DocumentVersions: s.DocumentVersions(),
		PushData:         s.PushData(),
	}
}
