package dbmodels

type Signature struct {
	BaseModel
	DocumentVersionID string `gorm:"type:varchar(36);index"`
	SignerID          string `gorm:"type:varchar(36)"`
	RequestID         string `gorm:"type:varchar(36)"`
	VotingID          string `gorm:"type:varchar(36)"`
	Hash              string `gorm:"type:varchar(64)"`
}

// IsPlaceholder подпись инициатора голосования, хеш появится после подписания
func (r Signature) IsPlaceholder() bool {
	return r.Hash == ""
}
