package dbmodels

type DocumentVersion struct {
	BaseModel
	DocumentID string `gorm:"type:varchar(36);index"`
	Number     int
	FileName   string
}
