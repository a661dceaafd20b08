package dbmodels

import "docflow-backend/models"

// PushData уведомление, не доставленное пользователю по websocket
type PushData struct {
	BaseModel
	UserID string          `gorm:"type:varchar(36);index:idx_user"`
	Code   models.PushCode `gorm:"type:varchar(255)"`
	Msg    string
	Title  string
}
