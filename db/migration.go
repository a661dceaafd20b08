package db

import (
	dbmodels "docflow-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func AutoMigrateDB() error {
	DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	log.Info("Запуск миграций")
	if err := DB.AutoMigrate(&dbmodels.User{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры User")
	}
	if err := DB.AutoMigrate(&dbmodels.DocumentVersion{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры DocumentVersion")
	}
	if err := DB.AutoMigrate(&dbmodels.Voting{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Voting")
	}
	if err := DB.AutoMigrate(&dbmodels.ParticipantRequest{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры ParticipantRequest")
	}
	if err := DB.AutoMigrate(&dbmodels.RequestHistory{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры RequestHistory")
	}
	if err := DB.AutoMigrate(&dbmodels.Signature{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Signature")
	}
	if err := DB.AutoMigrate(&dbmodels.PushData{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры PushData")
	}
	log.Info("Миграция прошла успешно")
	return nil
}
