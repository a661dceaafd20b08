package initializers

import (
	"docflow-backend/config"
	"docflow-backend/db"
	memorystore "docflow-backend/lib/memory-store"
	"docflow-backend/lib/storage"

	log "github.com/sirupsen/logrus"
)

func InitDBConnection() {
	if *config.Conf.Database.InMemory {
		storage.InitMemory(memorystore.New())
		log.Warn("Данные хранятся в памяти процесса и будут потеряны при перезапуске")
		return
	}
	err := db.Connect(config.Conf.Database.Host, config.Conf.Database.Port, config.Conf.Database.Name,
		config.Conf.Database.User, config.Conf.Database.Password, *config.Conf.Database.DebugMode, *config.Conf.Database.MigrateOnStart)
	if err != nil {
		panic(err.Error())
	}
	storage.InitPostgres(db.DB)
}
