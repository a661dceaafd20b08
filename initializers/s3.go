package initializers

import (
	"context"
	"docflow-backend/config"
	votingarchive "docflow-backend/lib/voting-archive"
	s3client "docflow-backend/s3"

	log "github.com/sirupsen/logrus"
)

func InitS3() {
	if !*config.Conf.S3.ArchiveEnabled || config.Conf.S3.Endpoint == "" {
		log.Info("Архив голосований в S3 отключен")
		return
	}
	err := s3client.Connect(config.Conf.S3.Endpoint, config.Conf.S3.AccessKeyID, config.Conf.S3.SecretAccessKey, *config.Conf.S3.UseSSL)
	if err != nil {
		log.WithError(err).Error("Ошибка инициализации клиента S3")
		return
	}

	// Проверка соединения
	err = s3client.MakeBucket(context.Background(), s3client.Client, config.Conf.S3.BucketName)
	if err != nil {
		log.WithError(err).Error("S3 соединение не удалось, архив голосований отключен")
		return
	}
	votingarchive.NewHandler(s3client.Client, config.Conf.S3.BucketName)
	log.Info("S3 клиент успешно инициализирован")
}
