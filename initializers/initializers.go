package initializers

import (
	"context"
	"docflow-backend/config"
	"docflow-backend/fiberlog"
	xlsexport "docflow-backend/lib/export/xls"
	notifyhandler "docflow-backend/lib/notify"
	participantrequesthandler "docflow-backend/lib/participant-request"
	"docflow-backend/lib/scheduler"
	"docflow-backend/lib/storage"
	votinghandler "docflow-backend/lib/voting"
	recomputeworker "docflow-backend/lib/voting/recompute-worker"
	connectionhub "docflow-backend/lib/ws/hub/connection-hub"
	"time"

	log "github.com/sirupsen/logrus"
)

var LoggerConfig *fiberlog.Config

// Scheduler сроки голосований, останавливается при завершении сервиса
var Scheduler scheduler.Provider

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitS3()
	InitSmtp()
	connectionhub.Init(storage.Instance.PushData)
	Scheduler = scheduler.NewInstance(ctx, scheduler.Config{
		PoolSize:   config.Conf.Voting.SchedulerPoolSize,
		MaxPending: config.Conf.Voting.SchedulerMaxPending,
	})
	notifyhandler.NewHandler()
	participantrequesthandler.NewHandler()
	votinghandler.NewHandler(Scheduler)
	xlsexport.NewHandler()

	count, err := votinghandler.Instance.RecoverDeadlines(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка восстановления сроков голосований")
	} else {
		log.WithField("count", count).Info("Сроки голосований восстановлены")
	}
	go initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	// Задача пересчета доли одобрения активных голосований
	recomputeworker.StartWorker(ctx,
		time.Duration(config.Conf.Voting.RecomputeFirstDelaySec)*time.Second,
		time.Duration(config.Conf.Voting.RecomputeIntervalMin)*time.Minute)
}
