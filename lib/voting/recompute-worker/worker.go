package recomputeworker

import (
	"context"
	participantrequeststore "docflow-backend/lib/participant-request/store"
	"docflow-backend/lib/storage"
	baseworker "docflow-backend/lib/utils/base-worker"
	"docflow-backend/lib/utils/clock"
	"docflow-backend/lib/utils/helpers"
	votinghandler "docflow-backend/lib/voting"
	votingstore "docflow-backend/lib/voting/store"
	"docflow-backend/models"
	"time"
)

// StartWorker периодический пересчет доли одобрения активных голосований
func StartWorker(ctx context.Context, firstRunDelay, runInterval time.Duration) {
	i := newWorker(storage.Instance.Votings, storage.Instance.Requests, firstRunDelay, runInterval, clock.Real())
	go i.Run(ctx, i.handle)
}

func newWorker(votings votingstore.Provider, requests participantrequeststore.Provider, firstRunDelay, runInterval time.Duration, clk clock.Clock) *impl {
	return &impl{
		BaseImpl:     *baseworker.NewInstance("ApprovalRecomputeWorker", firstRunDelay, runInterval, clk),
		votingStore:  votings,
		requestStore: requests,
	}
}

type impl struct {
	baseworker.BaseImpl
	votingStore  votingstore.Provider
	requestStore participantrequeststore.Provider
}

// handle голоса могут меняться во время пересчета, доля носит справочный характер
func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	list, err := i.votingStore.ListByStatus(models.VotingStatusActive)
	if err != nil {
		logger.WithError(err).Error("Ошибка получения списка активных голосований")
		return
	}
	updated := 0
	for _, voting := range list {
		if helpers.IsContextDone(ctx) {
			break
		}
		counts, err := i.requestStore.StatusCounts(voting.ID)
		if err != nil {
			logger.
				WithError(err).
				WithField("voting_id", voting.ID).
				Error("Ошибка подсчета голосов")
			continue
		}
		ok, err := i.votingStore.SetApprovalRate(voting.ID, votinghandler.ApprovalRate(counts))
		if err != nil {
			logger.
				WithError(err).
				WithField("voting_id", voting.ID).
				Error("Ошибка сохранения доли одобрения")
			continue
		}
		if !ok {
			logger.
				WithField("voting_id", voting.ID).
				Debug("Голосование завершено во время пересчета")
			continue
		}
		updated++
	}
	logger.WithField("updated", updated).Info("Доля одобрения пересчитана")
}
