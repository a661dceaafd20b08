package votinghandler

import (
	"context"
	documentversionstore "docflow-backend/lib/document-version/store"
	participantrequesthandler "docflow-backend/lib/participant-request"
	"docflow-backend/lib/scheduler"
	signaturestore "docflow-backend/lib/signature/store"
	"docflow-backend/lib/storage"
	usersstore "docflow-backend/lib/users/store"
	apperrors "docflow-backend/lib/utils/app-errors"
	"docflow-backend/lib/utils/clock"
	"docflow-backend/lib/utils/helpers"
	initchecker "docflow-backend/lib/utils/init-checker"
	"docflow-backend/lib/utils/lock"
	votingarchive "docflow-backend/lib/voting-archive"
	votingstore "docflow-backend/lib/voting/store"
	"docflow-backend/models"
	votingapimodels "docflow-backend/models/api/voting"
	dbmodels "docflow-backend/models/db"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	StartVoting(ctx context.Context, initiatorID string, data votingapimodels.StartVotingData) (votingapimodels.VotingView, error)
	CastVote(votingID, userID string, data votingapimodels.CastVoteData) error
	// CompleteVoting идемпотентно, повторный вызов для завершённого голосования ничего не меняет
	CompleteVoting(ctx context.Context, votingID string) error
	GetVoting(votingID string) (votingapimodels.VotingView, error)
	ListVotingsByStatus(filter votingapimodels.VotingFilter) ([]votingapimodels.VotingView, error)
	// RecoverDeadlines заново регистрирует сроки всех активных голосований, возвращает их количество
	RecoverDeadlines(ctx context.Context) (int, error)
}

var Instance Provider

func NewHandler(sched scheduler.Provider) {
	initchecker.CheckInit(
		"storage", storage.Instance.Votings,
		"participantrequesthandler", participantrequesthandler.Instance,
		"scheduler", sched,
	)
	Instance = NewInstance(Deps{
		Votings:          storage.Instance.Votings,
		Signatures:       storage.Instance.Signatures,
		Users:            storage.Instance.Users,
		DocumentVersions: storage.Instance.DocumentVersions,
		Tracker:          participantrequesthandler.Instance,
		Scheduler:        sched,
		Archive:          votingarchive.Instance,
		Clock:            clock.Real(),
	})
}

type Deps struct {
	Votings          votingstore.Provider
	Signatures       signaturestore.Provider
	Users            usersstore.Provider
	DocumentVersions documentversionstore.Provider
	Tracker          participantrequesthandler.Provider
	Scheduler        scheduler.Provider
	Archive          votingarchive.Provider // может быть nil
	Clock            clock.Clock
}

func NewInstance(deps Deps) Provider {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	return &impl{
		store:        deps.Votings,
		signStore:    deps.Signatures,
		usersStore:   deps.Users,
		versionStore: deps.DocumentVersions,
		tracker:      deps.Tracker,
		scheduler:    deps.Scheduler,
		archive:      deps.Archive,
		clock:        deps.Clock,
		locks:        lock.NewKeyMutex(),
	}
}

type impl struct {
	store        votingstore.Provider
	signStore    signaturestore.Provider
	usersStore   usersstore.Provider
	versionStore documentversionstore.Provider
	tracker      participantrequesthandler.Provider
	scheduler    scheduler.Provider
	archive      votingarchive.Provider
	clock        clock.Clock
	// все изменения статусов одного голосования идут под его блокировкой
	locks *lock.KeyMutex
}

func (i *impl) getLogger(votingID string) *log.Entry {
	return log.WithField("voting_id", votingID)
}

func (i *impl) StartVoting(ctx context.Context, initiatorID string, data votingapimodels.StartVotingData) (votingapimodels.VotingView, error) {
	err := i.checkStart(data)
	if err != nil {
		return votingapimodels.VotingView{}, err
	}

	id := uuid.NewString()
	logger := i.getLogger(id).WithField("document_version_id", data.DocumentVersionID)
	unlock := i.locks.Lock(id)
	defer unlock()

	rec := dbmodels.Voting{
		BaseModel:         dbmodels.BaseModel{ID: id},
		DocumentVersionID: data.DocumentVersionID,
		InitiatorID:       initiatorID,
		Status:            models.VotingStatusActive,
		ApprovalThreshold: data.ApprovalThreshold,
		Deadline:          data.Deadline,
	}
	_, err = i.store.Create(rec)
	if err != nil {
		return votingapimodels.VotingView{}, errors.Wrap(err, "ошибка создания голосования")
	}
	created := make([]dbmodels.ParticipantRequest, 0, len(data.Participants))
	for position, userID := range data.Participants {
		req, err := i.tracker.CreateRequest(userID, data.DocumentVersionID, id, position)
		if err != nil {
			i.compensate(logger, id)
			return votingapimodels.VotingView{}, err
		}
		created = append(created, req)
	}
	if initiatorID != "" {
		_, err = i.signStore.Create(dbmodels.Signature{
			DocumentVersionID: data.DocumentVersionID,
			SignerID:          initiatorID,
			VotingID:          id,
		})
		if err != nil {
			i.compensate(logger, id)
			return votingapimodels.VotingView{}, errors.Wrap(err, "ошибка создания подписи инициатора")
		}
	}
	err = i.scheduler.ScheduleAt(id, data.Deadline, i.deadlineCallback(id))
	if err != nil {
		i.compensate(logger, id)
		if apperrors.IsUnavailable(err) {
			return votingapimodels.VotingView{}, err
		}
		return votingapimodels.VotingView{}, apperrors.Unavailable("не удалось запланировать завершение голосования: %v", err.Error())
	}
	// участники узнают о голосовании только после регистрации срока
	i.tracker.NotifyCreated(created...)
	logger.
		WithField("participants", len(data.Participants)).
		Info("голосование запущено")
	return i.GetVoting(id)
}

// checkStart все проверки до первой записи
func (i *impl) checkStart(data votingapimodels.StartVotingData) error {
	if err := data.Validate(); err != nil {
		return apperrors.InvalidArgument("%v", err.Error())
	}
	if !data.Deadline.After(i.clock.Now()) {
		return apperrors.InvalidArgument("срок окончания голосования должен быть в будущем")
	}
	seen := make(map[string]bool, len(data.Participants))
	for _, userID := range data.Participants {
		if seen[userID] {
			return apperrors.Conflict("участник %v указан повторно", userID)
		}
		seen[userID] = true
	}
	exists, err := i.versionStore.Exists(data.DocumentVersionID)
	if err != nil {
		return errors.Wrap(err, "ошибка получения версии документа")
	}
	if !exists {
		return apperrors.NotFound("версия документа %v не найдена", data.DocumentVersionID)
	}
	for _, userID := range data.Participants {
		user, err := i.usersStore.GetByID(userID)
		if err != nil {
			return errors.Wrap(err, "ошибка получения участника")
		}
		if user == nil {
			return apperrors.NotFound("участник %v не найден", userID)
		}
	}
	return nil
}

// compensate голосование без запланированного завершения сразу закрывается
func (i *impl) compensate(logger *log.Entry, votingID string) {
	_, err := i.store.Complete(votingID, nil, i.clock.Now())
	if err != nil {
		logger.WithError(err).Error("ошибка завершения голосования после сбоя запуска")
		return
	}
	logger.Warn("голосование завершено после сбоя запуска")
}

func (i *impl) deadlineCallback(votingID string) scheduler.Callback {
	return func(ctx context.Context) {
		err := i.CompleteVoting(ctx, votingID)
		if err != nil {
			i.getLogger(votingID).WithError(err).Error("ошибка завершения голосования по сроку")
		}
	}
}

func (i *impl) CastVote(votingID, userID string, data votingapimodels.CastVoteData) error {
	if err := data.Validate(); err != nil {
		return apperrors.InvalidArgument("%v", err.Error())
	}
	unlock := i.locks.Lock(votingID)
	defer unlock()

	rec, err := i.store.GetByID(votingID)
	if err != nil {
		return errors.Wrap(err, "ошибка получения голосования")
	}
	if rec == nil {
		return apperrors.NotFound("голосование не найдено")
	}
	if !rec.IsActive() {
		return apperrors.Conflict("голосование завершено")
	}
	req, err := i.tracker.GetForVoting(votingID, userID)
	if err != nil {
		return err
	}
	if req == nil {
		return apperrors.NotFound("пользователь не является участником голосования")
	}
	err = i.tracker.UpdateStatus(req.ID, data.Decision.ToRequestStatus(), data.Comment)
	if err != nil {
		return err
	}
	i.getLogger(votingID).
		WithField("user_id", userID).
		WithField("decision", data.Decision).
		Info("голос принят")
	return nil
}

func (i *impl) CompleteVoting(ctx context.Context, votingID string) error {
	completed, err := i.complete(votingID)
	if err != nil || !completed {
		return err
	}
	// таймер мог остаться, если завершили вручную
	i.scheduler.Cancel(votingID)
	i.getLogger(votingID).Info("голосование завершено")
	i.archiveVoting(ctx, votingID)
	return nil
}

func (i *impl) complete(votingID string) (bool, error) {
	unlock := i.locks.Lock(votingID)
	defer unlock()

	rec, err := i.store.GetByID(votingID)
	if err != nil {
		return false, errors.Wrap(err, "ошибка получения голосования")
	}
	if rec == nil {
		return false, apperrors.NotFound("голосование не найдено")
	}
	if !rec.IsActive() {
		return false, nil
	}
	counts, err := i.tracker.StatusCounts(votingID)
	if err != nil {
		return false, errors.Wrap(err, "ошибка подсчета голосов")
	}
	ok, err := i.store.Complete(votingID, ApprovalRate(counts), i.clock.Now())
	if err != nil {
		return false, errors.Wrap(err, "ошибка завершения голосования")
	}
	return ok, nil
}

func (i *impl) archiveVoting(ctx context.Context, votingID string) {
	if i.archive == nil {
		return
	}
	logger := i.getLogger(votingID)
	view, err := i.GetVoting(votingID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения голосования для архива")
		return
	}
	if helpers.IsContextDone(ctx) {
		logger.Warn("голосование не сохранено в архив: контекст завершен")
		return
	}
	err = i.archive.Archive(ctx, view)
	if err != nil {
		logger.WithError(err).Error("ошибка сохранения голосования в архив")
	}
}

func (i *impl) GetVoting(votingID string) (votingapimodels.VotingView, error) {
	rec, err := i.store.GetByID(votingID)
	if err != nil {
		return votingapimodels.VotingView{}, errors.Wrap(err, "ошибка получения голосования")
	}
	if rec == nil {
		return votingapimodels.VotingView{}, apperrors.NotFound("голосование не найдено")
	}
	return votingapimodels.VotingConvert(*rec), nil
}

func (i *impl) ListVotingsByStatus(filter votingapimodels.VotingFilter) ([]votingapimodels.VotingView, error) {
	if err := filter.Validate(); err != nil {
		return nil, apperrors.InvalidArgument("%v", err.Error())
	}
	list, err := i.store.ListByStatus(filter.Status)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения списка голосований")
	}
	result := make([]votingapimodels.VotingView, 0, len(list))
	for _, rec := range list {
		result = append(result, votingapimodels.VotingConvert(rec))
	}
	return result, nil
}

func (i *impl) RecoverDeadlines(ctx context.Context) (int, error) {
	list, err := i.store.ListByStatus(models.VotingStatusActive)
	if err != nil {
		return 0, errors.Wrap(err, "ошибка получения активных голосований")
	}
	count := 0
	for _, rec := range list {
		if helpers.IsContextDone(ctx) {
			return count, ctx.Err()
		}
		err = i.scheduler.ScheduleAt(rec.ID, rec.Deadline, i.deadlineCallback(rec.ID))
		if err != nil {
			i.getLogger(rec.ID).WithError(err).Error("ошибка восстановления срока голосования")
			continue
		}
		count++
	}
	log.WithField("count", count).Info("сроки активных голосований восстановлены")
	return count, nil
}
