package participantrequesthandler

import (
	"crypto/sha256"
	"encoding/hex"
	documentversionstore "docflow-backend/lib/document-version/store"
	notifyhandler "docflow-backend/lib/notify"
	requesthistorystore "docflow-backend/lib/participant-request/history-store"
	participantrequeststore "docflow-backend/lib/participant-request/store"
	signaturestore "docflow-backend/lib/signature/store"
	"docflow-backend/lib/storage"
	usersstore "docflow-backend/lib/users/store"
	apperrors "docflow-backend/lib/utils/app-errors"
	"docflow-backend/lib/utils/clock"
	initchecker "docflow-backend/lib/utils/init-checker"
	"docflow-backend/models"
	votingapimodels "docflow-backend/models/api/voting"
	dbmodels "docflow-backend/models/db"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Provider interface {
	// CreateRequest votingID пустой для разового запроса подписи. Участник не уведомляется, см. NotifyCreated
	CreateRequest(userID, documentVersionID, votingID string, position int) (dbmodels.ParticipantRequest, error)
	NotifyCreated(list ...dbmodels.ParticipantRequest)
	UpdateStatus(requestID string, status models.RequestStatus, comment string) error
	GetForVoting(votingID, userID string) (*dbmodels.ParticipantRequest, error)
	ListByUser(userID string, filter votingapimodels.RequestFilter) ([]votingapimodels.ParticipantRequestView, error)
	ListByVoting(votingID string) ([]dbmodels.ParticipantRequest, error)
	StatusCounts(votingID string) (map[models.RequestStatus]int64, error)
	RequestSignature(data votingapimodels.SignRequestData) (votingapimodels.ParticipantRequestView, error)
	Sign(requestID, userID string) (votingapimodels.SignatureView, error)
	Reject(requestID, userID string, data votingapimodels.RejectData) error
	History(requestID string) ([]votingapimodels.RequestHistoryView, error)
}

var Instance Provider

func NewHandler() {
	initchecker.CheckInit(
		"storage", storage.Instance.Requests,
		"notifyhandler", notifyhandler.Instance,
	)
	Instance = NewInstance(Deps{
		Requests:         storage.Instance.Requests,
		History:          storage.Instance.History,
		Signatures:       storage.Instance.Signatures,
		Users:            storage.Instance.Users,
		DocumentVersions: storage.Instance.DocumentVersions,
		Notifier:         notifyhandler.Instance,
		Clock:            clock.Real(),
	})
}

type Deps struct {
	Requests         participantrequeststore.Provider
	History          requesthistorystore.Provider
	Signatures       signaturestore.Provider
	Users            usersstore.Provider
	DocumentVersions documentversionstore.Provider
	Notifier         notifyhandler.Provider
	Clock            clock.Clock
}

func NewInstance(deps Deps) Provider {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	return impl{
		store:        deps.Requests,
		historyStore: deps.History,
		signStore:    deps.Signatures,
		usersStore:   deps.Users,
		versionStore: deps.DocumentVersions,
		notifier:     deps.Notifier,
		clock:        deps.Clock,
	}
}

type impl struct {
	store        participantrequeststore.Provider
	historyStore requesthistorystore.Provider
	signStore    signaturestore.Provider
	usersStore   usersstore.Provider
	versionStore documentversionstore.Provider
	notifier     notifyhandler.Provider
	clock        clock.Clock
}

func (i impl) getLogger(requestID, userID string) *log.Entry {
	logger := log.WithField("request_id", requestID)
	if userID != "" {
		logger = logger.WithField("user_id", userID)
	}
	return logger
}

func (i impl) CreateRequest(userID, documentVersionID, votingID string, position int) (dbmodels.ParticipantRequest, error) {
	user, err := i.usersStore.GetByID(userID)
	if err != nil {
		return dbmodels.ParticipantRequest{}, errors.Wrap(err, "ошибка получения пользователя")
	}
	if user == nil {
		return dbmodels.ParticipantRequest{}, apperrors.NotFound("пользователь %v не найден", userID)
	}
	rec := dbmodels.ParticipantRequest{
		UserID:            userID,
		DocumentVersionID: documentVersionID,
		VotingID:          votingID,
		Position:          position,
		Status:            models.RequestStatusPending,
	}
	id, err := i.store.Create(rec)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dbmodels.ParticipantRequest{}, apperrors.Conflict("запрос участнику %v по версии документа %v уже создан", userID, documentVersionID)
		}
		return dbmodels.ParticipantRequest{}, errors.Wrap(err, "ошибка создания запроса участника")
	}
	rec.ID = id
	rec.User = user
	i.audit(rec, models.RequestStatusPending, "")
	return rec, nil
}

func (i impl) NotifyCreated(list ...dbmodels.ParticipantRequest) {
	if i.notifier == nil {
		return
	}
	for _, rec := range list {
		i.notifier.RequestCreated(rec)
	}
}

func (i impl) UpdateStatus(requestID string, status models.RequestStatus, comment string) error {
	if !status.IsTerminal() {
		return apperrors.InvalidArgument("недопустимый статус запроса: %v", status)
	}
	rec, err := i.store.GetByID(requestID)
	if err != nil {
		return errors.Wrap(err, "ошибка получения запроса участника")
	}
	if rec == nil {
		return apperrors.NotFound("запрос участника не найден")
	}
	return i.transit(*rec, status, comment)
}

func (i impl) transit(rec dbmodels.ParticipantRequest, status models.RequestStatus, comment string) error {
	if rec.Status != models.RequestStatusPending {
		return apperrors.Conflict("решение по запросу уже принято: %v", rec.Status.ToHuman())
	}
	ok, err := i.store.UpdateStatus(rec.ID, models.RequestStatusPending, status, comment, i.clock.Now())
	if err != nil {
		return errors.Wrap(err, "ошибка изменения статуса запроса участника")
	}
	if !ok {
		return apperrors.Conflict("решение по запросу уже принято")
	}
	i.audit(rec, status, comment)
	return nil
}

func (i impl) GetForVoting(votingID, userID string) (*dbmodels.ParticipantRequest, error) {
	rec, err := i.store.FindByVoting(votingID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения запроса участника")
	}
	return rec, nil
}

func (i impl) ListByUser(userID string, filter votingapimodels.RequestFilter) ([]votingapimodels.ParticipantRequestView, error) {
	list, err := i.store.ListByUser(userID, filter.Statuses)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения списка запросов")
	}
	result := make([]votingapimodels.ParticipantRequestView, 0, len(list))
	for _, rec := range list {
		result = append(result, votingapimodels.ParticipantRequestConvert(rec))
	}
	return result, nil
}

func (i impl) ListByVoting(votingID string) ([]dbmodels.ParticipantRequest, error) {
	return i.store.ListByVoting(votingID)
}

func (i impl) StatusCounts(votingID string) (map[models.RequestStatus]int64, error) {
	return i.store.StatusCounts(votingID)
}

func (i impl) RequestSignature(data votingapimodels.SignRequestData) (votingapimodels.ParticipantRequestView, error) {
	if err := data.Validate(); err != nil {
		return votingapimodels.ParticipantRequestView{}, apperrors.InvalidArgument("%v", err.Error())
	}
	exists, err := i.versionStore.Exists(data.DocumentVersionID)
	if err != nil {
		return votingapimodels.ParticipantRequestView{}, errors.Wrap(err, "ошибка получения версии документа")
	}
	if !exists {
		return votingapimodels.ParticipantRequestView{}, apperrors.NotFound("версия документа %v не найдена", data.DocumentVersionID)
	}
	rec, err := i.CreateRequest(data.UserID, data.DocumentVersionID, "", 0)
	if err != nil {
		return votingapimodels.ParticipantRequestView{}, err
	}
	i.NotifyCreated(rec)
	return votingapimodels.ParticipantRequestConvert(rec), nil
}

func (i impl) Sign(requestID, userID string) (votingapimodels.SignatureView, error) {
	rec, err := i.getOwnAdHoc(requestID, userID)
	if err != nil {
		return votingapimodels.SignatureView{}, err
	}
	if rec.Status != models.RequestStatusPending {
		return votingapimodels.SignatureView{}, apperrors.Conflict("решение по запросу уже принято: %v", rec.Status.ToHuman())
	}
	logger := i.getLogger(requestID, userID)
	// подпись сохраняется до смены статуса: SIGNED без подписи не должен появиться
	sign := dbmodels.Signature{
		DocumentVersionID: rec.DocumentVersionID,
		SignerID:          userID,
		RequestID:         rec.ID,
		Hash:              signatureHash(rec.DocumentVersionID, userID, rec.ID, i.clock.Now()),
	}
	sign.ID, err = i.signStore.Create(sign)
	if err != nil {
		return votingapimodels.SignatureView{}, errors.Wrap(err, "ошибка сохранения подписи")
	}
	err = i.transit(*rec, models.RequestStatusSigned, "")
	if err != nil {
		if delErr := i.signStore.Delete(sign.ID); delErr != nil {
			logger.
				WithError(delErr).
				WithField("signature_id", sign.ID).
				Error("ошибка удаления подписи по неподписанному запросу")
		}
		return votingapimodels.SignatureView{}, err
	}
	sign.CreatedAt = i.clock.Now()
	logger.Info("версия документа подписана")
	return votingapimodels.SignatureConvert(sign), nil
}

func (i impl) Reject(requestID, userID string, data votingapimodels.RejectData) error {
	if err := data.Validate(); err != nil {
		return apperrors.InvalidArgument("%v", err.Error())
	}
	rec, err := i.getOwnAdHoc(requestID, userID)
	if err != nil {
		return err
	}
	return i.transit(*rec, models.RequestStatusRejected, data.Comment)
}

func (i impl) History(requestID string) ([]votingapimodels.RequestHistoryView, error) {
	rec, err := i.store.GetByID(requestID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения запроса участника")
	}
	if rec == nil {
		return nil, apperrors.NotFound("запрос участника не найден")
	}
	list, err := i.historyStore.List(requestID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения истории запроса")
	}
	result := make([]votingapimodels.RequestHistoryView, 0, len(list))
	for _, item := range list {
		result = append(result, votingapimodels.RequestHistoryConvert(item))
	}
	return result, nil
}

// getOwnAdHoc чужие запросы для пользователя не существуют
func (i impl) getOwnAdHoc(requestID, userID string) (*dbmodels.ParticipantRequest, error) {
	rec, err := i.store.GetByID(requestID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения запроса участника")
	}
	if rec == nil || rec.UserID != userID {
		return nil, apperrors.NotFound("запрос участника не найден")
	}
	if !rec.IsAdHoc() {
		return nil, apperrors.Conflict("запрос относится к голосованию, решение принимается голосом")
	}
	return rec, nil
}

func (i impl) audit(rec dbmodels.ParticipantRequest, status models.RequestStatus, comment string) {
	if i.historyStore == nil {
		return
	}
	_, err := i.historyStore.Create(dbmodels.RequestHistory{
		RequestID: rec.ID,
		VotingID:  rec.VotingID,
		UserID:    rec.UserID,
		Status:    status,
		Comment:   comment,
	})
	if err != nil {
		i.getLogger(rec.ID, rec.UserID).
			WithError(err).
			Error("ошибка записи истории запроса")
	}
}

func signatureHash(documentVersionID, signerID, requestID string, signedAt time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s", documentVersionID, signerID, requestID, signedAt.UTC().Format(time.RFC3339Nano))))
	return hex.EncodeToString(sum[:])
}
