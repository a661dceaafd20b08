package notifyhandler

import (
	pushdatastore "docflow-backend/lib/notify/push-data-store"
	"docflow-backend/lib/smtp"
	"docflow-backend/lib/storage"
	usersstore "docflow-backend/lib/users/store"
	connectionhub "docflow-backend/lib/ws/hub/connection-hub"
	"docflow-backend/models"
	dbmodels "docflow-backend/models/db"
	wsmodels "docflow-backend/models/ws"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Provider оповещение участников. Ошибки доставки только логируются.
type Provider interface {
	RequestCreated(rec dbmodels.ParticipantRequest)
}

var Instance Provider

func NewHandler() {
	Instance = NewInstance(storage.Instance.Users, storage.Instance.PushData, connectionhub.Instance, smtp.Instance)
}

func NewInstance(users usersstore.Provider, pushData pushdatastore.Provider, hub connectionhub.Provider, mailer smtp.Provider) Provider {
	return impl{
		users:    users,
		pushData: pushData,
		hub:      hub,
		mailer:   mailer,
	}
}

type impl struct {
	users    usersstore.Provider
	pushData pushdatastore.Provider
	hub      connectionhub.Provider
	mailer   smtp.Provider
}

func (i impl) getLogger(rec dbmodels.ParticipantRequest) *log.Entry {
	return log.
		WithField("request_id", rec.ID).
		WithField("user_id", rec.UserID).
		WithField("voting_id", rec.VotingID)
}

func (i impl) RequestCreated(rec dbmodels.ParticipantRequest) {
	logger := i.getLogger(rec)
	user, err := i.users.GetByID(rec.UserID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения пользователя для уведомления")
		return
	}
	if user == nil {
		logger.Warn("уведомление не отправлено: пользователь не найден")
		return
	}
	code, msg := buildMessage(rec)
	if user.PushEnabled {
		i.push(logger, user.ID, code, msg)
	}
	if user.Email != "" && i.mailer != nil {
		go func(email string) {
			err := i.mailer.SendEMail(email, code.ToHuman(), msg)
			if err != nil {
				logger.WithError(err).Error("ошибка отправки письма")
			}
		}(user.Email)
	}
}

func (i impl) push(logger *log.Entry, userID string, code models.PushCode, msg string) {
	if i.hub != nil && i.hub.IsConnected(userID) {
		sent := i.hub.SendMessage(wsmodels.ServerMessage{
			ToUserID: userID,
			Time:     time.Now().Format("02.01.2006 15:04:05"),
			Code:     string(code),
			Title:    code.ToHuman(),
			Msg:      msg,
		})
		if sent {
			return
		}
	}
	err := i.pushData.Create(dbmodels.PushData{
		UserID: userID,
		Code:   code,
		Msg:    msg,
		Title:  code.ToHuman(),
	})
	if err != nil {
		logger.WithError(err).Error("ошибка сохранения уведомления")
	}
}

func buildMessage(rec dbmodels.ParticipantRequest) (models.PushCode, string) {
	if rec.IsAdHoc() {
		return models.PushCodeSignRequest, fmt.Sprintf("Вас просят подписать версию документа %v", rec.DocumentVersionID)
	}
	return models.PushCodeVoteRequest, fmt.Sprintf("Вы включены в голосование %v по версии документа %v", rec.VotingID, rec.DocumentVersionID)
}
