package xlsexport

import (
	"bytes"
	votingapimodels "docflow-backend/models/api/voting"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type Provider interface {
	ExportVoting(view votingapimodels.VotingView) (*bytes.Buffer, error)
	ExportRequests(list []votingapimodels.ParticipantRequestView) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

const (
	votingSheet   = "Голосование"
	requestsSheet = "Запросы"
	dateFormat    = "02.01.2006 15:04"
)

var (
	votingHeaders      = []string{"Параметр", "Значение"}
	participantHeaders = []string{"№", "Участник", "Решение", "Комментарий", "Дата решения"}
	requestHeaders     = []string{"Версия документа", "Голосование", "Статус", "Комментарий", "Создан", "Дата решения"}
)

func (i impl) ExportVoting(view votingapimodels.VotingView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer closeFile(f)
	if err := f.SetSheetName("Sheet1", votingSheet); err != nil {
		return nil, errors.Wrap(err, "ошибка создания листа в xlsx")
	}
	w, err := newSheetWriter(f, votingSheet)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка создания стиля в xlsx")
	}
	if err = w.writeHeader(votingHeaders, 30); err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	for _, item := range VotingSummary(view) {
		if err = w.writeRow(item[0], item[1]); err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	w.skipRow()
	if err = w.writeHeader(participantHeaders, 30); err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	for n, req := range view.Requests {
		err = w.writeRow(n+1, req.UserName, req.StatusName, req.Comment, formatDate(req.DecidedAt))
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	return f.WriteToBuffer()
}

func (i impl) ExportRequests(list []votingapimodels.ParticipantRequestView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer closeFile(f)
	if err := f.SetSheetName("Sheet1", requestsSheet); err != nil {
		return nil, errors.Wrap(err, "ошибка создания листа в xlsx")
	}
	w, err := newSheetWriter(f, requestsSheet)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка создания стиля в xlsx")
	}
	if err = w.writeHeader(requestHeaders, 25); err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	for _, req := range list {
		votingID := "разовый запрос подписи"
		if req.VotingID != nil {
			votingID = *req.VotingID
		}
		err = w.writeRow(req.DocumentVersionID, votingID, req.StatusName, req.Comment, req.CreatedAt.Format(dateFormat), formatDate(req.DecidedAt))
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	return f.WriteToBuffer()
}

// VotingSummary сводка голосования для отчетов
func VotingSummary(view votingapimodels.VotingView) [][2]string {
	rate := "не рассчитана"
	if view.CurrentApprovalRate != nil {
		rate = fmt.Sprintf("%.1f%%", *view.CurrentApprovalRate*100)
	}
	thresholdMet := "голосование не завершено"
	if view.ThresholdMet != nil {
		thresholdMet = "нет"
		if *view.ThresholdMet {
			thresholdMet = "да"
		}
	}
	return [][2]string{
		{"Голосование", view.ID},
		{"Версия документа", view.DocumentVersionID},
		{"Статус", view.StatusName},
		{"Порог одобрения", fmt.Sprintf("%d%%", view.ApprovalThreshold)},
		{"Доля голосов \"за\"", rate},
		{"Порог достигнут", thresholdMet},
		{"Создано", view.CreatedAt.Format(dateFormat)},
		{"Срок окончания", view.Deadline.Format(dateFormat)},
		{"Завершено", formatDate(view.CompletedAt)},
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFormat)
}

func closeFile(f *excelize.File) {
	if err := f.Close(); err != nil {
		log.WithError(err).Error("ошибка закрытия файла")
	}
}
