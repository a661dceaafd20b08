package models

type PushCode string

const (
	PushCodeVoteRequest PushCode = "VOTE_REQUEST" // участника включили в голосование
	PushCodeSignRequest PushCode = "SIGN_REQUEST" // запрошена подпись версии документа
)

func (c PushCode) ToHuman() string {
	switch c {
	case PushCodeVoteRequest:
		return "Новое голосование"
	case PushCodeSignRequest:
		return "Запрос подписи"
	}
	return string(c)
}
