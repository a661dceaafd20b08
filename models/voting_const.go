package models

type VotingStatus string

const (
	VotingStatusActive    VotingStatus = "ACTIVE"
	VotingStatusCompleted VotingStatus = "COMPLETED"
)

func (s VotingStatus) IsValid() bool {
	switch s {
	case VotingStatusActive, VotingStatusCompleted:
		return true
	}
	return false
}

func (s VotingStatus) ToHuman() string {
	switch s {
	case VotingStatusActive:
		return "Идёт голосование"
	case VotingStatusCompleted:
		return "Завершено"
	}
	return string(s)
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusFor      RequestStatus = "FOR"
	RequestStatusAgainst  RequestStatus = "AGAINST"
	RequestStatusSigned   RequestStatus = "SIGNED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

func (s RequestStatus) IsValid() bool {
	return s == RequestStatusPending || s.IsTerminal()
}

// IsTerminal после перехода в терминальный статус запрос больше не меняется
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusFor, RequestStatusAgainst, RequestStatusSigned, RequestStatusRejected:
		return true
	}
	return false
}

func (s RequestStatus) ToHuman() string {
	switch s {
	case RequestStatusPending:
		return "Ожидает решения"
	case RequestStatusFor:
		return "За"
	case RequestStatusAgainst:
		return "Против"
	case RequestStatusSigned:
		return "Подписано"
	case RequestStatusRejected:
		return "Отклонено"
	}
	return string(s)
}

type VoteDecision string

const (
	VoteDecisionFor     VoteDecision = "FOR"
	VoteDecisionAgainst VoteDecision = "AGAINST"
)

func (d VoteDecision) IsValid() bool {
	return d == VoteDecisionFor || d == VoteDecisionAgainst
}

func (d VoteDecision) ToRequestStatus() RequestStatus {
	if d == VoteDecisionFor {
		return RequestStatusFor
	}
	return RequestStatusAgainst
}
