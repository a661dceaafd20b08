package votinghandler

import "docflow-backend/models"

// ApprovalRate доля голосов "за" среди всех запросов голосования.
// Ожидающие и голоса "против" входят в знаменатель. nil, если запросов нет.
func ApprovalRate(counts map[models.RequestStatus]int64) *float64 {
	var total int64
	for _, cnt := range counts {
		total += cnt
	}
	if total == 0 {
		return nil
	}
	rate := float64(counts[models.RequestStatusFor]) / float64(total)
	return &rate
}
