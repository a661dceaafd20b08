package votinghandler

import (
	"context"
	memorystore "docflow-backend/lib/memory-store"
	participantrequesthandler "docflow-backend/lib/participant-request"
	"docflow-backend/lib/scheduler"
	apperrors "docflow-backend/lib/utils/app-errors"
	"docflow-backend/lib/utils/clock"
	"docflow-backend/models"
	votingapimodels "docflow-backend/models/api/voting"
	dbmodels "docflow-backend/models/db"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

type env struct {
	engine    Provider
	storage   *memorystore.Storage
	clock     *clock.Manual
	scheduler scheduler.Provider
	archive   *fakeArchive
	notifier  *recordingNotifier
	versionID string
	users     []string
}

type fakeArchive struct {
	mu    sync.Mutex
	saved []votingapimodels.VotingView
}

func (f *fakeArchive) Archive(ctx context.Context, voting votingapimodels.VotingView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, voting)
	return nil
}

func (f *fakeArchive) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type recordingNotifier struct {
	mu    sync.Mutex
	users []string
}

func (n *recordingNotifier) RequestCreated(rec dbmodels.ParticipantRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, rec.UserID)
}

func (n *recordingNotifier) notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.users...)
}

type failingScheduler struct {
	scheduler.Provider
}

func (failingScheduler) ScheduleAt(key string, when time.Time, callback scheduler.Callback) error {
	return apperrors.Unavailable("планировщик остановлен")
}

func newEngine(t *testing.T, s *memorystore.Storage, c *clock.Manual, sched scheduler.Provider, archive *fakeArchive, notifier *recordingNotifier) Provider {
	trackerDeps := participantrequesthandler.Deps{
		Requests:         s.Requests(),
		History:          s.History(),
		Signatures:       s.Signatures(),
		Users:            s.Users(),
		DocumentVersions: s.DocumentVersions(),
		Clock:            c,
	}
	if notifier != nil {
		trackerDeps.Notifier = notifier
	}
	tracker := participantrequesthandler.NewInstance(trackerDeps)
	deps := Deps{
		Votings:          s.Votings(),
		Signatures:       s.Signatures(),
		Users:            s.Users(),
		DocumentVersions: s.DocumentVersions(),
		Tracker:          tracker,
		Scheduler:        sched,
		Clock:            c,
	}
	if archive != nil {
		deps.Archive = archive
	}
	return NewInstance(deps)
}

func newEnv(t *testing.T) *env {
	s := memorystore.New()
	c := clock.NewManual(start)
	sched := scheduler.NewInstance(context.Background(), scheduler.Config{PoolSize: 4, Clock: c})
	t.Cleanup(sched.Stop)
	e := &env{
		storage:   s,
		clock:     c,
		scheduler: sched,
		archive:   &fakeArchive{},
		notifier:  &recordingNotifier{},
		versionID: s.PutDocumentVersion(dbmodels.DocumentVersion{Number: 3, FileName: "положение.docx"}),
	}
	for _, name := range []string{"Анна", "Борис", "Вера"} {
		e.users = append(e.users, s.PutUser(dbmodels.User{FirstName: name, LastName: "Тестова"}))
	}
	e.engine = newEngine(t, s, c, sched, e.archive, e.notifier)
	return e
}

func (e *env) start(t *testing.T, deadline time.Duration) votingapimodels.VotingView {
	view, err := e.engine.StartVoting(context.Background(), "initiator", votingapimodels.StartVotingData{
		DocumentVersionID: e.versionID,
		Participants:      e.users,
		ApprovalThreshold: 60,
		Deadline:          start.Add(deadline),
	})
	require.Nil(t, err)
	return view
}

func (e *env) status(t *testing.T, votingID string) models.VotingStatus {
	view, err := e.engine.GetVoting(votingID)
	require.Nil(t, err)
	return view.Status
}

func (e *env) noWrites(t *testing.T) {
	for _, status := range []models.VotingStatus{models.VotingStatusActive, models.VotingStatusCompleted} {
		list, err := e.storage.Votings().ListByStatus(status)
		require.Nil(t, err)
		require.Empty(t, list)
	}
	for _, userID := range e.users {
		list, err := e.storage.Requests().ListByUser(userID, nil)
		require.Nil(t, err)
		require.Empty(t, list)
	}
	require.Equal(t, 0, e.scheduler.Pending())
}

func TestStartVoting(t *testing.T) {
	t.Run(`three participants, active with pending requests`, func(t *testing.T) {
		e := newEnv(t)
		view := e.start(t, time.Hour)
		require.Equal(t, models.VotingStatusActive, view.Status)
		require.Equal(t, 60, view.ApprovalThreshold)
		require.Nil(t, view.CurrentApprovalRate)
		require.Nil(t, view.ThresholdMet)
		require.Equal(t, start.Add(time.Hour), view.Deadline)
		require.Len(t, view.Requests, 3)
		for n, req := range view.Requests {
			require.Equal(t, e.users[n], req.UserID)
			require.Equal(t, models.RequestStatusPending, req.Status)
			require.Equal(t, view.ID, *req.VotingID)
		}
		require.Equal(t, 1, e.scheduler.Pending())

		signs, err := e.storage.Signatures().ListByDocumentVersion(e.versionID)
		require.Nil(t, err)
		require.Len(t, signs, 1)
		require.True(t, signs[0].IsPlaceholder())
		require.Equal(t, view.ID, signs[0].VotingID)
	})

	t.Run(`deadline in the past`, func(t *testing.T) {
		e := newEnv(t)
		_, err := e.engine.StartVoting(context.Background(), "", votingapimodels.StartVotingData{
			DocumentVersionID: e.versionID,
			Participants:      e.users,
			ApprovalThreshold: 60,
			Deadline:          start.Add(-time.Minute),
		})
		require.True(t, apperrors.IsInvalidArgument(err))
		e.noWrites(t)

		_, err = e.engine.StartVoting(context.Background(), "", votingapimodels.StartVotingData{
			DocumentVersionID: e.versionID,
			Participants:      e.users,
			Deadline:          start,
		})
		require.True(t, apperrors.IsInvalidArgument(err))
		e.noWrites(t)
	})

	t.Run(`invalid arguments`, func(t *testing.T) {
		e := newEnv(t)
		cases := []votingapimodels.StartVotingData{
			{DocumentVersionID: e.versionID, Deadline: start.Add(time.Hour)},
			{DocumentVersionID: e.versionID, Participants: e.users, ApprovalThreshold: 101, Deadline: start.Add(time.Hour)},
			{DocumentVersionID: e.versionID, Participants: e.users, ApprovalThreshold: -1, Deadline: start.Add(time.Hour)},
			{Participants: e.users, Deadline: start.Add(time.Hour)},
		}
		for _, data := range cases {
			_, err := e.engine.StartVoting(context.Background(), "", data)
			require.True(t, apperrors.IsInvalidArgument(err))
		}
		e.noWrites(t)
	})

	t.Run(`repeated participant is conflict`, func(t *testing.T) {
		e := newEnv(t)
		_, err := e.engine.StartVoting(context.Background(), "", votingapimodels.StartVotingData{
			DocumentVersionID: e.versionID,
			Participants:      []string{e.users[0], e.users[1], e.users[0]},
			ApprovalThreshold: 50,
			Deadline:          start.Add(time.Hour),
		})
		require.True(t, apperrors.IsConflict(err))
		e.noWrites(t)
	})

	t.Run(`unknown version and user`, func(t *testing.T) {
		e := newEnv(t)
		_, err := e.engine.StartVoting(context.Background(), "", votingapimodels.StartVotingData{
			DocumentVersionID: "missing",
			Participants:      e.users,
			Deadline:          start.Add(time.Hour),
		})
		require.True(t, apperrors.IsNotFound(err))

		_, err = e.engine.StartVoting(context.Background(), "", votingapimodels.StartVotingData{
			DocumentVersionID: e.versionID,
			Participants:      []string{e.users[0], "missing"},
			Deadline:          start.Add(time.Hour),
		})
		require.True(t, apperrors.IsNotFound(err))
		e.noWrites(t)
	})

	t.Run(`scheduler failure completes the record`, func(t *testing.T) {
		e := newEnv(t)
		engine := newEngine(t, e.storage, e.clock, failingScheduler{}, nil, e.notifier)
		_, err := engine.StartVoting(context.Background(), "", votingapimodels.StartVotingData{
			DocumentVersionID: e.versionID,
			Participants:      e.users,
			ApprovalThreshold: 60,
			Deadline:          start.Add(time.Hour),
		})
		require.True(t, apperrors.IsUnavailable(err))

		active, err := e.storage.Votings().ListByStatus(models.VotingStatusActive)
		require.Nil(t, err)
		require.Empty(t, active)
		completed, err := e.storage.Votings().ListByStatus(models.VotingStatusCompleted)
		require.Nil(t, err)
		require.Len(t, completed, 1)
		// о закрытом голосовании участники не уведомляются
		require.Empty(t, e.notifier.notified())
	})

	t.Run(`participants notified once the deadline is registered`, func(t *testing.T) {
		e := newEnv(t)
		e.start(t, time.Hour)
		require.Equal(t, e.users, e.notifier.notified())
	})
}

func TestCastVote(t *testing.T) {
	t.Run(`vote and double vote`, func(t *testing.T) {
		e := newEnv(t)
		view := e.start(t, time.Hour)
		require.Nil(t, e.engine.CastVote(view.ID, e.users[0], votingapimodels.CastVoteData{Decision: models.VoteDecisionFor}))
		err := e.engine.CastVote(view.ID, e.users[0], votingapimodels.CastVoteData{Decision: models.VoteDecisionAgainst})
		require.True(t, apperrors.IsConflict(err))

		got, err := e.engine.GetVoting(view.ID)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusFor, got.Requests[0].Status)
		require.Equal(t, models.RequestStatusPending, got.Requests[1].Status)
	})

	t.Run(`unknown voting, non participant, bad decision`, func(t *testing.T) {
		e := newEnv(t)
		view := e.start(t, time.Hour)
		err := e.engine.CastVote("missing", e.users[0], votingapimodels.CastVoteData{Decision: models.VoteDecisionFor})
		require.True(t, apperrors.IsNotFound(err))
		err = e.engine.CastVote(view.ID, "stranger", votingapimodels.CastVoteData{Decision: models.VoteDecisionFor})
		require.True(t, apperrors.IsNotFound(err))
		err = e.engine.CastVote(view.ID, e.users[0], votingapimodels.CastVoteData{Decision: "ABSTAIN"})
		require.True(t, apperrors.IsInvalidArgument(err))
	})

	t.Run(`vote after completion is conflict`, func(t *testing.T) {
		e := newEnv(t)
		view := e.start(t, time.Hour)
		require.Nil(t, e.engine.CompleteVoting(context.Background(), view.ID))
		err := e.engine.CastVote(view.ID, e.users[0], votingapimodels.CastVoteData{Decision: models.VoteDecisionFor})
		require.True(t, apperrors.IsConflict(err))
	})

	t.Run(`concurrent votes of one participant, exactly one succeeds`, func(t *testing.T) {
		e := newEnv(t)
		view := e.start(t, time.Hour)
		var wg sync.WaitGroup
		var ok, conflicts atomic.Int32
		for n := 0; n < 16; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				decision := models.VoteDecisionFor
				if n%2 == 1 {
					decision = models.VoteDecisionAgainst
				}
				err := e.engine.CastVote(view.ID, e.users[1], votingapimodels.CastVoteData{Decision: decision})
				if err == nil {
					ok.Add(1)
				} else if apperrors.IsConflict(err) {
					conflicts.Add(1)
				}
			}(n)
		}
		wg.Wait()
		require.EqualValues(t, 1, ok.Load())
		require.EqualValues(t, 15, conflicts.Load())
	})

	t.Run(`concurrent votes of distinct participants are independent`, func(t *testing.T) {
		e := newEnv(t)
		view := e.start(t, time.Hour)
		var wg sync.WaitGroup
		errs := make([]error, len(e.users))
		for n, userID := range e.users {
			wg.Add(1)
			go func(n int, userID string) {
				defer wg.Done()
				errs[n] = e.engine.CastVote(view.ID, userID, votingapimodels.CastVoteData{Decision: models.VoteDecisionAgainst})
			}(n, userID)
		}
		wg.Wait()
		for _, err := range errs {
			require.Nil(t, err)
		}
	})
}

func TestCompleteVoting(t *testing.T) {
	t.Run(`deadline elapses, pending stays pending`, func(t *testing.T) {
		e := newEnv(t)
		view := e.start(t, time.Hour)
		require.Nil(t, e.engine.CastVote(view.ID, e.users[0], votingapimodels.CastVoteData{Decision: models.VoteDecisionFor}))
		require.Nil(t, e.engine.CastVote(view.ID, e.users[1], votingapimodels.CastVoteData{Decision: models.VoteDecisionFor}))

		e.clock.Advance(59 * time.Minute)
		time.Sleep(20 * time.Millisecond)
		require.Equal(t, models.VotingStatusActive, e.status(t, view.ID))

		e.clock.Advance(time.Minute)
		require.Eventually(t, func() bool {
			return e.status(t, view.ID) == models.VotingStatusCompleted
		}, time.Second, 5*time.Millisecond)

		got, err := e.engine.GetVoting(view.ID)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusPending, got.Requests[2].Status)
		require.InDelta(t, 2.0/3.0, *got.CurrentApprovalRate, 1e-9)
		require.True(t, *got.ThresholdMet)
		require.NotNil(t, got.CompletedAt)
		require.Eventually(t, func() bool { return e.archive.count() == 1 }, time.Second, 5*time.Millisecond)
	})

	t.Run(`applied twice equals applied once`, func(t *testing.T) {
		e := newEnv(t)
		view := e.start(t, time.Hour)
		require.Nil(t, e.engine.CompleteVoting(context.Background(), view.ID))
		first, err := e.engine.GetVoting(view.ID)
		require.Nil(t, err)
		require.Equal(t, 0, e.scheduler.Pending())

		e.clock.Advance(time.Minute)
		require.Nil(t, e.engine.CompleteVoting(context.Background(), view.ID))
		second, err := e.engine.GetVoting(view.ID)
		require.Nil(t, err)
		require.Equal(t, first, second)
		require.Equal(t, 1, e.archive.count())
		require.InDelta(t, 0, *second.CurrentApprovalRate, 1e-9)
		require.False(t, *second.ThresholdMet)
	})

	t.Run(`unknown voting`, func(t *testing.T) {
		e := newEnv(t)
		err := e.engine.CompleteVoting(context.Background(), "missing")
		require.True(t, apperrors.IsNotFound(err))
	})
}

func TestListAndRecover(t *testing.T) {
	t.Run(`list by status`, func(t *testing.T) {
		e := newEnv(t)
		first := e.start(t, time.Hour)
		second := e.start(t, 2*time.Hour)
		require.Nil(t, e.engine.CompleteVoting(context.Background(), first.ID))

		active, err := e.engine.ListVotingsByStatus(votingapimodels.VotingFilter{Status: models.VotingStatusActive})
		require.Nil(t, err)
		require.Len(t, active, 1)
		require.Equal(t, second.ID, active[0].ID)

		_, err = e.engine.ListVotingsByStatus(votingapimodels.VotingFilter{Status: "ARCHIVED"})
		require.True(t, apperrors.IsInvalidArgument(err))
	})

	t.Run(`deadlines survive restart through recovery`, func(t *testing.T) {
		e := newEnv(t)
		overdue := e.start(t, time.Hour)
		later := e.start(t, 3*time.Hour)

		// новый процесс: старый планировщик потерян
		e.scheduler.Stop()
		sched := scheduler.NewInstance(context.Background(), scheduler.Config{PoolSize: 2, Clock: e.clock})
		t.Cleanup(sched.Stop)
		e.clock.Advance(2 * time.Hour)
		engine := newEngine(t, e.storage, e.clock, sched, nil, nil)

		count, err := engine.RecoverDeadlines(context.Background())
		require.Nil(t, err)
		require.Equal(t, 2, count)
		require.Eventually(t, func() bool {
			return e.status(t, overdue.ID) == models.VotingStatusCompleted
		}, time.Second, 5*time.Millisecond)
		require.Equal(t, models.VotingStatusActive, e.status(t, later.ID))

		e.clock.Advance(time.Hour)
		require.Eventually(t, func() bool {
			return e.status(t, later.ID) == models.VotingStatusCompleted
		}, time.Second, 5*time.Millisecond)
	})
}

func TestApprovalRate(t *testing.T) {
	require.Nil(t, ApprovalRate(nil))
	rate := ApprovalRate(map[models.RequestStatus]int64{
		models.RequestStatusFor:     2,
		models.RequestStatusPending: 1,
	})
	require.InDelta(t, 2.0/3.0, *rate, 1e-9)
	rate = ApprovalRate(map[models.RequestStatus]int64{
		models.RequestStatusAgainst: 4,
	})
	require.InDelta(t, 0, *rate, 1e-9)
}
