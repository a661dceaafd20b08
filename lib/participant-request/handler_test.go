package participantrequesthandler

import (
	memorystore "docflow-backend/lib/memory-store"
	signaturestore "docflow-backend/lib/signature/store"
	apperrors "docflow-backend/lib/utils/app-errors"
	"docflow-backend/lib/utils/clock"
	"docflow-backend/models"
	votingapimodels "docflow-backend/models/api/voting"
	dbmodels "docflow-backend/models/db"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	created atomic.Int32
}

func (n *countingNotifier) RequestCreated(rec dbmodels.ParticipantRequest) {
	n.created.Add(1)
}

type failingSignatures struct {
	signaturestore.Provider
	fail bool
}

func (f *failingSignatures) Create(rec dbmodels.Signature) (string, error) {
	if f.fail {
		return "", errors.New("db is down")
	}
	return f.Provider.Create(rec)
}

func newTracker(t *testing.T) (Provider, *memorystore.Storage, *countingNotifier, string, string) {
	s := memorystore.New()
	userID := s.PutUser(dbmodels.User{FirstName: "Анна", LastName: "Петрова"})
	versionID := s.PutDocumentVersion(dbmodels.DocumentVersion{Number: 1, FileName: "договор.pdf"})
	notifier := &countingNotifier{}
	tracker := NewInstance(Deps{
		Requests:         s.Requests(),
		History:          s.History(),
		Signatures:       s.Signatures(),
		Users:            s.Users(),
		DocumentVersions: s.DocumentVersions(),
		Notifier:         notifier,
		Clock:            clock.NewManual(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)),
	})
	return tracker, s, notifier, userID, versionID
}

func TestCreateRequest(t *testing.T) {
	t.Run(`creates pending request, notification is explicit`, func(t *testing.T) {
		tracker, _, notifier, userID, versionID := newTracker(t)
		rec, err := tracker.CreateRequest(userID, versionID, "voting-1", 1)
		require.Nil(t, err)
		require.NotEmpty(t, rec.ID)
		require.Equal(t, models.RequestStatusPending, rec.Status)
		require.Equal(t, "Анна Петрова", rec.GetUserName())
		require.EqualValues(t, 0, notifier.created.Load())

		tracker.NotifyCreated(rec)
		require.EqualValues(t, 1, notifier.created.Load())

		history, err := tracker.History(rec.ID)
		require.Nil(t, err)
		require.Len(t, history, 1)
		require.Equal(t, models.RequestStatusPending, history[0].Status)
	})

	t.Run(`duplicate triple is conflict`, func(t *testing.T) {
		tracker, _, _, userID, versionID := newTracker(t)
		_, err := tracker.CreateRequest(userID, versionID, "voting-1", 0)
		require.Nil(t, err)
		_, err = tracker.CreateRequest(userID, versionID, "voting-1", 0)
		require.True(t, apperrors.IsConflict(err))

		_, err = tracker.CreateRequest(userID, versionID, "voting-2", 0)
		require.Nil(t, err)
		_, err = tracker.CreateRequest(userID, versionID, "", 0)
		require.Nil(t, err)
		_, err = tracker.CreateRequest(userID, versionID, "", 0)
		require.True(t, apperrors.IsConflict(err))
	})

	t.Run(`unknown user is not found`, func(t *testing.T) {
		tracker, s, _, _, versionID := newTracker(t)
		_, err := tracker.CreateRequest("missing", versionID, "voting-1", 0)
		require.True(t, apperrors.IsNotFound(err))
		list, err := s.Requests().ListByVoting("voting-1")
		require.Nil(t, err)
		require.Empty(t, list)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run(`pending to terminal once`, func(t *testing.T) {
		tracker, _, _, userID, versionID := newTracker(t)
		rec, err := tracker.CreateRequest(userID, versionID, "voting-1", 0)
		require.Nil(t, err)

		require.Nil(t, tracker.UpdateStatus(rec.ID, models.RequestStatusFor, "согласен"))
		err = tracker.UpdateStatus(rec.ID, models.RequestStatusAgainst, "")
		require.True(t, apperrors.IsConflict(err))

		got, err := tracker.GetForVoting("voting-1", userID)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusFor, got.Status)
		require.Equal(t, "согласен", got.Comment)
		require.NotNil(t, got.DecidedAt)
	})

	t.Run(`pending is not a target status`, func(t *testing.T) {
		tracker, _, _, userID, versionID := newTracker(t)
		rec, err := tracker.CreateRequest(userID, versionID, "voting-1", 0)
		require.Nil(t, err)
		err = tracker.UpdateStatus(rec.ID, models.RequestStatusPending, "")
		require.True(t, apperrors.IsInvalidArgument(err))
	})

	t.Run(`unknown request`, func(t *testing.T) {
		tracker, _, _, _, _ := newTracker(t)
		err := tracker.UpdateStatus("missing", models.RequestStatusFor, "")
		require.True(t, apperrors.IsNotFound(err))
	})

	t.Run(`concurrent transitions, exactly one wins`, func(t *testing.T) {
		tracker, _, _, userID, versionID := newTracker(t)
		rec, err := tracker.CreateRequest(userID, versionID, "voting-1", 0)
		require.Nil(t, err)

		var wg sync.WaitGroup
		var ok, conflicts atomic.Int32
		for n := 0; n < 20; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				status := models.RequestStatusFor
				if n%2 == 0 {
					status = models.RequestStatusAgainst
				}
				err := tracker.UpdateStatus(rec.ID, status, "")
				if err == nil {
					ok.Add(1)
				} else if apperrors.IsConflict(err) {
					conflicts.Add(1)
				}
			}(n)
		}
		wg.Wait()
		require.EqualValues(t, 1, ok.Load())
		require.EqualValues(t, 19, conflicts.Load())
	})
}

func TestAdHocSigning(t *testing.T) {
	t.Run(`request and sign`, func(t *testing.T) {
		tracker, s, notifier, userID, versionID := newTracker(t)
		view, err := tracker.RequestSignature(votingapimodels.SignRequestData{DocumentVersionID: versionID, UserID: userID})
		require.Nil(t, err)
		require.Nil(t, view.VotingID)
		require.Equal(t, models.RequestStatusPending, view.Status)
		require.EqualValues(t, 1, notifier.created.Load())

		sign, err := tracker.Sign(view.ID, userID)
		require.Nil(t, err)
		require.Len(t, sign.Hash, 64)
		require.Equal(t, userID, sign.SignerID)

		signs, err := s.Signatures().ListByDocumentVersion(versionID)
		require.Nil(t, err)
		require.Len(t, signs, 1)

		_, err = tracker.Sign(view.ID, userID)
		require.True(t, apperrors.IsConflict(err))

		history, err := tracker.History(view.ID)
		require.Nil(t, err)
		require.Len(t, history, 2)
		require.Equal(t, models.RequestStatusSigned, history[1].Status)
	})

	t.Run(`failed signature keeps request pending`, func(t *testing.T) {
		s := memorystore.New()
		userID := s.PutUser(dbmodels.User{FirstName: "Анна", LastName: "Петрова"})
		versionID := s.PutDocumentVersion(dbmodels.DocumentVersion{Number: 1})
		signs := &failingSignatures{Provider: s.Signatures(), fail: true}
		tracker := NewInstance(Deps{
			Requests:         s.Requests(),
			History:          s.History(),
			Signatures:       signs,
			Users:            s.Users(),
			DocumentVersions: s.DocumentVersions(),
		})
		view, err := tracker.RequestSignature(votingapimodels.SignRequestData{DocumentVersionID: versionID, UserID: userID})
		require.Nil(t, err)

		_, err = tracker.Sign(view.ID, userID)
		require.Error(t, err)
		rec, err := s.Requests().GetByID(view.ID)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusPending, rec.Status)

		signs.fail = false
		sign, err := tracker.Sign(view.ID, userID)
		require.Nil(t, err)
		require.Equal(t, view.ID, sign.RequestID)
		rec, err = s.Requests().GetByID(view.ID)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusSigned, rec.Status)
	})

	t.Run(`concurrent signing stores one signature`, func(t *testing.T) {
		tracker, s, _, userID, versionID := newTracker(t)
		view, err := tracker.RequestSignature(votingapimodels.SignRequestData{DocumentVersionID: versionID, UserID: userID})
		require.Nil(t, err)

		var wg sync.WaitGroup
		var ok, conflicts atomic.Int32
		for n := 0; n < 10; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := tracker.Sign(view.ID, userID)
				switch {
				case err == nil:
					ok.Add(1)
				case apperrors.IsConflict(err):
					conflicts.Add(1)
				}
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, ok.Load())
		require.EqualValues(t, 9, conflicts.Load())

		list, err := s.Signatures().ListByDocumentVersion(versionID)
		require.Nil(t, err)
		require.Len(t, list, 1)
	})

	t.Run(`reject requires comment`, func(t *testing.T) {
		tracker, _, _, userID, versionID := newTracker(t)
		view, err := tracker.RequestSignature(votingapimodels.SignRequestData{DocumentVersionID: versionID, UserID: userID})
		require.Nil(t, err)

		err = tracker.Reject(view.ID, userID, votingapimodels.RejectData{})
		require.True(t, apperrors.IsInvalidArgument(err))
		require.Nil(t, tracker.Reject(view.ID, userID, votingapimodels.RejectData{Comment: "ошибка в реквизитах"}))

		list, err := tracker.ListByUser(userID, votingapimodels.RequestFilter{Statuses: []models.RequestStatus{models.RequestStatusRejected}})
		require.Nil(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "ошибка в реквизитах", list[0].Comment)
	})

	t.Run(`foreign and voting requests`, func(t *testing.T) {
		tracker, _, _, userID, versionID := newTracker(t)
		view, err := tracker.RequestSignature(votingapimodels.SignRequestData{DocumentVersionID: versionID, UserID: userID})
		require.Nil(t, err)
		_, err = tracker.Sign(view.ID, "someone-else")
		require.True(t, apperrors.IsNotFound(err))

		rec, err := tracker.CreateRequest(userID, versionID, "voting-1", 0)
		require.Nil(t, err)
		_, err = tracker.Sign(rec.ID, userID)
		require.True(t, apperrors.IsConflict(err))
	})

	t.Run(`unknown version`, func(t *testing.T) {
		tracker, _, _, userID, _ := newTracker(t)
		_, err := tracker.RequestSignature(votingapimodels.SignRequestData{DocumentVersionID: "missing", UserID: userID})
		require.True(t, apperrors.IsNotFound(err))
		_, err = tracker.RequestSignature(votingapimodels.SignRequestData{UserID: userID})
		require.True(t, apperrors.IsInvalidArgument(err))
	})
}

func TestListByUser(t *testing.T) {
	tracker, s, _, userID, versionID := newTracker(t)
	otherVersion := s.PutDocumentVersion(dbmodels.DocumentVersion{Number: 2})
	first, err := tracker.CreateRequest(userID, versionID, "voting-1", 0)
	require.Nil(t, err)
	_, err = tracker.CreateRequest(userID, otherVersion, "voting-2", 0)
	require.Nil(t, err)
	require.Nil(t, tracker.UpdateStatus(first.ID, models.RequestStatusAgainst, ""))

	t.Run(`all statuses in creation order`, func(t *testing.T) {
		list, err := tracker.ListByUser(userID, votingapimodels.RequestFilter{})
		require.Nil(t, err)
		require.Len(t, list, 2)
		require.Equal(t, first.ID, list[0].ID)
		require.Equal(t, "voting-1", *list[0].VotingID)
	})

	t.Run(`filter by status`, func(t *testing.T) {
		list, err := tracker.ListByUser(userID, votingapimodels.RequestFilter{Statuses: []models.RequestStatus{models.RequestStatusPending}})
		require.Nil(t, err)
		require.Len(t, list, 1)
		require.Equal(t, otherVersion, list[0].DocumentVersionID)
	})
}
