package apiv1

import (
	"context"
	"docflow-backend/config"
	xlsexport "docflow-backend/lib/export/xls"
	memorystore "docflow-backend/lib/memory-store"
	participantrequesthandler "docflow-backend/lib/participant-request"
	"docflow-backend/lib/scheduler"
	authutils "docflow-backend/lib/utils/auth-utils"
	votinghandler "docflow-backend/lib/voting"
	"docflow-backend/middleware"
	"docflow-backend/models"
	votingapimodels "docflow-backend/models/api/voting"
	dbmodels "docflow-backend/models/db"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app       *fiber.App
	versionID string
	users     []string
}

type votingResponse struct {
	Status  string                      `json:"status"`
	Message string                      `json:"message"`
	Data    votingapimodels.VotingView `json:"data"`
}

type requestsResponse struct {
	Status string                                   `json:"status"`
	Data   []votingapimodels.ParticipantRequestView `json:"data"`
}

func newTestEnv(t *testing.T) *testEnv {
	config.Conf = &config.Configuration{}
	config.Conf.Auth.JWTSecret = "test-secret"
	config.Conf.Auth.JWTExpireInSec = 3600

	s := memorystore.New()
	env := &testEnv{
		versionID: s.PutDocumentVersion(dbmodels.DocumentVersion{Number: 1, FileName: "устав.pdf"}),
	}
	for _, name := range []string{"Анна", "Борис"} {
		env.users = append(env.users, s.PutUser(dbmodels.User{FirstName: name, LastName: "Иванова"}))
	}

	sched := scheduler.NewInstance(context.Background(), scheduler.Config{PoolSize: 2})
	t.Cleanup(sched.Stop)
	participantrequesthandler.Instance = participantrequesthandler.NewInstance(participantrequesthandler.Deps{
		Requests:         s.Requests(),
		History:          s.History(),
		Signatures:       s.Signatures(),
		Users:            s.Users(),
		DocumentVersions: s.DocumentVersions(),
	})
	votinghandler.Instance = votinghandler.NewInstance(votinghandler.Deps{
		Votings:          s.Votings(),
		Signatures:       s.Signatures(),
		Users:            s.Users(),
		DocumentVersions: s.DocumentVersions(),
		Tracker:          participantrequesthandler.Instance,
		Scheduler:        sched,
	})
	xlsexport.NewHandler()

	env.app = fiber.New()
	env.app.Use(middleware.AuthorizationRequired())
	InitVotingApiRouters(env.app)
	InitParticipantRequestApiRouters(env.app)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, userID string, isAdmin bool, body interface{}) *http.Response {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.Nil(t, err)
		reader = strings.NewReader(string(payload))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if userID != "" {
		token, err := authutils.GetToken(userID, "test", isAdmin)
		require.Nil(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.Nil(t, err)
	return resp
}

func (e *testEnv) start(t *testing.T, deadline time.Time) votingapimodels.VotingView {
	resp := e.do(t, "POST", "/voting", "initiator", false, votingapimodels.StartVotingData{
		DocumentVersionID: e.versionID,
		Participants:      e.users,
		ApprovalThreshold: 50,
		Deadline:          deadline,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := votingResponse{}
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Equal(t, "success", result.Status)
	return result.Data
}

func TestVotingApi(t *testing.T) {
	t.Run(`token required`, func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.do(t, "GET", "/voting/any", "", false, nil)
		require.NotEqual(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run(`start, vote, double vote`, func(t *testing.T) {
		env := newTestEnv(t)
		view := env.start(t, time.Now().Add(time.Hour))
		require.Equal(t, models.VotingStatusActive, view.Status)
		require.Len(t, view.Requests, 2)

		resp := env.do(t, "PUT", "/voting/"+view.ID+"/vote", env.users[0], false, votingapimodels.CastVoteData{Decision: models.VoteDecisionFor})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		resp = env.do(t, "PUT", "/voting/"+view.ID+"/vote", env.users[0], false, votingapimodels.CastVoteData{Decision: models.VoteDecisionAgainst})
		require.Equal(t, fiber.StatusConflict, resp.StatusCode)
		resp = env.do(t, "PUT", "/voting/"+view.ID+"/vote", "stranger", false, votingapimodels.CastVoteData{Decision: models.VoteDecisionFor})
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		resp = env.do(t, "PUT", "/voting/"+view.ID+"/vote", env.users[1], false, votingapimodels.CastVoteData{Decision: "MAYBE"})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run(`past deadline is bad request`, func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.do(t, "POST", "/voting", "initiator", false, votingapimodels.StartVotingData{
			DocumentVersionID: env.versionID,
			Participants:      env.users,
			ApprovalThreshold: 50,
			Deadline:          time.Now().Add(-time.Hour),
		})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run(`complete requires admin`, func(t *testing.T) {
		env := newTestEnv(t)
		view := env.start(t, time.Now().Add(time.Hour))
		resp := env.do(t, "PUT", "/voting/"+view.ID+"/complete", env.users[0], false, nil)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		resp = env.do(t, "PUT", "/voting/"+view.ID+"/complete", "admin", true, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		resp = env.do(t, "PUT", "/voting/"+view.ID+"/complete", "admin", true, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = env.do(t, "GET", "/voting/"+view.ID, env.users[0], false, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		result := votingResponse{}
		require.Nil(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Equal(t, models.VotingStatusCompleted, result.Data.Status)
		require.NotNil(t, result.Data.ThresholdMet)
		require.False(t, *result.Data.ThresholdMet)

		resp = env.do(t, "PUT", "/voting/"+view.ID+"/vote", env.users[0], false, votingapimodels.CastVoteData{Decision: models.VoteDecisionFor})
		require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run(`unknown voting`, func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.do(t, "GET", "/voting/missing", env.users[0], false, nil)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run(`list and export`, func(t *testing.T) {
		env := newTestEnv(t)
		view := env.start(t, time.Now().Add(time.Hour))
		resp := env.do(t, "POST", "/voting/list", env.users[0], false, votingapimodels.VotingFilter{Status: models.VotingStatusActive})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = env.do(t, "GET", "/voting/"+view.ID+"/export", env.users[0], false, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.Equal(t, "application/vnd.ms-excel", resp.Header.Get(fiber.HeaderContentType))
	})
}

func TestParticipantRequestApi(t *testing.T) {
	env := newTestEnv(t)
	env.start(t, time.Now().Add(time.Hour))

	resp := env.do(t, "POST", "/participant_request/sign_request", "initiator", false, votingapimodels.SignRequestData{
		DocumentVersionID: env.versionID,
		UserID:            env.users[1],
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, "POST", "/participant_request/list", env.users[1], false, votingapimodels.RequestFilter{})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := requestsResponse{}
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Data, 2)
	adHoc := list.Data[1]
	require.Nil(t, adHoc.VotingID)

	t.Run(`voting request cannot be signed directly`, func(t *testing.T) {
		resp := env.do(t, "PUT", "/participant_request/"+list.Data[0].ID+"/sign", env.users[1], false, nil)
		require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run(`reject without comment, then sign`, func(t *testing.T) {
		resp := env.do(t, "PUT", "/participant_request/"+adHoc.ID+"/reject", env.users[1], false, votingapimodels.RejectData{})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		resp = env.do(t, "PUT", "/participant_request/"+adHoc.ID+"/sign", env.users[0], false, nil)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		resp = env.do(t, "PUT", "/participant_request/"+adHoc.ID+"/sign", env.users[1], false, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run(`history`, func(t *testing.T) {
		resp := env.do(t, "GET", "/participant_request/"+adHoc.ID+"/history", env.users[1], false, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run(`export`, func(t *testing.T) {
		resp := env.do(t, "GET", "/participant_request/export", env.users[1], false, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
