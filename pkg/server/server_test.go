package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/trek/pkg/adapter"
	"github.com/m-mizutani/trek/pkg/model"
	"github.com/m-mizutani/trek/pkg/server"
)

// Mock Identity
type mockIdentity struct {
	signInErr error
}

func (m *mockIdentity) SignIn(ctx context.Context, email, password string) (*adapter.SignInResult, error) {
	if m.signInErr != nil {
		return nil, m.signInErr
	}
	return &adapter.SignInResult{Email: email, IDToken: "issued-token"}, nil
}

func (m *mockIdentity) SignUp(ctx context.Context, email, password string) (string, error) {
	return "uid-123", nil
}

func (m *mockIdentity) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken != "valid-token" {
		return "", goerr.New("unknown token")
	}
	return "traveler@example.com", nil
}

// Mock LLM
type mockLLM struct {
	prompts []string
	reply   string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.reply, nil
}

// Mock Repository
type mockRepository struct {
	records map[string][]*model.HistoryRecord
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[string][]*model.HistoryRecord)}
}

func (m *mockRepository) PutRecord(ctx context.Context, user string, record *model.HistoryRecord) error {
	m.records[user] = append(m.records[user], record)
	return nil
}

func (m *mockRepository) ListRecords(ctx context.Context, user string, limit int) ([]*model.HistoryRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	records := m.records[user]
	var out []*model.HistoryRecord
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

func (m *mockRepository) ListRecordsAsc(ctx context.Context, user string) ([]*model.HistoryRecord, error) {
	return m.records[user], nil
}

func (m *mockRepository) Close() error {
	return nil
}

type testServer struct {
	Handler  http.Handler
	Identity *mockIdentity
	LLM      *mockLLM
	Repo     *mockRepository
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	identity := &mockIdentity{}
	llm := &mockLLM{reply: "Morning: beach walk."}
	repo := newMockRepository()

	return &testServer{
		Handler:  server.New(identity, repo, llm).Handler(),
		Identity: identity,
		LLM:      llm,
		Repo:     repo,
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		gt.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiredWithoutToken(t *testing.T) {
	ts := setupServer(t)

	for _, path := range []string{"/api/plan", "/api/chat", "/api/generate"} {
		rec := doJSON(t, ts.Handler, http.MethodPost, path, "", map[string]string{})
		gt.Equal(t, rec.Code, http.StatusUnauthorized)
	}

	rec := doJSON(t, ts.Handler, http.MethodGet, "/api/history", "bogus", nil)
	gt.Equal(t, rec.Code, http.StatusUnauthorized)
}

func TestLoginSuccess(t *testing.T) {
	ts := setupServer(t)

	rec := doJSON(t, ts.Handler, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "traveler@example.com", "password": "secret"})
	gt.Equal(t, rec.Code, http.StatusOK)

	var result adapter.SignInResult
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	gt.Equal(t, result.Email, "traveler@example.com")
	gt.Equal(t, result.IDToken, "issued-token")
}

func TestLoginErrorClassification(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		message string
	}{
		{"unknown email", adapter.ErrEmailNotFound, "email not registered"},
		{"wrong password", adapter.ErrWrongPassword, "wrong password"},
		{"other", goerr.New("sign-in error: USER_DISABLED"), "sign-in error: USER_DISABLED"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := setupServer(t)
			ts.Identity.signInErr = tc.err

			rec := doJSON(t, ts.Handler, http.MethodPost, "/api/auth/login", "",
				map[string]string{"email": "traveler@example.com", "password": "secret"})
			gt.Equal(t, rec.Code, http.StatusUnauthorized)
			gt.S(t, rec.Body.String()).Contains(tc.message)
		})
	}
}

func TestRegister(t *testing.T) {
	ts := setupServer(t)

	rec := doJSON(t, ts.Handler, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "new@example.com", "password": "secret"})
	gt.Equal(t, rec.Code, http.StatusCreated)
	gt.S(t, rec.Body.String()).Contains("uid-123")
}

func TestPlanEndpoint(t *testing.T) {
	ts := setupServer(t)

	rec := doJSON(t, ts.Handler, http.MethodPost, "/api/plan", "valid-token", map[string]any{
		"origin":      "Hanoi",
		"destination": "Da Nang",
		"start_date":  "2024-01-01",
		"end_date":    "2024-01-02",
		"interests":   []string{"food"},
		"pace":        "normal",
	})
	gt.Equal(t, rec.Code, http.StatusOK)

	// One backend call per day
	gt.A(t, ts.LLM.prompts).Length(2)

	// The result is persisted for the authenticated user
	gt.A(t, ts.Repo.records["traveler@example.com"]).Length(1)
	gt.Equal(t, ts.Repo.records["traveler@example.com"][0].Type, model.RecordTypeItinerary)
}

func TestPlanRejectsInvertedRange(t *testing.T) {
	ts := setupServer(t)

	rec := doJSON(t, ts.Handler, http.MethodPost, "/api/plan", "valid-token", map[string]any{
		"origin":      "Hanoi",
		"destination": "Da Nang",
		"start_date":  "2024-01-05",
		"end_date":    "2024-01-01",
	})
	gt.Equal(t, rec.Code, http.StatusBadRequest)
	gt.A(t, ts.LLM.prompts).Length(0)
}

func TestChatEndpoint(t *testing.T) {
	ts := setupServer(t)
	ts.LLM.reply = "try My Khe beach"

	rec := doJSON(t, ts.Handler, http.MethodPost, "/api/chat", "valid-token",
		map[string]string{"message": "what beach?"})
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Body.String()).Contains("try My Khe beach")

	gt.A(t, ts.LLM.prompts).Length(1)
	gt.Equal(t, ts.LLM.prompts[0], "user: what beach?")
	gt.A(t, ts.Repo.records["traveler@example.com"]).Length(1)
}

func TestGenerateInvalidPayload(t *testing.T) {
	ts := setupServer(t)

	rec := doJSON(t, ts.Handler, http.MethodPost, "/api/generate", "valid-token",
		map[string]any{})
	gt.Equal(t, rec.Code, http.StatusBadRequest)
	gt.S(t, rec.Body.String()).Contains("invalid payload: neither date range nor prompt given")
	gt.A(t, ts.LLM.prompts).Length(0)
}

func TestGenerateWithPrompt(t *testing.T) {
	ts := setupServer(t)
	ts.LLM.reply = "the night market opens at 18:00"

	rec := doJSON(t, ts.Handler, http.MethodPost, "/api/generate", "valid-token",
		map[string]string{"prompt": "user: when does the market open?"})
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Body.String()).Contains("the night market opens at 18:00")
}

func TestHistoryEndpoint(t *testing.T) {
	ts := setupServer(t)

	now := time.Now()
	for i, typ := range []model.RecordType{model.RecordTypeItinerary, model.RecordTypeChat, model.RecordTypeItinerary} {
		ts.Repo.records["traveler@example.com"] = append(ts.Repo.records["traveler@example.com"], &model.HistoryRecord{
			ID:        model.NewRecordID(),
			Type:      typ,
			Timestamp: now.Add(time.Duration(i) * time.Minute),
			Request:   map[string]any{"index": i},
			Response:  "response",
		})
	}

	rec := doJSON(t, ts.Handler, http.MethodGet, "/api/history?type=llm", "valid-token", nil)
	gt.Equal(t, rec.Code, http.StatusOK)

	var body struct {
		History []struct {
			Type model.RecordType `json:"type"`
		} `json:"history"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.A(t, body.History).Length(2)
	for _, entry := range body.History {
		gt.Equal(t, entry.Type, model.RecordTypeItinerary)
	}
}
