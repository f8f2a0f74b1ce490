package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models/dto"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router  *gin.Engine
	Store   *sqlstore.Store
	Metrics *metrics.Metrics
}

// SetupTestContext wires the full REST stack over a temporary SQLite file.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlstore.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := metrics.New()
	jwtManager := auth.NewJWTManager("test-secret-key", "splitledger-test", time.Hour, auth.WithRevocationCheck(store))
	authenticator := auth.NewPasswordAuthenticatorWithCost(store, bcrypt.MinCost)

	handler := api.NewHandler(
		service.NewAuthService(authenticator, jwtManager, store, nil),
		service.NewGroupService(store),
		service.NewLedgerService(store, service.WithRecorder(m)),
		jwtManager,
		store,
	)

	return &TestContext{
		Router:  api.NewRouter(handler, m, m.Handler()),
		Store:   store,
		Metrics: m,
	}
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

type testUser struct {
	ID    string
	Token string
}

// signUp registers a user with a unique email and returns its ID and token.
func (tc *TestContext) signUp(t *testing.T, name string) testUser {
	t.Helper()

	w := PerformRequest(tc.Router, http.MethodPost, "/auth/signup", dto.SignUpRequest{
		Email:       fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password:    "correct-horse",
		DisplayName: name,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return testUser{ID: resp.User.ID, Token: resp.Token}
}

// createGroup creates a group owned by creator and adds the members.
func (tc *TestContext) createGroup(t *testing.T, creator testUser, members ...testUser) string {
	t.Helper()

	w := PerformRequest(tc.Router, http.MethodPost, "/groups", dto.CreateGroupRequest{Name: "Trip"}, AuthHeaders(creator.Token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var group dto.GroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &group))

	for _, m := range members {
		w = PerformRequest(tc.Router, http.MethodPost, "/groups/"+group.ID+"/members",
			dto.AddMemberRequest{UserID: m.ID}, AuthHeaders(creator.Token))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	return group.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
