package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

const pingProcedure = "/splitledger.test.v1.PingService/Ping"

type observed struct {
	route  string
	status int
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observed
}

func (o *recordingObserver) ObserveRequest(_, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observed{route, status})
}

// syncBuffer is written by the server goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

// startPingServer serves a single procedure behind the metrics, logging and
// auth interceptors, in the order the server installs them.
func startPingServer(t *testing.T, jwtManager *auth.JWTManager, logger *slog.Logger, obs RequestObserver) *connect.Client[emptypb.Empty, emptypb.Empty] {
	t.Helper()

	handler := connect.NewUnaryHandler(pingProcedure,
		func(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
			if GetUserID(ctx) == "" {
				return nil, connect.NewError(connect.CodeInternal, nil)
			}
			return connect.NewResponse(&emptypb.Empty{}), nil
		},
		connect.WithInterceptors(MetricsInterceptor(obs), LoggingInterceptor(logger), RequireAuth(jwtManager)),
	)
	mux := http.NewServeMux()
	mux.Handle(pingProcedure, handler)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return connect.NewClient[emptypb.Empty, emptypb.Empty](http.DefaultClient, ts.URL+pingProcedure)
}

func TestInterceptorsAuthenticatedCall(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", "test", time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var buf syncBuffer
	obs := &recordingObserver{}
	client := startPingServer(t, jwtManager, slog.New(slog.NewJSONHandler(&buf, nil)), obs)

	req := connect.NewRequest(&emptypb.Empty{})
	req.Header().Set("Authorization", "Bearer "+token)
	if _, err := client.CallUnary(context.Background(), req); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.Bytes())
	}
	if entry["msg"] != "RPC ok" || entry["user_id"] != "u1" || entry["procedure"] != pingProcedure {
		t.Errorf("unexpected log entry: %v", entry)
	}

	if len(obs.calls) != 1 || obs.calls[0] != (observed{pingProcedure, http.StatusOK}) {
		t.Errorf("unexpected observations: %+v", obs.calls)
	}
}

func TestInterceptorsRejectMissingToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", "test", time.Hour)

	var buf syncBuffer
	obs := &recordingObserver{}
	client := startPingServer(t, jwtManager, slog.New(slog.NewJSONHandler(&buf, nil)), obs)

	_, err := client.CallUnary(context.Background(), connect.NewRequest(&emptypb.Empty{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.Bytes())
	}
	if entry["msg"] != "RPC error" || entry["code"] != "unauthenticated" {
		t.Errorf("unexpected log entry: %v", entry)
	}
	if _, ok := entry["user_id"]; ok {
		t.Errorf("rejected call must not carry a user id: %v", entry)
	}

	if len(obs.calls) != 1 || obs.calls[0].status != http.StatusUnauthorized {
		t.Errorf("unexpected observations: %+v", obs.calls)
	}
}
