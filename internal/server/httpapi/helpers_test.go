package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/and161185/taskmaster/internal/api"
	pkgcrypto "github.com/and161185/taskmaster/internal/crypto"
)

func init() { gin.SetMode(gin.TestMode) }

var cheapHash = pkgcrypto.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type sentMail struct {
	kind  MailKind
	email string
	token string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) Send(_ context.Context, kind MailKind, email, token string) error {
	m.mu.Lock()
	m.sent = append(m.sent, sentMail{kind, email, token})
	m.mu.Unlock()
	return nil
}

func (m *captureMailer) last(kind MailKind) (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == kind {
			return m.sent[i], true
		}
	}
	return sentMail{}, false
}

func newTestServer(t *testing.T, mod ...func(*Config)) (*Server, *captureMailer) {
	t.Helper()
	m := &captureMailer{}
	cfg := Config{SignKey: []byte("test-signing-key"), Hash: cheapHash, Mailer: m}
	for _, f := range mod {
		f(&cfg)
	}
	s, err := New(cfg)
	require.NoError(t, err)
	return s, m
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, Prefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) api.Envelope[T] {
	t.Helper()
	var env api.Envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// signup registers an account and returns it with its tokens.
func signup(t *testing.T, s *Server, email, username string) api.User {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/auth/register", "", api.RegisterRequest{
		Username: username, Email: email, Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode[api.User](t, rec)
	require.True(t, env.Success)
	require.NotNil(t, env.Data)
	return *env.Data
}

func createTask(t *testing.T, s *Server, token string, req api.CreateTaskRequest) api.Task {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/tasks", token, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return *decode[api.Task](t, rec).Data
}
