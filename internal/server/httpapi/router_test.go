package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
	"github.com/aguerraochoa/Speakance-sub000/internal/parsing"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/auth"
	serverconfig "github.com/aguerraochoa/Speakance-sub000/internal/server/config"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/repomanager"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/services"
)

var testSecret = []byte("router-test-secret")

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestRouterWithStorage(t, nil)
}

func newTestRouterWithStorage(t *testing.T, storage *services.StorageService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logging.NewSlogLogger(slog.Default())
	repos := repomanager.NewInMemoryRepositoryManager()
	engine := parsing.NewEngine(nil, parsing.DefaultScoreConfig(), log)

	api := NewAPI(
		services.NewUserService(repos, testSecret, time.Hour, 20),
		services.NewParseService(repos, engine, nil, 0.90, log),
		services.NewExpenseService(repos),
		services.NewMetadataService(repos, log),
		storage,
		log,
	)
	return NewRouter(api, testSecret)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "ana", "password": "hunter2", "default_currency": "MXN",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "ana", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "ana", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/expenses", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/expenses", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r)

	expired, err := auth.GenerateToken("someone", testSecret, -time.Minute)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/api/v1/expenses", expired, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestParseRoundTrip(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/parse", token, gin.H{
		"client_expense_id":  "cap-1",
		"source":             "text",
		"captured_at_device": "2026-08-26T12:00:00Z",
		"raw_text":           "spent 150 pesos on tacos yesterday",
		"allow_auto_save":    true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp services.ParseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Expense)
	require.Equal(t, "cap-1", resp.Expense.ClientExpenseID)
	require.Equal(t, "MXN", resp.Expense.Currency)
	require.Equal(t, "2026-08-25", resp.Expense.ExpenseDate)

	// The stored row is visible through the list endpoint.
	w = doJSON(t, r, http.MethodGet, "/api/v1/expenses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Expenses []services.ExpenseDTO `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Expenses, 1)
}

func TestMetadataRoundTrip(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/metadata/sync", token, gin.H{
		"categories": []gin.H{
			{"id": "c1", "name": "Food", "hints": []string{"tacos"}},
		},
		"profile": gin.H{"default_currency": "MXN", "daily_voice_limit": 20},
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/metadata", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Food")
}

func TestPresignWithoutStorage(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/audio/presign", token, nil)
	require.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestPresignReturnsUploadURLAndKey(t *testing.T) {
	// Presigning is pure local SigV4 computation, so a real StorageService
	// with static credentials works without any network.
	storage := services.NewStorageService(&serverconfig.Config{S3: serverconfig.S3Config{
		AccessKey: "test-access-key",
		SecretKey: "test-secret-key",
		Bucket:    "speakance-audio",
		Region:    "us-east-1",
	}})
	r := newTestRouterWithStorage(t, storage)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/audio/presign", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		URL       string `json:"url"`
		ObjectKey string `json:"object_key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// The url field must be the address the client PUTs to, not the key.
	u, err := url.Parse(resp.URL)
	require.NoError(t, err)
	require.Equal(t, "https", u.Scheme)
	require.Contains(t, u.RawQuery, "X-Amz-Signature=")

	require.True(t, strings.HasPrefix(resp.ObjectKey, "users/"), "object key %q", resp.ObjectKey)
	require.NotContains(t, resp.ObjectKey, "://")
}
