package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/firetrack/backend/internal/config"
	"github.com/firetrack/backend/internal/domain"
	"github.com/firetrack/backend/internal/repository"
	"github.com/firetrack/backend/internal/repository/memory"
	"github.com/firetrack/backend/internal/service"
	"github.com/firetrack/backend/pkg/hash"
	"github.com/firetrack/backend/pkg/otp"
	"github.com/firetrack/backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testCode = 482913

type nopNotifier struct{}

func (nopNotifier) NotifyActivationCode(context.Context, *domain.User, *domain.ActivationCode) error {
	return nil
}

type failingNotifier struct{}

func (failingNotifier) NotifyActivationCode(context.Context, *domain.User, *domain.ActivationCode) error {
	return errors.New("queue unavailable")
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	return newTestRouterWith(t, domain.MaxActivationAttempts, nopNotifier{})
}

func newTestRouterWith(t *testing.T, maxAttempts int, notifier service.ActivationNotifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Activation: config.ActivationConfig{CodeTTL: 30 * time.Minute, MaxAttempts: maxAttempts},
	}

	services := service.NewServices(service.Deps{
		Config:       cfg,
		Hasher:       hash.NewBcryptHasher(bcrypt.MinCost),
		OtpGenerator: otp.GeneratorFunc(func(int, int) (int, error) { return testCode, nil }),
		Notifier:     notifier,
		Repos: &repository.Repositories{
			Users:           memory.NewUserRepo(),
			ActivationCodes: memory.NewActivationCodeRepo(),
		},
	})

	validator.RegisterGinValidator()
	router := gin.New()
	NewHandler(services, cfg).Init(router.Group("/api"))

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func register(t *testing.T, router *gin.Engine, email string) userResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/users", gin.H{"email": email, "password": "supersecret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()

	var resp struct {
		ErrorCode int `json:"error_code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp.ErrorCode
}

func TestUserRegister(t *testing.T) {
	router := newTestRouter(t)

	user := register(t, router, "User@Example.com")
	assert.Equal(t, "user@example.com", user.Email)
	assert.False(t, user.Activated)
	assert.NotEqual(t, uuid.Nil, user.ID)

	w := doJSON(t, router, http.MethodPost, "/api/v1/users", gin.H{"email": "user@example.com", "password": "supersecret"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, UserAlreadyExistsCode, errorCode(t, w))
}

func TestUserRegister_Validation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/users", gin.H{"email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ValidationErrorStruct
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ValidationErrorCode, resp.ErrorCode)
	assert.Len(t, resp.Errors, 2)

	w = doJSON(t, router, http.MethodPost, "/api/v1/users", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, InvalidRequestCode, errorCode(t, w))
}

func TestUserActivate(t *testing.T) {
	router := newTestRouter(t)
	user := register(t, router, "activate@example.com")
	path := "/api/v1/users/" + user.ID.String() + "/activate"

	w := doJSON(t, router, http.MethodPost, path, gin.H{"code": 111111})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var invalid InvalidActivationCodeStruct
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invalid))
	assert.Equal(t, ErrorCode(InvalidActivationCodeCode), invalid.ErrorCode)
	assert.Equal(t, domain.MaxActivationAttempts-1, invalid.RemainingAttempts)

	w = doJSON(t, router, http.MethodPost, path, gin.H{"code": testCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var activated userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &activated))
	assert.True(t, activated.Activated)

	w = doJSON(t, router, http.MethodPost, path, gin.H{"code": testCode})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, UserAlreadyActivatedCode, errorCode(t, w))
}

func TestUserActivate_CodeOutOfRange(t *testing.T) {
	router := newTestRouter(t)
	user := register(t, router, "range@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/users/"+user.ID.String()+"/activate", gin.H{"code": 12})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ValidationErrorCode, errorCode(t, w))
}

func TestUserActivate_MaxAttempts(t *testing.T) {
	router := newTestRouter(t)
	user := register(t, router, "locked@example.com")
	path := "/api/v1/users/" + user.ID.String() + "/activate"

	for i := 0; i < domain.MaxActivationAttempts; i++ {
		w := doJSON(t, router, http.MethodPost, path, gin.H{"code": 111111})
		require.Equal(t, http.StatusBadRequest, w.Code)
	}

	w := doJSON(t, router, http.MethodPost, path, gin.H{"code": testCode})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, MaxAttemptsExceededCode, errorCode(t, w))
}

func TestUserResendActivationCode(t *testing.T) {
	router := newTestRouter(t)
	user := register(t, router, "resend@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/users/"+user.ID.String()+"/activation-code", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp activationCodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.MaxActivationAttempts-1, resp.RemainingAttempts)
	assert.False(t, resp.ExpirationTime.IsZero())
	assert.NotContains(t, w.Body.String(), "482913")
}

func TestUserActivate_LockoutSurvivesAnonymousCalls(t *testing.T) {
	router := newTestRouter(t)
	user := register(t, router, "lockout@example.com")
	base := "/api/v1/users/" + user.ID.String()

	for i := 0; i < domain.MaxActivationAttempts; i++ {
		w := doJSON(t, router, http.MethodPost, base+"/activate", gin.H{"code": 111111})
		require.Equal(t, http.StatusBadRequest, w.Code)
	}

	w := doJSON(t, router, http.MethodDelete, base+"/activation-code", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/activation-code", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, MaxAttemptsExceededCode, errorCode(t, w))

	w = doJSON(t, router, http.MethodPost, base+"/activate", gin.H{"code": testCode})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, MaxAttemptsExceededCode, errorCode(t, w))
}

func TestUserRegister_NotificationFailure(t *testing.T) {
	router := newTestRouterWith(t, domain.MaxActivationAttempts, failingNotifier{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/users", gin.H{"email": "queue@example.com", "password": "supersecret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestUserResendActivationCode_DefaultAttempts(t *testing.T) {
	router := newTestRouterWith(t, 0, nopNotifier{})
	user := register(t, router, "defaults@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/users/"+user.ID.String()+"/activation-code", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp activationCodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.MaxActivationAttempts-1, resp.RemainingAttempts)
}

func TestUserRoutes_BadUserID(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/users/not-a-uuid/activate", gin.H{"code": testCode})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, InvalidRequestCode, errorCode(t, w))

	w = doJSON(t, router, http.MethodPost, "/api/v1/users/"+uuid.NewString()+"/activation-code", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, UserNotFoundCode, errorCode(t, w))
}
