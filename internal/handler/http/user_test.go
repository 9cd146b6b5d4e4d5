package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func registerBody() map[string]any {
	return map[string]any{
		"username":  "alice",
		"password":  "secret123",
		"firstname": "A",
		"lastname":  "B",
		"email":     "a@b.com",
		"id":        7,
	}
}

// --- Register ---

func TestRegister_Created(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/user", jsonBody(t, registerBody())))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "A", body["first_name"])
	assert.Equal(t, float64(7), body["user_id"])
	assert.NotContains(t, rec.Body.String(), "secret123")

	saved := ts.users.Calls[0].Arguments.Get(1).(*domain.User)
	assert.True(t, strings.HasPrefix(saved.PasswordHash, "$argon2id$v=19$"))
}

func TestRegister_MissingField(t *testing.T) {
	for _, field := range []string{"username", "password", "firstname", "lastname", "email"} {
		t.Run(field, func(t *testing.T) {
			ts := newTestServer(t)
			body := registerBody()
			delete(body, field)

			rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/user", jsonBody(t, body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			errResp := decodeError(t, rec)
			assert.Equal(t, "INVALID_INPUT", errResp.Code)
			assert.Equal(t, service.MsgAllFieldsRequired, errResp.Message)
			ts.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("Create", mock.Anything, mock.Anything).Return(apperrors.AlreadyExists("user", "username", "alice"))

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/user", jsonBody(t, registerBody())))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeError(t, rec).Code)
}

func TestRegister_PersistenceFailureIsGeneric(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("Create", mock.Anything, mock.Anything).Return(errors.New(`relation "users" does not exist`))

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/user", jsonBody(t, registerBody())))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errResp := decodeError(t, rec)
	assert.Equal(t, "an internal error occurred", errResp.Message)
	assert.NotContains(t, rec.Body.String(), "relation")
}

// --- List / Select ---

func TestListUsers(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("List", mock.Anything).Return([]domain.User{{Username: "alice"}, {Username: "bob"}}, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/user", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var users []domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestGetUser_MissingIsNull(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/user/select/ghost", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestGetUser_Found(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{Username: "alice"}, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/user/select/alice", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

// --- Legacy GET login ---

func legacyLoginURL(username, password string) string {
	q := url.Values{}
	q.Set("username", username)
	q.Set("password", password)
	return "/api/user/login?" + q.Encode()
}

func TestLegacyLogin_Match(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "alice").Return(ts.storedUser(t, "alice", "secret123"), nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, legacyLoginURL("alice", "secret123"), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestLegacyLogin_MismatchAndUnknownAreBothNull(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "alice").Return(ts.storedUser(t, "alice", "secret123"), nil)
	ts.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)

	wrong := ts.do(httptest.NewRequest(http.MethodGet, legacyLoginURL("alice", "nope"), nil))
	unknown := ts.do(httptest.NewRequest(http.MethodGet, legacyLoginURL("ghost", "secret123"), nil))

	assert.Equal(t, http.StatusOK, wrong.Code)
	assert.Equal(t, "null", strings.TrimSpace(wrong.Body.String()))
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestLegacyLogin_InfrastructureFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "alice").Return(nil, errors.New("connection refused"))

	rec := ts.do(httptest.NewRequest(http.MethodGet, legacyLoginURL("alice", "secret123"), nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

// --- POST login ---

func TestLogin_Match(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "alice").Return(ts.storedUser(t, "alice", "secret123"), nil)

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/user/login",
		jsonBody(t, map[string]string{"username": "alice", "password": "secret123"})))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestLogin_Mismatch(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "alice").Return(ts.storedUser(t, "alice", "secret123"), nil)

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/user/login",
		jsonBody(t, map[string]string{"username": "alice", "password": "nope"})))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
}

func TestLogin_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader("nope")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
