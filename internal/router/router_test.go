package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/userapi/internal/config"
	"github.com/deppfellow/userapi/internal/handler"
	"github.com/deppfellow/userapi/internal/middleware"
	"github.com/deppfellow/userapi/internal/server"
	"github.com/deppfellow/userapi/internal/service"
	"github.com/deppfellow/userapi/internal/testutil"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type user struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Age  float64 `json:"age"`
}

func newTestRouter(t *testing.T) (*echo.Echo, *testutil.UserStore) {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				Port:               "7002",
				CORSAllowedOrigins: []string{"*"},
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}

	store := testutil.NewUserStore()
	services := &service.Services{User: service.NewUserService(store, nil, &logger)}

	e, doc, err := NewRouter(s, handler.NewHandlers(s, services))
	require.NoError(t, err)
	require.NotNil(t, doc)
	return e, store
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.StatusCode, "transport status must match the envelope")
	return env
}

func decodeUsers(t *testing.T, env envelope) []user {
	t.Helper()
	var users []user
	require.NoError(t, json.Unmarshal(env.Data, &users))
	return users
}

func TestUserLifecycle(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodPost, "/api/user", `{"name":"Alice","age":30}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"statusCode":201,"message":"User Saved Successfully"}`, rec.Body.String())

	env := decodeEnvelope(t, do(e, http.MethodGet, "/api/user", ""))
	assert.Equal(t, "User Data Successfully Fetched", env.Message)
	users := decodeUsers(t, env)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, 30.0, users[0].Age)
	assert.Len(t, users[0].ID, 24)
	id := users[0].ID

	env = decodeEnvelope(t, do(e, http.MethodGet, "/api/user/"+id, ""))
	assert.Equal(t, "User Data Successfully Fetched", env.Message)
	assert.Equal(t, users, decodeUsers(t, env))

	env = decodeEnvelope(t, do(e, http.MethodPut, "/api/user/"+id, `{"age":31}`))
	assert.Equal(t, "User Updated Successfully", env.Message)
	var updated user
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, user{ID: id, Name: "Alice", Age: 31}, updated)

	rec = do(e, http.MethodDelete, "/api/user/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"statusCode":200,"message":"User Deleted Successfully"}`, rec.Body.String())

	env = decodeEnvelope(t, do(e, http.MethodGet, "/api/user/"+id, ""))
	assert.Equal(t, "User Not Found", env.Message)
	assert.JSONEq(t, `[]`, string(env.Data))

	rec = do(e, http.MethodDelete, "/api/user/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User Deleted Successfully", decodeEnvelope(t, rec).Message)
}

func TestListUsers_EmptyIsEmptyArray(t *testing.T) {
	e, _ := newTestRouter(t)

	env := decodeEnvelope(t, do(e, http.MethodGet, "/api/user", ""))
	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestUpdateUser_NoMatchReturnsNullData(t *testing.T) {
	e, _ := newTestRouter(t)

	env := decodeEnvelope(t, do(e, http.MethodPut, "/api/user/64b7f0c2a1b2c3d4e5f60718", `{"name":"Zed"}`))
	assert.Equal(t, "User Updated Successfully", env.Message)
	assert.Equal(t, "null", string(env.Data))
}

func TestMalformedIDIsNoMatch(t *testing.T) {
	e, _ := newTestRouter(t)

	env := decodeEnvelope(t, do(e, http.MethodGet, "/api/user/not-an-id", ""))
	assert.Equal(t, "User Not Found", env.Message)

	rec := do(e, http.MethodDelete, "/api/user/not-an-id", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidationRejectsBeforeStorage(t *testing.T) {
	e, store := newTestRouter(t)

	cases := map[string]struct {
		method string
		path   string
		body   string
	}{
		"missing age":       {http.MethodPost, "/api/user", `{"name":"Bob"}`},
		"missing name":      {http.MethodPost, "/api/user", `{"age":3}`},
		"empty name":        {http.MethodPost, "/api/user", `{"name":"","age":3}`},
		"age wrong type":    {http.MethodPost, "/api/user", `{"name":"Bob","age":"3"}`},
		"name wrong type":   {http.MethodPost, "/api/user", `{"name":5,"age":3}`},
		"unknown key":       {http.MethodPost, "/api/user", `{"name":"Bob","age":3,"role":"admin"}`},
		"update wrong type": {http.MethodPut, "/api/user/64b7f0c2a1b2c3d4e5f60718", `{"age":"old"}`},
		"update unknown":    {http.MethodPut, "/api/user/64b7f0c2a1b2c3d4e5f60718", `{"email":"x@y.z"}`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(e, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "BAD_REQUEST", body["code"])
			assert.NotContains(t, body, "statusCode")
		})
	}

	assert.Equal(t, 0, store.Calls())
}

func TestStorageFailureEnvelopes(t *testing.T) {
	e, store := newTestRouter(t)
	store.FailWith(errors.New("connection refused"))

	cases := []struct {
		method  string
		path    string
		body    string
		message string
	}{
		{http.MethodGet, "/api/user", "", "Failed to get data"},
		{http.MethodGet, "/api/user/64b7f0c2a1b2c3d4e5f60718", "", "Failed to get data"},
		{http.MethodPut, "/api/user/64b7f0c2a1b2c3d4e5f60718", `{"age":1}`, "Failed to get data"},
		{http.MethodDelete, "/api/user/64b7f0c2a1b2c3d4e5f60718", "", "Error in removing User"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := do(e, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

			env := decodeEnvelope(t, rec)
			assert.Equal(t, tc.message, env.Message)

			var payload map[string]interface{}
			require.NoError(t, json.Unmarshal(env.Data, &payload))
			assert.Equal(t, "Error", payload["name"])
			assert.Equal(t, "connection refused", payload["message"])
		})
	}

	t.Run("create", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/user", `{"name":"Alice","age":30}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "connection refused", env.Message)
		assert.Empty(t, env.Data)
	})
}

func TestSystemRoutes(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = do(e, http.MethodGet, "/documentation", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	rec = do(e, http.MethodGet, "/openapi.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, doc["paths"], "/api/user/{id}")
}

func TestUnknownRouteAndMethod(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")

	rec = do(e, http.MethodPatch, "/api/user", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDocumentMatchesRoutes(t *testing.T) {
	doc, err := Document()
	require.NoError(t, err)

	for _, op := range userOperations() {
		item := doc.Paths.Find(strings.ReplaceAll(op.Path, ":id", "{id}"))
		require.NotNil(t, item, op.Path)
		assert.NotNil(t, item.GetOperation(op.Method), op.ID)
	}
}
