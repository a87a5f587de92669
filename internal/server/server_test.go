package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/contact-keeper/contact_keeper/internal/config"
	"github.com/contact-keeper/contact_keeper/internal/logging"
	"github.com/contact-keeper/contact_keeper/internal/middleware"
)

func testConfig() config.Config {
	return config.Config{
		AppName:           "ContactKeeperTest",
		AppEnv:            "development",
		Port:              "0",
		JWTSecret:         "test-secret",
		TokenTTL:          10 * time.Hour,
		BcryptCost:        4,
		RequestTimeout:    5 * time.Second,
		ShutdownPeriod:    time.Second,
		LoginMaxPerMinute: 5,
		IdempotencyTTL:    time.Hour,
	}
}

func newTestApp(t *testing.T, cache *redis.Client) *fiber.App {
	t.Helper()
	srv, err := New(testConfig(), nil, cache, logging.Discard())
	require.NoError(t, err)
	return srv.App()
}

type response struct {
	status int
	body   []byte
}

func (r response) object(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func (r response) list(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any, headers ...string) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, body: raw}
}

func register(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()
	res := call(t, app, http.MethodPost, "/api/users", "", fiber.Map{"name": name, "email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	token, _ := res.object(t)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func tamper(token string) string {
	i := strings.Index(token, ".") + 5
	b := []byte(token)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func TestRegisterLoginAndCreateContact(t *testing.T) {
	app := newTestApp(t, nil)

	regToken := register(t, app, "A", "a@x.com")

	login := call(t, app, http.MethodPost, "/api/auth", "", fiber.Map{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, login.status)
	token, _ := login.object(t)["token"].(string)
	require.NotEmpty(t, token)
	require.NotEqual(t, regToken, token)

	me := call(t, app, http.MethodGet, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, me.status)
	profile := me.object(t)
	require.Equal(t, "A", profile["name"])
	require.Equal(t, "a@x.com", profile["email"])
	require.NotContains(t, profile, "password")
	require.NotContains(t, profile, "PasswordHash")
	userID, _ := profile["id"].(string)
	require.NotEmpty(t, userID)

	created := call(t, app, http.MethodPost, "/api/contacts", token, fiber.Map{"name": "Bob"})
	require.Equal(t, http.StatusOK, created.status)
	contact := created.object(t)
	require.Equal(t, "Bob", contact["name"])
	require.Equal(t, userID, contact["user"])
	require.Equal(t, "personal", contact["type"])

	forged := call(t, app, http.MethodPost, "/api/contacts", tamper(token), fiber.Map{"name": "Bob"})
	require.Equal(t, http.StatusUnauthorized, forged.status)
	require.Equal(t, "Token is not valid", forged.object(t)["msg"])

	list := call(t, app, http.MethodGet, "/api/contacts", token, nil)
	require.Equal(t, http.StatusOK, list.status)
	require.Len(t, list.list(t), 1)
}

func TestContactsRequireToken(t *testing.T) {
	app := newTestApp(t, nil)
	token := register(t, app, "A", "a@x.com")

	res := call(t, app, http.MethodPost, "/api/contacts", "", fiber.Map{"name": "Bob"})
	require.Equal(t, http.StatusUnauthorized, res.status)
	require.Equal(t, "No token, authorization denied", res.object(t)["msg"])

	list := call(t, app, http.MethodGet, "/api/contacts", token, nil)
	require.Equal(t, http.StatusOK, list.status)
	require.Empty(t, list.list(t), "rejected request must not create anything")

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		path := "/api/contacts"
		if method != http.MethodGet {
			path += "/some-id"
		}
		require.Equal(t, http.StatusUnauthorized, call(t, app, method, path, "", nil).status, method)
	}
	require.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/api/auth", "", nil).status)
}

func TestOwnershipEnforced(t *testing.T) {
	app := newTestApp(t, nil)
	owner := register(t, app, "A", "a@x.com")
	intruder := register(t, app, "M", "m@x.com")

	created := call(t, app, http.MethodPost, "/api/contacts", owner, fiber.Map{"name": "Bob", "phone": "111"})
	require.Equal(t, http.StatusOK, created.status)
	id, _ := created.object(t)["id"].(string)

	put := call(t, app, http.MethodPut, "/api/contacts/"+id, intruder, fiber.Map{"name": "Mallory"})
	require.Equal(t, http.StatusUnauthorized, put.status)
	require.Equal(t, "Not authorized", put.object(t)["msg"])

	del := call(t, app, http.MethodDelete, "/api/contacts/"+id, intruder, nil)
	require.Equal(t, http.StatusUnauthorized, del.status)

	missing := call(t, app, http.MethodPut, "/api/contacts/does-not-exist", intruder, fiber.Map{"name": "x"})
	require.Equal(t, http.StatusNotFound, missing.status)
	require.Equal(t, "Contact not found", missing.object(t)["msg"])

	contacts := call(t, app, http.MethodGet, "/api/contacts", owner, nil).list(t)
	require.Len(t, contacts, 1)
	require.Equal(t, "Bob", contacts[0]["name"])

	require.Empty(t, call(t, app, http.MethodGet, "/api/contacts", intruder, nil).list(t))
}

func TestUpdateAndDeleteContact(t *testing.T) {
	app := newTestApp(t, nil)
	token := register(t, app, "A", "a@x.com")

	created := call(t, app, http.MethodPost, "/api/contacts", token, fiber.Map{"name": "Bob", "email": "bob@x.com"}).object(t)
	id, _ := created["id"].(string)

	updated := call(t, app, http.MethodPut, "/api/contacts/"+id, token, fiber.Map{"phone": "555", "type": "professional"})
	require.Equal(t, http.StatusOK, updated.status)
	got := updated.object(t)
	require.Equal(t, "Bob", got["name"])
	require.Equal(t, "bob@x.com", got["email"])
	require.Equal(t, "555", got["phone"])
	require.Equal(t, "professional", got["type"])
	require.Equal(t, created["date"], got["date"])

	deleted := call(t, app, http.MethodDelete, "/api/contacts/"+id, token, nil)
	require.Equal(t, http.StatusOK, deleted.status)
	require.Equal(t, "Contact removed", deleted.object(t)["msg"])

	require.Equal(t, http.StatusNotFound, call(t, app, http.MethodDelete, "/api/contacts/"+id, token, nil).status)
}

func TestContactsNewestFirst(t *testing.T) {
	app := newTestApp(t, nil)
	token := register(t, app, "A", "a@x.com")

	call(t, app, http.MethodPost, "/api/contacts", token, fiber.Map{"name": "First"})
	time.Sleep(5 * time.Millisecond)
	call(t, app, http.MethodPost, "/api/contacts", token, fiber.Map{"name": "Second"})

	list := call(t, app, http.MethodGet, "/api/contacts", token, nil).list(t)
	require.Len(t, list, 2)
	require.Equal(t, "Second", list[0]["name"])
	require.Equal(t, "First", list[1]["name"])
}

func TestValidationAndCredentialErrors(t *testing.T) {
	app := newTestApp(t, nil)
	token := register(t, app, "A", "a@x.com")

	bad := call(t, app, http.MethodPost, "/api/users", "", fiber.Map{"name": "B", "email": "not-an-email", "password": "123"})
	require.Equal(t, http.StatusBadRequest, bad.status)
	errs, _ := bad.object(t)["errors"].([]any)
	require.Len(t, errs, 2)

	dup := call(t, app, http.MethodPost, "/api/users", "", fiber.Map{"name": "A2", "email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusBadRequest, dup.status)
	require.Equal(t, "User already exists", dup.object(t)["msg"])

	unknown := call(t, app, http.MethodPost, "/api/auth", "", fiber.Map{"email": "z@x.com", "password": "secret1"})
	require.Equal(t, http.StatusBadRequest, unknown.status)
	require.Equal(t, "Invalid Credentials - User does not exist", unknown.object(t)["msg"])

	wrong := call(t, app, http.MethodPost, "/api/auth", "", fiber.Map{"email": "a@x.com", "password": "nope-nope"})
	require.Equal(t, http.StatusBadRequest, wrong.status)
	require.Equal(t, "Invalid Credentials - Incorrect Password", wrong.object(t)["msg"])

	noName := call(t, app, http.MethodPost, "/api/contacts", token, fiber.Map{"email": "x@y.com"})
	require.Equal(t, http.StatusBadRequest, noName.status)
	require.Contains(t, string(noName.body), "Name is required")
}

func TestLoginRateLimitedWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := newTestApp(t, cache)
	register(t, app, "A", "a@x.com")

	creds := fiber.Map{"email": "a@x.com", "password": "wrong-pass"}
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/auth", "", creds).status)
	}
	require.Equal(t, http.StatusTooManyRequests, call(t, app, http.MethodPost, "/api/auth", "", creds).status)
}

func TestCreateContactIdempotencyKey(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := newTestApp(t, cache)
	token := register(t, app, "A", "a@x.com")

	first := call(t, app, http.MethodPost, "/api/contacts", token, fiber.Map{"name": "Bob"}, "Idempotency-Key", "k1")
	second := call(t, app, http.MethodPost, "/api/contacts", token, fiber.Map{"name": "Bob"}, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusOK, first.status)
	require.Equal(t, first.body, second.body)

	require.Len(t, call(t, app, http.MethodGet, "/api/contacts", token, nil).list(t), 1)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, nil)

	res := call(t, app, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, res.status)
	status, _ := res.object(t)["status"].(map[string]any)
	require.Equal(t, "memory", status["postgres"])
	require.Equal(t, "disabled", status["redis"])
}

func TestNewRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "production"

	_, err := New(cfg, nil, nil, logging.Discard())
	require.Error(t, err)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})

	res := call(t, app, http.MethodGet, "/boom", "", nil)
	require.Equal(t, http.StatusInternalServerError, res.status)
	require.Equal(t, "Server Error", res.object(t)["msg"])
	require.NotContains(t, string(res.body), "EOF")
}

// send posts a raw body with an optional Content-Type, bypassing call's JSON encoding.
func send(t *testing.T, app *fiber.App, method, path, token, contentType, body string) response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, body: raw}
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	app := newTestApp(t, nil)

	res := call(t, app, http.MethodPost, "/api/users", "", fiber.Map{"name": "A", "email": "a@x.com", "password": strings.Repeat("p", 80)})
	require.Equal(t, http.StatusBadRequest, res.status)
	errs, _ := res.object(t)["errors"].([]any)
	require.Len(t, errs, 1)
	require.Equal(t, map[string]any{"param": "password", "msg": "Password must be at most 72 bytes"}, errs[0])
}

func TestRequestBodyHandling(t *testing.T) {
	app := newTestApp(t, nil)
	token := register(t, app, "A", "a@x.com")

	created := call(t, app, http.MethodPost, "/api/contacts", token, fiber.Map{"name": "Bob", "email": "bob@x.com"}).object(t)
	id, _ := created["id"].(string)

	empty := send(t, app, http.MethodPut, "/api/contacts/"+id, token, "", "")
	require.Equal(t, http.StatusOK, empty.status, string(empty.body))
	require.Equal(t, created, empty.object(t))

	wrongType := send(t, app, http.MethodPut, "/api/contacts/"+id, token, fiber.MIMEApplicationJSON, `{"name":123}`)
	require.Equal(t, http.StatusBadRequest, wrongType.status)
	require.Equal(t, "Invalid request body", wrongType.object(t)["msg"])
	require.NotContains(t, string(wrongType.body), "unmarshal")

	malformed := send(t, app, http.MethodPost, "/api/users", "", fiber.MIMEApplicationJSON, `{"name":`)
	require.Equal(t, http.StatusBadRequest, malformed.status)
	require.Equal(t, "Invalid request body", malformed.object(t)["msg"])

	untyped := send(t, app, http.MethodPost, "/api/contacts", token, "", `{"name":"Carol"}`)
	require.Equal(t, http.StatusOK, untyped.status, string(untyped.body))
	require.Equal(t, "Carol", untyped.object(t)["name"])

	noBody := send(t, app, http.MethodPost, "/api/contacts", token, "", "")
	require.Equal(t, http.StatusBadRequest, noBody.status)
	require.Contains(t, string(noBody.body), "Name is required")
}

func TestPanicIsRecoveredAndLogged(t *testing.T) {
	var logs bytes.Buffer
	srv, err := New(testConfig(), nil, nil, logging.NewWithWriter(&logs, "info", "json"))
	require.NoError(t, err)
	app := srv.App()
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("kaboom")
	})

	res := call(t, app, http.MethodGet, "/panic", "", nil)
	require.Equal(t, http.StatusInternalServerError, res.status)
	require.Equal(t, "Server Error", res.object(t)["msg"])
	require.NotContains(t, string(res.body), "kaboom")

	var entry map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		var e map[string]any
		require.NoError(t, json.Unmarshal(line, &e), string(line))
		if e["path"] == "/panic" {
			entry = e
		}
	}
	require.NotNil(t, entry, logs.String())
	require.Equal(t, "ERROR", entry["level"])
	require.Equal(t, "request completed", entry["msg"])
	require.EqualValues(t, http.StatusInternalServerError, entry["status"])
	require.Contains(t, entry["error"], "kaboom")
	require.NotEmpty(t, entry["request_id"])
}
