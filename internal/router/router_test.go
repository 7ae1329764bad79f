package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/recipe-api/config"
	"github.com/oksasatya/recipe-api/internal/container"
	"github.com/oksasatya/recipe-api/internal/testutil/memdb"
	"github.com/oksasatya/recipe-api/pkg/helpers"
	"github.com/oksasatya/recipe-api/pkg/validation"
)

const testSecret = "test-secret"

type testApp struct {
	srv *httptest.Server
	db  *memdb.Store
	mr  *miniredis.Miniredis
	cfg *config.Config
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		SessionSecret:      testSecret,
		SessionCookieName:  "session",
		SessionTTL:         time.Hour,
		CORSAllowedOrigins: "http://localhost:3000",
		RateLimitAuthMax:   10,
		RateLimitWindow:    time.Minute,
	}
	if mutate != nil {
		mutate(cfg)
	}

	logger := helpers.NewLogger("recipe-api-test", "test")
	db := memdb.New()
	c := &container.Container{
		Config:   cfg,
		Logger:   logger,
		Redis:    rdb,
		Sessions: container.NewSessionManager(cfg, rdb, logger),
		Tx:       db.Tx(),
		Repos:    db.Repositories(),
		Hasher:   helpers.NewBcryptHasher(bcrypt.MinCost),
	}
	srv := httptest.NewServer(New(c))
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, db: db, mr: mr, cfg: cfg}
}

func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// forgeSession plants a validly signed cookie for a session whose user_id is raw.
func (a *testApp) forgeSession(t *testing.T, cl *http.Client, sid, raw string) {
	t.Helper()
	a.mr.HSet("session:"+sid, "user_id", raw)
	tok, _, err := helpers.NewSessionTokenManager(testSecret, time.Hour).Sign(sid)
	require.NoError(t, err)
	u, err := url.Parse(a.srv.URL)
	require.NoError(t, err)
	cl.Jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: tok, Path: "/"}})
}

func (a *testApp) do(t *testing.T, cl *http.Client, method, path string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(raw)
		}
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := cl.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, out
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

func sessionCookie(t *testing.T, a *testApp, cl *http.Client) string {
	t.Helper()
	u, _ := url.Parse(a.srv.URL)
	for _, ck := range cl.Jar.Cookies(u) {
		if ck.Name == "session" {
			return ck.Value
		}
	}
	return ""
}

var instructions = strings.Repeat("Stir slowly. ", 5)

func signup(t *testing.T, a *testApp, cl *http.Client, username string) int64 {
	t.Helper()
	status, body := a.do(t, cl, http.MethodPost, "/signup", map[string]any{"username": username, "password": username + "password"})
	require.Equal(t, http.StatusCreated, status, string(body))
	return int64(decode(t, body)["id"].(float64))
}

func TestSignup_CreatesUserAndSession(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)

	status, body := a.do(t, cl, http.MethodPost, "/signup", map[string]any{
		"username":  "ana",
		"password":  "pw123456",
		"image_url": "http://img/ana.png",
		"bio":       "cooks",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	u := decode(t, body)
	assert.NotZero(t, u["id"])
	assert.Equal(t, "ana", u["username"])
	assert.Equal(t, "cooks", u["bio"])
	assert.Equal(t, []any{}, u["recipes"])
	assert.NotContains(t, u, "password")
	assert.NotContains(t, u, "password_hash")
	assert.NotContains(t, string(body), "pw123456")

	status, body = a.do(t, cl, http.MethodGet, "/check_session", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ana", decode(t, body)["username"])
}

func TestSignup_DuplicateUsername(t *testing.T) {
	a := newTestApp(t, nil)
	signup(t, a, a.client(t), "ana")

	status, body := a.do(t, a.client(t), http.MethodPost, "/signup", map[string]any{"username": "ana", "password": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"errors":["Username must be unique."]}`, string(body))
	assert.Equal(t, 1, a.db.UserCount())
}

func TestSignup_ValidationErrors(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)

	status, body := a.do(t, cl, http.MethodPost, "/signup", map[string]any{"username": "ana"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"errors":["password is required"]}`, string(body))

	status, body = a.do(t, cl, http.MethodPost, "/signup", map[string]any{"username": "ana", "password": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"errors":["Password cannot be empty."]}`, string(body))

	status, body = a.do(t, cl, http.MethodPost, "/signup", map[string]any{"username": " ", "password": "pw"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"errors":["Username is required."]}`, string(body))

	status, _ = a.do(t, cl, http.MethodPost, "/signup", `{"username":`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	assert.Zero(t, a.db.UserCount())
	status, _ = a.do(t, cl, http.MethodGet, "/check_session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func errorsOf(t *testing.T, raw []byte) []string {
	t.Helper()
	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body.Errors
}

func TestSignup_SessionStoreDown(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)
	a.mr.Close()

	status, body := a.do(t, cl, http.MethodPost, "/signup", map[string]any{"username": "ana", "password": "pw123456"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	errs := errorsOf(t, body)
	require.Len(t, errs, 1)
	assert.True(t, strings.HasPrefix(errs[0], "save session: "), errs[0])
	assert.Zero(t, a.db.UserCount())
	assert.Empty(t, sessionCookie(t, a, cl))

	status, _ = a.do(t, cl, http.MethodGet, "/check_session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogin_SessionStoreDown(t *testing.T) {
	a := newTestApp(t, nil)
	signup(t, a, a.client(t), "ana")
	a.mr.Close()

	cl := a.client(t)
	status, body := a.do(t, cl, http.MethodPost, "/login", map[string]any{"username": "ana", "password": "anapassword"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	errs := errorsOf(t, body)
	require.Len(t, errs, 1)
	assert.True(t, strings.HasPrefix(errs[0], "save session: "), errs[0])
	assert.NotContains(t, string(body), "Invalid username or password")
	assert.Empty(t, sessionCookie(t, a, cl))
}

func TestLogin(t *testing.T) {
	a := newTestApp(t, nil)
	signup(t, a, a.client(t), "ana")

	cl := a.client(t)
	status, body := a.do(t, cl, http.MethodPost, "/login", map[string]any{"username": "ana", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Invalid username or password"}`, string(body))

	status, body = a.do(t, cl, http.MethodPost, "/login", map[string]any{"username": "nobody", "password": "anapassword"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Invalid username or password"}`, string(body))

	status, body = a.do(t, cl, http.MethodPost, "/login", "not json")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Invalid username or password"}`, string(body))

	status, body = a.do(t, cl, http.MethodPost, "/login", map[string]any{"username": "ana", "password": "anapassword"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ana", decode(t, body)["username"])

	status, _ = a.do(t, cl, http.MethodGet, "/check_session", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestLogin_RotatesSession(t *testing.T) {
	a := newTestApp(t, nil)
	signup(t, a, a.client(t), "ana")

	cl := a.client(t)
	a.forgeSession(t, cl, "fixed-sid", "")
	before := sessionCookie(t, a, cl)

	status, _ := a.do(t, cl, http.MethodPost, "/login", map[string]any{"username": "ana", "password": "anapassword"})
	require.Equal(t, http.StatusOK, status)

	assert.NotEqual(t, before, sessionCookie(t, a, cl))
	assert.False(t, a.mr.Exists("session:fixed-sid"))
}

func TestLogout(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)

	status, body := a.do(t, cl, http.MethodDelete, "/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))

	signup(t, a, cl, "ana")
	status, body = a.do(t, cl, http.MethodDelete, "/logout", nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)

	assert.Empty(t, sessionCookie(t, a, cl), "cookie expired")
	assert.Empty(t, a.mr.Keys(), "session key removed")

	status, _ = a.do(t, cl, http.MethodGet, "/check_session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = a.do(t, cl, http.MethodDelete, "/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogout_FalsySessionValue(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)
	a.forgeSession(t, cl, "null-user", "")

	status, body := a.do(t, cl, http.MethodDelete, "/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))
}

func TestCheckSession_DeletedUser(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)
	a.forgeSession(t, cl, "ghost", "999")

	status, body := a.do(t, cl, http.MethodGet, "/check_session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))
}

func TestRecipes_RequireSession(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)

	status, body := a.do(t, cl, http.MethodGet, "/recipes", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))

	status, body = a.do(t, cl, http.MethodPost, "/recipes", map[string]any{"title": "Soup", "instructions": instructions})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))
	assert.Zero(t, a.db.RecipeCount())
}

func TestRecipes_CreateAndList(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)
	id := signup(t, a, cl, "ana")

	status, body := a.do(t, cl, http.MethodPost, "/recipes", map[string]any{
		"title":               "Soup",
		"instructions":        instructions,
		"minutes_to_complete": 30,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	rec := decode(t, body)
	assert.Equal(t, "Soup", rec["title"])
	assert.EqualValues(t, 30, rec["minutes_to_complete"])
	assert.EqualValues(t, id, rec["user_id"])
	owner := rec["user"].(map[string]any)
	assert.Equal(t, "ana", owner["username"])
	assert.NotContains(t, owner, "recipes")

	status, body = a.do(t, cl, http.MethodPost, "/recipes", map[string]any{"title": "Tea", "instructions": instructions})
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 0, decode(t, body)["minutes_to_complete"])

	status, body = a.do(t, cl, http.MethodGet, "/recipes", nil)
	require.Equal(t, http.StatusOK, status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)

	status, body = a.do(t, cl, http.MethodGet, "/check_session", nil)
	require.Equal(t, http.StatusOK, status)
	recipes := decode(t, body)["recipes"].([]any)
	require.Len(t, recipes, 2)
	assert.NotContains(t, recipes[0].(map[string]any), "user")
}

func TestRecipes_ShortInstructions(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)
	signup(t, a, cl, "ana")

	status, body := a.do(t, cl, http.MethodPost, "/recipes", map[string]any{
		"title":        "Soup",
		"instructions": strings.Repeat("a", 49),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"errors":["Instructions must be at least 50 characters long."]}`, string(body))
	assert.Zero(t, a.db.RecipeCount())

	status, body = a.do(t, cl, http.MethodPost, "/recipes", map[string]any{"title": "Soup"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"errors":["instructions is required"]}`, string(body))

	status, body = a.do(t, cl, http.MethodPost, "/recipes", map[string]any{
		"title":               "Soup",
		"instructions":        instructions,
		"minutes_to_complete": "thirty",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"errors":["minutes_to_complete must be an integer"]}`, string(body))
	assert.Zero(t, a.db.RecipeCount())
}

func TestRecipes_ScopedPerUser(t *testing.T) {
	a := newTestApp(t, nil)
	ana, bob := a.client(t), a.client(t)
	anaID := signup(t, a, ana, "ana")
	signup(t, a, bob, "bob")

	for _, title := range []string{"A1", "A2"} {
		status, _ := a.do(t, ana, http.MethodPost, "/recipes", map[string]any{"title": title, "instructions": instructions})
		require.Equal(t, http.StatusCreated, status)
	}
	status, _ := a.do(t, bob, http.MethodPost, "/recipes", map[string]any{"title": "B1", "instructions": instructions})
	require.Equal(t, http.StatusCreated, status)

	_, body := a.do(t, ana, http.MethodGet, "/recipes", nil)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	for _, r := range list {
		assert.EqualValues(t, anaID, r["user_id"])
	}
}

func TestRecipes_EmptyListIsArray(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)
	signup(t, a, cl, "ana")

	status, body := a.do(t, cl, http.MethodGet, "/recipes", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestRecipes_CreateChecksKeyPresenceOnly(t *testing.T) {
	a := newTestApp(t, nil)
	cl := a.client(t)
	a.forgeSession(t, cl, "falsy", "")

	status, _ := a.do(t, cl, http.MethodGet, "/recipes", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := a.do(t, cl, http.MethodPost, "/recipes", map[string]any{"title": "Soup", "instructions": instructions})
	require.Equal(t, http.StatusCreated, status, string(body))
	rec := decode(t, body)
	assert.Nil(t, rec["user_id"])
	assert.Nil(t, rec["user"])
	assert.Equal(t, 1, a.db.RecipeCount())
}

func TestRecipes_Search(t *testing.T) {
	a := newTestApp(t, nil)
	ana, bob := a.client(t), a.client(t)
	signup(t, a, ana, "ana")
	signup(t, a, bob, "bob")

	for _, title := range []string{"Tomato Soup", "Pancakes"} {
		status, _ := a.do(t, ana, http.MethodPost, "/recipes", map[string]any{"title": title, "instructions": instructions})
		require.Equal(t, http.StatusCreated, status)
	}
	status, _ := a.do(t, bob, http.MethodPost, "/recipes", map[string]any{"title": "Bob Soup", "instructions": instructions})
	require.Equal(t, http.StatusCreated, status)

	status, body := a.do(t, ana, http.MethodGet, "/recipes/search?q=soup", nil)
	require.Equal(t, http.StatusOK, status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Tomato Soup", list[0]["title"])

	status, _ = a.do(t, ana, http.MethodGet, "/recipes/search?q=soup&limit=zero", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = a.do(t, a.client(t), http.MethodGet, "/recipes/search?q=soup", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRateLimit_Login(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.RateLimitEnabled = true
		cfg.RateLimitAuthMax = 2
	})
	cl := a.client(t)

	for i := 0; i < 2; i++ {
		status, _ := a.do(t, cl, http.MethodPost, "/login", map[string]any{"username": "x", "password": "y"})
		require.Equal(t, http.StatusUnauthorized, status)
	}
	status, _ := a.do(t, cl, http.MethodPost, "/login", map[string]any{"username": "x", "password": "y"})
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestAPIPrefix(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) { cfg.APIPrefix = "/api" })
	cl := a.client(t)

	status, _ := a.do(t, cl, http.MethodPost, "/api/signup", map[string]any{"username": "ana", "password": "pw"})
	assert.Equal(t, http.StatusCreated, status)
	status, _ = a.do(t, cl, http.MethodGet, "/check_session", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDebugVars(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) { cfg.DebugMetricsEnabled = true })
	status, body := a.do(t, a.client(t), http.MethodGet, "/debug/vars", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "memstats")

	b := newTestApp(t, nil)
	status, _ = b.do(t, b.client(t), http.MethodGet, "/debug/vars", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
