package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"auth-service/internal/core/auth"
	"auth-service/internal/core/password"
	"auth-service/internal/repo"
	"auth-service/internal/service"
	"auth-service/internal/testkit"
	"auth-service/internal/transport/http/handler"
	mdw "auth-service/internal/transport/http/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	db := testkit.OpenDB(t)
	hasher := &password.Hasher{Cost: 4}
	issuer := auth.NewTokenIssuer(auth.StaticKey(testkit.RSAKeyPEM(t)), []byte("refresh-secret"))

	users := service.NewUserService(repo.NewUserRepo(db), hasher, nil)
	tokens := service.NewRefreshTokenStore(repo.NewRefreshTokenRepo(db), 0, nil)
	svc := service.NewAuthService(users, tokens, issuer, hasher, nil)
	h := handler.NewAuthHandler(svc, issuer, issuer, "", handler.CookieOptions{
		Domain:     "localhost",
		AccessTTL:  time.Hour,
		RefreshTTL: 365 * 24 * time.Hour,
	}, zap.NewNop())

	return NewAPIEngine(zap.NewNop(), Deps{Auth: h, CORSOrigins: []string{"http://localhost:5173"}})
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, r http.Handler, method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func cookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

const johnJSON = `{"firstName":"John","lastName":"Doe","email":"test@x.com","password":"secret123"}`

func TestRegisterEndpoint(t *testing.T) {
	r := newEngine(t)

	w, env := do(t, r, http.MethodPost, "/auth/register", johnJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1}`, string(env.Data))

	access := cookie(w, mdw.AccessTokenCookie)
	refresh := cookie(w, handler.RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, 3600, access.MaxAge)
	assert.Equal(t, 365*24*3600, refresh.MaxAge)
	assert.Equal(t, "localhost", access.Domain)

	w, env = do(t, r, http.MethodPost, "/auth/register", johnJSON)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 409, env.Code)
	assert.Equal(t, "user already exists", env.Msg)
	assert.Nil(t, cookie(w, mdw.AccessTokenCookie))
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	r := newEngine(t)
	bodies := []string{
		`{"firstName":"John","lastName":"Doe","email":"not-an-email","password":"secret123"}`,
		`{"firstName":"John","lastName":"Doe","email":"a@x.com","password":"short"}`,
		`{"lastName":"Doe","email":"a@x.com","password":"secret123"}`,
		`not json`,
	}
	for _, b := range bodies {
		w, env := do(t, r, http.MethodPost, "/auth/register", b)
		assert.Equal(t, http.StatusBadRequest, w.Code, b)
		assert.Equal(t, 400, env.Code, b)
	}
}

func TestLoginEndpoint(t *testing.T) {
	r := newEngine(t)
	w, _ := do(t, r, http.MethodPost, "/auth/register", johnJSON)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodPost, "/auth/login", `{"email":"Test@X.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1}`, string(env.Data))
	assert.NotNil(t, cookie(w, handler.RefreshTokenCookie))

	unknown, _ := do(t, r, http.MethodPost, "/auth/login", `{"email":"nobody@x.com","password":"secret123"}`)
	wrong, _ := do(t, r, http.MethodPost, "/auth/login", `{"email":"test@x.com","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestSelfEndpoint(t *testing.T) {
	r := newEngine(t)
	w, _ := do(t, r, http.MethodPost, "/auth/register", johnJSON)
	access := cookie(w, mdw.AccessTokenCookie)
	require.NotNil(t, access)

	w, env := do(t, r, http.MethodGet, "/auth/self", "", access)
	require.Equal(t, http.StatusOK, w.Code)
	var u map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "test@x.com", u["email"])
	assert.Equal(t, "customer", u["role"])
	assert.NotContains(t, string(env.Data), "$2a$")

	req := httptest.NewRequest(http.MethodGet, "/auth/self", nil)
	req.Header.Set("Authorization", "Bearer "+access.Value)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w, _ = do(t, r, http.MethodGet, "/auth/self", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	r := newEngine(t)
	w, _ := do(t, r, http.MethodPost, "/auth/register", johnJSON)
	refresh := cookie(w, handler.RefreshTokenCookie)
	require.NotNil(t, refresh)

	w, _ = do(t, r, http.MethodPost, "/auth/logout", "", refresh)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cleared := cookie(w, handler.RefreshTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	w, _ = do(t, r, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, r, http.MethodPost, "/auth/logout", "", &http.Cookie{Name: handler.RefreshTokenCookie, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWKSAndHealth(t *testing.T) {
	r := newEngine(t)

	w, _ := do(t, r, http.MethodGet, "/.well-known/jwks.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	var set auth.JWKSet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &set))
	require.Len(t, set.Keys, 1)
	assert.Equal(t, "RS256", set.Keys[0].Alg)

	w, _ = do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, _ = do(t, r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestCORSAllowsCredentials(t *testing.T) {
	r := newEngine(t)
	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

type pingModule struct{ order *[]string }

func (p pingModule) MountAPI(g *gin.RouterGroup) {
	*p.order = append(*p.order, "ping")
	g.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

type firstModule struct{ order *[]string }

func (f firstModule) Priority() int               { return 1 }
func (f firstModule) MountAPI(g *gin.RouterGroup) { *f.order = append(*f.order, "first") }

func TestMountAll_Priority(t *testing.T) {
	var order []string
	r := gin.New()
	MountAll(&r.RouterGroup, pingModule{&order}, firstModule{&order})
	assert.Equal(t, []string{"first", "ping"}, order)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", w.Body.String())
}
