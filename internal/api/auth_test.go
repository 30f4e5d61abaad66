package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bank_cards/internal/domain"
	"bank_cards/internal/service"
	"bank_cards/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Card{}))

	users := service.NewUserService(db)
	r := gin.New()
	r.POST("/auth/register", RegisterHandler(users))
	r.POST("/auth/login", LoginHandler(users, testSecret))
	return r
}

func decodeBody(w *httptest.ResponseRecorder, dest any) error {
	return json.Unmarshal(w.Body.Bytes(), dest)
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterThenLogin(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(t, r, "/auth/register", `{"username":"alice","password":"password1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	// Self-registration always yields the USER role
	assert.Contains(t, w.Body.String(), `"role":"USER"`)

	w = postJSON(t, r, "/auth/login", `{"username":"alice","password":"password1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	// The issued token carries the identity and role
	var resp AuthResponse
	require.NoError(t, decodeBody(w, &resp))
	claims, err := utils.ParseJWT(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestRegisterDuplicateConflict(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(t, r, "/auth/register", `{"username":"alice","password":"password1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/auth/register", `{"username":"alice","password":"password2"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginFailureIsUniform(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(t, r, "/auth/register", `{"username":"alice","password":"password1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// Wrong password and unknown user return the same status and body
	wrongPass := postJSON(t, r, "/auth/login", `{"username":"alice","password":"nope1234"}`)
	noUser := postJSON(t, r, "/auth/login", `{"username":"nobody","password":"password1"}`)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, noUser.Code)
	assert.Equal(t, wrongPass.Body.String(), noUser.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	r := newAuthRouter(t)

	// Missing fields and short passwords are rejected before hashing
	w := postJSON(t, r, "/auth/register", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = postJSON(t, r, "/auth/register", `{"username":"alice","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
