package handler

import (
	"net/http"
	"testing"

	"finledger/internal/middleware"
	"finledger/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "unit-test-secret"

func authRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(db, testJWTSecret, 1, 4) // min bcrypt cost keeps tests fast

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", middleware.AuthMiddleware(testJWTSecret, db), h.Logout)
	return r
}

func TestRegister(t *testing.T) {
	db := openTestDB(t)
	r := authRouter(db)

	w := doJSON(t, r, http.MethodPost, "/auth/register", map[string]any{
		"username":         "alice",
		"password":         "Sup3rSecret",
		"confirm_password": "Sup3rSecret",
		"display_name":     "Alice",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, db.First(&user, "username = ?", "alice").Error)
	assert.Equal(t, models.SubNone, user.SubscriptionStatus)
	assert.NotEqual(t, "Sup3rSecret", user.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	db := openTestDB(t)
	r := authRouter(db)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"username too short", map[string]any{
			"username": "ab", "password": "Sup3rSecret", "confirm_password": "Sup3rSecret",
		}, http.StatusBadRequest},
		{"username bad chars", map[string]any{
			"username": "al ice!", "password": "Sup3rSecret", "confirm_password": "Sup3rSecret",
		}, http.StatusBadRequest},
		{"weak password", map[string]any{
			"username": "alice", "password": "alllower1", "confirm_password": "alllower1",
		}, http.StatusBadRequest},
		{"mismatched confirmation", map[string]any{
			"username": "alice", "password": "Sup3rSecret", "confirm_password": "Other3rSecret",
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/auth/register", tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRegister_DuplicateUsernameCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	r := authRouter(db)

	body := map[string]any{
		"username": "alice", "password": "Sup3rSecret", "confirm_password": "Sup3rSecret",
	}
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/auth/register", body).Code)

	body["username"] = "ALICE"
	w := doJSON(t, r, http.MethodPost, "/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginLogout(t *testing.T) {
	db := openTestDB(t)
	r := authRouter(db)

	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/auth/register", map[string]any{
		"username": "alice", "password": "Sup3rSecret", "confirm_password": "Sup3rSecret",
	}).Code)

	w := doJSON(t, r, http.MethodPost, "/auth/login", map[string]any{
		"username": "alice", "password": "Sup3rSecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	token, _ := resp["data"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	// the token works exactly until logout revokes its session
	logout := doJSONAuth(t, r, http.MethodPost, "/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, logout.Code)

	again := doJSONAuth(t, r, http.MethodPost, "/auth/logout", nil, token)
	assert.Equal(t, http.StatusUnauthorized, again.Code)
}

func TestLogin_WrongPasswordAndLockout(t *testing.T) {
	db := openTestDB(t)
	r := authRouter(db)

	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/auth/register", map[string]any{
		"username": "alice", "password": "Sup3rSecret", "confirm_password": "Sup3rSecret",
	}).Code)

	bad := map[string]any{"username": "alice", "password": "WrongPass1"}
	for i := 0; i < 5; i++ {
		w := doJSON(t, r, http.MethodPost, "/auth/login", bad)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// account is now locked even for the correct password
	w := doJSON(t, r, http.MethodPost, "/auth/login", map[string]any{
		"username": "alice", "password": "Sup3rSecret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "locked")
}

func TestLogin_UnknownUser(t *testing.T) {
	db := openTestDB(t)
	r := authRouter(db)

	w := doJSON(t, r, http.MethodPost, "/auth/login", map[string]any{
		"username": "nobody", "password": "Sup3rSecret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
