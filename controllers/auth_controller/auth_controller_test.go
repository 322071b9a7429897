package auth_controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/models/user_models"
)

func loginRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	service := NewAuthService(nil)
	r.POST("/auth/login", service.Login)
	return r
}

func postLogin(r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginRejectsMissingFields(t *testing.T) {
	r := loginRouter()

	w := postLogin(r, map[string]interface{}{"email": "ada@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postLogin(r, map[string]interface{}{"password": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsMalformedEmail(t *testing.T) {
	r := loginRouter()

	w := postLogin(r, map[string]interface{}{"email": "not-an-address", "password": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignTokenClaims(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &user_models.User{
		ID:   uuid.New(),
		Role: shared_models.RoleUser,
	}
	signed, err := signToken(user, time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, string(shared_models.RoleUser), claims["role"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}
