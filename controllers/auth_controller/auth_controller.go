package auth_controller

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/models/user_models"
	"github.com/courtbook/courtbook/utils"
)

// AuthService issues access tokens against local password credentials.
type AuthService struct {
	DB shared_models.Querier
}

func NewAuthService(db shared_models.Querier) *AuthService {
	return &AuthService{DB: db}
}

const tokenTTL = 24 * time.Hour

// LoginRequest carries the password credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// signToken issues an HS256 access token carrying the subject and role.
func signToken(user *user_models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// Login handles POST /auth/login. Bad email, bad password, and disabled
// accounts all answer the same 401 so accounts cannot be enumerated.
func (s *AuthService) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := user_models.GetUserByEmail(c.Request.Context(), s.DB, strings.ToLower(req.Email))
	if err != nil {
		if utils.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		utils.RespondError(c, err)
		return
	}
	if !user.IsActive || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	// A tenant-bound user may only log in through their own tenant.
	if organizationID, err := utils.GetOrganizationIDFromContext(c); err == nil {
		if user.OrganizationID == nil || *user.OrganizationID != organizationID {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
	}

	token, err := signToken(user, tokenTTL)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to sign token for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	logger.InfoLogger.Infof("User %s logged in", user.ID)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
