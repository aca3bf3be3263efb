package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"studiohub/backend/internal/config"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const userIDContextKey = "userID"

// generateToken issues a signed session token carrying the user id. The
// websocket handshake and all API routes resolve identity from this token
// server-side; a client-supplied user id is never trusted.
func generateToken(secret []byte, userID uint, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(config.TokenTTL).Unix(),
		"iss":     "studiohub-api",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// parseToken validates a session token and returns the user id it carries.
func parseToken(secret []byte, tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token")
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return 0, errors.New("token missing user id")
	}
	return uint(rawID), nil
}

// bearerToken extracts the token from the Authorization header, falling back
// to the "token" query parameter (browsers cannot set headers on a websocket
// handshake).
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

type sessionRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CreateSession exchanges a known account email for a session token. The
// site's real login lives in the auth collaborator; this endpoint is the
// boundary where its verified identity becomes a token this service trusts.
func (h *Handler) CreateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email is required"})
		return
	}

	user, err := h.Storage.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up account"})
		return
	}
	if user.BanActive() {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is banned"})
		return
	}

	token, err := generateToken(h.JWTSecret, user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// AuthRequired validates the bearer token and stores the user id on the
// request context.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token missing"})
			return
		}
		userID, err := parseToken(h.JWTSecret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// currentUserID reads the authenticated user id set by AuthRequired.
func currentUserID(c *gin.Context) uint {
	return c.GetUint(userIDContextKey)
}
