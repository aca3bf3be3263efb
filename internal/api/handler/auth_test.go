package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := generateToken(secret, 7, "ana@studio.test")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := parseToken(secret, token)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	token, err := generateToken([]byte("secret-a"), 7, "ana@studio.test")
	assert.NoError(t, err)

	_, err = parseToken([]byte("secret-b"), token)
	assert.Error(t, err)
}

func TestParseToken_RejectsGarbage(t *testing.T) {
	_, err := parseToken([]byte("secret"), "not.a.token")
	assert.Error(t, err)
}

func TestBearerToken_HeaderAndQueryFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Header form, used by API calls.
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/conversations", nil)
	c.Request.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", bearerToken(c))

	// Query form, used by the websocket handshake.
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/ws?token=xyz789", nil)
	assert.Equal(t, "xyz789", bearerToken(c))
}

func TestAuthRequired_MissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, []byte("secret"))

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/api/conversations", nil)

	h.AuthRequired()(c)

	assert.Equal(t, 401, recorder.Code)
	assert.True(t, c.IsAborted())
}

func TestAuthRequired_ValidTokenSetsUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := []byte("secret")
	h := NewHandler(nil, nil, secret)

	token, err := generateToken(secret, 42, "leo@studio.test")
	assert.NoError(t, err)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/api/conversations", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	h.AuthRequired()(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, uint(42), currentUserID(c))
}
