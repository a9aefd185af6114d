package jwt

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social-system/config"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expire time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		ExpireTime: expire,
		Issuer:     "social-system",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newTestService(time.Hour)

	token, err := s.GenerateUserToken(42, "alice")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, "social-system", claims.Issuer)
}

func TestValidateRejects(t *testing.T) {
	s := newTestService(time.Hour)

	_, err := s.ValidateToken("")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = s.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewJWTService(config.JWTConfig{Secret: "other", ExpireTime: time.Hour, Issuer: "social-system"})
	token, err := other.GenerateUserToken(1, "x")
	require.NoError(t, err)
	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid, "签名密钥不同")

	expired := newTestService(-time.Hour)
	token, err = expired.GenerateUserToken(1, "x")
	require.NoError(t, err)
	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = s.GenerateUserToken(0, "x")
	assert.Error(t, err)
}

func TestClaimsUserIDInvalid(t *testing.T) {
	c := &CustomClaims{}
	c.Subject = "abc"
	_, err := c.UserID()
	assert.Error(t, err)

	c.Subject = "0"
	_, err = c.UserID()
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newTestService(time.Hour)
	token, err := s.GenerateUserToken(7, "bob")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", s.AuthMiddleware(), func(c *gin.Context) {
		response.Success(c, gin.H{"id": GetUserID(c), "name": GetUsername(c), "has_claims": GetClaims(c) != nil})
	})

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", 401},
		{"wrong scheme", "Token " + token, 401},
		{"empty token", "Bearer ", 401},
		{"short garbage", "Bearer abc", 401},
		{"valid", "Bearer " + token, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			var resp response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Code)
			if tc.code == 0 {
				data := resp.Data.(map[string]interface{})
				assert.Equal(t, float64(7), data["id"])
				assert.Equal(t, "bob", data["name"])
				assert.Equal(t, true, data["has_claims"])
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, err := bearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = bearerToken("bearer  xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"Bearer", "Bearer ", "Basic abc", "abc"} {
		_, err := bearerToken(h)
		assert.ErrorIs(t, err, errMalformedHeader, h)
	}
}
