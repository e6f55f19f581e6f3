package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/temple_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedTokenIsAcceptedByAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "ops-secret-key-that-is-long-enough"

	token, err := signToken(secret, "temple-ledger", "treasurer@temple", time.Hour, time.Now())
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(secret))
	r.GET("/whoami", func(c *gin.Context) {
		actor, _ := middleware.GetActorFromContext(c)
		c.String(http.StatusOK, actor)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "treasurer@temple", w.Body.String())
}

func TestExpiredTokenIsRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "ops-secret-key-that-is-long-enough"

	token, err := signToken(secret, "temple-ledger", "treasurer@temple", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(secret))
	r.GET("/whoami", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCommandsAreRegistered(t *testing.T) {
	for _, name := range []string{"verify-chain", "audit-check", "audit-archive", "migrate", "issue-token"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
