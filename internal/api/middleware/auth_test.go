package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"securevault/internal/api/middleware"
	"securevault/internal/auth"
	"securevault/internal/models"
	"securevault/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware_AuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testutil.NewTestConfig()
	authService := auth.NewService(cfg, testutil.NewMemorySessionRepo())

	account := &models.Account{ID: uuid.New(), Username: "alice"}
	bearer, err := authService.GenerateToken(account, "session-token-1", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	expired, err := authService.GenerateToken(account, "session-token-1", time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantClaims bool
	}{
		{
			name:       "valid token",
			header:     "Bearer " + bearer,
			wantStatus: http.StatusOK,
			wantClaims: true,
		},
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer scheme",
			header:     "Basic " + bearer,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			header:     "Bearer",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			header:     "Bearer not-a-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			header:     "Bearer " + expired,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(middleware.NewAuthMiddleware(authService).AuthRequired())

			var gotClaims *auth.Claims
			router.GET("/protected", func(c *gin.Context) {
				gotClaims = auth.GetClaimsFromContext(c)
				c.Status(http.StatusOK)
			})

			req, _ := http.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantClaims {
				require.NotNil(t, gotClaims)
				assert.Equal(t, account.ID, gotClaims.AccountID)
				assert.Equal(t, "session-token-1", gotClaims.SessionToken)
			}
		})
	}
}
