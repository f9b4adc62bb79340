package storefrontserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accountsapp "github.com/Apurer/freshcart-api/internal/domains/accounts/application"
	accountsdomain "github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	apierrors "github.com/Apurer/freshcart-api/internal/shared/errors"
)

const (
	HeaderInstallationID = "X-Installation-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	contextInstallationKey = "freshcart.installation_id"
	contextUserKey         = "freshcart.user"
	contextTokenKey        = "freshcart.session_token"

	maxInstallationIDLength = 128
)

// SessionResolver resolves a bearer token to its account.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*accountsdomain.User, error)
}

// InstallationMiddleware assigns every request a client installation id. A missing or
// oversized header gets a fresh uuid. The effective id is echoed back so clients can keep it.
func InstallationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderInstallationID))
		if id == "" || len(id) > maxInstallationIDLength {
			id = uuid.NewString()
		}
		c.Set(contextInstallationKey, id)
		c.Header(HeaderInstallationID, id)
		c.Next()
	}
}

// SessionMiddleware attaches the signed-in user when a valid bearer token is sent.
// Unknown or expired tokens leave the request anonymous; other lookup errors fail it.
func SessionMiddleware(sessions SessionResolver, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" || sessions == nil {
			c.Next()
			return
		}
		user, err := sessions.CurrentUser(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(contextUserKey, user)
			c.Set(contextTokenKey, token)
		case errors.Is(err, accountsapp.ErrUnauthenticated):
		default:
			logger.LogAttrs(c.Request.Context(), slog.LevelError, "session lookup failed",
				slog.String("error", err.Error()))
			respondProblem(c, apierrors.ErrInternal.WithDetail("session lookup failed"))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func installationID(c *gin.Context) string {
	return c.GetString(contextInstallationKey)
}

func sessionToken(c *gin.Context) string {
	return c.GetString(contextTokenKey)
}

func currentUser(c *gin.Context) *accountsdomain.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*accountsdomain.User)
	return user
}

// requireUser writes a 401 and reports false when the request is anonymous.
func requireUser(c *gin.Context) (*accountsdomain.User, bool) {
	user := currentUser(c)
	if user == nil {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail("sign in required"))
		return nil, false
	}
	return user, true
}
