package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/repository"
	"github.com/yourusername/video-sharing-platform/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	actorKey = "actor"
)

// TokenAuthenticator verifies access tokens
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*service.AccessClaims, error)
}

// UserFinder loads the user an access token belongs to
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Authenticator struct {
	tokens TokenAuthenticator
	users  UserFinder
	logger *logrus.Logger
}

func NewAuthenticator(tokens TokenAuthenticator, users UserFinder, logger *logrus.Logger) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// AccessToken extracts the access token from the cookie, then the bearer header
func AccessToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Required rejects requests without a valid access token
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := a.resolve(c, AccessToken(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// Optional attaches the actor when a valid token is present and ignores bad tokens
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := AccessToken(c); token != "" {
			if actor, err := a.resolve(c, token); err == nil {
				setActor(c, actor)
			}
		}
		c.Next()
	}
}

func (a *Authenticator) resolve(c *gin.Context, token string) (*models.Actor, error) {
	claims, err := a.tokens.Authenticate(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperror.Auth("invalid access token")
	}

	user, err := a.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Auth("invalid access token")
		}
		a.logger.WithError(err).WithField("user_id", claims.UserID).Error("Failed to load authenticated user")
		return nil, apperror.Persistence("failed to load user", err)
	}

	actor := &models.Actor{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		TokenID:  claims.ID,
		User:     user,
	}
	if claims.ExpiresAt != nil {
		actor.ExpiresAt = claims.ExpiresAt.Time
	}
	return actor, nil
}

func setActor(c *gin.Context, actor *models.Actor) {
	c.Set(actorKey, actor)
	c.Set(userIDKey, actor.ID.Hex())
}

// ActorFrom returns the authenticated caller, if any
func ActorFrom(c *gin.Context) (*models.Actor, bool) {
	value, ok := c.Get(actorKey)
	if !ok {
		return nil, false
	}
	actor, ok := value.(*models.Actor)
	return actor, ok && actor != nil
}
