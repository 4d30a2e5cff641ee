package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/middleware"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/repository"
	"github.com/yourusername/video-sharing-platform/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fail hands err to the error middleware
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// requireActor returns the authenticated caller or an Auth error
func requireActor(c *gin.Context) (*models.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return nil, apperror.Auth("unauthorized request")
	}
	return actor, nil
}

// optionalActorID returns the caller's id, or the zero id for anonymous requests
func optionalActorID(c *gin.Context) primitive.ObjectID {
	if actor, ok := middleware.ActorFrom(c); ok {
		return actor.ID
	}
	return primitive.NilObjectID
}

// requireOwner rejects mutations of resources the actor does not own
func requireOwner(actor *models.Actor, owner primitive.ObjectID, resource string) error {
	if actor.ID != owner {
		return apperror.Forbidden("you are not allowed to modify this " + resource)
	}
	return nil
}

// objectIDParam parses the named path parameter as an ObjectID
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, error) {
	id, err := validation.ParseObjectID(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("invalid "+name, err.Error())
	}
	return id, nil
}

func paginationQuery(c *gin.Context) (validation.Pagination, error) {
	page, err := validation.ParsePagination(c.Query("page"), c.Query("limit"))
	if err != nil {
		return page, apperror.Validation("invalid pagination", err.Error())
	}
	return page, nil
}

func sortQuery(c *gin.Context) (validation.Sort, error) {
	sort, err := validation.ParseSort(c.Query("sortBy"), c.Query("sortType"))
	if err != nil {
		return sort, apperror.Validation("invalid sort", err.Error())
	}
	return sort, nil
}

// bindBody binds JSON, urlencoded or multipart bodies by content type
func bindBody(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.Validation("request body too large")
		}
		return apperror.Validation("invalid request body", err.Error())
	}
	return nil
}

// isMultipart reports whether the request carries a multipart form
func isMultipart(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEMultipartPOSTForm
}

// trimmed returns a trimmed copy of s, or nil when s is nil
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	value := strings.TrimSpace(*s)
	return &value
}

// storeError translates repository failures into application errors and
// logs anything unexpected
func storeError(logger *logrus.Logger, err error, notFound, operation string) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.Conflict("resource already exists")
	default:
		logger.WithError(err).WithField("operation", operation).Error("Store operation failed")
		return apperror.Persistence("failed to "+operation, err)
	}
}

// CookieConfig controls the attributes of the auth cookies
type CookieConfig struct {
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

func (cfg CookieConfig) set(c *gin.Context, tokens *models.AuthTokens) {
	cfg.write(c, middleware.AccessTokenCookie, tokens.AccessToken, int(cfg.AccessMaxAge.Seconds()))
	cfg.write(c, middleware.RefreshTokenCookie, tokens.RefreshToken, int(cfg.RefreshMaxAge.Seconds()))
}

func (cfg CookieConfig) clear(c *gin.Context) {
	cfg.write(c, middleware.AccessTokenCookie, "", -1)
	cfg.write(c, middleware.RefreshTokenCookie, "", -1)
}

func (cfg CookieConfig) write(c *gin.Context, name, value string, maxAge int) {
	if cfg.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(name, value, maxAge, "/", "", cfg.Secure, true)
}
