package rest

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/kafka"
	"github.com/yourusername/video-sharing-platform/internal/middleware"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/repository"
	"github.com/yourusername/video-sharing-platform/internal/response"
	"github.com/yourusername/video-sharing-platform/internal/service"
	"github.com/yourusername/video-sharing-platform/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandlers handles account, session and channel endpoints
type UserHandlers struct {
	users     UserStore
	auth      AuthManager
	passwords PasswordHasher
	media     MediaUploader
	events    EventEmitter
	cookies   CookieConfig
	logger    *logrus.Logger
}

func NewUserHandlers(
	users UserStore,
	auth AuthManager,
	passwords PasswordHasher,
	media MediaUploader,
	events EventEmitter,
	cookies CookieConfig,
	logger *logrus.Logger,
) *UserHandlers {
	return &UserHandlers{
		users:     users,
		auth:      auth,
		passwords: passwords,
		media:     media,
		events:    events,
		cookies:   cookies,
		logger:    logger,
	}
}

type registerRequest struct {
	FullName   string                `json:"fullname" form:"fullname"`
	Email      string                `json:"email" form:"email"`
	Username   string                `json:"username" form:"username"`
	Password   string                `json:"password" form:"password"`
	Avatar     *multipart.FileHeader `json:"-" form:"avatar"`
	CoverImage *multipart.FileHeader `json:"-" form:"coverImage"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type updateAccountRequest struct {
	FullName *string `json:"fullname"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
}

// Register creates an account
// POST /api/v1/users/register
func (h *UserHandlers) Register(c *gin.Context) {
	var req registerRequest
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if missing := validation.RequireFields(
		validation.Field{Name: "fullname", Value: req.FullName},
		validation.Field{Name: "email", Value: req.Email},
		validation.Field{Name: "username", Value: req.Username},
		validation.Field{Name: "password", Value: strings.TrimSpace(req.Password)},
	); len(missing) > 0 {
		fail(c, apperror.Validation("all fields are required", missing...))
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		fail(c, apperror.Validation("invalid email address", err.Error()))
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		fail(c, apperror.Validation("invalid password", err.Error()))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.FindByUsernameOrEmail(ctx, req.Username, req.Email); err == nil {
		fail(c, apperror.Conflict("user with email or username already exists"))
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		fail(c, storeError(h.logger, err, "user not found", "check existing user"))
		return
	}

	hash, err := h.passwords.HashPassword(req.Password)
	if err != nil {
		fail(c, apperror.Unknown(err))
		return
	}

	user := &models.User{
		ID:       primitive.NewObjectID(),
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Password: hash,
	}

	if user.Avatar, err = h.media.UploadOptional(ctx, user.ID.Hex(), service.MediaAvatar, req.Avatar); err != nil {
		fail(c, err)
		return
	}
	if user.CoverImage, err = h.media.UploadOptional(ctx, user.ID.Hex(), service.MediaCoverImage, req.CoverImage); err != nil {
		h.media.DeleteByURL(ctx, user.Avatar)
		fail(c, err)
		return
	}

	if err := h.users.Create(ctx, user); err != nil {
		h.media.DeleteByURL(ctx, user.Avatar)
		h.media.DeleteByURL(ctx, user.CoverImage)
		if errors.Is(err, repository.ErrDuplicate) {
			fail(c, apperror.Conflict("user with email or username already exists"))
			return
		}
		fail(c, storeError(h.logger, err, "user not found", "register user"))
		return
	}

	h.events.Emit(ctx, kafka.NewActivityEvent(kafka.EventUserRegistered, user.ID.Hex(), "user", user.ID.Hex(), true))
	h.logger.WithField("user_id", user.ID.Hex()).Info("User registered")
	response.Created(c, user, "user registered successfully")
}

// Login verifies credentials and issues a token pair
// POST /api/v1/users/login
func (h *UserHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" && strings.TrimSpace(req.Email) == "" {
		fail(c, apperror.Validation("username or email is required"))
		return
	}
	if req.Password == "" {
		fail(c, apperror.Validation("password is required"))
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		fail(c, storeError(h.logger, err, "user does not exist", "find user"))
		return
	}
	if !h.passwords.CheckPassword(req.Password, user.Password) {
		fail(c, apperror.Auth("invalid user credentials"))
		return
	}

	tokens, user, err := h.auth.IssueTokens(ctx, user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	h.cookies.set(c, tokens)
	response.OK(c, gin.H{
		"user":         user,
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	}, "user logged in successfully")
}

// Logout invalidates the session of the caller
// POST /api/v1/users/logout
func (h *UserHandlers) Logout(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), actor.ID, actor.TokenID, actor.ExpiresAt); err != nil {
		fail(c, err)
		return
	}

	h.cookies.clear(c)
	response.OK(c, gin.H{}, "user logged out")
}

// RefreshToken exchanges a refresh token for a new token pair
// POST /api/v1/users/refresh-token
func (h *UserHandlers) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshTokenCookie)
	if token == "" && c.Request.ContentLength != 0 {
		var req refreshRequest
		if err := bindBody(c, &req); err != nil {
			fail(c, err)
			return
		}
		token = strings.TrimSpace(req.RefreshToken)
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}

	h.cookies.set(c, tokens)
	response.OK(c, tokens, "access token refreshed")
}

// ChangePassword replaces the caller's password after checking the old one
// POST /api/v1/users/change-password
func (h *UserHandlers) ChangePassword(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req changePasswordRequest
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}
	if missing := validation.RequireFields(
		validation.Field{Name: "oldPassword", Value: req.OldPassword},
		validation.Field{Name: "newPassword", Value: req.NewPassword},
	); len(missing) > 0 {
		fail(c, apperror.Validation("old and new password are required", missing...))
		return
	}
	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		fail(c, apperror.Validation("invalid new password", err.Error()))
		return
	}
	if !h.passwords.CheckPassword(req.OldPassword, actor.User.Password) {
		fail(c, apperror.Validation("invalid old password"))
		return
	}

	hash, err := h.passwords.HashPassword(req.NewPassword)
	if err != nil {
		fail(c, apperror.Unknown(err))
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), actor.ID, hash); err != nil {
		fail(c, storeError(h.logger, err, "user not found", "update password"))
		return
	}

	response.OK(c, gin.H{}, "password changed successfully")
}

// CurrentUser returns the caller
// GET /api/v1/users/current-user
func (h *UserHandlers) CurrentUser(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, actor.User, "current user fetched successfully")
}

// UpdateAccount changes any of fullname, email and username
// PATCH /api/v1/users/update-account
func (h *UserHandlers) UpdateAccount(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.Validation("invalid request body", err.Error()))
		return
	}

	update := models.UserUpdate{
		FullName: trimmed(req.FullName),
		Email:    trimmed(req.Email),
		Username: trimmed(req.Username),
	}
	if update.IsEmpty() {
		fail(c, apperror.Validation("at least one field is required"))
		return
	}
	for name, value := range map[string]*string{"fullname": update.FullName, "email": update.Email, "username": update.Username} {
		if value != nil && *value == "" {
			fail(c, apperror.Validation(name + " cannot be empty"))
			return
		}
	}
	if update.Email != nil {
		if err := validation.ValidateEmail(*update.Email); err != nil {
			fail(c, apperror.Validation("invalid email address", err.Error()))
			return
		}
	}

	user, err := h.users.UpdateAccount(c.Request.Context(), actor.ID, update)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			fail(c, apperror.Conflict("username or email is already taken"))
			return
		}
		fail(c, storeError(h.logger, err, "user not found", "update account"))
		return
	}

	response.OK(c, user, "account details updated successfully")
}

// UpdateAvatar replaces the caller's avatar
// PATCH /api/v1/users/avatar
func (h *UserHandlers) UpdateAvatar(c *gin.Context) {
	h.replaceImage(c, "avatar", service.MediaAvatar, h.users.SetAvatar, func(u *models.User) string { return u.Avatar })
}

// UpdateCoverImage replaces the caller's cover image
// PATCH /api/v1/users/cover-image
func (h *UserHandlers) UpdateCoverImage(c *gin.Context) {
	h.replaceImage(c, "coverImage", service.MediaCoverImage, h.users.SetCoverImage, func(u *models.User) string { return u.CoverImage })
}

type imageSetter func(ctx context.Context, id primitive.ObjectID, url string) (*models.User, error)

func (h *UserHandlers) replaceImage(c *gin.Context, field string, kind service.MediaKind, set imageSetter, current func(*models.User) string) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}

	file, err := c.FormFile(field)
	if err != nil {
		fail(c, apperror.Validation(field+" file is missing"))
		return
	}

	ctx := c.Request.Context()
	url, err := h.media.Upload(ctx, actor.ID.Hex(), kind, file)
	if err != nil {
		fail(c, err)
		return
	}

	previous := current(actor.User)
	user, err := set(ctx, actor.ID, url)
	if err != nil {
		h.media.DeleteByURL(ctx, url)
		fail(c, storeError(h.logger, err, "user not found", "update "+field))
		return
	}
	h.media.DeleteByURL(ctx, previous)

	response.OK(c, user, field+" updated successfully")
}

// ChannelProfile returns a channel with subscription counts
// GET /api/v1/users/c/:username
func (h *UserHandlers) ChannelProfile(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}

	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		fail(c, apperror.Validation("username is missing"))
		return
	}

	profile, err := h.users.ChannelProfile(c.Request.Context(), username, actor.ID)
	if err != nil {
		fail(c, storeError(h.logger, err, "channel does not exist", "fetch channel profile"))
		return
	}

	response.OK(c, profile, "user channel fetched successfully")
}

// WatchHistory returns the caller's watched videos, most recent first
// GET /api/v1/users/history
func (h *UserHandlers) WatchHistory(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}

	videos, err := h.users.WatchHistory(c.Request.Context(), actor.ID)
	if err != nil {
		fail(c, storeError(h.logger, err, "user not found", "fetch watch history"))
		return
	}
	if videos == nil {
		videos = []models.VideoWithOwner{}
	}

	response.OK(c, videos, "watch history fetched successfully")
}
