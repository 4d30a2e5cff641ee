package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserTokenStore is the part of the user store the auth service needs
type UserTokenStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
}

// TokenRevoker remembers access tokens that were logged out before expiry
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthService issues, verifies and revokes the token pair of a user
type AuthService struct {
	users   UserTokenStore
	jwt     *JWTService
	revoker TokenRevoker
	logger  *logrus.Logger
}

func NewAuthService(users UserTokenStore, jwtService *JWTService, revoker TokenRevoker, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:   users,
		jwt:     jwtService,
		revoker: revoker,
		logger:  logger,
	}
}

// IssueTokens signs a fresh token pair for the user and stores the refresh
// token as the only one accepted by Refresh.
func (s *AuthService) IssueTokens(ctx context.Context, userID primitive.ObjectID) (*models.AuthTokens, *models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperror.Auth("user does not exist")
		}
		return nil, nil, apperror.Persistence("failed to load user", err)
	}

	accessToken, err := s.jwt.GenerateAccessToken(user.ID.Hex(), user.Email, user.Username, user.FullName)
	if err != nil {
		return nil, nil, apperror.Unknown(err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID.Hex())
	if err != nil {
		return nil, nil, apperror.Unknown(err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, nil, apperror.Persistence("failed to store refresh token", err)
	}
	user.RefreshToken = refreshToken

	return &models.AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

// VerifyRefreshToken returns the user the token belongs to if it is the one currently stored
func (s *AuthService) VerifyRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperror.Auth("unauthorized request")
	}

	claims, err := s.jwt.ValidateRefreshToken(token)
	if err != nil {
		return nil, apperror.Auth("invalid refresh token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperror.Auth("invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Auth("invalid refresh token")
		}
		return nil, apperror.Persistence("failed to load user", err)
	}

	if user.RefreshToken == "" || user.RefreshToken != token {
		return nil, apperror.Auth("refresh token is expired or used")
	}

	return user, nil
}

// Refresh verifies the refresh token and rotates the pair
func (s *AuthService) Refresh(ctx context.Context, token string) (*models.AuthTokens, error) {
	user, err := s.VerifyRefreshToken(ctx, token)
	if err != nil {
		return nil, err
	}

	tokens, _, err := s.IssueTokens(ctx, user.ID)
	return tokens, err
}

// Authenticate verifies an access token and rejects tokens revoked at logout
func (s *AuthService) Authenticate(ctx context.Context, token string) (*AccessClaims, error) {
	if token == "" {
		return nil, apperror.Auth("unauthorized request")
	}

	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, apperror.Auth("access token has expired")
		}
		return nil, apperror.Auth("invalid access token")
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			// revocation is best effort; an unreachable cache does not lock users out
			s.logger.WithError(err).Warn("Failed to check token revocation")
		} else if revoked {
			return nil, apperror.Auth("access token has been revoked")
		}
	}

	return claims, nil
}

// Logout clears the stored refresh token and revokes the access token until it expires
func (s *AuthService) Logout(ctx context.Context, userID primitive.ObjectID, tokenID string, expiresAt time.Time) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperror.Persistence("failed to clear refresh token", err)
	}

	if s.revoker != nil && tokenID != "" {
		if ttl := time.Until(expiresAt); ttl > 0 {
			if err := s.revoker.RevokeToken(ctx, tokenID, ttl); err != nil {
				s.logger.WithError(err).WithField("user_id", userID.Hex()).Warn("Failed to revoke access token")
			}
		}
	}

	return nil
}
