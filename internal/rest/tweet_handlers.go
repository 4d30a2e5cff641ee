package rest

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/response"
)

type TweetHandlers struct {
	tweets TweetStore
	users  UserStore
	likes  LikeStore
	logger *logrus.Logger
}

func NewTweetHandlers(tweets TweetStore, users UserStore, likes LikeStore, logger *logrus.Logger) *TweetHandlers {
	return &TweetHandlers{
		tweets: tweets,
		users:  users,
		likes:  likes,
		logger: logger,
	}
}

type contentRequest struct {
	Content string `json:"content" form:"content"`
}

func bindContent(c *gin.Context) (string, error) {
	var req contentRequest
	if err := bindBody(c, &req); err != nil {
		return "", err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", apperror.Validation("content is required")
	}
	return content, nil
}

// Create posts a tweet as the caller
// POST /api/v1/tweets
func (h *TweetHandlers) Create(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}
	content, err := bindContent(c)
	if err != nil {
		fail(c, err)
		return
	}

	tweet := &models.Tweet{Content: content, Owner: actor.ID}
	if err := h.tweets.Create(c.Request.Context(), tweet); err != nil {
		fail(c, storeError(h.logger, err, "tweet not found", "create tweet"))
		return
	}

	response.Created(c, tweet, "tweet created successfully")
}

// ListByUser returns a user's tweets, newest first
// GET /api/v1/tweets/user/:userId
func (h *TweetHandlers) ListByUser(c *gin.Context) {
	userID, err := objectIDParam(c, "userId")
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.FindByID(ctx, userID); err != nil {
		fail(c, storeError(h.logger, err, "user not found", "find user"))
		return
	}

	tweets, err := h.tweets.ListByOwner(ctx, userID)
	if err != nil {
		fail(c, storeError(h.logger, err, "tweets not found", "list tweets"))
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	response.OK(c, tweets, "tweets fetched successfully")
}

// Update replaces the content of the caller's tweet
// PATCH /api/v1/tweets/:tweetId
func (h *TweetHandlers) Update(c *gin.Context) {
	tweet, ok := h.ownedTweet(c)
	if !ok {
		return
	}
	content, err := bindContent(c)
	if err != nil {
		fail(c, err)
		return
	}

	updated, err := h.tweets.UpdateContent(c.Request.Context(), tweet.ID, content)
	if err != nil {
		fail(c, storeError(h.logger, err, "tweet not found", "update tweet"))
		return
	}

	response.OK(c, updated, "tweet updated successfully")
}

// Delete removes the caller's tweet and its likes
// DELETE /api/v1/tweets/:tweetId
func (h *TweetHandlers) Delete(c *gin.Context) {
	tweet, ok := h.ownedTweet(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.tweets.Delete(ctx, tweet.ID); err != nil {
		fail(c, storeError(h.logger, err, "tweet not found", "delete tweet"))
		return
	}
	if err := h.likes.DeleteByTargets(ctx, models.LikeTargetTweet, tweet.ID); err != nil {
		h.logger.WithError(err).WithField("tweet_id", tweet.ID.Hex()).Warn("Failed to delete likes of tweet")
	}

	response.OK(c, gin.H{}, "tweet deleted successfully")
}

func (h *TweetHandlers) ownedTweet(c *gin.Context) (*models.Tweet, bool) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	tweetID, err := objectIDParam(c, "tweetId")
	if err != nil {
		fail(c, err)
		return nil, false
	}

	tweet, err := h.tweets.FindByID(c.Request.Context(), tweetID)
	if err != nil {
		fail(c, storeError(h.logger, err, "tweet not found", "find tweet"))
		return nil, false
	}
	if err := requireOwner(actor, tweet.Owner, "tweet"); err != nil {
		fail(c, err)
		return nil, false
	}
	return tweet, true
}
