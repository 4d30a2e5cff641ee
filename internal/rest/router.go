package rest

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles every route handler mounted under /api/v1
type Handlers struct {
	Users         *UserHandlers
	Videos        *VideoHandlers
	Tweets        *TweetHandlers
	Comments      *CommentHandlers
	Likes         *LikeHandlers
	Subscriptions *SubscriptionHandlers
	Playlists     *PlaylistHandlers
	Dashboard     *DashboardHandlers
	Health        *HealthHandlers
}

// AuthMiddleware resolves the caller from the request
type AuthMiddleware interface {
	Required() gin.HandlerFunc
	Optional() gin.HandlerFunc
}

// RegisterRoutes mounts the API on api. authLimit guards credential endpoints.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, auth AuthMiddleware, authLimit gin.HandlerFunc) {
	required := auth.Required()
	optional := auth.Optional()

	api.GET("/healthcheck", h.Health.Healthcheck)

	users := api.Group("/users")
	{
		users.POST("/register", authLimit, h.Users.Register)
		users.POST("/login", authLimit, h.Users.Login)
		users.POST("/refresh-token", authLimit, h.Users.RefreshToken)

		users.POST("/logout", required, h.Users.Logout)
		users.POST("/change-password", required, authLimit, h.Users.ChangePassword)
		users.GET("/current-user", required, h.Users.CurrentUser)
		users.PATCH("/update-account", required, h.Users.UpdateAccount)
		users.PATCH("/avatar", required, h.Users.UpdateAvatar)
		users.PATCH("/update-avatar", required, h.Users.UpdateAvatar)
		users.PATCH("/cover-image", required, h.Users.UpdateCoverImage)
		users.PATCH("/update-cover-image", required, h.Users.UpdateCoverImage)
		users.GET("/c/:username", required, h.Users.ChannelProfile)
		users.GET("/channel-profile/:username", required, h.Users.ChannelProfile)
		users.GET("/history", required, h.Users.WatchHistory)
		users.GET("/watch-history", required, h.Users.WatchHistory)
	}

	videos := api.Group("/videos")
	{
		videos.GET("", optional, h.Videos.List)
		videos.POST("", required, h.Videos.Create)
		videos.GET("/:videoId", optional, h.Videos.Get)
		videos.PATCH("/:videoId", required, h.Videos.Update)
		videos.DELETE("/:videoId", required, h.Videos.Delete)
		videos.PATCH("/toggle/publish/:videoId", required, h.Videos.TogglePublish)
	}

	tweets := api.Group("/tweets")
	{
		tweets.POST("", required, h.Tweets.Create)
		tweets.GET("/user/:userId", h.Tweets.ListByUser)
		tweets.PATCH("/:tweetId", required, h.Tweets.Update)
		tweets.DELETE("/:tweetId", required, h.Tweets.Delete)
	}

	comments := api.Group("/comments")
	{
		comments.GET("/:videoId", h.Comments.List)
		comments.POST("/:videoId", required, h.Comments.Create)
		comments.PATCH("/c/:commentId", required, h.Comments.Update)
		comments.DELETE("/c/:commentId", required, h.Comments.Delete)
	}

	likes := api.Group("/likes", required)
	{
		likes.POST("/toggle/v/:videoId", h.Likes.ToggleVideoLike)
		likes.POST("/toggle/c/:commentId", h.Likes.ToggleCommentLike)
		likes.POST("/toggle/t/:tweetId", h.Likes.ToggleTweetLike)
		likes.GET("/videos", h.Likes.LikedVideos)
	}

	subscriptions := api.Group("/subscriptions", required)
	{
		subscriptions.GET("/subscribed", h.Subscriptions.MySubscriptions)
		subscriptions.POST("/c/:channelId", h.Subscriptions.Toggle)
		subscriptions.GET("/c/:channelId", h.Subscriptions.Subscribers)
		subscriptions.GET("/u/:subscriberId", h.Subscriptions.SubscribedChannels)
	}

	playlists := api.Group("/playlist")
	{
		playlists.POST("", required, h.Playlists.Create)
		playlists.GET("/user/:userId", h.Playlists.ListByUser)
		playlists.GET("/:playlistId", h.Playlists.Get)
		playlists.PATCH("/:playlistId", required, h.Playlists.Update)
		playlists.DELETE("/:playlistId", required, h.Playlists.Delete)
		playlists.PATCH("/add/:videoId/:playlistId", required, h.Playlists.AddVideo)
		playlists.PATCH("/remove/:videoId/:playlistId", required, h.Playlists.RemoveVideo)
	}

	dashboard := api.Group("/dashboard", required)
	{
		dashboard.GET("/stats", h.Dashboard.Stats)
		dashboard.GET("/channel-stats", h.Dashboard.Stats)
		dashboard.GET("/videos/:channelId", h.Dashboard.ChannelVideos)
		dashboard.GET("/channel-videos/:channelId", h.Dashboard.ChannelVideos)
	}
}
