package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	FullName     string               `bson:"fullname" json:"fullname"`
	Avatar       string               `bson:"avatar" json:"avatar"`
	CoverImage   string               `bson:"cover_image,omitempty" json:"coverImage,omitempty"`
	Password     string               `bson:"password" json:"-"`
	RefreshToken string               `bson:"refresh_token,omitempty" json:"-"`
	WatchHistory []primitive.ObjectID `bson:"watch_history" json:"watchHistory"`
	CreatedAt    time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updatedAt"`
}

// PublicProfile is the subset of user fields embedded in other resources
type PublicProfile struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	FullName string             `bson:"fullname" json:"fullname"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}

// ChannelProfile is the result of the channel profile aggregation
type ChannelProfile struct {
	ID                        primitive.ObjectID `bson:"_id" json:"id"`
	Username                  string             `bson:"username" json:"username"`
	FullName                  string             `bson:"fullname" json:"fullname"`
	Email                     string             `bson:"email" json:"email"`
	Avatar                    string             `bson:"avatar" json:"avatar"`
	CoverImage                string             `bson:"cover_image" json:"coverImage"`
	SubscribersCount          int64              `bson:"subscribers_count" json:"subscribersCount"`
	ChannelsSubscribedToCount int64              `bson:"channels_subscribed_to_count" json:"channelsSubscribedToCount"`
	IsSubscribed              bool               `bson:"is_subscribed" json:"isSubscribed"`
}

// Actor is the authenticated caller attached to a request by the auth middleware
type Actor struct {
	ID       primitive.ObjectID
	Username string
	Email    string
	TokenID  string
	// ExpiresAt is the expiry of the access token that authenticated the request
	ExpiresAt time.Time
	User      *User
}

// UserUpdate carries optional account fields; nil means "leave unchanged"
type UserUpdate struct {
	FullName *string
	Email    *string
	Username *string
}

func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.Username == nil
}

// AuthTokens is the pair issued at login and refresh
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
