package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Playlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Videos      []primitive.ObjectID `bson:"videos" json:"videos"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updatedAt"`
}

// PlaylistDetail is a playlist with its videos and owner resolved
type PlaylistDetail struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Owner       *PublicProfile     `bson:"owner,omitempty" json:"owner"`
	Videos      []VideoWithOwner   `bson:"-" json:"videos"`
	TotalVideos int                `bson:"total_videos" json:"totalVideos"`
	TotalViews  int64              `bson:"total_views" json:"totalViews"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PlaylistUpdate carries optional fields; nil means "leave unchanged"
type PlaylistUpdate struct {
	Name        *string
	Description *string
}

func (u PlaylistUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil
}
