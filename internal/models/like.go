package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeTarget names the kind of document a like points at
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Field returns the like document field holding the reference for the target
func (t LikeTarget) Field() string {
	return string(t)
}

func (t LikeTarget) Valid() bool {
	switch t {
	case LikeTargetVideo, LikeTargetComment, LikeTargetTweet:
		return true
	}
	return false
}

// Like records that LikedBy likes exactly one of Video, Comment or Tweet.
type Like struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Video     *primitive.ObjectID `bson:"video,omitempty" json:"video,omitempty"`
	Comment   *primitive.ObjectID `bson:"comment,omitempty" json:"comment,omitempty"`
	Tweet     *primitive.ObjectID `bson:"tweet,omitempty" json:"tweet,omitempty"`
	LikedBy   primitive.ObjectID  `bson:"liked_by" json:"likedBy"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updatedAt"`
}

// NewLike builds a like of the given target
func NewLike(target LikeTarget, targetID, likedBy primitive.ObjectID) *Like {
	like := &Like{LikedBy: likedBy}
	id := targetID
	switch target {
	case LikeTargetVideo:
		like.Video = &id
	case LikeTargetComment:
		like.Comment = &id
	case LikeTargetTweet:
		like.Tweet = &id
	}
	return like
}

// LikeToggle reports the state left behind by a toggle
type LikeToggle struct {
	Liked bool `json:"liked"`
}
