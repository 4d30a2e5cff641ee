package repository

import (
	"github.com/yourusername/video-sharing-platform/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func publicProfileProjection() bson.M {
	return bson.M{"username": 1, "fullname": 1, "avatar": 1}
}

// ownerLookupStages replaces the user reference in field with the user's public profile
func ownerLookupStages(field string) []bson.D {
	return []bson.D{
		stage("$lookup", bson.M{
			"from":         usersCollection,
			"localField":   field,
			"foreignField": "_id",
			"as":           field,
			"pipeline":     mongo.Pipeline{stage("$project", publicProfileProjection())},
		}),
		stage("$addFields", bson.M{field: bson.M{"$first": "$" + field}}),
	}
}

func sortStage(sort validation.Sort) bson.D {
	keys := bson.D{{Key: sort.Field, Value: sort.Direction}}
	if sort.Field != "_id" {
		// tiebreaker keeps pages disjoint when the sort field repeats
		keys = append(keys, bson.E{Key: "_id", Value: sort.Direction})
	}
	return stage("$sort", keys)
}

func facetStage(page validation.Pagination, itemStages ...bson.D) bson.D {
	items := bson.A{
		stage("$skip", page.Skip()),
		stage("$limit", page.Limit),
	}
	for _, s := range itemStages {
		items = append(items, s)
	}
	return stage("$facet", bson.M{
		"items": items,
		"total": bson.A{stage("$count", "total")},
	})
}

// VideoFilter narrows a video listing
type VideoFilter struct {
	Query         string
	OwnerID       *primitive.ObjectID
	PublishedOnly bool
}

func (f VideoFilter) match() bson.M {
	match := bson.M{}
	if f.Query != "" {
		match["title"] = bson.M{"$regex": validation.EscapeRegex(f.Query), "$options": "i"}
	}
	if f.OwnerID != nil {
		match["owner"] = *f.OwnerID
	}
	if f.PublishedOnly {
		match["is_published"] = true
	}
	return match
}

func videoListPipeline(filter VideoFilter, sort validation.Sort, page validation.Pagination) mongo.Pipeline {
	return mongo.Pipeline{
		stage("$match", filter.match()),
		sortStage(sort),
		facetStage(page, ownerLookupStages("owner")...),
	}
}

func channelProfilePipeline(username string, viewer primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		stage("$match", bson.M{"username": username}),
		stage("$lookup", bson.M{
			"from":         subscriptionsCollection,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}),
		stage("$lookup", bson.M{
			"from":         subscriptionsCollection,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribed_to",
		}),
		stage("$addFields", bson.M{
			"subscribers_count":            bson.M{"$size": "$subscribers"},
			"channels_subscribed_to_count": bson.M{"$size": "$subscribed_to"},
			"is_subscribed": bson.M{"$cond": bson.M{
				"if":   bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
				"then": true,
				"else": false,
			}},
		}),
		stage("$project", bson.M{
			"fullname":                     1,
			"username":                     1,
			"email":                        1,
			"avatar":                       1,
			"cover_image":                  1,
			"subscribers_count":            1,
			"channels_subscribed_to_count": 1,
			"is_subscribed":                1,
		}),
	}
}

func watchHistoryPipeline(userID primitive.ObjectID) mongo.Pipeline {
	inner := mongo.Pipeline{}
	inner = append(inner, ownerLookupStages("owner")...)

	return mongo.Pipeline{
		stage("$match", bson.M{"_id": userID}),
		stage("$lookup", bson.M{
			"from":         videosCollection,
			"localField":   "watch_history",
			"foreignField": "_id",
			"as":           "history_videos",
			"pipeline":     inner,
		}),
		stage("$project", bson.M{"watch_history": 1, "history_videos": 1}),
	}
}

func likedVideosPipeline(userID primitive.ObjectID, query string, sort validation.Sort, page validation.Pagination) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		stage("$match", bson.M{
			"liked_by": userID,
			"video":    bson.M{"$exists": true, "$ne": nil},
		}),
		stage("$lookup", bson.M{
			"from":         videosCollection,
			"localField":   "video",
			"foreignField": "_id",
			"as":           "liked_video",
		}),
		stage("$unwind", "$liked_video"),
	}

	visible := bson.M{"$or": bson.A{
		bson.M{"liked_video.is_published": true},
		bson.M{"liked_video.owner": userID},
	}}
	if query != "" {
		visible["liked_video.title"] = bson.M{"$regex": validation.EscapeRegex(query), "$options": "i"}
	}
	pipeline = append(pipeline, stage("$match", visible))

	pipeline = append(pipeline,
		stage("$lookup", bson.M{
			"from":         usersCollection,
			"localField":   "liked_video.owner",
			"foreignField": "_id",
			"as":           "liked_owner",
		}),
		stage("$unwind", "$liked_owner"),
		stage("$project", bson.M{
			"_id":          "$liked_video._id",
			"video_file":   "$liked_video.video_file",
			"thumbnail":    "$liked_video.thumbnail",
			"title":        "$liked_video.title",
			"description":  "$liked_video.description",
			"duration":     "$liked_video.duration",
			"views":        "$liked_video.views",
			"is_published": "$liked_video.is_published",
			"created_at":   "$liked_video.created_at",
			"updated_at":   "$liked_video.updated_at",
			"owner": bson.M{
				"_id":      "$liked_owner._id",
				"username": "$liked_owner.username",
				"fullname": "$liked_owner.fullname",
				"avatar":   "$liked_owner.avatar",
			},
		}),
		sortStage(sort),
		facetStage(page),
	)

	return pipeline
}

func commentsPipeline(videoID primitive.ObjectID, page validation.Pagination) mongo.Pipeline {
	return mongo.Pipeline{
		stage("$match", bson.M{"video": videoID}),
		sortStage(validation.Sort{Field: "created_at", Direction: -1}),
		facetStage(page, ownerLookupStages("owner")...),
	}
}

func playlistDetailPipeline(playlistID primitive.ObjectID) mongo.Pipeline {
	inner := mongo.Pipeline{}
	inner = append(inner, ownerLookupStages("owner")...)

	pipeline := mongo.Pipeline{
		stage("$match", bson.M{"_id": playlistID}),
		stage("$lookup", bson.M{
			"from":         videosCollection,
			"localField":   "videos",
			"foreignField": "_id",
			"as":           "resolved_videos",
			"pipeline":     inner,
		}),
	}
	pipeline = append(pipeline, ownerLookupStages("owner")...)
	return append(pipeline, stage("$addFields", bson.M{
		"total_videos": bson.M{"$size": "$resolved_videos"},
		"total_views":  bson.M{"$sum": "$resolved_videos.views"},
	}))
}

// subscriptionProfilesPipeline lists the public profiles on the other side of
// subscriptions where matchField equals id. profileField names the reference
// resolved into a profile.
func subscriptionProfilesPipeline(matchField string, id primitive.ObjectID, profileField string) mongo.Pipeline {
	return mongo.Pipeline{
		stage("$match", bson.M{matchField: id}),
		stage("$sort", bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
		stage("$lookup", bson.M{
			"from":         usersCollection,
			"localField":   profileField,
			"foreignField": "_id",
			"as":           "profile",
			"pipeline":     mongo.Pipeline{stage("$project", publicProfileProjection())},
		}),
		stage("$unwind", "$profile"),
		stage("$replaceRoot", bson.M{"newRoot": "$profile"}),
	}
}

func totalViewsPipeline(ownerID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		stage("$match", bson.M{"owner": ownerID}),
		stage("$group", bson.M{"_id": nil, "total": bson.M{"$sum": "$views"}}),
	}
}

func totalLikesPipeline(ownerID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		stage("$match", bson.M{"owner": ownerID}),
		stage("$lookup", bson.M{
			"from":         likesCollection,
			"localField":   "_id",
			"foreignField": "video",
			"as":           "likes",
		}),
		stage("$group", bson.M{"_id": nil, "total": bson.M{"$sum": bson.M{"$size": "$likes"}}}),
	}
}

// orderByIDs returns items in the order of ids, dropping ids with no item
func orderByIDs[T any](ids []primitive.ObjectID, items []T, idOf func(T) primitive.ObjectID) []T {
	byID := make(map[primitive.ObjectID]T, len(items))
	for _, item := range items {
		byID[idOf(item)] = item
	}
	ordered := make([]T, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			ordered = append(ordered, item)
		}
	}
	return ordered
}
