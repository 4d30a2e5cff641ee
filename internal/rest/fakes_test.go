package rest

import (
	"context"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/video-sharing-platform/internal/kafka"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/repository"
	"github.com/yourusername/video-sharing-platform/internal/service"
	"github.com/yourusername/video-sharing-platform/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	subs  *memorySubscriptions
}

func newMemoryUsers(subs *memorySubscriptions) *memoryUsers {
	return &memoryUsers{users: map[primitive.ObjectID]*models.User{}, subs: subs}
}

func (s *memoryUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.WatchHistory = []primitive.ObjectID{}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memoryUsers) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memoryUsers) mutate(id primitive.ObjectID, fn func(u *models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(u)
	copied := *u
	return &copied, nil
}

func (s *memoryUsers) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	_, err := s.mutate(id, func(u *models.User) { u.RefreshToken = token })
	return err
}

func (s *memoryUsers) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	return s.SetRefreshToken(ctx, id, "")
}

func (s *memoryUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.mutate(id, func(u *models.User) { u.Password = hash })
	return err
}

func (s *memoryUsers) UpdateAccount(_ context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	if update.Username != nil || update.Email != nil {
		s.mu.Lock()
		for otherID, u := range s.users {
			if otherID == id {
				continue
			}
			if (update.Username != nil && u.Username == strings.ToLower(*update.Username)) ||
				(update.Email != nil && u.Email == strings.ToLower(*update.Email)) {
				s.mu.Unlock()
				return nil, repository.ErrDuplicate
			}
		}
		s.mu.Unlock()
	}
	return s.mutate(id, func(u *models.User) {
		if update.FullName != nil {
			u.FullName = *update.FullName
		}
		if update.Email != nil {
			u.Email = strings.ToLower(*update.Email)
		}
		if update.Username != nil {
			u.Username = strings.ToLower(*update.Username)
		}
	})
}

func (s *memoryUsers) SetAvatar(_ context.Context, id primitive.ObjectID, url string) (*models.User, error) {
	return s.mutate(id, func(u *models.User) { u.Avatar = url })
}

func (s *memoryUsers) SetCoverImage(_ context.Context, id primitive.ObjectID, url string) (*models.User, error) {
	return s.mutate(id, func(u *models.User) { u.CoverImage = url })
}

func (s *memoryUsers) AddToWatchHistory(_ context.Context, id, videoID primitive.ObjectID) error {
	_, err := s.mutate(id, func(u *models.User) {
		history := []primitive.ObjectID{videoID}
		for _, v := range u.WatchHistory {
			if v != videoID {
				history = append(history, v)
			}
		}
		u.WatchHistory = history
	})
	return err
}

func (s *memoryUsers) RemoveFromWatchHistory(_ context.Context, videoID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		var history []primitive.ObjectID
		for _, v := range u.WatchHistory {
			if v != videoID {
				history = append(history, v)
			}
		}
		u.WatchHistory = history
	}
	return nil
}

func (s *memoryUsers) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error) {
	u, err := s.FindByUsernameOrEmail(ctx, username, "")
	if err != nil {
		return nil, err
	}
	subscribers, _ := s.subs.Subscribers(ctx, u.ID)
	subscribedTo, _ := s.subs.SubscribedChannels(ctx, u.ID)
	return &models.ChannelProfile{
		ID:                        u.ID,
		Username:                  u.Username,
		FullName:                  u.FullName,
		Email:                     u.Email,
		SubscribersCount:          int64(len(subscribers)),
		ChannelsSubscribedToCount: int64(len(subscribedTo)),
		IsSubscribed:              s.subs.has(viewer, u.ID),
	}, nil
}

func (s *memoryUsers) WatchHistory(ctx context.Context, id primitive.ObjectID) ([]models.VideoWithOwner, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	videos := make([]models.VideoWithOwner, 0, len(u.WatchHistory))
	for _, v := range u.WatchHistory {
		videos = append(videos, models.VideoWithOwner{ID: v})
	}
	return videos, nil
}

type memoryVideos struct {
	mu     sync.Mutex
	order  []primitive.ObjectID
	videos map[primitive.ObjectID]*models.Video
}

func newMemoryVideos() *memoryVideos {
	return &memoryVideos{videos: map[primitive.ObjectID]*models.Video{}}
}

func (s *memoryVideos) Create(_ context.Context, video *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video.ID = primitive.NewObjectID()
	video.CreatedAt = time.Now()
	video.UpdatedAt = video.CreatedAt
	copied := *video
	s.videos[video.ID] = &copied
	s.order = append(s.order, video.ID)
	return nil
}

func (s *memoryVideos) FindByID(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (s *memoryVideos) mutate(id primitive.ObjectID, fn func(v *models.Video)) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(v)
	copied := *v
	return &copied, nil
}

func (s *memoryVideos) IncrementViews(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	return s.mutate(id, func(v *models.Video) { v.Views++ })
}

func (s *memoryVideos) Update(_ context.Context, id primitive.ObjectID, update models.VideoUpdate) (*models.Video, error) {
	return s.mutate(id, func(v *models.Video) {
		if update.Title != nil {
			v.Title = *update.Title
		}
		if update.Description != nil {
			v.Description = *update.Description
		}
		if update.Thumbnail != nil {
			v.Thumbnail = *update.Thumbnail
		}
	})
}

func (s *memoryVideos) TogglePublish(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	return s.mutate(id, func(v *models.Video) { v.IsPublished = !v.IsPublished })
}

func (s *memoryVideos) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

// List returns matching videos in insertion order
func (s *memoryVideos) List(_ context.Context, filter repository.VideoFilter, _ validation.Sort, page validation.Pagination) (models.Page[models.VideoWithOwner], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.VideoWithOwner
	for _, id := range s.order {
		v, ok := s.videos[id]
		if !ok {
			continue
		}
		if filter.PublishedOnly && !v.IsPublished {
			continue
		}
		if filter.OwnerID != nil && v.Owner != *filter.OwnerID {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(filter.Query)) {
			continue
		}
		matched = append(matched, models.VideoWithOwner{ID: v.ID, Title: v.Title, IsPublished: v.IsPublished, Owner: &models.PublicProfile{ID: v.Owner}})
	}

	total := int64(len(matched))
	start := page.Skip()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return models.NewPage(matched[start:end], total, page.Page, page.Limit), nil
}

type memoryTweets struct {
	mu     sync.Mutex
	tweets map[primitive.ObjectID]*models.Tweet
}

func newMemoryTweets() *memoryTweets {
	return &memoryTweets{tweets: map[primitive.ObjectID]*models.Tweet{}}
}

func (s *memoryTweets) Create(_ context.Context, tweet *models.Tweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tweet.ID = primitive.NewObjectID()
	copied := *tweet
	s.tweets[tweet.ID] = &copied
	return nil
}

func (s *memoryTweets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tweets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *memoryTweets) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tweets []models.Tweet
	for _, t := range s.tweets {
		if t.Owner == ownerID {
			tweets = append(tweets, *t)
		}
	}
	return tweets, nil
}

func (s *memoryTweets) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tweets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Content = content
	copied := *t
	return &copied, nil
}

func (s *memoryTweets) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

type memoryComments struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]*models.Comment
}

func newMemoryComments() *memoryComments {
	return &memoryComments{comments: map[primitive.ObjectID]*models.Comment{}}
}

func (s *memoryComments) Create(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	copied := *comment
	s.comments[comment.ID] = &copied
	return nil
}

func (s *memoryComments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *memoryComments) ListByVideo(_ context.Context, videoID primitive.ObjectID, page validation.Pagination) (models.Page[models.CommentWithOwner], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []models.CommentWithOwner
	for _, c := range s.comments {
		if c.Video == videoID {
			items = append(items, models.CommentWithOwner{ID: c.ID, Content: c.Content, Video: c.Video})
		}
	}
	return models.NewPage(items, int64(len(items)), page.Page, page.Limit), nil
}

func (s *memoryComments) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Content = content
	copied := *c
	return &copied, nil
}

func (s *memoryComments) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *memoryComments) DeleteByVideo(_ context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []primitive.ObjectID
	for id, c := range s.comments {
		if c.Video == videoID {
			ids = append(ids, id)
			delete(s.comments, id)
		}
	}
	return ids, nil
}

type likeKey struct {
	target   models.LikeTarget
	targetID primitive.ObjectID
	userID   primitive.ObjectID
}

type memoryLikes struct {
	mu    sync.Mutex
	likes map[likeKey]bool
}

func newMemoryLikes() *memoryLikes {
	return &memoryLikes{likes: map[likeKey]bool{}}
}

func (s *memoryLikes) Toggle(_ context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := likeKey{target, targetID, userID}
	if s.likes[key] {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = true
	return true, nil
}

func (s *memoryLikes) DeleteByTargets(_ context.Context, target models.LikeTarget, ids ...primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.likes {
		for _, id := range ids {
			if key.target == target && key.targetID == id {
				delete(s.likes, key)
			}
		}
	}
	return nil
}

func (s *memoryLikes) LikedVideos(_ context.Context, userID primitive.ObjectID, _ string, _ validation.Sort, page validation.Pagination) (models.Page[models.VideoWithOwner], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []models.VideoWithOwner
	for key := range s.likes {
		if key.target == models.LikeTargetVideo && key.userID == userID {
			items = append(items, models.VideoWithOwner{ID: key.targetID})
		}
	}
	return models.NewPage(items, int64(len(items)), page.Page, page.Limit), nil
}

func (s *memoryLikes) count(target models.LikeTarget, id primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.likes {
		if key.target == target && key.targetID == id {
			n++
		}
	}
	return n
}

type subscriptionKey struct {
	subscriber primitive.ObjectID
	channel    primitive.ObjectID
}

type memorySubscriptions struct {
	mu   sync.Mutex
	subs map[subscriptionKey]bool
}

func newMemorySubscriptions() *memorySubscriptions {
	return &memorySubscriptions{subs: map[subscriptionKey]bool{}}
}

func (s *memorySubscriptions) has(subscriber, channel primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[subscriptionKey{subscriber, channel}]
}

func (s *memorySubscriptions) Toggle(_ context.Context, subscriberID, channelID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subscriptionKey{subscriberID, channelID}
	if s.subs[key] {
		delete(s.subs, key)
		return false, nil
	}
	s.subs[key] = true
	return true, nil
}

func (s *memorySubscriptions) Subscribers(_ context.Context, channelID primitive.ObjectID) ([]models.PublicProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var profiles []models.PublicProfile
	for key := range s.subs {
		if key.channel == channelID {
			profiles = append(profiles, models.PublicProfile{ID: key.subscriber})
		}
	}
	return profiles, nil
}

func (s *memorySubscriptions) SubscribedChannels(_ context.Context, subscriberID primitive.ObjectID) ([]models.PublicProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var profiles []models.PublicProfile
	for key := range s.subs {
		if key.subscriber == subscriberID {
			profiles = append(profiles, models.PublicProfile{ID: key.channel})
		}
	}
	return profiles, nil
}

type memoryPlaylists struct {
	mu        sync.Mutex
	playlists map[primitive.ObjectID]*models.Playlist
}

func newMemoryPlaylists() *memoryPlaylists {
	return &memoryPlaylists{playlists: map[primitive.ObjectID]*models.Playlist{}}
}

func (s *memoryPlaylists) Create(_ context.Context, playlist *models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist.ID = primitive.NewObjectID()
	playlist.Videos = []primitive.ObjectID{}
	copied := *playlist
	s.playlists[playlist.ID] = &copied
	return nil
}

func (s *memoryPlaylists) FindByID(_ context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memoryPlaylists) Detail(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.PlaylistDetail{ID: p.ID, Name: p.Name, Description: p.Description, TotalVideos: len(p.Videos)}
	for _, v := range p.Videos {
		detail.Videos = append(detail.Videos, models.VideoWithOwner{ID: v})
	}
	return detail, nil
}

func (s *memoryPlaylists) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var playlists []models.Playlist
	for _, p := range s.playlists {
		if p.Owner == ownerID {
			playlists = append(playlists, *p)
		}
	}
	return playlists, nil
}

func (s *memoryPlaylists) mutate(id primitive.ObjectID, fn func(p *models.Playlist)) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(p)
	copied := *p
	copied.Videos = append([]primitive.ObjectID{}, p.Videos...)
	return &copied, nil
}

func (s *memoryPlaylists) Update(_ context.Context, id primitive.ObjectID, update models.PlaylistUpdate) (*models.Playlist, error) {
	return s.mutate(id, func(p *models.Playlist) {
		if update.Name != nil {
			p.Name = *update.Name
		}
		if update.Description != nil {
			p.Description = *update.Description
		}
	})
}

func (s *memoryPlaylists) AddVideo(_ context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return s.mutate(id, func(p *models.Playlist) {
		for _, v := range p.Videos {
			if v == videoID {
				return
			}
		}
		p.Videos = append(p.Videos, videoID)
	})
}

func (s *memoryPlaylists) RemoveVideo(_ context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return s.mutate(id, func(p *models.Playlist) { p.Videos = without(p.Videos, videoID) })
}

func (s *memoryPlaylists) RemoveVideoFromAll(_ context.Context, videoID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.playlists {
		p.Videos = without(p.Videos, videoID)
	}
	return nil
}

func (s *memoryPlaylists) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	kept := []primitive.ObjectID{}
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}

// fakeMedia stores nothing and hands out predictable URLs
type fakeMedia struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (m *fakeMedia) Upload(_ context.Context, ownerID string, kind service.MediaKind, file *multipart.FileHeader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "http://media.local/" + ownerID + "/" + string(kind) + "/" + file.Filename
	m.uploaded = append(m.uploaded, url)
	return url, nil
}

func (m *fakeMedia) UploadOptional(ctx context.Context, ownerID string, kind service.MediaKind, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", nil
	}
	return m.Upload(ctx, ownerID, kind, file)
}

func (m *fakeMedia) DeleteByURL(_ context.Context, url string) {
	if url == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []kafka.ActivityEvent
}

func (r *recordedEvents) Emit(_ context.Context, event kafka.ActivityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordedEvents) types() []kafka.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]kafka.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

type staticStats struct {
	stats models.ChannelStats
}

func (s staticStats) ChannelStats(context.Context, primitive.ObjectID) (*models.ChannelStats, error) {
	stats := s.stats
	return &stats, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
