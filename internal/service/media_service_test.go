package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/breaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testMediaURL = "http://media.local/bucket"

var testOwner = primitive.NewObjectID().Hex()

type memoryObjectStore struct {
	objects   map[string][]byte
	uploadErr error
	deleted   []string
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{objects: map[string][]byte{}}
}

func (s *memoryObjectStore) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.objects[objectName] = data
	return testMediaURL + "/" + objectName, nil
}

func (s *memoryObjectStore) Delete(_ context.Context, objectName string) error {
	s.deleted = append(s.deleted, objectName)
	delete(s.objects, objectName)
	return nil
}

func (s *memoryObjectStore) ObjectName(url string) (string, bool) {
	if !strings.HasPrefix(url, testMediaURL+"/") {
		return "", false
	}
	return strings.TrimPrefix(url, testMediaURL+"/"), true
}

func fileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func newTestMediaService(store ObjectStore, maxBytes int64) *MediaService {
	return NewMediaService(store, breaker.New("test-media", 1, time.Second, quietLogger()), maxBytes, quietLogger())
}

func TestMediaServiceUpload(t *testing.T) {
	store := newMemoryObjectStore()
	media := newTestMediaService(store, 1024)

	url, err := media.Upload(context.Background(), testOwner, MediaAvatar, fileHeader(t, "Me.PNG", "image/png", []byte("png")))
	require.NoError(t, err)

	name, ok := store.ObjectName(url)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(name, "users/"+testOwner+"/avatars/"), name)
	assert.True(t, strings.HasSuffix(name, ".png"), name)
	assert.Equal(t, []byte("png"), store.objects[name])
}

func TestMediaServiceUploadValidation(t *testing.T) {
	media := newTestMediaService(newMemoryObjectStore(), 4)
	ctx := context.Background()

	tests := []struct {
		name string
		kind MediaKind
		file *multipart.FileHeader
	}{
		{"missing file", MediaVideo, nil},
		{"video as avatar", MediaAvatar, fileHeader(t, "clip.mp4", "video/mp4", []byte("mp4"))},
		{"image as video", MediaVideo, fileHeader(t, "pic.png", "image/png", []byte("png"))},
		{"too large", MediaThumbnail, fileHeader(t, "big.png", "image/png", []byte("too large"))},
		{"empty", MediaThumbnail, fileHeader(t, "empty.png", "image/png", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := media.Upload(ctx, testOwner, tt.kind, tt.file)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.KindValidation), err.Error())
		})
	}
}

func TestMediaServiceUploadOptional(t *testing.T) {
	media := newTestMediaService(newMemoryObjectStore(), 1024)

	url, err := media.UploadOptional(context.Background(), testOwner, MediaCoverImage, nil)
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestMediaServiceStoreFailure(t *testing.T) {
	store := newMemoryObjectStore()
	store.uploadErr = errors.New("connection reset")
	media := newTestMediaService(store, 1024)

	_, err := media.Upload(context.Background(), testOwner, MediaVideo, fileHeader(t, "clip.mp4", "video/mp4", []byte("mp4")))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindPersistence))
}

func TestMediaServiceDisabledStore(t *testing.T) {
	media := newTestMediaService(DisabledObjectStore{}, 1024)

	_, err := media.Upload(context.Background(), testOwner, MediaVideo, fileHeader(t, "clip.mp4", "video/mp4", []byte("mp4")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMediaDisabled)
}

func TestMediaServiceDeleteByURL(t *testing.T) {
	store := newMemoryObjectStore()
	media := newTestMediaService(store, 1024)
	ctx := context.Background()

	media.DeleteByURL(ctx, "")
	media.DeleteByURL(ctx, "https://elsewhere.example.com/a.png")
	media.DeleteByURL(ctx, testMediaURL+"/users/owner1/avatars/a.png")

	assert.Equal(t, []string{"users/owner1/avatars/a.png"}, store.deleted)
}
