package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURLRoundTrip(t *testing.T) {
	base := "http://localhost:9000/media"

	url := objectURL(base, "users/1/avatars/a.png")
	assert.Equal(t, "http://localhost:9000/media/users/1/avatars/a.png", url)

	name, ok := objectNameFromURL(base, url)
	assert.True(t, ok)
	assert.Equal(t, "users/1/avatars/a.png", name)
}

func TestObjectNameFromForeignURL(t *testing.T) {
	_, ok := objectNameFromURL("http://localhost:9000/media", "https://cdn.example.com/a.png")
	assert.False(t, ok)

	_, ok = objectNameFromURL("http://localhost:9000/media", "http://localhost:9000/media/")
	assert.False(t, ok)
}

func TestPublicReadPolicyNamesBucket(t *testing.T) {
	assert.Contains(t, publicReadPolicy("media"), "arn:aws:s3:::media/*")
	assert.NotContains(t, publicReadPolicy("media"), "s3:PutObject")
}
