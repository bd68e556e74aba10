package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/models"
)

func TestNewPostCreated(t *testing.T) {
	gid := int64(3)
	p := &models.Post{
		ID:        42,
		Text:      "hello",
		Image:     "posts/small.gif",
		GroupID:   &gid,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Author:    &models.User{ID: 1, Username: "leo"},
		Group:     &models.Group{ID: gid, Slug: "cats"},
	}
	ev := NewPostCreated(p)

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 42, "author": "leo", "group": "cats", "text": "hello",
		"image": "posts/small.gif", "created_at": "2024-05-01T10:00:00Z"
	}`, string(b))
}

func TestNewKafkaWithoutBrokers(t *testing.T) {
	pub := NewKafka(" , ", "")
	_, isNop := pub.(Nop)
	assert.True(t, isNop)
	assert.NoError(t, pub.PostCreated(context.Background(), PostCreated{ID: 1}))
	assert.NoError(t, pub.Close())
}
