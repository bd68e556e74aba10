// Package events announces new posts to other systems.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"

	"yatube/internal/models"
)

const DefaultTopic = "posts.created"

// PostCreated is the payload published after a post is stored.
type PostCreated struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Group     string    `json:"group,omitempty"`
	Text      string    `json:"text"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPostCreated(p *models.Post) PostCreated {
	ev := PostCreated{
		ID:        p.ID,
		Text:      p.Text,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
	}
	if p.Author != nil {
		ev.Author = p.Author.Username
	}
	if p.Group != nil {
		ev.Group = p.Group.Slug
	}
	return ev
}

type Publisher interface {
	PostCreated(ctx context.Context, ev PostCreated) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) PostCreated(context.Context, PostCreated) error { return nil }
func (Nop) Close() error                                   { return nil }

// Kafka writes events as JSON messages keyed by post id.
type Kafka struct {
	w *kgo.Writer
}

// NewKafka returns a Kafka publisher, or Nop when brokers is empty.
func NewKafka(brokers, topic string) Publisher {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	if len(addrs) == 0 {
		return Nop{}
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &Kafka{w: &kgo.Writer{
		Addr:                   kgo.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kgo.LeastBytes{},
		RequiredAcks:           kgo.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

func (k *Kafka) PostCreated(ctx context.Context, ev PostCreated) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return k.w.WriteMessages(ctx, kgo.Message{
		Key:   []byte(strconv.FormatInt(ev.ID, 10)),
		Value: b,
		Time:  time.Now(),
	})
}

func (k *Kafka) Close() error { return k.w.Close() }
