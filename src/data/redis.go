package data

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stake-plus/ideabox/src/ideas"
)

// EventStream carries vote and status events between the API and the bot.
const EventStream = "ideabox.events"

const streamMaxLen = 10000

func NewRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return redis.NewClient(opt), nil
}

func MustRedis(url string) *redis.Client {
	rdb, err := NewRedis(url)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return rdb
}

// StreamPublisher appends events to the Redis event stream.
type StreamPublisher struct {
	rdb    *redis.Client
	stream string
}

func NewStreamPublisher(rdb *redis.Client) *StreamPublisher {
	return &StreamPublisher{rdb: rdb, stream: EventStream}
}

func (p *StreamPublisher) Publish(ctx context.Context, ev ideas.Event) error {
	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"kind":      ev.Kind,
			"idea_id":   ev.IdeaID,
			"user_id":   ev.UserID,
			"result":    ev.Result,
			"direction": string(ev.Direction),
			"status":    string(ev.Status),
			"origin":    string(ev.Origin),
			"time":      time.Now().Unix(),
		},
	}).Err()
}

// StreamConsumer reads the event stream from a position it advances itself.
type StreamConsumer struct {
	rdb    *redis.Client
	stream string
	lastID string
	block  time.Duration
}

// NewStreamConsumer reads entries after lastID. "$" starts at new entries only and is
// pinned to the stream tail on the first read, "0" replays the whole stream.
func NewStreamConsumer(rdb *redis.Client, lastID string) *StreamConsumer {
	if lastID == "" {
		lastID = "$"
	}
	return &StreamConsumer{rdb: rdb, stream: EventStream, lastID: lastID, block: 5 * time.Second}
}

// Next blocks up to the consumer's block time and returns the events read.
// A timeout returns no events and no error.
func (c *StreamConsumer) Next(ctx context.Context) ([]ideas.Event, error) {
	if c.lastID == "$" {
		tail, err := StreamTail(ctx, c.rdb)
		if err != nil {
			return nil, fmt.Errorf("stream tail: %w", err)
		}
		c.lastID = tail
	}
	streams, err := c.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{c.stream, c.lastID},
		Count:   10,
		Block:   c.block,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var out []ideas.Event
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			c.lastID = msg.ID
			ev, err := decodeEvent(msg.Values)
			if err != nil {
				log.Printf("events: skip %s: %v", msg.ID, err)
				continue
			}
			out = append(out, ev)
		}
	}
	return out, nil
}

// StreamTail returns the id of the newest event, or "0-0" for an empty stream.
func StreamTail(ctx context.Context, rdb *redis.Client) (string, error) {
	msgs, err := rdb.XRevRangeN(ctx, EventStream, "+", "-", 1).Result()
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "0-0", nil
	}
	return msgs[0].ID, nil
}

func decodeEvent(values map[string]interface{}) (ideas.Event, error) {
	str := func(key string) string {
		v, _ := values[key].(string)
		return v
	}
	id, err := strconv.ParseInt(str("idea_id"), 10, 64)
	if err != nil {
		return ideas.Event{}, fmt.Errorf("bad idea_id %q", str("idea_id"))
	}
	ev := ideas.Event{
		Kind:      str("kind"),
		IdeaID:    id,
		UserID:    str("user_id"),
		Result:    str("result"),
		Direction: ideas.Direction(str("direction")),
		Status:    ideas.Status(str("status")),
		Origin:    ideas.Origin(str("origin")),
	}
	if ev.Kind != ideas.EventVote && ev.Kind != ideas.EventStatus {
		return ideas.Event{}, fmt.Errorf("unknown kind %q", ev.Kind)
	}
	return ev, nil
}
