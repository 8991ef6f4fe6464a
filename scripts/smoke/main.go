// End-to-end smoke run against a live Idea Box API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stake-plus/ideabox/src/api/webserver"
	"github.com/stake-plus/ideabox/src/data"
)

var (
	baseURL  = getenv("API_URL", "http://localhost:5000/api")
	redisURL = getenv("REDIS_URL", "")
	secret   = getenv("JWT_SECRET", "")
	user     = "smoke-" + uuid.NewString()[:8]
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	token, err := webserver.IssueToken([]byte(secret), user, user+"@example.com", user, 10*time.Minute)
	if err != nil {
		log.Fatalf("token: %v", err)
	}

	var rdb *redis.Client
	var lastID string
	if redisURL != "" {
		rdb = data.MustRedis(redisURL)
		defer rdb.Close()
		tail, err := data.StreamTail(context.Background(), rdb)
		if err != nil {
			log.Fatalf("stream tail: %v", err)
		}
		lastID = tail
	}

	id := createIdea(token)
	vote(token, id, "up", http.StatusCreated, "created")
	vote(token, id, "down", http.StatusOK, "changed")
	checkIdea(token, id, 0, 1)
	vote(token, id, "down", http.StatusOK, "removed")
	checkIdea(token, id, 0, 0)

	if rdb != nil {
		checkEvents(rdb, lastID, id)
	}
	fmt.Println("✓ all endpoints passed")
}

// ----------------------------- ideas

func createIdea(tok string) int64 {
	var resp struct{ ID int64 }
	doAuth(tok, "POST", "/ideas", map[string]any{
		"title":       "smoke " + user,
		"description": "created by the smoke script",
		"category":    "other",
	}, &resp, http.StatusCreated)
	if resp.ID == 0 {
		log.Fatal("create: empty id")
	}
	return resp.ID
}

func vote(tok string, id int64, dir string, want int, result string) {
	var resp struct{ Result string }
	doAuth(tok, "POST", fmt.Sprintf("/ideas/%d/vote", id), map[string]any{"direction": dir}, &resp, want)
	if resp.Result != result {
		log.Fatalf("vote %s: want %s got %s", dir, result, resp.Result)
	}
}

func checkIdea(tok string, id int64, up, down int64) {
	var view struct {
		Upvotes   int64
		Downvotes int64
	}
	doAuth(tok, "GET", fmt.Sprintf("/ideas/%d", id), nil, &view, http.StatusOK)
	if view.Upvotes != up || view.Downvotes != down {
		log.Fatalf("idea %d: want %d/%d got %d/%d", id, up, down, view.Upvotes, view.Downvotes)
	}
}

// ----------------------------- events

func checkEvents(rdb *redis.Client, lastID string, id int64) {
	consumer := data.NewStreamConsumer(rdb, lastID)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seen := 0
	for seen < 3 {
		events, err := consumer.Next(ctx)
		if err != nil {
			log.Fatalf("events: %v (saw %d)", err, seen)
		}
		for _, ev := range events {
			if ev.IdeaID == id && ev.UserID == user {
				seen++
			}
		}
	}
}

// ----------------------------- helpers

func doAuth(token, method, path string, body, out any, want int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}
