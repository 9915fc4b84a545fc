package feed

import (
	"context"
	"encoding/json"
	"log"

	"kitlocker/backend/internal/database"
)

// EventsChannel is the redis pub/sub channel shared by all server instances.
const EventsChannel = "feed:events"

// envelope wraps an event with its addressees for transport over redis.
type envelope struct {
	Users []uint `json:"users"`
	Event Event  `json:"event"`
}

// Publish delivers an event to the given users. When redis is configured the
// event goes through pub/sub so every server instance (including this one,
// via the bridge) fans it out; otherwise it goes straight to the local hub.
func Publish(ctx context.Context, event Event, userIDs ...uint) {
	if database.Redis == nil {
		GlobalHub.Fanout(event, userIDs...)
		return
	}

	payload, err := json.Marshal(envelope{Users: userIDs, Event: event})
	if err != nil {
		log.Printf("feed: failed to marshal event: %v", err)
		return
	}

	if err := database.Redis.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		log.Printf("feed: failed to publish event: %v", err)
		// Degrade to local delivery so this instance's clients still converge.
		GlobalHub.Fanout(event, userIDs...)
	}
}

// StartBridge subscribes to the redis events channel and feeds received
// events into the local hub. It returns immediately; the bridge stops when
// ctx is cancelled.
func StartBridge(ctx context.Context) {
	if database.Redis == nil {
		return
	}

	pubsub := database.Redis.Subscribe(ctx, EventsChannel)

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Printf("feed: dropping malformed event: %v", err)
					continue
				}
				GlobalHub.Fanout(env.Event, env.Users...)
			}
		}
	}()
}
