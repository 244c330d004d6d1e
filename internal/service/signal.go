package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/banibsnetworks-source/banibs-production-sub001"
)

// SignalService fans engine events out over redis pubsub: tier-change
// anomalies and delivery hand-offs reach realtime subscribers through
// here.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event banibs.Event) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, event.Channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime subscribes to the channels received on input and forwards
// decoded events to output until the context ends. Sending a new
// channel list resubscribes.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- banibs.Event) {
	var pubsub *redis.PubSub
	defer func() {
		if pubsub != nil {
			pubsub.Close()
		}
	}()

	var messages <-chan *redis.Message

	for {
		select {
		case <-ctx.Done():
			return
		case channels, ok := <-input:
			if !ok {
				return
			}
			if pubsub != nil {
				pubsub.Close()
			}
			pubsub = s.rdb.Subscribe(ctx, channels...)
			messages = pubsub.Channel()
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event banibs.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "failed to decode realtime event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
