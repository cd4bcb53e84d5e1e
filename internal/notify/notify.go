package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"gymdesk/internal/logger"
	"gymdesk/internal/metrics"
)

const queueKey = "gymdesk:events"

type EventType string

const (
	EventMembershipSold    EventType = "membership_sold"
	EventMembershipRenewed EventType = "membership_renewed"
	EventWaitlistPromoted  EventType = "waitlist_promoted"
)

// Event is an outbound fire-and-forget signal emitted after the owning
// transaction has committed. Delivery is someone else's problem: the
// default dispatcher only logs.
type Event struct {
	Type     EventType              `json:"type"`
	ClientID int                    `json:"client_id"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
	Created  time.Time              `json:"created"`
}

// Emitter is what the domain services depend on. Emit must never fail
// the caller: errors are logged and dropped.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// Dispatcher consumes dequeued events. The stub implementation logs
// them; a real notifier (SMS, push, email) would replace it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, ev Event) error {
	logger.Info("event dispatched", "type", ev.Type, "client_id", ev.ClientID)
	return nil
}

// Service queues events on a Redis list and drains them with a
// background worker.
type Service struct {
	redis      *redis.Client
	dispatcher Dispatcher
}

func New(redisAddr string, dispatcher Dispatcher) *Service {
	if dispatcher == nil {
		dispatcher = LogDispatcher{}
	}
	return &Service{
		redis:      redis.NewClient(&redis.Options{Addr: redisAddr}),
		dispatcher: dispatcher,
	}
}

// NewWithClient is used by tests to inject a mock Redis client.
func NewWithClient(client *redis.Client, dispatcher Dispatcher) *Service {
	if dispatcher == nil {
		dispatcher = LogDispatcher{}
	}
	return &Service{redis: client, dispatcher: dispatcher}
}

func (s *Service) Emit(ctx context.Context, ev Event) {
	ev.Created = time.Now()

	data, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("Failed to marshal event %s: %v", ev.Type, err)
		metrics.RecordNotifyEvent(string(ev.Type), "marshal_error")
		return
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue event %s for client %d: %v", ev.Type, ev.ClientID, err)
		metrics.RecordNotifyEvent(string(ev.Type), "queue_error")
		return
	}

	metrics.RecordNotifyEvent(string(ev.Type), "queued")
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Event worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Event worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	if length, err := s.redis.LLen(ctx, queueKey).Result(); err == nil {
		metrics.NotifyQueueLength.Set(float64(length))
	}

	var ev Event
	if err := json.Unmarshal([]byte(result[1]), &ev); err != nil {
		logger.Errorf("Bad event data: %v", err)
		return
	}

	if err := s.dispatcher.Dispatch(ctx, ev); err != nil {
		logger.Errorf("Failed to dispatch %s event for client %d: %v", ev.Type, ev.ClientID, err)
		metrics.RecordNotifyEvent(string(ev.Type), "dispatch_error")
		return
	}

	metrics.RecordNotifyEvent(string(ev.Type), "dispatched")
}

func (s *Service) Close() error {
	return s.redis.Close()
}
