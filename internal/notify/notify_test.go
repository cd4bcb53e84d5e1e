package notify

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymdesk/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

type capturingDispatcher struct {
	events []Event
}

func (d *capturingDispatcher) Dispatch(_ context.Context, ev Event) error {
	d.events = append(d.events, ev)
	return nil
}

func TestService_Emit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewWithClient(client, nil)

	mock.Regexp().ExpectLPush(queueKey, `.*"type":"membership_sold".*`).SetVal(1)

	svc.Emit(context.Background(), Event{
		Type:     EventMembershipSold,
		ClientID: 3,
		Payload:  map[string]interface{}{"membership_id": 7},
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Emit_QueueErrorDoesNotPanic(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewWithClient(client, nil)

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(assert.AnError)

	// Emit must swallow queue failures.
	svc.Emit(context.Background(), Event{Type: EventMembershipRenewed, ClientID: 3})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ProcessNext_Dispatches(t *testing.T) {
	client, mock := redismock.NewClientMock()
	dispatcher := &capturingDispatcher{}
	svc := NewWithClient(client, dispatcher)

	ev := Event{
		Type:     EventWaitlistPromoted,
		ClientID: 9,
		Payload:  map[string]interface{}{"booking_id": float64(43)},
		Created:  time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	mock.ExpectBRPop(2*time.Second, queueKey).SetVal([]string{queueKey, string(data)})
	mock.ExpectLLen(queueKey).SetVal(0)

	svc.processNext(context.Background())

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, EventWaitlistPromoted, dispatcher.events[0].Type)
	assert.Equal(t, 9, dispatcher.events[0].ClientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ProcessNext_EmptyQueueIsQuiet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	dispatcher := &capturingDispatcher{}
	svc := NewWithClient(client, dispatcher)

	mock.ExpectBRPop(2*time.Second, queueKey).RedisNil()

	svc.processNext(context.Background())

	assert.Empty(t, dispatcher.events)
}
