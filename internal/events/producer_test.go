package events

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NoBrokersIsNop(t *testing.T) {
	p := New(nil)
	_, ok := p.(NopPublisher)
	require.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), TopicUserEvents, "k", UserEvent{}))
	assert.NoError(t, p.Close())

	_, ok = New([]string{"localhost:9092"}).(*KafkaPublisher)
	assert.True(t, ok)
}

func TestEncode(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := Encode("user-1", UserEvent{Type: UserLoggedIn, UserID: "user-1", Role: "admin", At: at})
	require.NoError(t, err)
	assert.Equal(t, []byte("user-1"), msg.Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "user_logged_in", got["type"])
	assert.Equal(t, "admin", got["role"])
	assert.NotContains(t, got, "email")

	_, err = Encode("k", make(chan int))
	assert.Error(t, err)
}

func TestKafkaPublisher_Integration(t *testing.T) {
	brokers := os.Getenv("KAFKA_TEST_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_TEST_BROKERS is required for tests")
	}
	list := strings.Split(brokers, ",")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	conn, err := kafka.DialLeader(ctx, "tcp", list[0], TopicUserEvents, 0)
	require.NoError(t, err)
	end, err := conn.ReadLastOffset()
	require.NoError(t, err)
	_ = conn.Close()

	p := NewKafkaPublisher(list)
	t.Cleanup(func() { _ = p.Close() })
	require.NoError(t, p.Publish(ctx, TopicUserEvents, "user-1", UserEvent{Type: UserRegistered, UserID: "user-1"}))

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   list,
		Topic:     TopicUserEvents,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
		MaxWait:   time.Second,
	})
	defer r.Close()
	require.NoError(t, r.SetOffset(end))

	m, err := r.ReadMessage(ctx)
	require.NoError(t, err)

	var event UserEvent
	require.NoError(t, json.Unmarshal(m.Value, &event))
	assert.Equal(t, UserRegistered, event.Type)
}
