package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkMessageRoundTrip(t *testing.T) {
	msg, err := NewMarkMessage("S1", "U1")
	require.NoError(t, err)
	assert.Equal(t, TypeMark, msg.Type)

	payload, err := DecodeMark(msg)
	require.NoError(t, err)
	assert.Equal(t, MarkPayload{SessionID: "S1", UserID: "U1"}, payload)
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: TypeMark, Body: []byte(`{"session_id":"S1","user_id":"U1"}`)}
	got, err := deserialize(serialize(msg))
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	q := NewInMemory(4)
	msg, err := NewMarkMessage("S1", "U1")
	require.NoError(t, err)
	require.NoError(t, q.Publish(ctx, msg))

	out, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case got := <-out:
		assert.Equal(t, msg, got)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}
