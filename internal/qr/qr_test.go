package qr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	p := NewPayload("S1", now)

	data, err := p.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "S1", decoded.SessionID)
	assert.Equal(t, now.UnixMilli(), decoded.Timestamp)
	assert.Equal(t, PayloadType, decoded.Type)
}

func TestDecodeRejectsWrongType(t *testing.T) {
	_, err := Decode([]byte(`{"sessionId":"S1","timestamp":1,"type":"ticket"}`))
	assert.Error(t, err)
}

func TestDecodeRejectsMissingSession(t *testing.T) {
	_, err := Decode([]byte(`{"timestamp":1,"type":"attendance"}`))
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestPNG(t *testing.T) {
	p := NewPayload("S1", time.Now())
	png, err := p.PNG(0)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
