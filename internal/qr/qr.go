// Package qr encodes and decodes the attendance check-in payload carried
// inside the QR code an organizer displays and a student scans.
package qr

import (
	"encoding/json"
	"errors"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// PayloadType tags attendance payloads; scanners reject anything else.
const PayloadType = "attendance"

// Payload is the JSON content of an attendance QR code.
type Payload struct {
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
}

// NewPayload builds a payload for a session stamped with the current time.
func NewPayload(sessionID string, now time.Time) Payload {
	return Payload{
		SessionID: sessionID,
		Timestamp: now.UnixMilli(),
		Type:      PayloadType,
	}
}

// Encode serializes the payload to its wire form.
func (p Payload) Encode() ([]byte, error) {
	if p.SessionID == "" {
		return nil, errors.New("session id required")
	}
	return json.Marshal(p)
}

// Decode parses a scanned payload and validates its type tag.
func Decode(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, err
	}
	if p.Type != PayloadType {
		return Payload{}, errors.New("not an attendance code")
	}
	if p.SessionID == "" {
		return Payload{}, errors.New("missing session id")
	}
	return p, nil
}

// PNG renders the payload as a QR image of the given pixel size.
func (p Payload) PNG(size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	data, err := p.Encode()
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, size)
}
