package dataaccess

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// simulatedWriteBody is what every write in a static deployment answers with.
var simulatedWriteBody = []byte(`{"success":true,"message":"operation simulated"}`)

// Envelope is the normalized result of a routed call. Its shape does not
// depend on which branch produced it.
type Envelope struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports whether Status is in [200, 299].
func (e *Envelope) OK() bool {
	return isSuccess(e.Status)
}

// JSON returns the body as raw JSON.
func (e *Envelope) JSON() (json.RawMessage, error) {
	if !json.Valid(e.Body) {
		return nil, fmt.Errorf("%w: status %d", ErrDecode, e.Status)
	}
	return json.RawMessage(e.Body), nil
}

// Decode unmarshals the body into v.
func (e *Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func simulatedEnvelope() *Envelope {
	body := make([]byte, len(simulatedWriteBody))
	copy(body, simulatedWriteBody)
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &Envelope{Status: http.StatusOK, Header: h, Body: body}
}
