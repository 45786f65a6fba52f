package bus

import (
	"encoding/json"
	"time"
)

// Kind categorizes requests for logging and timeout policy.
type Kind string

const (
	KindDownload   Kind = "download"
	KindScoreQuery Kind = "score_query"
	KindLocalQuery Kind = "local_query"
	KindPreference Kind = "preference"
)

// Notification is the unit of delivery to the registered sink. RequestID is
// nil for unsolicited streams (transport, RMS, playing). Once constructed a
// Notification is never mutated.
type Notification struct {
	Tags      []string  `json:"tags"`
	RequestID *int64    `json:"request,omitempty"`
	Result    any       `json:"result"`
	Timestamp time.Time `json:"-"`
}

// Encode renders the wire form { tags: [...], request?: n, result: ... }.
func (n Notification) Encode() ([]byte, error) {
	return json.Marshal(n)
}

// Solicited reports whether the notification answers a client request.
func (n Notification) Solicited() bool {
	return n.RequestID != nil
}

// Sink receives notifications. Deliver is invoked from the bus dispatch
// goroutine, never from the control goroutine; implementations must not
// assume reentrancy into the control API.
type Sink interface {
	Deliver(Notification)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Notification)

// Deliver implements Sink.
func (f SinkFunc) Deliver(n Notification) { f(n) }

func solicited(tags []string, requestID int64, result any) Notification {
	id := requestID
	return Notification{
		Tags:      append([]string(nil), tags...),
		RequestID: &id,
		Result:    result,
		Timestamp: time.Now(),
	}
}

// Unsolicited builds a stream notification carrying no request correlation.
func Unsolicited(tags []string, result any) Notification {
	return Notification{
		Tags:      append([]string(nil), tags...),
		Result:    result,
		Timestamp: time.Now(),
	}
}
