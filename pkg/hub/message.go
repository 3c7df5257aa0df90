// Package hub fans drill events out to dashboard websocket clients using the
// channel-based broadcast pattern. Clients may subscribe to a subset of
// event types.
package hub

import (
	"strings"

	"github.com/teslashibe/go-gaze/pkg/protocol"
)

// Message is an encoded protocol event queued for broadcast.
type Message struct {
	Type protocol.MessageType
	Data []byte
}

// Encode serializes msg for broadcast.
func Encode(msg *protocol.Message) (Message, error) {
	data, err := msg.Bytes()
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msg.Type, Data: data}, nil
}

// Filter selects the event types a client receives. A nil Filter accepts
// every type.
type Filter map[protocol.MessageType]struct{}

// NewFilter builds a filter from types. No types means no filtering.
func NewFilter(types ...protocol.MessageType) Filter {
	if len(types) == 0 {
		return nil
	}
	f := make(Filter, len(types))
	for _, t := range types {
		f[t] = struct{}{}
	}
	return f
}

// ParseFilter reads a comma-separated list such as "target,complete".
func ParseFilter(s string) Filter {
	var types []protocol.MessageType
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			types = append(types, protocol.MessageType(part))
		}
	}
	return NewFilter(types...)
}

// Accepts reports whether t passes the filter.
func (f Filter) Accepts(t protocol.MessageType) bool {
	if f == nil {
		return true
	}
	_, ok := f[t]
	return ok
}
