package pubsub

import (
	"context"
	"encoding/json"
)

const (
	EventCredentialIssued  = "credentialIssued"  // EventCredentialIssued a credential was stored
	EventCredentialRevoked = "credentialRevoked" // EventCredentialRevoked a credential was revoked
)

// Event defines the payload
type Event interface {
	Marshal() (msg Message, err error)
	Unmarshal(msg Message) error
}

// Message is the payload received in a pubsub subscriber. The input for callback functions
type Message []byte

// CredentialEvent is published whenever a credential changes
type CredentialEvent struct {
	ID             string `json:"id"`
	ContentHash    string `json:"contentHash"`
	Owner          string `json:"owner"`
	LedgerAnchored bool   `json:"ledgerAnchored"`
}

// Marshal marshals the event into a pubsub.Message
func (ev *CredentialEvent) Marshal() (msg Message, err error) {
	return json.Marshal(ev)
}

// Unmarshal creates an event from that message
func (ev *CredentialEvent) Unmarshal(msg Message) error {
	return json.Unmarshal(msg, ev)
}

// Publisher sends topics to the pubsub
type Publisher interface {
	Publish(ctx context.Context, topic string, payload Event) error
}

// EventHandler is the type that functions that handle an Event must comply.
type EventHandler func(context.Context, Message) error

// Subscriber subscribes to the pubsub topics
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, callback EventHandler)
}

// Client is formed by the publisher and subscriber
type Client interface {
	Publisher
	Subscriber
}
