package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Op names the kind of change a TransactionEvent describes.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
	// OpPurged means every transaction of Owner was removed; ID is empty.
	OpPurged Op = "purged"
)

var ErrMalformedEvent = errors.New("malformed transaction event")

// TransactionEvent is the message body published after a successful write.
// It carries identifiers only; consumers read current state from storage.
type TransactionEvent struct {
	Op        Op        `json:"op"`
	ID        string    `json:"id,omitempty"`
	Owner     string    `json:"owner"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(op Op, id, owner string) TransactionEvent {
	return TransactionEvent{Op: op, ID: id, Owner: owner, Timestamp: time.Now().UTC()}
}

func (e TransactionEvent) Validate() error {
	switch e.Op {
	case OpCreated, OpUpdated, OpDeleted:
		if e.ID == "" {
			return fmt.Errorf("%w: %s without id", ErrMalformedEvent, e.Op)
		}
	case OpPurged:
	default:
		return fmt.Errorf("%w: unknown op %q", ErrMalformedEvent, e.Op)
	}
	if e.Owner == "" {
		return fmt.Errorf("%w: missing owner", ErrMalformedEvent)
	}
	return nil
}

func (e TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and validates a message body.
func TransactionEventFromJSON(data []byte) (TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return TransactionEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return TransactionEvent{}, err
	}
	return e, nil
}
