package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// MessageType names a PBFT protocol message.
type MessageType string

const (
	MsgRequest    MessageType = "REQUEST"
	MsgPrePrepare MessageType = "PRE-PREPARE"
	MsgPrepare    MessageType = "PREPARE"
	MsgCommit     MessageType = "COMMIT"
	MsgViewChange MessageType = "VIEW-CHANGE"
)

// Message is one unit of PBFT protocol traffic exchanged between replicas.
type Message struct {
	Type        MessageType
	From        ReplicaID
	View        int
	Sequence    int
	Digest      string
	Transaction Transaction
	Timestamp   float64
	RequestID   string
}

// mailbox is a single replica's inbound queue.
type mailbox struct {
	ch chan Message
}

func newMailbox(capacity int) *mailbox {
	return &mailbox{ch: make(chan Message, capacity)}
}

// Take blocks until a message arrives or timeout elapses, returning
// (Message{}, false) on timeout.
func (m *mailbox) Take(timeout time.Duration) (Message, bool) {
	select {
	case msg := <-m.ch:
		return msg, true
	case <-time.After(timeout):
		return Message{}, false
	}
}

// Transport wires together an in-memory mailbox per replica and implements
// unicast Send / Broadcast over them. Transport is the sole means by which
// replicas exchange messages; no wire encoding or network security is
// modelled.
type Transport struct {
	mu        sync.RWMutex
	mailboxes map[ReplicaID]*mailbox
	limiter   *rate.Limiter
	log       *logrus.Entry
}

// NewTransport returns a Transport with an empty mailbox for each of ids.
// requestsPerSecond bounds inbound REQUEST delivery rate; pass 0 to disable
// limiting.
func NewTransport(ids []ReplicaID, requestsPerSecond float64) *Transport {
	t := &Transport{
		mailboxes: make(map[ReplicaID]*mailbox, len(ids)),
		log:       logrus.WithField("component", "transport"),
	}
	for _, id := range ids {
		t.mailboxes[id] = newMailbox(256)
	}
	if requestsPerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond))
	}
	return t
}

// Send delivers msg to a single recipient's mailbox. It returns an error if
// the recipient is unknown.
func (t *Transport) Send(recipient ReplicaID, msg Message) error {
	t.mu.RLock()
	box, ok := t.mailboxes[recipient]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("core: unknown replica %q", recipient)
	}
	if t.limiter != nil && msg.Type == MsgRequest {
		if err := t.limiter.Wait(context.Background()); err != nil {
			return err
		}
	}
	select {
	case box.ch <- msg:
		return nil
	default:
		t.log.WithField("to", recipient).Warn("transport: mailbox full, dropping message")
		return fmt.Errorf("core: mailbox for %q is full", recipient)
	}
}

// Broadcast delivers msg to every mailbox except sender's own.
func (t *Transport) Broadcast(sender ReplicaID, msg Message) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for id, box := range t.mailboxes {
		if id == sender {
			continue
		}
		select {
		case box.ch <- msg:
		default:
			t.log.WithField("to", id).Warn("transport: mailbox full, dropping broadcast message")
		}
	}
}

// Take blocks until a message arrives for replica id or timeout elapses.
func (t *Transport) Take(id ReplicaID, timeout time.Duration) (Message, bool) {
	t.mu.RLock()
	box, ok := t.mailboxes[id]
	t.mu.RUnlock()
	if !ok {
		return Message{}, false
	}
	return box.Take(timeout)
}
