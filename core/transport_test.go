package core

import (
	"testing"
	"time"
)

func TestTransportUnicast(t *testing.T) {
	tr := NewTransport([]ReplicaID{"a", "b"}, 0)
	msg := Message{Type: MsgRequest, From: "a"}
	if err := tr.Send("b", msg); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	got, ok := tr.Take("b", time.Second)
	if !ok {
		t.Fatalf("expected a message to be delivered")
	}
	if got.From != "a" {
		t.Fatalf("expected sender a, got %s", got.From)
	}
}

func TestTransportUnicastUnknownRecipient(t *testing.T) {
	tr := NewTransport([]ReplicaID{"a"}, 0)
	if err := tr.Send("ghost", Message{}); err == nil {
		t.Fatalf("expected error sending to unknown replica")
	}
}

func TestTransportBroadcastExcludesSender(t *testing.T) {
	tr := NewTransport([]ReplicaID{"a", "b", "c"}, 0)
	tr.Broadcast("a", Message{Type: MsgPrepare, From: "a"})

	if _, ok := tr.Take("a", 50*time.Millisecond); ok {
		t.Fatalf("sender should not receive its own broadcast")
	}
	if _, ok := tr.Take("b", time.Second); !ok {
		t.Fatalf("expected b to receive broadcast")
	}
	if _, ok := tr.Take("c", time.Second); !ok {
		t.Fatalf("expected c to receive broadcast")
	}
}

func TestTransportTakeTimesOut(t *testing.T) {
	tr := NewTransport([]ReplicaID{"a"}, 0)
	_, ok := tr.Take("a", 50*time.Millisecond)
	if ok {
		t.Fatalf("expected timeout with no pending messages")
	}
}
