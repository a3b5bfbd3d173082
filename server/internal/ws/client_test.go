package ws

import "testing"

func TestClientOffer_KeepsNewest(t *testing.T) {
	c := newClient(nil)
	c.offer([]byte("first"))
	c.offer([]byte("second"))
	c.offer([]byte("third"))

	select {
	case msg := <-c.pending:
		if string(msg) != "third" {
			t.Errorf("pending: got %q, want third", msg)
		}
	default:
		t.Fatal("no message pending")
	}
	select {
	case msg := <-c.pending:
		t.Errorf("unexpected second message %q", msg)
	default:
	}
}

func TestClientShutdown_Idempotent(t *testing.T) {
	c := newClient(nil)
	c.shutdown()
	c.shutdown()
	select {
	case <-c.done:
	default:
		t.Fatal("done not closed")
	}
}
