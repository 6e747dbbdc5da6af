package rfscall_test

import (
	"bytes"
	"testing"

	"code.duskforge.dev/rfscall"
)

func TestSendMessage_ThenExtractMessage(t *testing.T) {
	var wire bytes.Buffer
	payload := []byte("hello world")
	if err := rfscall.SendMessage(&wire, payload); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	rxbuf := wire.Bytes()
	got, ok, err := rfscall.ExtractMessage(&rxbuf, 0)
	if err != nil {
		t.Fatalf("ExtractMessage: %v", err)
	}
	if !ok {
		t.Fatalf("ExtractMessage: ok=false, want true")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
	if len(rxbuf) != 0 {
		t.Fatalf("rxbuf not drained: %q", rxbuf)
	}
}

func TestExtractMessage_MultipleMessagesInOneBuffer(t *testing.T) {
	var wire bytes.Buffer
	msgs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, m := range msgs {
		if err := rfscall.SendMessage(&wire, m); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}

	rxbuf := wire.Bytes()
	for i, want := range msgs {
		got, ok, err := rfscall.ExtractMessage(&rxbuf, 0)
		if err != nil {
			t.Fatalf("msg %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("msg %d: ok=false, want true", i)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("msg %d: got %q, want %q", i, got, want)
		}
	}
	if len(rxbuf) != 0 {
		t.Fatalf("rxbuf not drained: %q", rxbuf)
	}
}

func TestExtractMessage_PartialHeader_NoMessageYet(t *testing.T) {
	rxbuf := []byte("Message-Length:5")
	got, ok, err := rfscall.ExtractMessage(&rxbuf, 0)
	if err != nil || ok || got != nil {
		t.Fatalf("got=%v ok=%v err=%v, want nil/false/nil", got, ok, err)
	}
	if string(rxbuf) != "Message-Length:5" {
		t.Fatalf("rxbuf mutated: %q", rxbuf)
	}
}

func TestExtractMessage_PartialPayload_NoMessageYet(t *testing.T) {
	rxbuf := []byte("Message-Length:5\r\n\r\nhel")
	got, ok, err := rfscall.ExtractMessage(&rxbuf, 0)
	if err != nil || ok || got != nil {
		t.Fatalf("got=%v ok=%v err=%v, want nil/false/nil", got, ok, err)
	}
}

func TestExtractMessage_SplitAtEveryByteBoundary(t *testing.T) {
	var wire bytes.Buffer
	payload := []byte("the quick brown fox")
	if err := rfscall.SendMessage(&wire, payload); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	full := wire.Bytes()

	for split := 0; split <= len(full); split++ {
		var rxbuf []byte
		rxbuf = append(rxbuf, full[:split]...)

		got, ok, err := rfscall.ExtractMessage(&rxbuf, 0)
		if err != nil {
			t.Fatalf("split %d: %v", split, err)
		}
		if ok {
			// Only possible once the whole message has arrived.
			if split != len(full) {
				t.Fatalf("split %d: got a message early", split)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("split %d: got %q, want %q", split, got, payload)
			}
			continue
		}
		// Deliver the rest and try again.
		rxbuf = append(rxbuf, full[split:]...)
		got, ok, err = rfscall.ExtractMessage(&rxbuf, 0)
		if err != nil || !ok || !bytes.Equal(got, payload) {
			t.Fatalf("split %d: final extract got=%q ok=%v err=%v", split, got, ok, err)
		}
	}
}

func TestExtractMessage_MissingColon_MalformedFrame(t *testing.T) {
	rxbuf := []byte("Message-Length5\r\n\r\nhello")
	if _, _, err := rfscall.ExtractMessage(&rxbuf, 0); err != rfscall.ErrMalformedFrame {
		t.Fatalf("err = %v, want ErrMalformedFrame", err)
	}
}

func TestExtractMessage_NonNumericLength_MalformedFrame(t *testing.T) {
	rxbuf := []byte("Message-Length:abc\r\n\r\nhello")
	if _, _, err := rfscall.ExtractMessage(&rxbuf, 0); err != rfscall.ErrMalformedFrame {
		t.Fatalf("err = %v, want ErrMalformedFrame", err)
	}
}

func TestExtractMessage_LengthExceedsLimit_MalformedFrame(t *testing.T) {
	rxbuf := []byte("Message-Length:1000\r\n\r\n")
	if _, _, err := rfscall.ExtractMessage(&rxbuf, 10); err != rfscall.ErrMalformedFrame {
		t.Fatalf("err = %v, want ErrMalformedFrame", err)
	}
}

func TestSendMessage_PayloadContainingCRLF(t *testing.T) {
	// Because the size is known up front, payload bytes may legally
	// contain \r and \n.
	var wire bytes.Buffer
	payload := []byte("line one\r\nline two\r\n")
	if err := rfscall.SendMessage(&wire, payload); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	rxbuf := wire.Bytes()
	got, ok, err := rfscall.ExtractMessage(&rxbuf, 0)
	if err != nil || !ok {
		t.Fatalf("got=%v ok=%v err=%v", got, ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}
