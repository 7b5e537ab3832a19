package chardev

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	s := NewStore()

	n, err := s.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 5 {
		t.Errorf("Write() = %d, want 5", n)
	}

	var buf bytes.Buffer
	got, err := s.Drain(&buf)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	want := "hello (5 letters)"
	if buf.String() != want {
		t.Errorf("Drain() = %q, want %q", buf.String(), want)
	}
	if got != len(want) {
		t.Errorf("Drain() = %d bytes, want %d", got, len(want))
	}
}

func TestDrainOnce(t *testing.T) {
	s := NewStore()

	if _, err := s.Write([]byte("once")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var first bytes.Buffer
	if _, err := s.Drain(&first); err != nil {
		t.Fatalf("first Drain() error = %v", err)
	}

	var second bytes.Buffer
	n, err := s.Drain(&second)
	if err != nil {
		t.Fatalf("second Drain() error = %v", err)
	}
	if n != 0 || second.Len() != 0 {
		t.Errorf("second Drain() = %d bytes (%q), want 0", n, second.String())
	}

	// A new write refills the slot.
	if _, err := s.Write([]byte("again")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	var third bytes.Buffer
	if _, err := s.Drain(&third); err != nil {
		t.Fatalf("third Drain() error = %v", err)
	}
	if third.String() != "again (5 letters)" {
		t.Errorf("third Drain() = %q, want %q", third.String(), "again (5 letters)")
	}
}

func TestWriteOverwrites(t *testing.T) {
	s := NewStore()

	if _, err := s.Write([]byte("first message")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := s.Write([]byte("second")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var buf bytes.Buffer
	if _, err := s.Drain(&buf); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	want := "second (6 letters)"
	if buf.String() != want {
		t.Errorf("Drain() = %q, want %q (no trace of the first message)", buf.String(), want)
	}
}

func TestWriteEchoesInputLength(t *testing.T) {
	s := NewStore()

	// The stored message is longer than the input, but the reported
	// count is the input length.
	input := []byte("hey")
	n, err := s.Write(input)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len(input) {
		t.Errorf("Write() = %d, want %d", n, len(input))
	}
	if stored := s.Len(); stored <= len(input) {
		t.Errorf("Len() = %d, want > %d (formatted message is longer)", stored, len(input))
	}
}

func TestWriteCapacityBoundary(t *testing.T) {
	tests := []struct {
		name      string
		inputLen  int
		wantError bool
	}{
		// 241 input bytes + " (241 letters)" = 255 = MaxMessageSize
		{"largest accepted", 241, false},
		{"one over", 242, true},
		{"far over", 1024, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			input := bytes.Repeat([]byte("a"), tt.inputLen)

			n, err := s.Write(input)
			if tt.wantError {
				if !errors.Is(err, ErrMessageTooLong) {
					t.Fatalf("Write() error = %v, want ErrMessageTooLong", err)
				}
				if n != 0 {
					t.Errorf("Write() = %d, want 0 on rejection", n)
				}
				if s.Len() != 0 {
					t.Errorf("Len() = %d, want 0 after rejected write", s.Len())
				}
				return
			}

			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if s.Len() != MaxMessageSize {
				t.Errorf("Len() = %d, want %d", s.Len(), MaxMessageSize)
			}
		})
	}
}

func TestRejectedWriteKeepsPreviousMessage(t *testing.T) {
	s := NewStore()

	if _, err := s.Write([]byte("keep me")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	oversized := bytes.Repeat([]byte("x"), 300)
	if _, err := s.Write(oversized); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("Write() error = %v, want ErrMessageTooLong", err)
	}

	var buf bytes.Buffer
	if _, err := s.Drain(&buf); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if buf.String() != "keep me (7 letters)" {
		t.Errorf("Drain() = %q, want the message from before the rejected write", buf.String())
	}
}

// failingWriter simulates a caller destination that cannot accept the copy.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("destination inaccessible")
}

func TestDrainFaultRetainsMessage(t *testing.T) {
	s := NewStore()

	if _, err := s.Write([]byte("precious")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	before := s.Len()

	n, err := s.Drain(failingWriter{})
	if !errors.Is(err, ErrCopyFault) {
		t.Fatalf("Drain() error = %v, want ErrCopyFault", err)
	}
	if n != 0 {
		t.Errorf("Drain() = %d, want 0 on fault", n)
	}
	if s.Len() != before {
		t.Errorf("Len() = %d after fault, want %d (message retained)", s.Len(), before)
	}

	// The retry succeeds and drains the original message.
	var buf bytes.Buffer
	if _, err := s.Drain(&buf); err != nil {
		t.Fatalf("retry Drain() error = %v", err)
	}
	if buf.String() != "precious (8 letters)" {
		t.Errorf("retry Drain() = %q, want %q", buf.String(), "precious (8 letters)")
	}
}

func TestConcurrentWriteDrain(t *testing.T) {
	s := NewStore()

	const writers = 8
	const iterations = 200

	// Every writer stores messages from a known set; every drained
	// result must be either empty or exactly one complete formatted
	// message. A torn read would surface as an unknown string.
	valid := make(map[string]bool)
	for i := 0; i < writers; i++ {
		valid[fmt.Sprintf("msg-%d (5 letters)", i)] = true
	}

	var wg sync.WaitGroup
	results := make(chan string, writers*iterations)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			msg := []byte(fmt.Sprintf("msg-%d", id))
			for j := 0; j < iterations; j++ {
				if _, err := s.Write(msg); err != nil {
					t.Errorf("Write() error = %v", err)
					return
				}
			}
		}(i)
	}

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				var buf bytes.Buffer
				if _, err := s.Drain(&buf); err != nil {
					t.Errorf("Drain() error = %v", err)
					return
				}
				results <- buf.String()
			}
		}()
	}

	wg.Wait()
	close(results)

	for got := range results {
		if got == "" {
			continue
		}
		if !valid[got] {
			t.Fatalf("Drain() observed torn message %q", got)
		}
	}
}
