package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/madmax/chardev-core/internal/chardev"
)

// maxWriteBody bounds the request body accepted by the write handler.
// The device buffer is far smaller; this only protects the server from
// unbounded reads before the device rejects the message.
const maxWriteBody = 64 << 10 // 64 KB

// handleHealth returns the daemon health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleOpen opens the device and returns the new open count.
func (s *Server) handleOpen(w http.ResponseWriter, _ *http.Request) {
	if err := s.device.Open(); err != nil {
		writeInternalError(w, "failed to open device")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"opens": s.device.GetStats().Opens})
}

// handleClose releases the device.
func (s *Server) handleClose(w http.ResponseWriter, _ *http.Request) {
	if err := s.device.Release(); err != nil {
		writeInternalError(w, "failed to close device")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWrite stores the request body in the device.
//
// The response echoes the accepted length, which by the device's write
// contract equals the input length rather than the stored formatted
// length. Messages whose formatted form exceeds the device buffer are
// rejected with 413.
func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWriteBody))
	if err != nil {
		writeBadRequest(w, "failed to read request body")
		return
	}

	n, err := s.device.Write(body)
	if errors.Is(err, chardev.ErrMessageTooLong) {
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, err.Error())
		return
	}
	if err != nil {
		writeInternalError(w, "failed to write to device")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"accepted": n})
}

// handleRead drains the stored message and returns it as the response
// body. An empty device yields 204 No Content; the message stays intact
// if the response cannot be started, but a failure mid-copy is reported
// by the device as a retained message (see chardev.Store.Drain).
func (s *Server) handleRead(w http.ResponseWriter, _ *http.Request) {
	// Drain into a staging buffer first so a client disconnect during
	// the response write cannot half-consume the message.
	var buf [chardev.Capacity]byte
	bw := &boundedWriter{buf: buf[:]}

	n, err := s.device.Read(bw)
	if err != nil {
		writeInternalError(w, "failed to read from device")
		return
	}
	if n == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write; the message is already drained
	w.Write(bw.buf[:n])
}

// handleStats returns device statistics and the registered identity.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":    s.device.GetStats(),
		"identity": s.device.Identity(),
	})
}

// boundedWriter copies into a fixed buffer, failing on overflow.
// It gives the device drain a destination that can never block.
type boundedWriter struct {
	buf []byte
	n   int
}

func (b *boundedWriter) Write(p []byte) (int, error) {
	if b.n+len(p) > len(b.buf) {
		return 0, io.ErrShortWrite
	}
	copy(b.buf[b.n:], p)
	b.n += len(p)
	return len(p), nil
}
