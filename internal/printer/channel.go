package printer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/viewtouch/posk/internal/poserr"
)

// MaxConsecutiveReadFailures is how many back-to-back read failures a
// Channel tolerates before declaring its peer dead (spec §4.5).
const MaxConsecutiveReadFailures = 8

// Channel is a framed binary connection to one remote-printer subprocess:
// each frame is a big-endian uint32 length prefix followed by a JSON-encoded
// Job.
type Channel struct {
	rw   io.ReadWriteCloser
	mu   sync.Mutex
	fails int
	dead bool
}

// NewChannel wraps an established connection to a printer subprocess.
func NewChannel(rw io.ReadWriteCloser) *Channel {
	return &Channel{rw: rw}
}

// Dead reports whether this channel has seen MaxConsecutiveReadFailures
// consecutive read failures and should be torn down and reconnected.
func (c *Channel) Dead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dead
}

// Send frames job and writes it to the peer.
func (c *Channel) Send(job *Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%w: encode print job: %v", poserr.ErrProtocol, err)
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.rw.Write(header[:]); err != nil {
		return fmt.Errorf("%w: write frame header: %v", poserr.ErrIO, err)
	}
	if _, err := c.rw.Write(payload); err != nil {
		return fmt.Errorf("%w: write frame body: %v", poserr.ErrIO, err)
	}
	return nil
}

// ReadAck blocks for the peer's next acknowledgement frame. Each failure
// increments the consecutive-failure counter; MaxConsecutiveReadFailures in
// a row marks the channel Dead and returns poserr.ErrIO.
func (c *Channel) ReadAck() (string, error) {
	var header [4]byte
	if _, err := io.ReadFull(c.rw, header[:]); err != nil {
		return "", c.recordFailure(err)
	}
	n := binary.BigEndian.Uint32(header[:])

	buf := make([]byte, n)
	if _, err := io.ReadFull(c.rw, buf); err != nil {
		return "", c.recordFailure(err)
	}

	c.mu.Lock()
	c.fails = 0
	c.mu.Unlock()

	var ack struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf), &ack); err != nil {
		return "", fmt.Errorf("%w: decode ack: %v", poserr.ErrProtocol, err)
	}
	return ack.Status, nil
}

func (c *Channel) recordFailure(cause error) error {
	c.mu.Lock()
	c.fails++
	if c.fails >= MaxConsecutiveReadFailures {
		c.dead = true
	}
	c.mu.Unlock()
	return fmt.Errorf("%w: read ack: %v", poserr.ErrIO, cause)
}

// Close closes the underlying connection.
func (c *Channel) Close() error { return c.rw.Close() }
