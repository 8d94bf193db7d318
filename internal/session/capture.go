package session

import (
	"bytes"
	"io"
	"sync"
)

// capture buffers what one engine call writes to standard output. After
// release every further write fails, so an engine that keeps the writer
// cannot leak text into a later evaluation.
type capture struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	released bool
}

func (c *capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return 0, io.ErrClosedPipe
	}
	return c.buf.Write(p)
}

// release ends the capture and returns everything written so far.
func (c *capture) release() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return ""
	}
	c.released = true
	out := c.buf.String()
	c.buf.Reset()
	return out
}
