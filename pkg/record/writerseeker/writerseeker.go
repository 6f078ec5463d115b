// Package writerseeker provides an in-memory stand-in for the recording
// output file.
package writerseeker

import (
	"bytes"
	"errors"
	"io"
)

// WriterSeeker is an in-memory io.WriteSeeker with a Close method,
// mirroring the seek and write semantics of an *os.File opened for
// writing. Used to test backpatching without touching the filesystem.
type WriterSeeker struct {
	buf    bytes.Buffer
	pos    int
	closed bool
}

// ErrClosed write or seek after Close.
var ErrClosed = errors.New("file is closed")

// ErrNegativeResultPos negative result pos.
var ErrNegativeResultPos = errors.New("negative result pos")

// Write writes at the current position, growing the buffer with zero
// bytes if the position is past the end.
func (ws *WriterSeeker) Write(p []byte) (n int, err error) {
	if ws.closed {
		return 0, ErrClosed
	}

	if extra := ws.pos - ws.buf.Len(); extra > 0 {
		if _, err := ws.buf.Write(make([]byte, extra)); err != nil {
			return n, err
		}
	}

	// Overwrite as much as possible before appending.
	if ws.pos < ws.buf.Len() {
		n = copy(ws.buf.Bytes()[ws.pos:], p)
		p = p[n:]
	}

	if len(p) > 0 {
		var bn int
		bn, err = ws.buf.Write(p)
		n += bn
	}

	ws.pos += n
	return n, err
}

// Seek moves the write position.
func (ws *WriterSeeker) Seek(offset int64, whence int) (int64, error) {
	if ws.closed {
		return 0, ErrClosed
	}

	newPos, offs := 0, int(offset)
	switch whence {
	case io.SeekStart:
		newPos = offs
	case io.SeekCurrent:
		newPos = ws.pos + offs
	case io.SeekEnd:
		newPos = ws.buf.Len() + offs
	}
	if newPos < 0 {
		return 0, ErrNegativeResultPos
	}
	ws.pos = newPos
	return int64(newPos), nil
}

// Close marks the file closed. Further writes and seeks fail.
func (ws *WriterSeeker) Close() error {
	ws.closed = true
	return nil
}

// Bytes returns the written content.
func (ws *WriterSeeker) Bytes() []byte {
	return ws.buf.Bytes()
}

// BytesReader returns a *bytes.Reader over the written content.
func (ws *WriterSeeker) BytesReader() *bytes.Reader {
	return bytes.NewReader(ws.buf.Bytes())
}
