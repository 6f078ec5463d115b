package rslformat

import (
	"errors"
	"fmt"
	"io"
)

// ErrInvalidChunkSize chunk header declares a negative payload size.
var ErrInvalidChunkSize = errors.New("invalid chunk size")

// Reader reads a recording in the RSL container format.
type Reader struct {
	in io.ReadSeeker
}

// Chunk a parsed (chunkHeader, payload) pair.
type Chunk struct {
	Header  ChunkHeader
	Payload []byte
}

// NewReader creates a new Reader and reads the file header.
func NewReader(in io.ReadSeeker) (*Reader, *FileHeader, error) {
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("seek start: %w", err)
	}

	buf := make([]byte, FileHeaderSize)
	if _, err := io.ReadFull(in, buf); err != nil {
		return nil, nil, fmt.Errorf("read file header: %w", err)
	}

	var header FileHeader
	if err := header.Unmarshal(buf); err != nil {
		return nil, nil, err
	}

	return &Reader{in: in}, &header, nil
}

// ReadChunk reads the next chunk. Returns io.EOF at end of file.
func (r *Reader) ReadChunk() (*Chunk, error) {
	buf := make([]byte, ChunkHeaderSize)
	if _, err := io.ReadFull(r.in, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read chunk header: %w", err)
	}

	var chunk Chunk
	chunk.Header.Unmarshal(buf)

	if chunk.Header.Size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, chunk.Header.Size)
	}
	chunk.Payload = make([]byte, chunk.Header.Size)
	if _, err := io.ReadFull(r.in, chunk.Payload); err != nil {
		return nil, fmt.Errorf("read chunk payload: %w", err)
	}
	return &chunk, nil
}

// ReadAllChunks reads every remaining chunk in file order.
func (r *Reader) ReadAllChunks() ([]*Chunk, error) {
	var chunks []*Chunk
	for {
		chunk, err := r.ReadChunk()
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
}

// StreamInfos parses a streamInfo chunk payload into its records.
func StreamInfos(payload []byte) ([]StreamInfo, error) {
	if len(payload)%StreamInfoSize != 0 {
		return nil, fmt.Errorf("stream info chunk size %d not a multiple of %d",
			len(payload), StreamInfoSize)
	}
	infos := make([]StreamInfo, len(payload)/StreamInfoSize)
	for i := range infos {
		infos[i].Unmarshal(payload[i*StreamInfoSize : (i+1)*StreamInfoSize])
	}
	return infos, nil
}
