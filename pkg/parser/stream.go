package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stream is the byte source a Parser reads from. The parser borrows it and
// never closes it. Implementations are used from one goroutine only.
type Stream interface {
	// ReadLine returns the next line without its trailing newline.
	ReadLine() (string, error)

	// Available reports whether at least one more byte can be read.
	Available() bool

	// Position returns the absolute byte offset of the next read.
	Position() int64

	// SeekTo moves the read position to an absolute byte offset.
	SeekTo(offset int64) error
}

// ReaderStream adapts an io.ReadSeeker (an *os.File, a *bytes.Reader, ...)
// to the Stream interface.
type ReaderStream struct {
	rs  io.ReadSeeker
	br  *bufio.Reader
	pos int64
}

// NewReaderStream creates a Stream reading from rs starting at its current offset.
func NewReaderStream(rs io.ReadSeeker) *ReaderStream {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		pos = 0
	}
	return &ReaderStream{
		rs:  rs,
		br:  bufio.NewReader(rs),
		pos: pos,
	}
}

// NewStringStream creates a Stream over an in-memory script.
func NewStringStream(s string) *ReaderStream {
	return NewReaderStream(strings.NewReader(s))
}

// ReadLine returns the next line. A trailing "\r" is dropped along with the
// newline. The final line of a stream need not end in a newline.
func (s *ReaderStream) ReadLine() (string, error) {
	line, err := s.br.ReadString('\n')
	s.pos += int64(len(line))
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading line at offset %d: %w", s.pos, err)
		}
		if line == "" {
			return "", io.EOF
		}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// Available reports whether more data can be read.
func (s *ReaderStream) Available() bool {
	_, err := s.br.Peek(1)
	return err == nil
}

// Position returns the offset of the next unread byte.
func (s *ReaderStream) Position() int64 {
	return s.pos
}

// SeekTo repositions the stream and drops any buffered data.
func (s *ReaderStream) SeekTo(offset int64) error {
	if offset < 0 {
		return fmt.Errorf("negative offset %d", offset)
	}
	if _, err := s.rs.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to offset %d: %w", offset, err)
	}
	s.br.Reset(s.rs)
	s.pos = offset
	return nil
}

// FileStream is a ReaderStream over a script file it owns.
type FileStream struct {
	*ReaderStream
	file *os.File
}

// OpenFile opens a script file for reading.
func OpenFile(path string) (*FileStream, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening script %s: %w", path, err)
	}
	return &FileStream{ReaderStream: NewReaderStream(f), file: f}, nil
}

// Close closes the file.
func (s *FileStream) Close() error {
	return s.file.Close()
}
