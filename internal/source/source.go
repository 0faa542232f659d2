// Package source exposes a whole measurements file as one read-only byte
// slice that stays valid until Close.
package source

import (
	"fmt"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	rmmap "github.com/go-mmap/mmap"
)

// Mode selects how the file contents are made available.
type Mode int

const (
	// ModeMap maps the file read-only. Bytes aliases the page cache.
	ModeMap Mode = iota
	// ModeRead copies the file into a heap buffer and releases the file.
	ModeRead
)

func (m Mode) String() string {
	switch m {
	case ModeMap:
		return "map"
	case ModeRead:
		return "read"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "map", "mmap":
		return ModeMap, nil
	case "read":
		return ModeRead, nil
	}
	return 0, fmt.Errorf("unknown source mode %q (want map or read)", s)
}

// Error records a failed file operation.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Source is an immutable view of a file. Slices handed out by Bytes must not
// be used after Close.
type Source struct {
	path string
	data []byte
	m    mmap.MMap
	f    *os.File
}

// Open makes the contents of path available according to mode.
func Open(path string, mode Mode) (*Source, error) {
	switch mode {
	case ModeMap:
		return openMap(path)
	case ModeRead:
		return openRead(path)
	}
	return nil, &Error{Op: "open", Path: path, Err: fmt.Errorf("unsupported mode %v", mode)}
}

func openMap(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Op: "open", Path: path, Err: err}
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &Error{Op: "stat", Path: path, Err: err}
	}
	if fi.IsDir() {
		f.Close()
		return nil, &Error{Op: "open", Path: path, Err: fmt.Errorf("is a directory")}
	}
	size := fi.Size()
	if size != int64(int(size)) {
		f.Close()
		return nil, &Error{Op: "mmap", Path: path, Err: fmt.Errorf("file too large: %d bytes", size)}
	}
	// zero-length mappings are rejected by the kernel
	if size == 0 {
		f.Close()
		return &Source{path: path, data: []byte{}}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, &Error{Op: "mmap", Path: path, Err: err}
	}
	adviseSequential(m)
	return &Source{path: path, data: m, m: m, f: f}, nil
}

func openRead(path string) (*Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &Error{Op: "stat", Path: path, Err: err}
	}
	if fi.IsDir() {
		return nil, &Error{Op: "open", Path: path, Err: fmt.Errorf("is a directory")}
	}
	if fi.Size() == 0 {
		return &Source{path: path, data: []byte{}}, nil
	}

	r, err := rmmap.Open(path)
	if err != nil {
		return nil, &Error{Op: "open", Path: path, Err: err}
	}
	defer r.Close()

	buf := make([]byte, r.Len())
	n, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, &Error{Op: "read", Path: path, Err: err}
	}
	if n != len(buf) {
		return nil, &Error{Op: "read", Path: path, Err: io.ErrUnexpectedEOF}
	}
	return &Source{path: path, data: buf}, nil
}

// Path returns the name the source was opened with.
func (s *Source) Path() string { return s.path }

// Bytes returns the file contents. The caller must not modify them.
func (s *Source) Bytes() []byte { return s.data }

// Len returns the file length in bytes.
func (s *Source) Len() int { return len(s.data) }

// Close releases the mapping and the file, if any. It is safe to call more
// than once.
func (s *Source) Close() error {
	var err error
	if s.m != nil {
		if uerr := s.m.Unmap(); uerr != nil {
			err = &Error{Op: "munmap", Path: s.path, Err: uerr}
		}
		s.m = nil
	}
	if s.f != nil {
		if cerr := s.f.Close(); cerr != nil && err == nil {
			err = &Error{Op: "close", Path: s.path, Err: cerr}
		}
		s.f = nil
	}
	s.data = nil
	return err
}
