package multipart

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// PartSource is the body of one part. Size reports the number of bytes the
// source holds from its start. Close may be a no-op.
type PartSource interface {
	io.Reader
	io.Seeker
	io.Closer
	Size() int64
}

type bytesSource struct {
	*bytes.Reader
}

func (bytesSource) Close() error { return nil }

// BytesSource wraps an in-memory part.
func BytesSource(b []byte) PartSource {
	return bytesSource{bytes.NewReader(b)}
}

type sectionSource struct {
	*io.SectionReader
}

func (sectionSource) Close() error { return nil }

// SectionSource exposes n bytes of r starting at off. Sections of one
// io.ReaderAt may be uploaded concurrently.
func SectionSource(r io.ReaderAt, off, n int64) PartSource {
	return sectionSource{io.NewSectionReader(r, off, n)}
}

type fileSource struct {
	*os.File
	size int64
}

func (f fileSource) Size() int64 { return f.size }

// FileSource uses an open file as a part. Closing the source closes the
// file.
func FileSource(f *os.File) (PartSource, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("multipart: stat %s: %w", f.Name(), err)
	}
	return fileSource{File: f, size: fi.Size()}, nil
}

// OpenFile opens path as a part source. Use WithClose when uploading it.
func OpenFile(path string) (PartSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("multipart: %w", err)
	}
	src, err := FileSource(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return src, nil
}
