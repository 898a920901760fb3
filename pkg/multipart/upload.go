package multipart

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrymomot/minis3/pkg/pool"
	"github.com/dmitrymomot/minis3/pkg/s3err"
)

// MinPartSize is the smallest size S3 accepts for all but the last part.
const MinPartSize = 5 << 20

// PartCount returns how many parts of partSize cover size bytes. An empty
// source still needs one (empty) part.
func PartCount(size, partSize int64) int {
	if size <= 0 {
		return 1
	}
	return int((size + partSize - 1) / partSize)
}

// UploadParts uploads size bytes of src in parts of partSize, running up to
// workers uploads at a time. It returns the parts that succeeded ordered by
// part number, and the joined per-part errors. A failed part does not stop
// the others.
func UploadParts(ctx context.Context, sess *Session, src io.ReaderAt, size, partSize int64, workers int) ([]Part, error) {
	if src == nil {
		return nil, s3err.Invalid("source", s3err.CodeRequired, "source is required")
	}
	if size < 0 {
		return nil, s3err.Invalid("size", s3err.CodeOutOfRange, "size %d is negative", size)
	}
	if partSize <= 0 {
		return nil, s3err.Invalid("partSize", s3err.CodeOutOfRange, "part size %d must be positive", partSize)
	}
	count := PartCount(size, partSize)
	if count > MaxPartNumber {
		return nil, s3err.Invalid("partSize", s3err.CodeOutOfRange,
			"%d bytes in parts of %d need %d parts, more than %d", size, partSize, count, MaxPartNumber)
	}
	if _, err := sess.activeID("upload parts"); err != nil {
		return nil, err
	}

	parts := make([]Part, count)
	p := pool.New(ctx, workers)
	for i := range count {
		n := i + 1
		off := int64(i) * partSize
		length := min(partSize, size-off)
		if length < 0 {
			length = 0
		}
		p.Go(fmt.Sprintf("part %d", n), func(ctx context.Context) error {
			etag, err := sess.UploadPart(ctx, n, SectionSource(src, off, length))
			if err != nil {
				return err
			}
			parts[i] = Part{PartNumber: n, ETag: etag, Size: length}
			return nil
		})
	}
	err := pool.Errors(p.Wait())

	done := make([]Part, 0, count)
	for _, part := range parts {
		if part.PartNumber != 0 {
			done = append(done, part)
		}
	}
	return done, err
}
