// Package multipart drives S3 multipart uploads.
//
// A Session moves through Created, Active, Completed and Aborted:
//
//	sess := multipart.New(caller, "media", "backup.tar")
//	if err := sess.Initiate(ctx); err != nil {
//		return err
//	}
//	etag1, err := sess.UploadPart(ctx, 1, multipart.BytesSource(chunk1))
//	...
//	etag2, err := sess.UploadPart(ctx, 2, multipart.BytesSource(chunk2))
//	...
//	res, err := sess.Complete(ctx, []multipart.Part{
//		{PartNumber: 1, ETag: etag1},
//		{PartNumber: 2, ETag: etag2},
//	})
//
// UploadPart does not record parts: the caller keeps the ETags and hands
// the final list to Complete, which sends it in exactly that order. Complete
// validates the list before making any request.
//
// UploadPart calls on one session may run concurrently. Initiate, Complete
// and Abort must not overlap with each other. UploadParts splits a sized
// source into parts and uploads them on a bounded worker pool.
//
// Abort may be repeated, including after Complete; whatever the server
// answers is returned unchanged.
package multipart
