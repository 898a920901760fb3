// Package listing pages through S3 list responses.
//
// Three listers are provided, each returning a *Pager:
//
//   - Objects: ListObjects (v1) over a bucket, yielding ObjectInfo.
//   - Uploads: ListMultipartUploads, yielding UploadInfo.
//   - Parts: ListParts of one multipart upload, yielding PartInfo.
//
// A Pager is lazy: it fetches a page only when the caller asks for a record
// and the previous page is used up. It is forward-only and cannot be
// restarted; create a new one to list again. Pagers are not safe for
// concurrent use.
//
//	p := listing.Objects(caller, "photos", listing.WithPrefix("2024/"))
//	for p.Next(ctx) {
//		obj := p.Value()
//		fmt.Println(obj.Key, obj.Size)
//	}
//	if err := p.Err(); err != nil {
//		return err
//	}
//
// Or with range-over-func:
//
//	for obj, err := range listing.Objects(caller, "photos").All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(obj.Key)
//	}
//
// # Malformed records
//
// By default a record with a missing required element, a non-numeric size
// or part number, or a bad timestamp is dropped and listing continues
// (DropMalformed). WithPolicy(FailOnMalformed) ends the sequence with an
// s3err.ErrProtocol error instead. Dropped records are logged at debug level
// through WithLogger.
//
// A page that is not well-formed XML ends the sequence with ErrProtocol; a
// failed page request ends it with the executor's error. A truncated page
// that does not move the cursor forward is treated as a protocol error
// rather than requested again forever.
package listing
