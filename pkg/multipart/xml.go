package multipart

import (
	"bytes"
	"strconv"
	"strings"
)

type initiateResult struct {
	UploadID *string `xml:"UploadId"`
}

// CompleteResult is the server's answer to a successful completion. Fields
// the server omitted are empty.
type CompleteResult struct {
	Location string `xml:"Location"`
	Bucket   string `xml:"Bucket"`
	Key      string `xml:"Key"`
	ETag     string `xml:"ETag"`
}

// textEscaper escapes element text. Quotes are legal there and are kept so
// ETags go out exactly as S3 returned them.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// completionBody renders the CompleteMultipartUpload document with parts in
// the given order.
func completionBody(parts []Part) []byte {
	var b bytes.Buffer
	b.WriteString("<CompleteMultipartUpload>")
	for _, p := range parts {
		b.WriteString("<Part><PartNumber>")
		b.WriteString(strconv.Itoa(p.PartNumber))
		b.WriteString("</PartNumber><ETag>")
		_, _ = textEscaper.WriteString(&b, p.ETag)
		b.WriteString("</ETag></Part>")
	}
	b.WriteString("</CompleteMultipartUpload>")
	return b.Bytes()
}
