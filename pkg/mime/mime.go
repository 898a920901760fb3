package mime

import (
	"fmt"
	"io"
	stdmime "mime"
	"net/http"
	"path"
	"strings"
)

// OctetStream is the fallback content type.
const OctetStream = "application/octet-stream"

// sniffLen is how much http.DetectContentType looks at.
const sniffLen = 512

// extensionTypes maps lowercase extensions to content types. It takes
// precedence over the system table, whose contents vary by platform.
var extensionTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".ico":  "image/x-icon",
	".heic": "image/heic",
	".heif": "image/heif",
	".avif": "image/avif",
	// Documents
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".txt":  "text/plain; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".rtf":  "application/rtf",
	// Data
	".json": "application/json",
	".xml":  "application/xml",
	".js":   "text/javascript; charset=utf-8",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	// Video
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogv":  "video/ogg",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	// Audio
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".weba": "audio/webm",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	// Archives
	".zip": "application/zip",
	".gz":  "application/gzip",
	".tgz": "application/gzip",
	".tar": "application/x-tar",
	".7z":  "application/x-7z-compressed",
	".rar": "application/x-rar-compressed",
	".iso": "application/x-iso9660-image",
}

// TypeByExtension returns the content type for the extension of name, or
// "" when it is unknown.
func TypeByExtension(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ""
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return stdmime.TypeByExtension(ext)
}

// Detect sniffs the content type of r and seeks it back to its original
// offset. Empty input yields OctetStream.
func Detect(r io.ReadSeeker) (string, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", fmt.Errorf("mime: body position: %w", err)
	}
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("mime: read body: %w", err)
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return "", fmt.Errorf("mime: rewind body: %w", err)
	}
	if n == 0 {
		return OctetStream, nil
	}
	return http.DetectContentType(buf[:n]), nil
}

// Guess combines TypeByExtension and Detect. A nil reader skips sniffing.
func Guess(name string, r io.ReadSeeker) (string, error) {
	if t := TypeByExtension(name); t != "" {
		return t, nil
	}
	if r == nil {
		return OctetStream, nil
	}
	return Detect(r)
}

// Normalize strips parameters such as charset and lowercases the type.
func Normalize(contentType string) string {
	contentType, _, _ = strings.Cut(contentType, ";")
	return strings.TrimSpace(strings.ToLower(contentType))
}

// Matches reports whether contentType matches any pattern. Patterns may end
// in "/*" to match a whole family, e.g. "image/*".
func Matches(contentType string, patterns ...string) bool {
	contentType = Normalize(contentType)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(strings.ToLower(pattern))
		if contentType == pattern {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasSuffix(prefix, "/") && strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}
