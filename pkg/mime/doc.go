// Package mime guesses the Content-Type of uploaded objects.
//
// Guess looks at the object key's extension first and falls back to
// sniffing the first 512 bytes of the body with http.DetectContentType.
// Readers are always rewound to where they were, so the same body can be
// uploaded afterwards.
package mime
