package request_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/minis3/pkg/request"
)

func TestEndpoint_URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint request.Endpoint
		bucket   string
		key      string
		query    url.Values
		want     string
	}{
		{
			name:     "virtual hosted",
			endpoint: request.Endpoint{Host: "s3.amazonaws.com", TLS: true},
			bucket:   "photos",
			key:      "2024/cat.jpg",
			want:     "https://photos.s3.amazonaws.com/2024/cat.jpg",
		},
		{
			name:     "path style",
			endpoint: request.Endpoint{Host: "localhost:9000", PathStyle: true},
			bucket:   "photos",
			key:      "2024/cat.jpg",
			want:     "http://localhost:9000/photos/2024/cat.jpg",
		},
		{
			name:     "path style bucket only",
			endpoint: request.Endpoint{Host: "minio:9000", PathStyle: true},
			bucket:   "photos",
			want:     "http://minio:9000/photos/",
		},
		{
			name:     "virtual hosted bucket only",
			endpoint: request.Endpoint{Host: "s3.amazonaws.com", TLS: true},
			bucket:   "photos",
			want:     "https://photos.s3.amazonaws.com/",
		},
		{
			name:     "service root",
			endpoint: request.Endpoint{Host: "s3.amazonaws.com", TLS: true},
			want:     "https://s3.amazonaws.com/",
		},
		{
			name:     "scheme in host is stripped",
			endpoint: request.Endpoint{Host: "https://s3.example.com/", TLS: true},
			bucket:   "b",
			key:      "k",
			want:     "https://b.s3.example.com/k",
		},
		{
			name:     "key encoding",
			endpoint: request.Endpoint{Host: "s3.amazonaws.com", TLS: true},
			bucket:   "b",
			key:      "dir/a b+c~d.txt",
			want:     "https://b.s3.amazonaws.com/dir/a%20b%2Bc~d.txt",
		},
		{
			name:     "leading slash dropped",
			endpoint: request.Endpoint{Host: "s3.amazonaws.com", TLS: true},
			bucket:   "b",
			key:      "/k",
			want:     "https://b.s3.amazonaws.com/k",
		},
		{
			name:     "sorted query with bare key",
			endpoint: request.Endpoint{Host: "s3.amazonaws.com", TLS: true},
			bucket:   "b",
			key:      "big.iso",
			query:    url.Values{"uploadId": {"abc/def"}, "partNumber": {"3"}, "uploads": {""}},
			want:     "https://b.s3.amazonaws.com/big.iso?partNumber=3&uploadId=abc%2Fdef&uploads",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.endpoint.URL(tt.bucket, tt.key, tt.query))
		})
	}
}

func TestEncodeQuery(t *testing.T) {
	t.Parallel()

	assert.Empty(t, request.EncodeQuery(nil))
	assert.Equal(t, "prefix=a%20b%2Fc&uploads", request.EncodeQuery(url.Values{"uploads": nil, "prefix": {"a b/c"}}))
	assert.Equal(t, "k=2&k=1", request.EncodeQuery(url.Values{"k": {"2", "1"}}))
	assert.Equal(t, "marker=%C3%A9t%C3%A9", request.EncodeQuery(url.Values{"marker": {"été"}}))
}

func TestEndpoint_Scheme(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https", request.Endpoint{TLS: true}.Scheme())
	assert.Equal(t, "http", request.Endpoint{}.Scheme())
}
