package minis3

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/minio-go/v7/pkg/s3utils"

	"github.com/dmitrymomot/minis3/pkg/health"
	"github.com/dmitrymomot/minis3/pkg/request"
	"github.com/dmitrymomot/minis3/pkg/s3err"
	"github.com/dmitrymomot/minis3/pkg/signer"
)

type createBucketConfiguration struct {
	XMLName            xml.Name                       `xml:"http://s3.amazonaws.com/doc/2006-03-01/ CreateBucketConfiguration"`
	LocationConstraint types.BucketLocationConstraint `xml:"LocationConstraint"`
}

// CreateBucket creates a bucket in the client's region. Outside us-east-1
// the region is sent as location constraint. WithPublic creates a publicly
// readable bucket.
func (c *Client) CreateBucket(ctx context.Context, name string, opts ...CallOption) error {
	if err := validBucketName(name); err != nil {
		return err
	}
	o := newCallOptions(opts)

	header := o.objectHeader("", false)
	op := request.Operation{
		Method: http.MethodPut,
		Bucket: name,
		Header: header,
	}
	if region := c.Region(); region != signer.DefaultRegion {
		body, err := xml.Marshal(createBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		})
		if err != nil {
			return fmt.Errorf("minis3: encode bucket configuration: %w", err)
		}
		header.Set("Content-Type", "application/xml")
		op.Body = bytes.NewReader(body)
	}

	_, err := c.caller.Do(ctx, op)
	return err
}

// DeleteBucket removes an empty bucket.
func (c *Client) DeleteBucket(ctx context.Context, name string) error {
	if err := validBucketName(name); err != nil {
		return err
	}
	_, err := c.caller.Do(ctx, request.Operation{
		Method: http.MethodDelete,
		Bucket: name,
	})
	return err
}

// HeadBucket checks that a bucket exists and is accessible. An empty name
// means the default bucket.
func (c *Client) HeadBucket(ctx context.Context, name string) error {
	if name == "" {
		var err error
		if name, err = c.bucket(&callOptions{}); err != nil {
			return err
		}
	}
	_, err := c.caller.Do(ctx, request.Operation{
		Method: http.MethodHead,
		Bucket: name,
	})
	return err
}

// BucketExists is HeadBucket that reports a missing bucket as false.
func (c *Client) BucketExists(ctx context.Context, name string) (bool, error) {
	err := c.HeadBucket(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case s3err.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Healthcheck returns a probe for health.Run that heads the bucket selected
// by opts (the default bucket unless InBucket is given).
func (c *Client) Healthcheck(opts ...CallOption) health.CheckFunc {
	o := newCallOptions(opts)
	return func(ctx context.Context) error {
		name, err := c.bucket(o)
		if err != nil {
			return err
		}
		return c.HeadBucket(ctx, name)
	}
}

func validBucketName(name string) error {
	if err := s3utils.CheckValidBucketNameStrict(name); err != nil {
		return s3err.Invalid("bucket", s3err.CodeInvalidName, "%q: %v", name, err)
	}
	return nil
}
