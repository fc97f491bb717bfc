package checkers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/jonwraymond/healthops/descriptor"
	"github.com/jonwraymond/healthops/health"
)

// DefaultS3Region signs requests to S3-compatible stores that ignore region.
const DefaultS3Region = "us-east-1"

// S3 checks that a bucket exists and the credentials can reach it.
type S3 struct {
	name     string
	endpoint string
	opts     descriptor.S3Options
	client   *http.Client
}

// NewS3 creates an S3 checker. endpoint is the service URL of an
// S3-compatible store; path-style addressing is always used.
func NewS3(name, endpoint string, opts descriptor.S3Options, client *http.Client) *S3 {
	if client == nil {
		client = &http.Client{}
	}
	return &S3{name: name, endpoint: endpoint, opts: opts, client: client}
}

// Name returns the check name.
func (c *S3) Name() string {
	return c.name
}

// Check issues HeadBucket for the configured bucket.
func (c *S3) Check(ctx context.Context) health.Result {
	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(c.endpoint),
		Region:           aws.String(DefaultS3Region),
		Credentials:      credentials.NewStaticCredentials(c.opts.AccessKey, c.opts.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
		HTTPClient:       c.client,
		MaxRetries:       aws.Int(0),
	})
	if err != nil {
		return health.Unhealthy(fmt.Sprintf("create session: %v", err), err)
	}

	details := map[string]any{"bucket": c.opts.BucketName}
	_, err = s3.New(sess).HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.opts.BucketName),
	})
	if err != nil {
		return health.Unhealthy(fmt.Sprintf("bucket %s is not reachable: %v", c.opts.BucketName, err), err).
			WithDetails(details)
	}
	return health.Healthy(fmt.Sprintf("bucket %s is reachable", c.opts.BucketName)).WithDetails(details)
}
