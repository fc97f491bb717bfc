package descriptor

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultMaxFailedJobs is the Hangfire failed job threshold applied when an
	// item does not configure one.
	DefaultMaxFailedJobs = 50

	// DefaultPingTimeout is the Network ping timeout applied when an item does
	// not configure one.
	DefaultPingTimeout = 5000 * time.Millisecond
)

// Descriptor is the validated, immutable record of one monitored dependency.
//
// Which of the kind-specific fields are meaningful depends on Kind:
//   - SQL, Redis, MongoDB, ElasticSearch: ConnectionString, UserName, Password
//   - RabbitMQ, Hangfire, ExternalAPI, SignalR, Network, GRPC, SSL: URL
//   - Hangfire also sets MaxFailedJobs, Network also sets PingTimeout
//   - S3: URL plus S3
type Descriptor struct {
	Kind Kind

	// Name is the display name, upper-cased.
	Name string

	// ServiceName is the name exactly as configured, trimmed. The gRPC probe
	// sends it as the health service name.
	ServiceName string

	// Tags is an ordered set of lower-case tags.
	Tags []string

	ConnectionString string
	UserName         string
	Password         string

	URL           string
	MaxFailedJobs int
	PingTimeout   time.Duration

	S3 *S3Options
}

// S3Options carries the bucket and credentials of an S3-compatible store.
type S3Options struct {
	BucketName string
	AccessKey  string
	SecretKey  string
}

// Value returns the primary value of the descriptor: the connection string for
// connection-string kinds and the URL otherwise.
func (d Descriptor) Value() string {
	if d.Kind.UsesConnectionString() {
		return d.ConnectionString
	}
	return d.URL
}

// String implements fmt.Stringer without exposing credentials.
func (d Descriptor) String() string {
	return fmt.Sprintf("{%s %s tags=%v}", d.Kind, d.Name, d.Tags)
}

func (d Descriptor) clone() Descriptor {
	d.Tags = append([]string(nil), d.Tags...)
	if d.S3 != nil {
		s3 := *d.S3
		d.S3 = &s3
	}
	return d
}

// NewConnection creates a descriptor for a connection-string kind.
func NewConnection(kind Kind, name, connectionString, userName, password string, tags ...string) (Descriptor, error) {
	if !kind.UsesConnectionString() {
		return Descriptor{}, fmt.Errorf("%w: %s is not a connection string kind", ErrUnknownKind, kind)
	}
	d, err := newBase(kind, name, connectionString, tags)
	if err != nil {
		return Descriptor{}, err
	}
	d.ConnectionString = strings.TrimSpace(connectionString)
	d.UserName = userName
	d.Password = password
	return d, nil
}

// NewEndpoint creates a descriptor for a URL-based kind. The URL is normalized
// for RabbitMQ and SSL. maxFailedJobs and pingTimeout are stored as given;
// Build applies the kind defaults when an item leaves them unset.
func NewEndpoint(kind Kind, name, url string, maxFailedJobs int, pingTimeout time.Duration, tags ...string) (Descriptor, error) {
	if kind == KindNone || kind == KindS3 || kind.UsesConnectionString() {
		return Descriptor{}, fmt.Errorf("%w: %s is not a url kind", ErrUnknownKind, kind)
	}
	d, err := newBase(kind, name, url, tags)
	if err != nil {
		return Descriptor{}, err
	}

	url = strings.TrimSpace(url)
	switch kind {
	case KindRabbitMQ:
		url = NormalizeRabbitMQURL(url)
	case KindSSL:
		url = NormalizeSSLHost(url)
	case KindHangfire:
		d.MaxFailedJobs = maxFailedJobs
	case KindNetwork:
		d.PingTimeout = pingTimeout
	}
	d.URL = url
	return d, nil
}

// NewS3 creates a descriptor for an S3-compatible store. Bucket name, access
// key and secret key are all required.
func NewS3(name, url string, opts S3Options, tags ...string) (Descriptor, error) {
	d, err := newBase(KindS3, name, url, tags)
	if err != nil {
		return Descriptor{}, err
	}
	switch {
	case isBlank(opts.BucketName):
		return Descriptor{}, ErrMissingBucket
	case isBlank(opts.AccessKey):
		return Descriptor{}, ErrMissingAccessKey
	case isBlank(opts.SecretKey):
		return Descriptor{}, ErrMissingSecretKey
	}
	d.URL = strings.TrimSpace(url)
	d.S3 = &opts
	return d, nil
}

func newBase(kind Kind, name, value string, tags []string) (Descriptor, error) {
	if isBlank(name) {
		return Descriptor{}, ErrMissingName
	}
	if isBlank(value) {
		return Descriptor{}, ErrMissingValue
	}
	name = strings.TrimSpace(name)
	if len(tags) == 0 {
		tags = DefaultTags(kind, name)
	}
	return Descriptor{
		Kind:        kind,
		Name:        strings.ToUpper(name),
		ServiceName: name,
		Tags:        normalizeTags(tags, name),
	}, nil
}

// DefaultTags returns the tag set a kind carries when the item configures none.
func DefaultTags(kind Kind, name string) []string {
	switch kind {
	case KindSQL:
		return []string{"db", "sql"}
	case KindRedis:
		return []string{"db", "cache", "redis"}
	case KindMongoDB:
		return []string{"db", "mongo-db"}
	case KindRabbitMQ:
		return []string{"message-broker", "rabbit-mq"}
	case KindHangfire:
		return []string{"jobs", "background-job"}
	case KindS3:
		return []string{"storage", "s3", "cdn"}
	case KindSignalR:
		return []string{"realtime", "signalr"}
	case KindElasticSearch:
		return []string{"db", "elasticsearch"}
	case KindNetwork:
		return []string{"network", "connectivity"}
	case KindSSL:
		return []string{"ssl"}
	case KindGRPC:
		return []string{name, "grpc", "service"}
	case KindExternalAPI:
		return []string{name, "api"}
	default:
		return nil
	}
}

// normalizeTags lower-cases tags and drops blanks and repeats, keeping the
// first occurrence. An empty result falls back to the lower-cased name.
func normalizeTags(tags []string, name string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		out = append(out, strings.ToLower(name))
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
