package descriptor

import (
	"strings"
	"time"
)

// Item is one raw health check setting as read from configuration.
type Item struct {
	// Type is the kind name, matched case-insensitively.
	Type string

	Name string

	// Endpoint is the URL or connection string, depending on the kind.
	Endpoint string

	// AllowedFailureThreshold is the Hangfire failed job threshold.
	AllowedFailureThreshold *int

	CdnBucketName string
	CdnAccessKey  string
	CdnSecretKey  string

	// PingTimeoutMilliSecond is the Network ping timeout.
	PingTimeoutMilliSecond *int

	UserName string
	Password string

	// Tags overrides the kind's default tags when non-empty.
	Tags []string
}

// Rejection records why an item was left out of a Set.
type Rejection struct {
	// Index is the position of the item in the input list.
	Index  int
	Kind   Kind
	Name   string
	Reason error
}

// Set is the kind-partitioned collection of accepted descriptors. A Set is
// read-only once Build returns it and is safe for concurrent use.
type Set struct {
	appName string
	all     []Descriptor
	byKind  map[Kind][]Descriptor
}

// ApplicationName returns the name of the application owning the checks.
func (s *Set) ApplicationName() string {
	if s == nil {
		return ""
	}
	return s.appName
}

// Of returns a copy of the descriptors of the given kind in configuration order.
func (s *Set) Of(kind Kind) []Descriptor {
	if s == nil {
		return nil
	}
	return cloneAll(s.byKind[kind])
}

// All returns a copy of every descriptor in configuration order.
func (s *Set) All() []Descriptor {
	if s == nil {
		return nil
	}
	return cloneAll(s.all)
}

// Len returns the number of accepted descriptors.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.all)
}

// Count returns the number of accepted descriptors of the given kind.
func (s *Set) Count(kind Kind) int {
	if s == nil {
		return 0
	}
	return len(s.byKind[kind])
}

func cloneAll(in []Descriptor) []Descriptor {
	if len(in) == 0 {
		return nil
	}
	out := make([]Descriptor, len(in))
	for i, d := range in {
		out[i] = d.clone()
	}
	return out
}

// Build converts items into a Set. Items are processed in order; an item is
// rejected when its kind is unknown, its name or primary value is blank, its
// name duplicates an earlier accepted item (ignoring case) or, for S3, any
// credential is missing. Rejections are returned in input order and never
// stop the build.
func Build(appName string, items []Item) (*Set, []Rejection) {
	set := &Set{
		appName: appName,
		byKind:  make(map[Kind][]Descriptor),
	}
	names := make(map[string]struct{}, len(items))

	var rejected []Rejection
	for i, item := range items {
		kind := ParseKind(item.Type)
		d, err := fromItem(kind, item, names)
		if err != nil {
			rejected = append(rejected, Rejection{
				Index:  i,
				Kind:   kind,
				Name:   item.Name,
				Reason: err,
			})
			continue
		}

		names[nameKey(item.Name)] = struct{}{}
		set.all = append(set.all, d)
		set.byKind[kind] = append(set.byKind[kind], d)
	}

	return set, rejected
}

func fromItem(kind Kind, item Item, names map[string]struct{}) (Descriptor, error) {
	if kind == KindNone {
		return Descriptor{}, ErrUnknownKind
	}
	if isBlank(item.Name) {
		return Descriptor{}, ErrMissingName
	}
	if isBlank(item.Endpoint) {
		return Descriptor{}, ErrMissingValue
	}
	if _, dup := names[nameKey(item.Name)]; dup {
		return Descriptor{}, ErrDuplicateName
	}

	switch {
	case kind.UsesConnectionString():
		return NewConnection(kind, item.Name, item.Endpoint, item.UserName, item.Password, item.Tags...)
	case kind == KindS3:
		return NewS3(item.Name, item.Endpoint, S3Options{
			BucketName: item.CdnBucketName,
			AccessKey:  item.CdnAccessKey,
			SecretKey:  item.CdnSecretKey,
		}, item.Tags...)
	default:
		maxFailed := DefaultMaxFailedJobs
		if item.AllowedFailureThreshold != nil {
			maxFailed = *item.AllowedFailureThreshold
		}
		pingTimeout := DefaultPingTimeout
		if item.PingTimeoutMilliSecond != nil {
			pingTimeout = time.Duration(*item.PingTimeoutMilliSecond) * time.Millisecond
		}
		return NewEndpoint(kind, item.Name, item.Endpoint, maxFailed, pingTimeout, item.Tags...)
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
