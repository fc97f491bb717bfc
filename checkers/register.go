package checkers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonwraymond/healthops/descriptor"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/probe"
)

// Options carries the shared dependencies of the checkers built by New and
// Register. Zero values are replaced with defaults.
type Options struct {
	// HTTPClient is used by every HTTP-based checker.
	HTTPClient *http.Client

	// Logger receives probe attempt failures and skipped descriptors.
	Logger observe.Logger

	// Middleware instruments each registered checker. Nil registers the
	// checkers unwrapped.
	Middleware *observe.Middleware
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Logger == nil {
		o.Logger = observe.NopLogger()
	}
	return o
}

// New builds the checker for one descriptor.
func New(d descriptor.Descriptor, opts Options) (health.Checker, error) {
	opts = opts.withDefaults()

	switch d.Kind {
	case descriptor.KindSQL:
		return NewSQL(d.Name, d.ConnectionString, d.UserName, d.Password), nil
	case descriptor.KindRedis:
		return NewRedis(d.Name, d.ConnectionString, d.UserName, d.Password), nil
	case descriptor.KindMongoDB:
		return NewMongoDB(d.Name, d.ConnectionString), nil
	case descriptor.KindElasticSearch:
		return NewElasticsearch(d.Name, d.ConnectionString, d.UserName, d.Password, opts.HTTPClient), nil
	case descriptor.KindRabbitMQ:
		return NewRabbitMQ(d.Name, d.URL), nil
	case descriptor.KindHangfire:
		return NewHangfire(d.Name, d.URL, d.MaxFailedJobs, opts.HTTPClient), nil
	case descriptor.KindS3:
		if d.S3 == nil {
			return nil, fmt.Errorf("%w: %s without bucket options", ErrUnsupportedKind, d.Kind)
		}
		return NewS3(d.Name, d.URL, *d.S3, opts.HTTPClient), nil
	case descriptor.KindSignalR:
		return NewSignalR(d.Name, d.URL, opts.HTTPClient), nil
	case descriptor.KindNetwork:
		return NewNetwork(d.Name, d.URL, d.PingTimeout), nil
	case descriptor.KindExternalAPI:
		return probe.NewHTTPFallback(d.Name, d.URL,
			probe.WithHTTPClient(opts.HTTPClient),
			probe.WithLogger(opts.Logger),
		), nil
	case descriptor.KindGRPC:
		return probe.NewGRPC(d.Name, d.URL, d.ServiceName), nil
	case descriptor.KindSSL:
		return probe.NewTLSCert(d.Name, d.URL), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, d.Kind)
	}
}

// Register adds a checker for every descriptor in set, in configuration
// order, and returns how many were registered. Descriptors without a checker
// are logged and skipped.
func Register(agg *health.Aggregator, set *descriptor.Set, opts Options) int {
	if agg == nil || set == nil {
		return 0
	}
	opts = opts.withDefaults()

	registered := 0
	for _, d := range set.All() {
		checker, err := New(d, opts)
		if err != nil {
			opts.Logger.Warn(context.Background(), "health check skipped",
				observe.F("check.name", d.Name), observe.F("check.kind", d.Kind.String()), observe.F("error", err))
			continue
		}
		if opts.Middleware != nil {
			checker = opts.Middleware.Wrap(checker, observe.CheckMeta{
				Name: d.Name,
				Kind: d.Kind.String(),
				Tags: d.Tags,
			})
		}
		agg.Register(d.Name, checker, d.Tags...)
		registered++
	}
	return registered
}
