package descriptor

import "strings"

// Kind identifies the type of a monitored dependency.
type Kind uint8

const (
	// KindNone is the sentinel for unrecognized item types. Items of this kind
	// are always skipped.
	KindNone Kind = iota
	KindSQL
	KindRedis
	KindMongoDB
	KindRabbitMQ
	KindHangfire
	KindExternalAPI
	KindS3
	KindSignalR
	KindElasticSearch
	KindNetwork
	KindGRPC
	KindSSL
)

var kindNames = [...]string{
	KindNone:          "None",
	KindSQL:           "Sql",
	KindRedis:         "Redis",
	KindMongoDB:       "MongoDb",
	KindRabbitMQ:      "RabbitMq",
	KindHangfire:      "Hangfire",
	KindExternalAPI:   "ExternalApi",
	KindS3:            "S3",
	KindSignalR:       "SignalR",
	KindElasticSearch: "ElasticSearch",
	KindNetwork:       "Network",
	KindGRPC:          "Grpc",
	KindSSL:           "SSL",
}

// Kinds lists every recognized kind in declaration order.
var Kinds = []Kind{
	KindSQL, KindRedis, KindMongoDB, KindRabbitMQ, KindHangfire, KindExternalAPI,
	KindS3, KindSignalR, KindElasticSearch, KindNetwork, KindGRPC, KindSSL,
}

// String returns the configuration spelling of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindNone]
}

// ParseKind parses a configuration type string, ignoring case and surrounding
// whitespace. Unrecognized values map to KindNone.
func ParseKind(s string) Kind {
	s = strings.TrimSpace(s)
	if s == "" {
		return KindNone
	}
	for _, k := range Kinds {
		if strings.EqualFold(kindNames[k], s) {
			return k
		}
	}
	return KindNone
}

// UsesConnectionString reports whether the kind is configured with a
// connection string rather than a URL.
func (k Kind) UsesConnectionString() bool {
	switch k {
	case KindSQL, KindRedis, KindMongoDB, KindElasticSearch:
		return true
	default:
		return false
	}
}
