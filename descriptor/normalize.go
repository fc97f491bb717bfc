package descriptor

import "strings"

const (
	amqpScheme     = "amqp://"
	rabbitmqScheme = "rabbitmq://"
)

// NormalizeRabbitMQURL rewrites a RabbitMQ address to the amqp:// scheme.
// URLs already using amqp:// are returned unchanged, rabbitmq:// is replaced
// and a bare host gets the scheme prepended.
func NormalizeRabbitMQURL(url string) string {
	switch {
	case hasPrefixFold(url, amqpScheme):
		return url
	case hasPrefixFold(url, rabbitmqScheme):
		return amqpScheme + url[len(rabbitmqScheme):]
	default:
		return amqpScheme + url
	}
}

// NormalizeSSLHost reduces a URL to the host the TLS probe dials by removing
// the http:// or https:// scheme and any trailing slashes.
func NormalizeSSLHost(url string) string {
	for _, scheme := range []string{"https://", "http://"} {
		if hasPrefixFold(url, scheme) {
			url = url[len(scheme):]
			break
		}
	}
	return strings.TrimRight(url, "/")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
