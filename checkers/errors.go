package checkers

import "errors"

var (
	// ErrUnsupportedKind indicates a descriptor kind with no checker.
	ErrUnsupportedKind = errors.New("checkers: unsupported kind")

	// ErrUnexpectedStatus indicates an HTTP response outside 2xx.
	ErrUnexpectedStatus = errors.New("checkers: unexpected status")

	// ErrThresholdExceeded indicates a counted value reached its limit.
	ErrThresholdExceeded = errors.New("checkers: threshold exceeded")

	// ErrClusterRed indicates an Elasticsearch cluster in red state.
	ErrClusterRed = errors.New("checkers: cluster status red")

	// ErrHandshakeRejected indicates a SignalR hub refused the handshake.
	ErrHandshakeRejected = errors.New("checkers: handshake rejected")

	// ErrNoReply indicates a ping that received no answer.
	ErrNoReply = errors.New("checkers: no reply")
)
