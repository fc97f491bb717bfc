package checkers

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthops/health"
)

// Redis pings a Redis server.
type Redis struct {
	name             string
	connectionString string
	user             string
	password         string
}

// NewRedis creates a Redis checker. connectionString is either a redis:// or
// rediss:// URL or a comma-separated list such as
// "cache:6379,password=secret,ssl=true,defaultDatabase=2".
func NewRedis(name, connectionString, user, password string) *Redis {
	return &Redis{
		name:             name,
		connectionString: connectionString,
		user:             user,
		password:         password,
	}
}

// Name returns the check name.
func (c *Redis) Name() string {
	return c.name
}

// Check sends PING on a fresh client.
func (c *Redis) Check(ctx context.Context) health.Result {
	opts, err := redisOptions(c.connectionString)
	if err != nil {
		return health.Unhealthy("invalid connection string", err)
	}
	if c.user != "" {
		opts.Username = c.user
	}
	if c.password != "" {
		opts.Password = c.password
	}
	opts.MaxRetries = -1
	opts.PoolSize = 1

	client := redis.NewClient(opts)
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return health.Failure("ping", err)
	}
	return health.Healthy("redis is reachable").
		WithDetails(map[string]any{"addr": opts.Addr, "db": opts.DB})
}

func redisOptions(cs string) (*redis.Options, error) {
	cs = strings.TrimSpace(cs)
	lower := strings.ToLower(cs)
	if strings.HasPrefix(lower, "redis://") || strings.HasPrefix(lower, "rediss://") {
		return redis.ParseURL(cs)
	}

	parts := strings.Split(cs, ",")
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis: missing address in %q", cs)
	}
	if _, _, err := net.SplitHostPort(opts.Addr); err != nil {
		opts.Addr = net.JoinHostPort(opts.Addr, "6379")
	}

	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "password":
			opts.Password = value
		case "user", "username":
			opts.Username = value
		case "defaultdatabase":
			db, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("redis: invalid defaultDatabase %q: %w", value, err)
			}
			opts.DB = db
		case "ssl":
			if enabled, _ := strconv.ParseBool(value); enabled {
				host, _, _ := net.SplitHostPort(opts.Addr)
				opts.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
			}
		}
	}
	return opts, nil
}
