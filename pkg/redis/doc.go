// Package redis provides convenient helpers for connecting to a Redis server.
//
// The package wraps the go-redis client and adds:
//
//   - Robust `Connect` which retries the connection using the supplied
//     configuration.
//   - Health-check helpers to integrate Redis into HTTP liveness /
//     readiness probes.
//
// Configuration is described by the `Config` struct whose fields can be
// populated from environment variables via github.com/caarlos0/env.
//
// # Usage
//
// Import the package:
//
//	import "github.com/dmitrymomot/stampkit/pkg/redis"
//
// Create configuration (most projects rely on env parsing):
//
//	cfg := redis.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  5 * time.Second,
//	    ConnectTimeout: 30 * time.Second,
//	}
//
// Connect with auto-retry:
//
//	ctx := context.Background()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // handle error, probably terminate the application
//	}
//	defer client.Close()
//
// Register a health-check in your observability stack:
//
//	checker := redis.Healthcheck(client)
//	if err := checker(ctx); err != nil {
//	    // redis is not healthy
//	}
//
// # Errors
//
// The package defines several sentinel errors (e.g. ErrRedisNotReady) that wrap
// the underlying go-redis errors using errors.Join. This makes it easy to
// compare and unwrap.
package redis
