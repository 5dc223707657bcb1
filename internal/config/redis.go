package config

// Redis backs two concerns: token-bucket rate limiting on the kiosk
// check-in endpoints and short-TTL caching of the occupancy feed. Both
// are optional; when the server cannot be reached at startup the
// constructor returns nil and callers run without them.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from the environment:
//   REDIS_HOST / REDIS_PORT – server address parts
//   REDIS_ADDR – host:port shorthand (host/port pair wins when both are set)
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number, default 0
//   REDIS_TLS – "true" or "1" enables TLS
// Returns nil when the server does not answer a ping within two seconds.
func NewRedisClient() *redis.Client {
    host := os.Getenv("REDIS_HOST")
    port := os.Getenv("REDIS_PORT")
    addr := os.Getenv("REDIS_ADDR")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    dbNum := 0
    if s := os.Getenv("REDIS_DB"); s != "" {
        if n, err := strconv.Atoi(s); err == nil {
            dbNum = n
        }
    }
    var tlsConf *tls.Config
    if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        dbNum,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
