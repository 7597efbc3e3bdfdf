// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5"
	"go.chromium.org/luci/common/errors"
)

// dialTimeout bounds a single connection attempt; Poll owns the overall
// deadline.
const dialTimeout = 3 * time.Second

// PostgresChecker performs a full driver-level handshake against the
// database, which proves more than a bare TCP accept: authentication
// works and the server is past recovery.
type PostgresChecker struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Name implements Checker.
func (c *PostgresChecker) Name() string {
	return fmt.Sprintf("postgres (%s)", net.JoinHostPort(c.Host, strconv.Itoa(c.Port)))
}

// Check implements Checker.
func (c *PostgresChecker) Check(ctx context.Context) error {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable&connect_timeout=3",
	}
	conn, err := pgx.Connect(ctx, u.String())
	if err != nil {
		return errors.Annotate(err, "connect").Err()
	}
	defer conn.Close(ctx)
	if err := conn.Ping(ctx); err != nil {
		return errors.Annotate(err, "ping").Err()
	}
	return nil
}

// RedisChecker sends a PING and expects PONG.
type RedisChecker struct {
	Host string
	Port int
}

// Name implements Checker.
func (c *RedisChecker) Name() string {
	return fmt.Sprintf("redis (%s)", c.addr())
}

func (c *RedisChecker) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *RedisChecker) dial(ctx context.Context) (redis.Conn, error) {
	return redis.DialContext(ctx, "tcp", c.addr(),
		redis.DialConnectTimeout(dialTimeout),
		redis.DialReadTimeout(dialTimeout),
		redis.DialWriteTimeout(dialTimeout))
}

// Check implements Checker.
func (c *RedisChecker) Check(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return errors.Annotate(err, "connect").Err()
	}
	defer conn.Close()
	pong, err := redis.String(conn.Do("PING"))
	if err != nil {
		return errors.Annotate(err, "PING").Err()
	}
	if pong != "PONG" {
		return errors.Reason("unexpected PING reply %q", pong).Err()
	}
	return nil
}

// QueueDepth returns the number of tasks waiting in the named queue.
// Celery parks pending tasks in a Redis list of the queue's name.
func (c *RedisChecker) QueueDepth(ctx context.Context, queue string) (int, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return 0, errors.Annotate(err, "connect").Err()
	}
	defer conn.Close()
	depth, err := redis.Int(conn.Do("LLEN", queue))
	if err != nil {
		return 0, errors.Annotate(err, "LLEN %s", queue).Err()
	}
	return depth, nil
}

// HTTPChecker issues a GET and accepts the listed status codes without
// following redirects. The Django admin answers 302 for anonymous users,
// which is exactly as alive as a 200.
type HTTPChecker struct {
	URL string
	// Accept lists healthy status codes; empty means 200, 301 and 302.
	Accept []int

	client *http.Client
}

// Name implements Checker.
func (c *HTTPChecker) Name() string {
	return fmt.Sprintf("http (%s)", c.URL)
}

// Check implements Checker.
func (c *HTTPChecker) Check(ctx context.Context) error {
	if c.client == nil {
		c.client = &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return errors.Annotate(err, "build request").Err()
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Annotate(err, "GET").Err()
	}
	defer resp.Body.Close()
	accept := c.Accept
	if len(accept) == 0 {
		accept = []int{http.StatusOK, http.StatusMovedPermanently, http.StatusFound}
	}
	for _, code := range accept {
		if resp.StatusCode == code {
			return nil
		}
	}
	return errors.Reason("GET %s returned %d", c.URL, resp.StatusCode).Err()
}

// TCPChecker is the fallback probe when nothing richer is known about a
// service: the port accepting a connection is all it asserts.
type TCPChecker struct {
	Host string
	Port int
}

// Name implements Checker.
func (c *TCPChecker) Name() string {
	return fmt.Sprintf("tcp (%s)", net.JoinHostPort(c.Host, strconv.Itoa(c.Port)))
}

// Check implements Checker.
func (c *TCPChecker) Check(ctx context.Context) error {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(c.Host, strconv.Itoa(c.Port)))
	if err != nil {
		return errors.Annotate(err, "dial").Err()
	}
	return conn.Close()
}
