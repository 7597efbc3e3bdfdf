// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package health

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/Brownbull/ayni-be/internal/assert"
	"github.com/Brownbull/ayni-be/internal/cmd"
	"github.com/Brownbull/ayni-be/internal/compose"
)

// fakeRedis is a minimal RESP server answering PING and LLEN, enough to
// exercise the real redigo client against a local socket.
func fakeRedis(t *testing.T) (host string, port int) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NilError(t, err)
	t.Cleanup(func() { l.Close() })
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go serveRESP(conn)
		}
	}()
	addr := l.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func serveRESP(c net.Conn) {
	defer c.Close()
	r := bufio.NewReader(c)
	for {
		args, err := readRESPCommand(r)
		if err != nil {
			return
		}
		switch strings.ToUpper(args[0]) {
		case "PING":
			fmt.Fprint(c, "+PONG\r\n")
		case "LLEN":
			fmt.Fprint(c, ":3\r\n")
		default:
			fmt.Fprint(c, "-ERR unknown command\r\n")
		}
	}
}

func readRESPCommand(r *bufio.Reader) ([]string, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, "*") {
		return nil, fmt.Errorf("unexpected RESP header %q", header)
	}
	n, err := strconv.Atoi(header[1:])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("bad RESP array %q", header)
	}
	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if _, err := r.ReadString('\n'); err != nil {
			return nil, err
		}
		arg, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		args = append(args, strings.TrimSpace(arg))
	}
	return args, nil
}

func TestRedisChecker(t *testing.T) {
	t.Parallel()
	host, port := fakeRedis(t)
	c := &RedisChecker{Host: host, Port: port}
	assert.NilError(t, c.Check(context.Background()))

	depth, err := c.QueueDepth(context.Background(), "processing")
	assert.NilError(t, err)
	assert.IntsEqual(t, depth, 3)
}

func TestRedisCheckerDown(t *testing.T) {
	t.Parallel()
	c := &RedisChecker{Host: "127.0.0.1", Port: freePort(t)}
	assert.ErrorContains(t, c.Check(context.Background()), "connect")
}

func TestHTTPChecker(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/":
			// Anonymous users get bounced to the login page.
			http.Redirect(w, r, "/admin/login/?next=/admin/", http.StatusFound)
		case "/":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	assert.NilError(t, (&HTTPChecker{URL: srv.URL + "/admin/"}).Check(ctx))
	assert.NilError(t, (&HTTPChecker{URL: srv.URL + "/"}).Check(ctx))
	assert.ErrorContains(t, (&HTTPChecker{URL: srv.URL + "/boom"}).Check(ctx), "returned 500")
	// Restricting the accept list turns the redirect into a failure.
	strict := &HTTPChecker{URL: srv.URL + "/admin/", Accept: []int{http.StatusOK}}
	assert.ErrorContains(t, strict.Check(ctx), "returned 302")
}

func TestHTTPCheckerServerGone(t *testing.T) {
	t.Parallel()
	c := &HTTPChecker{URL: fmt.Sprintf("http://127.0.0.1:%d/", freePort(t))}
	assert.ErrorContains(t, c.Check(context.Background()), "GET")
}

func TestTCPChecker(t *testing.T) {
	t.Parallel()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NilError(t, err)
	t.Cleanup(func() { l.Close() })
	port := l.Addr().(*net.TCPAddr).Port

	assert.NilError(t, (&TCPChecker{Host: "127.0.0.1", Port: port}).Check(context.Background()))
	assert.NonNilError(t, (&TCPChecker{Host: "127.0.0.1", Port: freePort(t)}).Check(context.Background()))
}

func TestPostgresCheckerDown(t *testing.T) {
	t.Parallel()
	c := &PostgresChecker{
		Host: "127.0.0.1", Port: freePort(t),
		User: "ayni", Password: "ayni", DBName: "ayni",
	}
	assert.ErrorContains(t, c.Check(context.Background()), "connect")
	assert.StringsEqual(t, c.Name(), fmt.Sprintf("postgres (127.0.0.1:%d)", c.Port))
}

func TestContainerChecker(t *testing.T) {
	t.Parallel()
	psRow := func(service, state string, exitCode int) string {
		return fmt.Sprintf(`{"Name":"ayni-%s-1","Service":%q,"State":%q,"ExitCode":%d}`+"\n", service, service, state, exitCode)
	}
	for _, tc := range []struct {
		name    string
		stdout  string
		needHC  bool
		wantErr string
	}{
		{"running is healthy", psRow("celery", "running", 0), false, ""},
		{"exited fails", psRow("celery", "exited", 1), false, "exited with code 1"},
		{"restarting fails", psRow("celery", "restarting", 0), false, "is restarting"},
		{"absent fails", psRow("db", "running", 0), false, "no container for service celery"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := &compose.Client{
				Runner: &cmd.FakeCommandRunner{Stdout: tc.stdout},
				Tool:   compose.Tool{},
			}
			c := &ContainerChecker{Client: client, Service: "celery", NeedHealthy: tc.needHC}
			err := c.Check(context.Background())
			if tc.wantErr == "" {
				assert.NilError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}

func TestCeleryChecker(t *testing.T) {
	t.Parallel()
	client := &compose.Client{
		Runner: &cmd.FakeCommandRunner{Stdout: "->  celery@worker1: OK\n        pong\n"},
	}
	c := &CeleryChecker{Client: client, Service: "celery", App: "config"}
	assert.NilError(t, c.Check(context.Background()))

	silent := &CeleryChecker{
		Client:  &compose.Client{Runner: &cmd.FakeCommandRunner{Stdout: "Error: No nodes replied within time constraint\n"}},
		Service: "celery",
		App:     "config",
	}
	assert.ErrorContains(t, silent.Check(context.Background()), "did not answer ping")
}

// freePort returns a port that was just free; nothing is listening on it.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NilError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	assert.NilError(t, l.Close())
	return port
}
