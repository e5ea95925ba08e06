// Package bridgetest provides an in-process stand-in for the sandtimer
// application's TCP command listener.
package bridgetest

import (
	"bufio"
	"encoding/json"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/require"

	"sandtimer.dev/mcp/internal/core/tool"
)

// Server records every JSON record it receives
type Server struct {
	ln net.Listener
	wg conc.WaitGroup

	mu          sync.Mutex
	records     [][]byte
	connections int
}

// NewServer starts a server on a random loopback port and closes it on cleanup
func NewServer(t testing.TB) *Server {
	t.Helper()
	return NewServerAt(t, "127.0.0.1:0")
}

// NewServerAt starts a server on addr
func NewServerAt(t testing.TB, addr string) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err, "bridgetest: listen on %s", addr)

	s := &Server{ln: ln}
	s.wg.Go(s.acceptLoop)
	t.Cleanup(s.Close)

	return s
}

// ClosedAddr returns a loopback address nothing is listening on
func ClosedAddr(t testing.TB) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	return addr
}

// SplitAddr splits addr into host and port
func SplitAddr(t testing.TB, addr string) (string, int) {
	t.Helper()

	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return host, port
}

// Addr returns the listening address
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// HostPort returns the listening host and port
func (s *Server) HostPort(t testing.TB) (string, int) {
	return SplitAddr(t, s.Addr())
}

// Close stops accepting and waits for in-flight connections
func (s *Server) Close() {
	_ = s.ln.Close()
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.connections++
		s.mu.Unlock()

		s.wg.Go(func() {
			s.handle(conn)
		})
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		if len(line) == 0 {
			continue
		}
		s.mu.Lock()
		s.records = append(s.records, line)
		s.mu.Unlock()
	}
}

// Records returns the raw records received so far
func (s *Server) Records() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]byte, len(s.records))
	copy(out, s.records)
	return out
}

// Connections returns how many connections were accepted
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections
}

// WaitForRecords blocks until n records arrived and returns them decoded
func (s *Server) WaitForRecords(t testing.TB, n int) []tool.Command {
	t.Helper()

	require.Eventually(t, func() bool {
		return len(s.Records()) >= n
	}, 2*time.Second, 10*time.Millisecond, "bridgetest: expected %d records", n)

	records := s.Records()
	commands := make([]tool.Command, 0, len(records))
	for _, raw := range records {
		var cmd tool.Command
		require.NoError(t, json.Unmarshal(raw, &cmd), "bridgetest: record is not JSON: %s", raw)
		commands = append(commands, cmd)
	}
	return commands
}
