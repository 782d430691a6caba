// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// MockSMTPServer is a minimal SMTP server for tests. It accepts every command unless
// a reply is scripted for it, and records delivered messages.
type MockSMTPServer struct {
	listener net.Listener
	addr     string
	replies  map[string]string

	mu       sync.Mutex
	messages []string
	rcpts    []string
}

// NewMockSMTPServer creates a new mock SMTP server. replies maps an upper case
// command verb (e.g. "RCPT") to the reply line sent instead of the default.
func NewMockSMTPServer(replies map[string]string) (*MockSMTPServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	server := &MockSMTPServer{
		listener: listener,
		addr:     listener.Addr().String(),
		replies:  replies,
	}

	go server.serve()
	return server, nil
}

// NewMockSMTPServerForTesting creates a mock SMTP server that is closed with the test
func NewMockSMTPServerForTesting(t *testing.T, replies map[string]string) *MockSMTPServer {
	server, err := NewMockSMTPServer(replies)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })
	return server
}

// Config returns an SMTPConfig pointing at the server
func (s *MockSMTPServer) Config(t *testing.T) SMTPConfig {
	host, portStr, err := net.SplitHostPort(s.addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return SMTPConfig{Host: host, Port: port, From: "meetings@example.com"}
}

// Messages returns the DATA payloads received so far
func (s *MockSMTPServer) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// Recipients returns the RCPT TO arguments received so far
func (s *MockSMTPServer) Recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rcpts...)
}

// Close shuts down the mock server
func (s *MockSMTPServer) Close() error {
	return s.listener.Close()
}

func (s *MockSMTPServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return // Server closed
		}

		go s.handleConnection(conn)
	}
}

func (s *MockSMTPServer) reply(conn net.Conn, verb, fallback string) {
	line := fallback
	if r, ok := s.replies[verb]; ok {
		line = r
	}
	_, _ = conn.Write([]byte(line + "\r\n"))
}

func (s *MockSMTPServer) handleConnection(conn net.Conn) {
	defer func() {
		_ = conn.Close() // Ignore close error in mock server
	}()

	reader := bufio.NewReader(conn)
	_, _ = conn.Write([]byte("220 localhost SMTP ready\r\n"))

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		verb, arg, _ := strings.Cut(line, " ")
		verb = strings.ToUpper(verb)

		switch verb {
		case "EHLO", "HELO":
			s.reply(conn, verb, "250 localhost")
		case "RCPT":
			s.mu.Lock()
			s.rcpts = append(s.rcpts, arg)
			s.mu.Unlock()
			s.reply(conn, verb, "250 OK")
		case "DATA":
			if r, ok := s.replies[verb]; ok {
				_, _ = conn.Write([]byte(r + "\r\n"))
				continue
			}
			_, _ = conn.Write([]byte("354 Start mail input\r\n"))
			var body strings.Builder
			for {
				dataLine, err := reader.ReadString('\n')
				if err != nil {
					return
				}
				if dataLine == ".\r\n" {
					break
				}
				body.WriteString(strings.TrimPrefix(dataLine, "."))
			}
			s.mu.Lock()
			s.messages = append(s.messages, body.String())
			s.mu.Unlock()
			_, _ = conn.Write([]byte("250 OK\r\n"))
		case "QUIT":
			_, _ = conn.Write([]byte("221 Bye\r\n"))
			return
		default:
			s.reply(conn, verb, "250 OK")
		}
	}
}
