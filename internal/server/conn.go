package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxRequestLine bounds how much of a request line is read.
const maxRequestLine = 8 << 10

var errEmptyRequest = errors.New("connection closed before a request line was read")

// connJob serves one connection. It runs on a pool worker.
type connJob struct {
	srv  *Server
	conn net.Conn
	id   string
	log  zerolog.Logger
}

// Run reads the request line, picks a route and writes the response.
// The connection is always closed.
func (j *connJob) Run() {
	defer j.conn.Close()

	if err := j.serve(); err != nil {
		j.log.Warn().Err(err).Msg("connection failed")
	}
}

func (j *connJob) serve() error {
	s := j.srv

	if s.opts.ReadTimeout > 0 {
		if err := j.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}
	}

	line, err := readRequestLine(j.conn)
	if err != nil {
		return err
	}

	route := s.router.Match(line)
	if route.Delay > 0 {
		time.Sleep(route.Delay)
	}

	contents, err := fs.ReadFile(s.files, route.File)
	if err != nil {
		return fmt.Errorf("reading %s: %w", route.File, err)
	}

	if s.opts.WriteTimeout > 0 {
		if err := j.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
			return fmt.Errorf("setting write deadline: %w", err)
		}
	}

	n, err := io.WriteString(j.conn, Response(route.Status, contents))
	if err != nil {
		return fmt.Errorf("writing response: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObserveResponse(route.Status)
	}
	j.log.Info().
		Str("request", line).
		Str("status", route.Status).
		Int("bytes", n).
		Msg("request served")
	return nil
}

// readRequestLine returns the first line of the request without its line
// terminator. A final line without a newline still counts.
func readRequestLine(r io.Reader) (string, error) {
	br := bufio.NewReader(io.LimitReader(r, maxRequestLine))
	line, err := br.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", errEmptyRequest
		}
		return "", fmt.Errorf("reading request line: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Response formats a status line and body as the raw response.
func Response(status string, contents []byte) string {
	return fmt.Sprintf("%s\r\nContent-Length: %d\r\n\r\n%s", status, len(contents), contents)
}
