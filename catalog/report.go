package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// Report is one JSON line emitted per persisted payload, for pipeline
// capture downstream.
type Report struct {
	Type    string       `json:"type"`
	RunID   string       `json:"run_id,omitempty"`
	Label   string       `json:"label,omitempty"`
	Source  string       `json:"source"`
	Result  UpsertResult `json:"result"`
	Emitted string       `json:"emitted"`
}

type ReportSink interface {
	Send(rep Report, timeout time.Duration) error
}

// StdoutSink writes newline-delimited JSON to a writer (stdout by
// default). This is the default sink.
type StdoutSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStdoutSink() *StdoutSink {
	return &StdoutSink{w: os.Stdout}
}

func (s *StdoutSink) Send(rep Report, _ time.Duration) error {
	b, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = fmt.Fprintln(s.w, string(b))
	return err
}

// TCPSink ships report lines to a collector address. One connection
// per line keeps the sink stateless across runs.
type TCPSink struct {
	addr string
}

func NewTCPSink(addr string) *TCPSink {
	return &TCPSink{addr: addr}
}

func (c *TCPSink) Send(rep Report, timeout time.Duration) error {
	b, err := json.Marshal(rep)
	if err != nil {
		return err
	}

	var conn net.Conn
	if timeout > 0 {
		conn, err = net.DialTimeout("tcp", c.addr, timeout)
	} else {
		conn, err = net.Dial("tcp", c.addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()
	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(string(b) + "\n"); err != nil {
		return err
	}
	return w.Flush()
}
