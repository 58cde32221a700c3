// Package udp holds the background network services: a latest-only packet
// sender for telemetry and a float receiver for sync mode. Both run as
// goroutines with explicit Start/Stop lifecycles and perform no locking on
// the timeline itself.
package udp

import (
	"fmt"
	"net"
	"sync"
	"time"
)

// Endpoint is a UDP send target.
type Endpoint struct {
	IP   string
	Port int
}

func (e Endpoint) addr() string {
	return net.JoinHostPort(e.IP, fmt.Sprintf("%d", e.Port))
}

// Sender transmits the most recent payload to an endpoint from a background
// goroutine. Submissions replace any payload still waiting; telemetry only
// ever cares about the newest state.
type Sender struct {
	mu       sync.Mutex
	endpoint Endpoint

	queue chan []byte
	stop  chan struct{}
	done  chan struct{}
}

func NewSender(endpoint Endpoint) *Sender {
	return &Sender{
		endpoint: endpoint,
		queue:    make(chan []byte, 1),
	}
}

// Start launches the sender goroutine if it is not already running.
func (s *Sender) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

// Stop terminates the sender goroutine and waits for it to exit.
func (s *Sender) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}

// Reconfigure changes the target endpoint for subsequent packets.
func (s *Sender) Reconfigure(endpoint Endpoint) {
	s.mu.Lock()
	s.endpoint = endpoint
	s.mu.Unlock()
}

// Submit queues a payload, evicting any not-yet-sent predecessor.
func (s *Sender) Submit(payload []byte) {
	select {
	case <-s.queue:
	default:
	}
	select {
	case s.queue <- payload:
	default:
	}
}

func (s *Sender) run(stop, done chan struct{}) {
	defer close(done)

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		select {
		case <-stop:
			return
		case payload := <-s.queue:
			s.mu.Lock()
			addrStr := s.endpoint.addr()
			s.mu.Unlock()

			addr, err := net.ResolveUDPAddr("udp", addrStr)
			if err != nil {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			if _, err := conn.WriteTo(payload, addr); err != nil {
				// Transient send errors are expected when the receiver is
				// down; back off briefly and keep going.
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}
