package udp

import (
	"encoding/binary"
	"log/slog"
	"math"
	"net"
	"sync"
	"time"
)

// Receiver listens for float values on a UDP port and forwards them to a
// callback. Sync-mode senders transmit 4- or 8-byte floats; some transmit
// little-endian despite network byte order being big-endian, so decoding
// applies byte-order heuristics rather than trusting one order.
type Receiver struct {
	OnReceive func(float64)

	mu   sync.Mutex
	port int
	conn *net.UDPConn
	stop chan struct{}
	done chan struct{}
}

func NewReceiver(port int, onReceive func(float64)) *Receiver {
	return &Receiver{port: port, OnReceive: onReceive}
}

// Start launches the receiver goroutine if it is not already running.
// It returns the error from binding the port, if any.
func (r *Receiver) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		return nil
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: r.port})
	if err != nil {
		return err
	}
	r.conn = conn
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.run(conn, r.stop, r.done)
	return nil
}

// Stop closes the socket and waits for the goroutine to exit.
func (r *Receiver) Stop() {
	r.mu.Lock()
	conn, stop, done := r.conn, r.stop, r.done
	r.conn, r.stop, r.done = nil, nil, nil
	r.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	if conn != nil {
		conn.Close()
	}
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}

// Reconfigure restarts the receiver on a new port if it changed.
func (r *Receiver) Reconfigure(port int) error {
	r.mu.Lock()
	running := r.stop != nil
	same := r.port == port
	r.mu.Unlock()
	if same && running {
		return nil
	}
	r.Stop()
	r.mu.Lock()
	r.port = port
	r.mu.Unlock()
	return r.Start()
}

// LocalPort reports the bound port, useful when listening on port 0.
func (r *Receiver) LocalPort() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return 0
	}
	return r.conn.LocalAddr().(*net.UDPAddr).Port
}

func (r *Receiver) run(conn *net.UDPConn, stop, done chan struct{}) {
	defer close(done)
	buf := make([]byte, 1024)
	for {
		select {
		case <-stop:
			return
		default:
		}
		// Short deadline so Stop is noticed even with no traffic.
		conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// Socket closed or a hard error.
			return
		}
		value, ok := DecodeFloat(buf[:n])
		if !ok {
			slog.Warn("udp receiver: unexpected packet size", "bytes", n)
			continue
		}
		if r.OnReceive != nil {
			r.OnReceive(value)
		}
	}
}

// DecodeFloat decodes a 4- or 8-byte float packet, preferring network byte
// order with a little-endian fallback for swapped-byte artifacts.
func DecodeFloat(data []byte) (float64, bool) {
	switch len(data) {
	case 4:
		network := float64(math.Float32frombits(binary.BigEndian.Uint32(data)))
		little := float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))
		return pickDecoding(data, network, little, 1e-4, 1e30), true
	case 8:
		network := math.Float64frombits(binary.BigEndian.Uint64(data))
		little := math.Float64frombits(binary.LittleEndian.Uint64(data))
		return pickDecoding(data, network, little, 1e-9, 1e100), true
	}
	return 0, false
}

// pickDecoding chooses between the two byte-order interpretations. An
// all-zero payload is unambiguous. A near-zero network-order value next to
// a meaningful little-endian one, or a huge/non-finite network-order value
// next to a smaller finite little-endian one, both indicate swapped bytes.
func pickDecoding(data []byte, network, little, smallThreshold, largeThreshold float64) float64 {
	allZero := true
	for _, b := range data {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return network
	}
	if math.Abs(network) < smallThreshold && math.Abs(little) >= smallThreshold {
		return little
	}
	if (math.IsNaN(network) || math.IsInf(network, 0) || math.Abs(network) > largeThreshold) &&
		!math.IsNaN(little) && !math.IsInf(little, 0) && math.Abs(little) < math.Abs(network) {
		return little
	}
	return network
}
