package udp

import (
	"encoding/binary"
	"math"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func be32(f float32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(f))
	return b
}

func le32(f float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
	return b
}

func be64(f float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(f))
	return b
}

func le64(f float64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(f))
	return b
}

func TestDecodeFloatNetworkOrder(t *testing.T) {
	v, ok := DecodeFloat(be32(1.5))
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	v, ok = DecodeFloat(be64(-42.25))
	require.True(t, ok)
	assert.Equal(t, -42.25, v)
}

func TestDecodeFloatLittleEndianFallback(t *testing.T) {
	// A little-endian 1.0f read as network order is a subnormal near zero;
	// the decoder must notice and flip.
	v, ok := DecodeFloat(le32(1.0))
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	// A little-endian 123.456 read as network order lands in the 1e270
	// range, far past the plausible magnitude cutoff.
	v, ok = DecodeFloat(le64(123.456))
	require.True(t, ok)
	assert.Equal(t, 123.456, v)
}

func TestDecodeFloatZero(t *testing.T) {
	v, ok := DecodeFloat(make([]byte, 4))
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = DecodeFloat(make([]byte, 8))
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestDecodeFloatRejectsOddSizes(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5, 7, 9, 16} {
		_, ok := DecodeFloat(make([]byte, n))
		assert.False(t, ok, "size %d", n)
	}
}

func TestDecodeFloatBothOrdersAgree(t *testing.T) {
	// Palindromic byte patterns decode identically either way.
	b := []byte{0x40, 0x00, 0x00, 0x40}
	v, ok := DecodeFloat(b)
	require.True(t, ok)
	assert.Equal(t, 2.0000152587890625, v)
}

func TestReceiverLoopback(t *testing.T) {
	got := make(chan float64, 16)
	r := NewReceiver(0, func(v float64) { got <- v })
	require.NoError(t, r.Start())
	defer r.Stop()

	port := r.LocalPort()
	require.NotZero(t, port)

	conn, err := net.Dial("udp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(be64(3.25))
	require.NoError(t, err)

	select {
	case v := <-got:
		assert.Equal(t, 3.25, v)
	case <-time.After(2 * time.Second):
		t.Fatal("no packet received")
	}
}

func TestReceiverIgnoresBadPacketSizes(t *testing.T) {
	got := make(chan float64, 16)
	r := NewReceiver(0, func(v float64) { got <- v })
	require.NoError(t, r.Start())
	defer r.Stop()

	conn, err := net.Dial("udp", net.JoinHostPort("127.0.0.1", strconv.Itoa(r.LocalPort())))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	_, err = conn.Write(be32(9))
	require.NoError(t, err)

	select {
	case v := <-got:
		assert.Equal(t, 9.0, v)
	case <-time.After(2 * time.Second):
		t.Fatal("no packet received")
	}
	assert.Empty(t, got)
}

func TestReceiverStopIsIdempotent(t *testing.T) {
	r := NewReceiver(0, nil)
	require.NoError(t, r.Start())
	r.Stop()
	r.Stop()
}

func TestReceiverReconfigureRebinds(t *testing.T) {
	r := NewReceiver(0, nil)
	require.NoError(t, r.Start())
	defer r.Stop()
	first := r.LocalPort()
	require.NotZero(t, first)

	require.NoError(t, r.Reconfigure(0))
	second := r.LocalPort()
	require.NotZero(t, second)
}

func TestSenderDeliversLatestPayload(t *testing.T) {
	recv, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer recv.Close()
	port := recv.LocalAddr().(*net.UDPAddr).Port

	s := NewSender(Endpoint{IP: "127.0.0.1", Port: port})
	s.Start()
	defer s.Stop()

	s.Submit([]byte("hello"))

	recv.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := recv.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestSubmitEvictsStalePayload(t *testing.T) {
	// Not started: the queue holds at most the newest submission.
	s := NewSender(Endpoint{IP: "127.0.0.1", Port: 9})
	s.Submit([]byte("old"))
	s.Submit([]byte("new"))

	select {
	case p := <-s.queue:
		assert.Equal(t, "new", string(p))
	default:
		t.Fatal("queue empty")
	}
}

func TestSenderReconfigureChangesTarget(t *testing.T) {
	recv, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer recv.Close()
	port := recv.LocalAddr().(*net.UDPAddr).Port

	// Aim somewhere else first, then retarget at the live listener.
	s := NewSender(Endpoint{IP: "127.0.0.1", Port: 1})
	s.Start()
	defer s.Stop()
	s.Reconfigure(Endpoint{IP: "127.0.0.1", Port: port})
	s.Submit([]byte("retargeted"))

	recv.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := recv.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "retargeted", string(buf[:n]))
}
