package sink

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/rocketwave/relaxbridge/pipeline"
)

// UDPSink broadcasts a compact JSON message once per processing cycle over
// a datagram socket, typically consumed by a game engine. Sends are
// best-effort; a lost or refused datagram is reported as an error and the
// caller moves on.
type UDPSink struct {
	conn net.Conn
	addr string
}

// udpMessage is the wire format expected by the engine bridge.
type udpMessage struct {
	T        float64 `json:"t"`
	RI       float64 `json:"ri"`
	RIEMA    float64 `json:"ri_ema"`
	RIScaled float64 `json:"ri_scaled"`
	OK       bool    `json:"ok"`
}

// NewUDPSink connects a datagram socket to addr (host:port).
func NewUDPSink(addr string) (*UDPSink, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("udp sink: dial %s: %w", addr, err)
	}
	return &UDPSink{
		conn: conn,
		addr: addr,
	}, nil
}

// Name identifies the sink in fan-out logs.
func (s *UDPSink) Name() string {
	return "udp"
}

// Send marshals and transmits one datagram.
func (s *UDPSink) Send(packet pipeline.Packet) error {
	msg := udpMessage{
		T:        float64(packet.Timestamp.UnixNano()) / float64(time.Second),
		RI:       packet.RI,
		RIEMA:    packet.RIEMA,
		RIScaled: packet.RIScaled,
		OK:       true,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("udp sink: marshal: %w", err)
	}
	if _, err := s.conn.Write(payload); err != nil {
		return fmt.Errorf("udp sink: send to %s: %w", s.addr, err)
	}
	return nil
}

// Close releases the socket.
func (s *UDPSink) Close() error {
	return s.conn.Close()
}
