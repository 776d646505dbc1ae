// Package osc sends avatar parameter values as OSC messages over UDP.
package osc

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	goosc "github.com/hypebeast/go-osc/osc"
)

// Default destination of the avatar runtime's OSC input.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 9000
)

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("osc: emitter closed")

// Emitter sends one address/value pair per call.
type Emitter interface {
	// Emit sends value to address immediately. It does not retry.
	Emit(address string, value any) error
	// Close releases the underlying transport.
	Close() error
}

// UDPEmitter writes each message as a single datagram to a fixed destination.
type UDPEmitter struct {
	conn    *net.UDPConn
	address string
	closed  atomic.Bool
}

// NewUDPEmitter resolves host:port and opens a connected UDP socket to it.
// No datagram is sent until the first Emit.
func NewUDPEmitter(host string, port int) (*UDPEmitter, error) {
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid OSC port %d", port)
	}

	address := net.JoinHostPort(host, fmt.Sprint(port))
	udpAddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve OSC address %s: %w", address, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to open OSC connection to %s: %w", address, err)
	}

	return &UDPEmitter{conn: conn, address: address}, nil
}

// Emit encodes address and value as an OSC message and writes it. Supported
// values are float32, int32, bool and string.
func (e *UDPEmitter) Emit(address string, value any) error {
	if e.closed.Load() {
		return ErrClosed
	}

	data, err := Encode(address, value)
	if err != nil {
		return err
	}

	if _, err := e.conn.Write(data); err != nil {
		return fmt.Errorf("write to %s: %w", e.address, err)
	}
	return nil
}

// Destination returns the host:port messages are sent to.
func (e *UDPEmitter) Destination() string {
	return e.address
}

// Close closes the socket. Further Emit calls return ErrClosed.
func (e *UDPEmitter) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	return e.conn.Close()
}

// Encode builds the wire form of a single-argument OSC message.
func Encode(address string, value any) ([]byte, error) {
	switch value.(type) {
	case float32, int32, bool, string:
	default:
		return nil, fmt.Errorf("unsupported OSC argument type %T", value)
	}

	data, err := goosc.NewMessage(address, value).MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", address, err)
	}
	return data, nil
}

// Decode parses a datagram produced by Encode.
func Decode(data []byte) (address string, value any, err error) {
	packet, err := goosc.ParsePacket(string(data))
	if err != nil {
		return "", nil, fmt.Errorf("decode OSC packet: %w", err)
	}

	msg, ok := packet.(*goosc.Message)
	if !ok {
		return "", nil, fmt.Errorf("decode OSC packet: expected message, got %T", packet)
	}
	if len(msg.Arguments) != 1 {
		return "", nil, fmt.Errorf("decode OSC packet: expected 1 argument, got %d", len(msg.Arguments))
	}
	return msg.Address, msg.Arguments[0], nil
}
