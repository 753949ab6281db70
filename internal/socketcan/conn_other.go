//go:build !linux

package socketcan

import (
	"context"
	"errors"

	"github.com/soypat/canard"
)

var errUnsupported = errors.New("socketcan: only supported on linux")

// Conn is unavailable outside Linux; Dial always fails.
type Conn struct{}

func Dial(iface string, fd bool) (*Conn, error) { return nil, errUnsupported }

func (c *Conn) Send(ctx context.Context, frames []canard.TxFrame) error { return errUnsupported }

func (c *Conn) Receive(ctx context.Context, dst []byte, mtu int) ([]byte, error) {
	return dst, errUnsupported
}

func (c *Conn) Close() error { return nil }
