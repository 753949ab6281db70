//go:build linux

package socketcan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/soypat/canard"
)

// pollInterval bounds how long a Receive call blocks before checking its context.
const pollInterval = 100 * time.Millisecond

// Conn is a raw CAN socket bound to one interface.
type Conn struct {
	fd   int
	fdOn bool
	mu   sync.Mutex
	dead bool
}

// Dial opens a raw CAN socket bound to iface (e.g. "can0"). With fd set the
// socket also carries CAN FD frames.
func Dial(iface string, fd bool) (*Conn, error) {
	netIf, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, err
	}
	s, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("socketcan: socket: %w", err)
	}
	if fd {
		if err := unix.SetsockoptInt(s, unix.SOL_CAN_RAW, unix.CAN_RAW_FD_FRAMES, 1); err != nil {
			unix.Close(s)
			return nil, fmt.Errorf("socketcan: enable fd frames: %w", err)
		}
	}
	tv := unix.NsecToTimeval(pollInterval.Nanoseconds())
	if err := unix.SetsockoptTimeval(s, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(s)
		return nil, fmt.Errorf("socketcan: receive timeout: %w", err)
	}
	if err := unix.Bind(s, &unix.SockaddrCAN{Ifindex: netIf.Index}); err != nil {
		unix.Close(s)
		return nil, fmt.Errorf("socketcan: bind %s: %w", iface, err)
	}
	return &Conn{fd: s, fdOn: fd}, nil
}

// Send writes the frames of one transfer in order.
func (c *Conn) Send(ctx context.Context, frames []canard.TxFrame) error {
	var buf [fdFrameSize]byte
	for i := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := encodeFrame(&buf, &frames[i], c.fdOn)
		if err != nil {
			return err
		}
		if c.closed() {
			return ErrClosed
		}
		w, err := unix.Write(c.fd, buf[:n])
		if err != nil {
			return fmt.Errorf("socketcan: write: %w", err)
		}
		if w != n {
			return errors.New("socketcan: short write")
		}
	}
	return nil
}

// Receive blocks until a Cyphal frame arrives and appends it to dst as a raw
// record with a data area of mtu bytes. Non-extended, remote and error frames are skipped.
func (c *Conn) Receive(ctx context.Context, dst []byte, mtu int) ([]byte, error) {
	var buf [fdFrameSize]byte
	for {
		if err := ctx.Err(); err != nil {
			return dst, err
		}
		if c.closed() {
			return dst, ErrClosed
		}
		n, err := unix.Read(c.fd, buf[:])
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			continue
		} else if err != nil {
			return dst, fmt.Errorf("socketcan: read: %w", err)
		}
		out, err := appendRecord(dst, buf[:n], mtu)
		if errors.Is(err, errSkip) {
			continue
		}
		return out, err
	}
}

func (c *Conn) closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dead
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dead {
		return nil
	}
	c.dead = true
	return unix.Close(c.fd)
}
