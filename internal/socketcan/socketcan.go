// Package socketcan moves Cyphal frames over a Linux SocketCAN raw socket.
// Received frames are handed out in the raw record layout accepted by
// canard.Instance.Parse.
package socketcan

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/soypat/canard"
)

// Linux can_frame and canfd_frame layouts. Cyphal only uses extended identifiers.
const (
	classicFrameSize = 16
	fdFrameSize      = 72
	dataOffset       = 8

	flagEFF    = 0x80000000
	flagRTR    = 0x40000000
	flagERR    = 0x20000000
	extIDMask  = 0x1FFFFFFF
	fdFlagBRS  = 0x01
	recordFDF  = 1 << 21
	recordBRS  = 1 << 20
	dlcShift   = 16
	maxDataLen = canard.MTU_CAN_FD
)

var (
	ErrClosed = errors.New("socketcan: closed")
	// errSkip marks frames that cannot carry Cyphal traffic: standard IDs, RTR and error frames.
	errSkip = errors.New("socketcan: not a Cyphal frame")
)

// encodeFrame writes f into buf using the can_frame layout when it fits
// classic CAN and fd is false, and the canfd_frame layout otherwise.
// It returns the number of bytes to write.
func encodeFrame(buf *[fdFrameSize]byte, f *canard.TxFrame, fd bool) (int, error) {
	data := f.Data()
	if len(data) > canard.MTU_CAN_CLASSIC && !fd {
		return 0, fmt.Errorf("socketcan: %d byte frame needs CAN FD", len(data))
	}
	*buf = [fdFrameSize]byte{}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(f.CANID)&extIDMask|flagEFF)
	buf[4] = uint8(len(data))
	copy(buf[dataOffset:], data)
	if !fd {
		return classicFrameSize, nil
	}
	if len(data) > canard.MTU_CAN_CLASSIC {
		buf[5] = fdFlagBRS
	}
	return fdFrameSize, nil
}

// appendRecord converts a frame read from the socket into a raw record with
// a data area of mtu bytes.
func appendRecord(dst, frame []byte, mtu int) ([]byte, error) {
	if len(frame) != classicFrameSize && len(frame) != fdFrameSize {
		return dst, fmt.Errorf("socketcan: short read of %d bytes", len(frame))
	}
	id := binary.LittleEndian.Uint32(frame[0:4])
	if id&flagEFF == 0 || id&(flagRTR|flagERR) != 0 {
		return dst, errSkip
	}
	n := int(frame[4])
	if n > maxDataLen || n > len(frame)-dataOffset {
		return dst, fmt.Errorf("socketcan: bad frame length %d", n)
	}
	if n > mtu {
		return dst, fmt.Errorf("socketcan: %d byte frame exceeds mtu %d: %w", n, mtu, canard.ErrInvalidFrameSize)
	}
	dlc, err := canard.LengthToDLC(n)
	if err != nil {
		return dst, err
	}
	header := uint32(dlc) << dlcShift
	brs := len(frame) == fdFrameSize && frame[5]&fdFlagBRS != 0
	if n > canard.MTU_CAN_CLASSIC || brs {
		header |= recordFDF
	}
	if brs {
		header |= recordBRS
	}
	dst = binary.LittleEndian.AppendUint32(dst, id&extIDMask)
	dst = binary.LittleEndian.AppendUint32(dst, header)
	dst = append(dst, frame[dataOffset:dataOffset+n]...)
	for i := n; i < mtu; i++ {
		dst = append(dst, 0)
	}
	return dst, nil
}
