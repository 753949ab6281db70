package canard

import (
	"errors"
	"fmt"
)

// Contains OpenCyphal transmission/transfer logic.

// TxFrame is an outgoing CAN frame. Frames of one transfer must be
// transmitted in the order they were returned.
type TxFrame struct {
	CANID CANID
	// Number of valid bytes in the payload buffer, tail byte included.
	size          int
	payloadBuffer [MTU_CAN_FD]byte
}

// Data returns the frame data including padding and the tail byte.
// The returned slice aliases the frame.
func (f *TxFrame) Data() []byte { return f.payloadBuffer[:f.size] }

// Len returns the number of data bytes, tail byte included. It is always a valid CAN FD length.
func (f *TxFrame) Len() int { return f.size }

func (f *TxFrame) TailByte() Tail {
	if f.size < 1 {
		panic("empty payload")
	}
	return Tail(f.payloadBuffer[f.size-1])
}

// CRC returns the transfer CRC carried by the last frame of a multi-frame
// transfer whose CRC was not split across frames.
func (f *TxFrame) CRC() (CRC, error) {
	if f.size < 3 {
		return 0, fmt.Errorf("%d byte frame too small for CRC: %w", f.size, ErrInvalidFrameSize)
	}
	if t := f.TailByte(); !t.IsEnd() || t.IsStart() {
		return 0, fmt.Errorf("CRC only set on end of multi-frame transfers: %w", ErrInvalidState)
	}
	return CRC(f.payloadBuffer[f.size-3])<<8 |
		CRC(f.payloadBuffer[f.size-2]), nil
}

// Encode splits a transfer into frames without touching the transfer-ID
// counter; meta.TID is used as given. Payloads that do not fit in a single
// frame are followed by padding and the transfer CRC.
func (ins *Instance) Encode(meta *Metadata, payload []byte) ([]TxFrame, error) {
	if meta == nil {
		return nil, ErrInvalidArgument
	}
	plMTU := PresentationLayerMTU(ins.mtu)
	canID, err := meta.makeCANID(payload, ins.node, plMTU)
	if err != nil {
		if errors.Is(err, ErrInvalidCANID) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCANID, err)
	}
	if len(payload) <= plMTU {
		frame, err := ins.singleFrame(canID, meta.TID, payload)
		if err != nil {
			return nil, err
		}
		return []TxFrame{frame}, nil
	}
	return multiFrame(canID, meta.TID, plMTU, payload)
}

func (ins *Instance) singleFrame(canID CANID, tid TID, payload []byte) (TxFrame, error) {
	framePayloadSize, err := RoundUpFrameLength(len(payload) + _TAIL_SIZE)
	if err != nil {
		return TxFrame{}, err
	}
	if framePayloadSize > ins.mtu {
		return TxFrame{}, fmt.Errorf("%d byte frame exceeds MTU %d: %w", framePayloadSize, ins.mtu, ErrInvalidFrameSize)
	}
	frame := TxFrame{CANID: canID, size: framePayloadSize}
	copy(frame.payloadBuffer[:], payload)
	tail, err := MakeTail(true, true, _INITIAL_TOGGLE, tid)
	if err != nil {
		return TxFrame{}, err
	}
	// Bytes between payload and tail are already zero padding.
	frame.payloadBuffer[framePayloadSize-1] = byte(tail)
	return frame, nil
}

func multiFrame(canID CANID, tid TID, plMTU int, payload []byte) ([]TxFrame, error) {
	payloadSize := len(payload)
	switch {
	case plMTU <= 0:
		panic("bad presentation layer MTU")
	case payloadSize <= plMTU:
		panic("multi frame needs payload larger than MTU")
	}
	payloadSizeWithCRC := payloadSize + CRC_SIZE
	frames := make([]TxFrame, 0, (payloadSizeWithCRC+plMTU-1)/plMTU)
	crc := NewCRC().Add(payload)
	toggle := _INITIAL_TOGGLE
	offset := 0
	for offset < payloadSizeWithCRC {
		frameWithTailSize := plMTU + _TAIL_SIZE
		if payloadSizeWithCRC-offset < plMTU {
			n, err := RoundUpFrameLength(payloadSizeWithCRC - offset + _TAIL_SIZE)
			if err != nil {
				return nil, err
			}
			frameWithTailSize = n
		}
		frame := TxFrame{CANID: canID, size: frameWithTailSize}

		// Copy payload into the frame.
		framePayloadSize := frameWithTailSize - _TAIL_SIZE
		frameOffset := 0
		if offset < payloadSize {
			moveSize := payloadSize - offset
			if moveSize > framePayloadSize {
				moveSize = framePayloadSize
			}
			copy(frame.payloadBuffer[:], payload[offset:offset+moveSize])
			frameOffset += moveSize
			offset += moveSize
		}

		if offset >= payloadSize {
			// Last frame of transfer. Contains padding and CRC.
			for frameOffset+CRC_SIZE < framePayloadSize {
				// Padding is covered by the CRC.
				frame.payloadBuffer[frameOffset] = _PADDING_BYTE_VALUE
				frameOffset++
				crc = crc.AddByte(_PADDING_BYTE_VALUE)
			}
			if frameOffset < framePayloadSize && offset == payloadSize {
				// Insert higher bits of CRC.
				frame.payloadBuffer[frameOffset] = byte(crc >> 8)
				frameOffset++
				offset++
			}
			if frameOffset < framePayloadSize && offset > payloadSize {
				// Insert lower bits of CRC.
				frame.payloadBuffer[frameOffset] = byte(crc)
				frameOffset++
				offset++
			}
		}

		if frameOffset+_TAIL_SIZE != frame.size {
			panic("frameOffset+1 != frame size")
		}
		tail, err := MakeTail(len(frames) == 0, offset >= payloadSizeWithCRC, toggle, tid)
		if err != nil {
			return nil, err
		}
		frame.payloadBuffer[frameOffset] = byte(tail)
		frames = append(frames, frame)
		toggle = !toggle
	}
	return frames, nil
}
