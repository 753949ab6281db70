package canard

import (
	"encoding/binary"
	"fmt"
)

// Raw frame record layout, all fields little-endian:
//
//	0..3   extended CAN ID, bits 28..0
//	4..7   header: bits 19..16 DLC, bit 20 BRS, bit 21 FDF
//	8..    data area of a fixed size, usually the instance MTU
//
// Data bytes past the DLC length are zero.
const (
	RecordHeaderSize = 8

	recordDLCShift = 16
	recordDLCMask  = 0xf
	recordFlagBRS  = 1 << 20
	recordFlagFDF  = 1 << 21
)

// RecordSize returns the size of one raw record accepted by Parse.
func (ins *Instance) RecordSize() int { return ins.mtu + RecordHeaderSize }

// MarshalRecord encodes the frame as a raw record with a data area of mtu bytes.
func (f *TxFrame) MarshalRecord(mtu int) ([]byte, error) {
	return f.AppendRecord(make([]byte, 0, mtu+RecordHeaderSize), mtu)
}

// AppendRecord appends the raw record of the frame to dst.
// Frames longer than MTU_CAN_CLASSIC are flagged as CAN FD with bit rate switching.
func (f *TxFrame) AppendRecord(dst []byte, mtu int) ([]byte, error) {
	if mtu < f.size || mtu > MTU_CAN_FD {
		return dst, fmt.Errorf("%d byte frame in %d byte record: %w", f.size, mtu, ErrInvalidFrameSize)
	}
	dlc, err := LengthToDLC(f.size)
	if err != nil {
		return dst, err
	}
	header := uint32(dlc) << recordDLCShift
	if f.size > MTU_CAN_CLASSIC {
		header |= recordFlagFDF | recordFlagBRS
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(f.CANID)&_CAN_EXT_ID_MASK)
	dst = binary.LittleEndian.AppendUint32(dst, header)
	dst = append(dst, f.payloadBuffer[:f.size]...)
	for i := f.size; i < mtu; i++ {
		dst = append(dst, 0)
	}
	return dst, nil
}

// MarshalRecords encodes frames back to back with the record size of ins.
func (ins *Instance) MarshalRecords(frames []TxFrame) ([]byte, error) {
	buf := make([]byte, 0, len(frames)*ins.RecordSize())
	var err error
	for i := range frames {
		buf, err = frames[i].AppendRecord(buf, ins.mtu)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return buf, nil
}
