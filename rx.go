package canard

import (
	"encoding/binary"
	"fmt"
)

// Contains OpenCyphal receive logic. Frames are parsed one by one; no
// transfer reassembly takes place here.

// RxMetadata is the transfer metadata decoded from a received frame.
type RxMetadata struct {
	Priority Priority
	TxKind   TxKind
	Port     PortID
	// Source is NodeIDUnset for anonymous messages.
	Source NodeID
	// Destination is NodeIDUnset for messages.
	Destination NodeID
	TID         TID
}

// FrameStatus holds the per-frame transfer state carried by the tail byte.
type FrameStatus struct {
	Type   FrameType
	Toggle bool
}

// RxFrame is a single received frame with its decoded metadata.
type RxFrame struct {
	CANID    CANID
	Metadata RxMetadata
	Status   FrameStatus
	// Number of payload bytes, tail byte excluded.
	payloadSize   int
	payloadBuffer [MTU_CAN_FD]byte
}

// Payload returns the frame data without the tail byte. Padding and CRC bytes of a
// multi-frame transfer are included. The returned slice aliases the frame.
func (f *RxFrame) Payload() []byte { return f.payloadBuffer[:f.payloadSize] }

// CRC returns the CRC of the frame payload.
func (f *RxFrame) CRC() CRC { return NewCRC().Add(f.Payload()) }

// Parse decodes raw into frames. raw must hold a whole number of records of
// RecordSize bytes each; see TxFrame.MarshalRecord for the layout.
// Frames are returned in record order.
func (ins *Instance) Parse(raw []byte) ([]RxFrame, error) {
	size := ins.RecordSize()
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("%d bytes is not a multiple of %d byte records: %w", len(raw), size, ErrInvalidFrameLength)
	}
	frames := make([]RxFrame, len(raw)/size)
	for i := range frames {
		err := frames[i].UnmarshalRecord(raw[i*size : (i+1)*size])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return frames, nil
}

// UnmarshalRecord decodes one raw record into f. The record data area is
// len(record)-RecordHeaderSize bytes long; the DLC in the header selects how
// many of them are frame data.
func (f *RxFrame) UnmarshalRecord(record []byte) error {
	if len(record) <= RecordHeaderSize || len(record) > RecordHeaderSize+MTU_CAN_FD {
		return fmt.Errorf("record of %d bytes: %w", len(record), ErrInvalidFrameLength)
	}
	canID := CANID(binary.LittleEndian.Uint32(record[0:4]) & _CAN_EXT_ID_MASK)
	header := binary.LittleEndian.Uint32(record[4:8])
	dlen := DLCToLength(uint8(header>>recordDLCShift) & recordDLCMask)
	data := record[RecordHeaderSize:]
	switch {
	case dlen == 0:
		return fmt.Errorf("frame without tail byte: %w", ErrInvalidFrameLength)
	case dlen > len(data):
		return fmt.Errorf("%d byte frame in %d byte record: %w", dlen, len(data), ErrInvalidFrameLength)
	}

	// Tail byte parsing.
	tail := Tail(data[dlen-_TAIL_SIZE])
	*f = RxFrame{
		CANID: canID,
		Metadata: RxMetadata{
			Priority:    canID.Priority(),
			TxKind:      canID.Kind(),
			Port:        canID.PortID(),
			Source:      canID.Source(),
			Destination: canID.Destination(),
			TID:         tail.TransferID(),
		},
		Status: FrameStatus{
			Type:   tail.FrameType(),
			Toggle: tail.IsToggled(),
		},
		payloadSize: dlen - _TAIL_SIZE,
	}
	copy(f.payloadBuffer[:], data[:f.payloadSize])
	return nil
}

// Validate checks the frame against the Cyphal/CAN frame acceptance rules.
// Parse never applies these rules; strict receivers discard frames that
// fail validation.
func (f *RxFrame) Validate() error {
	canID := f.CANID
	md := &f.Metadata
	start := f.Status.Type == FrameSingle || f.Status.Type == FrameMultiStart
	end := f.Status.Type == FrameSingle || f.Status.Type == FrameMultiEnd
	switch {
	// Reserved bits may be unreserved in the future.
	case canID&FLAG_RESERVED_23 != 0:
		return fmt.Errorf("reserved bit 23 set: %w", ErrInvalidFrame)
	case canID.IsMessage() && canID&FLAG_RESERVED_07 != 0:
		return fmt.Errorf("reserved bit 7 set: %w", ErrInvalidFrame)
	// A service transfer cannot be addressed to its own source.
	case !canID.IsMessage() && md.Source == md.Destination:
		return fmt.Errorf("service from node %s to itself: %w", md.Source, ErrInvalidFrame)
	// Protocol version check: if SOT is set, then the toggle shall also be set.
	case start && f.Status.Toggle != _INITIAL_TOGGLE:
		return fmt.Errorf("start of transfer without initial toggle: %w", ErrInvalidFrame)
	// Anonymous transfers can be only single-frame transfers.
	case md.Source.IsUnset() && !(start && end):
		return fmt.Errorf("anonymous multi-frame transfer: %w", ErrInvalidFrame)
	// Non-last frames of a multi-frame transfer shall utilize the MTU fully.
	case !end && f.payloadSize < MFT_NON_LAST_FRAME_PAYLOAD_MIN:
		return fmt.Errorf("non-last frame with %d payload bytes: %w", f.payloadSize, ErrInvalidFrame)
	// A frame that is a part of a multi-frame transfer cannot be empty (tail byte not included).
	case f.payloadSize == 0 && !(start && end):
		return fmt.Errorf("empty multi-frame frame: %w", ErrInvalidFrame)
	}
	return nil
}
