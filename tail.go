package canard

import "fmt"

// Tail is the last byte of the payload and contains transfer
// control flow data such as if the transfer is a start/end frame
// and if toggle bit is set.
type Tail byte

func (t Tail) IsToggled() bool { return t&TAIL_TOGGLE != 0 }
func (t Tail) IsStart() bool   { return t&TAIL_START_OF_TRANSFER != 0 }
func (t Tail) IsEnd() bool     { return t&TAIL_END_OF_TRANSFER != 0 }
func (t Tail) TransferID() TID { return TID(t & TRANSFER_ID_MAX) }

// FrameType returns the position of the frame within its transfer.
func (t Tail) FrameType() FrameType {
	switch {
	case t.IsStart() && t.IsEnd():
		return FrameSingle
	case t.IsStart():
		return FrameMultiStart
	case t.IsEnd():
		return FrameMultiEnd
	}
	return FrameMultiInProcess
}

// MakeTail builds a tail byte. The first frame of a transfer must carry the
// initial toggle state, otherwise ErrInvalidState is returned.
func MakeTail(start, end, toggle bool, tid TID) (Tail, error) {
	if start && toggle != _INITIAL_TOGGLE {
		return 0, fmt.Errorf("start of transfer %d without initial toggle: %w", tid, ErrInvalidState)
	}
	return Tail(tailByte(start, end, toggle, tid)), nil
}

func tailByte(start, end, toggle bool, tid TID) (tail byte) {
	tail = byte(tid & TRANSFER_ID_MAX)
	tail |= byte(b2i(toggle) << 5)
	tail |= byte(b2i(end) << 6)
	tail |= byte(b2i(start) << 7)
	return tail
}

// FrameType is derived from the start and end of transfer flags of a tail byte.
type FrameType uint8

const (
	FrameSingle FrameType = iota
	FrameMultiStart
	FrameMultiEnd
	FrameMultiInProcess
)

func (ft FrameType) String() string {
	switch ft {
	case FrameSingle:
		return "single"
	case FrameMultiStart:
		return "start"
	case FrameMultiEnd:
		return "end"
	case FrameMultiInProcess:
		return "middle"
	}
	return "FrameType(?)"
}
