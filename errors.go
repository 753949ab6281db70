package canard

import (
	"errors"
)

// Errors returned by this package. All failures are one of these kinds,
// possibly wrapped with context; match them with errors.Is.
var (
	// ErrInvalidArgument reports an out of range identifier or an illegal
	// anonymous transfer (multi-frame message or any service transfer).
	ErrInvalidArgument = errors.New("canard: invalid argument")
	// ErrInvalidFrameSize reports a byte count that cannot be represented by a CAN FD DLC
	// or that does not fit the instance MTU.
	ErrInvalidFrameSize = errors.New("canard: invalid frame size")
	// ErrInvalidFrameLength reports received data that is not a whole number of records
	// or a record whose declared length is not usable.
	ErrInvalidFrameLength = errors.New("canard: invalid frame length")
	// ErrInvalidCANID reports a failure to build the extended CAN identifier of a transfer.
	ErrInvalidCANID = errors.New("canard: invalid CAN ID")
	// ErrInvalidState reports a tail byte that would start a transfer with a non-initial toggle.
	ErrInvalidState = errors.New("canard: invalid state")
	// ErrLengthMismatch reports a declared data length that disagrees with the data.
	ErrLengthMismatch = errors.New("canard: length mismatch")
	// ErrInvalidFrame reports a received frame that breaks a Cyphal/CAN frame rule. Only returned by RxFrame.Validate.
	ErrInvalidFrame = errors.New("canard: invalid frame")
)
