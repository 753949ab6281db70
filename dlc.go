package canard

import "fmt"

// CAN FD data length quantization. A 4 bit DLC addresses 16 data lengths;
// any other byte count must be rounded up to the next addressable length.
var (
	canDLCToLength = [16]uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 12, 16, 20, 24, 32, 48, 64}
	canLengthToDLC = [65]uint8{
		0, 1, 2, 3, 4, 5, 6, 7, 8, // 0-8
		9, 9, 9, 9, // 9-12
		10, 10, 10, 10, // 13-16
		11, 11, 11, 11, // 17-20
		12, 12, 12, 12, // 21-24
		13, 13, 13, 13, 13, 13, 13, 13, // 25-32
		14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, // 33-48
		15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, // 49-64
	}
)

// DLCToLength returns the number of data bytes addressed by the lower 4 bits of dlc.
func DLCToLength(dlc uint8) int {
	return int(canDLCToLength[dlc&0xf])
}

// LengthToDLC returns the smallest DLC that addresses at least n bytes.
func LengthToDLC(n int) (uint8, error) {
	if n < 0 || n >= len(canLengthToDLC) {
		return 0, fmt.Errorf("%d bytes exceed CAN FD frame: %w", n, ErrInvalidFrameSize)
	}
	return canLengthToDLC[n], nil
}

// RoundUpFrameLength rounds n up to the nearest valid CAN FD data length.
func RoundUpFrameLength(n int) (int, error) {
	dlc, err := LengthToDLC(n)
	if err != nil {
		return 0, err
	}
	return int(canDLCToLength[dlc]), nil
}

// PresentationLayerMTU returns the number of transfer bytes a frame can carry
// for a link MTU of mtuBytes, excluding the tail byte. Values outside
// [MTU_CAN_CLASSIC, MTU_CAN_FD] are clamped and then rounded up to a valid length.
func PresentationLayerMTU(mtuBytes int) int {
	var mtu int
	switch {
	case mtuBytes < MTU_CAN_CLASSIC:
		mtu = MTU_CAN_CLASSIC
	case mtuBytes < len(canLengthToDLC):
		mtu = int(canDLCToLength[canLengthToDLC[mtuBytes]])
	default:
		mtu = int(canDLCToLength[canLengthToDLC[len(canLengthToDLC)-1]])
	}
	return mtu - _TAIL_SIZE
}
