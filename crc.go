package canard

import "fmt"

// CRC is the transfer CRC: CRC-16/CCITT-FALSE. Multi-frame transfers carry
// it big-endian after the payload and padding. Running the CRC over the
// payload, padding and the two trailing bytes yields CRC_RESIDUE.
type CRC uint16

const (
	CRC_INITIAL CRC = 0xFFFF
	CRC_RESIDUE CRC = 0x0000
	CRC_SIZE        = 2

	crcPoly CRC = 0x1021
	crcTop  CRC = 0x8000
)

func NewCRC() CRC { return CRC_INITIAL }

// AddByte folds a single byte into the CRC, MSB first.
func (crc CRC) AddByte(b byte) CRC {
	crc ^= CRC(b) << 8
	for i := 0; i < 8; i++ {
		if crc&crcTop != 0 {
			crc = (crc << 1) ^ crcPoly
		} else {
			crc <<= 1
		}
	}
	return crc
}

// Add folds all of data into the CRC.
func (crc CRC) Add(data []byte) CRC {
	for _, b := range data {
		crc = crc.AddByte(b)
	}
	return crc
}

// Bytes returns the CRC in wire order (high byte first).
func (crc CRC) Bytes() [CRC_SIZE]byte {
	return [CRC_SIZE]byte{byte(crc >> 8), byte(crc)}
}

// ComputeCRC folds size bytes of data into initial. It fails with
// ErrLengthMismatch if size is not the length of data.
func ComputeCRC(initial CRC, size int, data []byte) (CRC, error) {
	if size != len(data) {
		return initial, fmt.Errorf("crc over %d bytes declared as %d: %w", len(data), size, ErrLengthMismatch)
	}
	return initial.Add(data), nil
}
