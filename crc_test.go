package canard

import (
	"errors"
	"testing"

	"github.com/sigurn/crc16"
)

var ccittFalse = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

func TestCRCCheckVector(t *testing.T) {
	const want = 0x29B1
	got, err := ComputeCRC(CRC_INITIAL, 9, []byte("123456789"))
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %#04x, want %#04x", got, want)
	}
}

func TestCRCEmpty(t *testing.T) {
	got, err := ComputeCRC(CRC_INITIAL, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != CRC_INITIAL {
		t.Errorf("empty data changed CRC to %#04x", got)
	}
}

func TestCRCLengthMismatch(t *testing.T) {
	_, err := ComputeCRC(CRC_INITIAL, 3, []byte{1, 2})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestCRCMatchesTableImplementation(t *testing.T) {
	for n := 0; n < 300; n += 7 {
		data := incrementingPayload(n)
		for i := range data {
			data[i] ^= byte(n * 31)
		}
		want := crc16.Checksum(data, ccittFalse)
		if got := NewCRC().Add(data); uint16(got) != want {
			t.Fatalf("len %d: got %#04x, want %#04x", n, got, want)
		}
	}
}

func TestCRCResidue(t *testing.T) {
	data := []byte("Cyphal/CAN transfer")
	crc := NewCRC().Add(data)
	trailer := crc.Bytes()
	if trailer[0] != byte(crc>>8) || trailer[1] != byte(crc) {
		t.Fatalf("trailer %x is not big-endian %#04x", trailer, crc)
	}
	if got := crc.Add(trailer[:]); got != CRC_RESIDUE {
		t.Errorf("residue %#04x, want %#04x", got, CRC_RESIDUE)
	}
}
