package canard

import (
	"bytes"
	"errors"
	"testing"
)

func TestInstanceTx(t *testing.T) {
	const tid = 21
	ins := newInstanceHelper(t, NodeIDUnset, MTU_CAN_FD)
	payload := incrementingPayload(1024)

	meta := Metadata{
		Priority: PriorityNominal,
		TxKind:   TxKindMessage,
		Port:     321,
		Remote:   NodeIDUnset,
		TID:      tid,
	}
	frames, err := ins.Encode(&meta, payload[:8])
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 {
		t.Fatal("expected single frame, got", len(frames))
	}
	got := frames[0]
	if got.Len() != 12 {
		t.Error("padding not correctly formed")
	}
	for i, b := range got.Data() {
		if i < 8 && b != byte(i) {
			t.Error("mismatch in payload at", i)
		} else if i >= 8 && i < 11 && b != 0 {
			t.Error("padding must be 0")
		} else if i == got.Len()-1 && b != tailByte(true, true, true, tid) {
			t.Error("wrong tailbyte bits, got", b)
		}
	}
	if !got.CANID.IsAnonymous() {
		t.Error("expected anonymous frame")
	}

	meta.Priority = PriorityLow
	meta.TID = 22
	ins = newInstanceHelper(t, 42, MTU_CAN_CLASSIC)
	frames, err = ins.Encode(&meta, payload[:8])
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatal("expected two frames on classic CAN, got", len(frames))
	}
	if frames[0].CANID.Priority() != PriorityLow || frames[0].CANID.Source() != 42 {
		t.Errorf("bad CAN ID %#x", uint32(frames[0].CANID))
	}
}

func TestSingleFrameLengths(t *testing.T) {
	for _, mtu := range []int{MTU_CAN_CLASSIC, 16, MTU_CAN_FD} {
		ins := newInstanceHelper(t, 1, mtu)
		plMTU := PresentationLayerMTU(mtu)
		for n := 0; n <= plMTU; n++ {
			frames, err := ins.Message(7, incrementingPayload(n))
			if err != nil {
				t.Fatal(err)
			}
			if len(frames) != 1 {
				t.Fatalf("mtu %d payload %d: expected 1 frame, got %d", mtu, n, len(frames))
			}
			want, _ := RoundUpFrameLength(n + 1)
			if frames[0].Len() != want {
				t.Fatalf("mtu %d payload %d: frame length %d, want %d", mtu, n, frames[0].Len(), want)
			}
			tail := frames[0].TailByte()
			if !tail.IsStart() || !tail.IsEnd() || !tail.IsToggled() {
				t.Fatalf("bad single frame tail %08b", tail)
			}
		}
	}
}

func TestMultiFrameCRC(t *testing.T) {
	for _, mtu := range []int{MTU_CAN_CLASSIC, 12, 32, MTU_CAN_FD} {
		plMTU := PresentationLayerMTU(mtu)
		for _, n := range []int{plMTU + 1, plMTU + 2, 2*plMTU - 1, 2 * plMTU, 3*plMTU + 5, 300} {
			ins := newInstanceHelper(t, 10, mtu)
			payload := incrementingPayload(n)
			frames, err := ins.Message(100, payload)
			if err != nil {
				t.Fatal(err)
			}
			if n == plMTU+1 && len(frames) != 2 {
				t.Fatalf("mtu %d payload %d: expected 2 frames, got %d", mtu, n, len(frames))
			}
			stream := transferBytes(frames)
			if !bytes.Equal(stream[:n], payload) {
				t.Fatalf("mtu %d payload %d: payload not preserved", mtu, n)
			}
			// Everything between payload and CRC is zero padding.
			for i, b := range stream[n : len(stream)-CRC_SIZE] {
				if b != 0 {
					t.Fatalf("mtu %d payload %d: nonzero padding at %d", mtu, n, i)
				}
			}
			want := NewCRC().Add(stream[:len(stream)-CRC_SIZE])
			got := CRC(stream[len(stream)-2])<<8 | CRC(stream[len(stream)-1])
			if got != want {
				t.Fatalf("mtu %d payload %d: CRC %#04x, want %#04x", mtu, n, got, want)
			}
			if res := NewCRC().Add(stream); res != CRC_RESIDUE {
				t.Fatalf("mtu %d payload %d: residue %#04x", mtu, n, res)
			}
			checkTailSequence(t, frames, plMTU)
		}
	}
}

func checkTailSequence(t *testing.T, frames []TxFrame, plMTU int) {
	t.Helper()
	toggle := true
	for i := range frames {
		f := &frames[i]
		tail := f.TailByte()
		last := i == len(frames)-1
		if tail.IsStart() != (i == 0) || tail.IsEnd() != last || tail.IsToggled() != toggle {
			t.Fatalf("frame %d/%d: bad tail %08b", i, len(frames), tail)
		}
		if !last && f.Len() != plMTU+1 {
			t.Fatalf("frame %d is not full: %d bytes", i, f.Len())
		}
		if f.CANID != frames[0].CANID {
			t.Fatalf("frame %d has different CAN ID", i)
		}
		toggle = !toggle
	}
}

func TestMultiFrameSplitCRC(t *testing.T) {
	// 13 bytes on classic CAN: 7 + 6 bytes, CRC high byte ends the second
	// frame and the low byte goes alone into a third.
	ins := newInstanceHelper(t, 10, MTU_CAN_CLASSIC)
	payload := incrementingPayload(13)
	frames, err := ins.Message(100, payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatal("expected 3 frames, got", len(frames))
	}
	if frames[2].Len() != 2 {
		t.Error("expected 2 byte last frame, got", frames[2].Len())
	}
	crc := NewCRC().Add(payload)
	if frames[1].Data()[6] != byte(crc>>8) || frames[2].Data()[0] != byte(crc) {
		t.Error("CRC not split across frames")
	}
	if _, err := frames[2].CRC(); !errors.Is(err, ErrInvalidFrameSize) {
		t.Error("expected ErrInvalidFrameSize reading split CRC from a single frame, got", err)
	}
}

func TestTxFrameCRC(t *testing.T) {
	ins := newInstanceHelper(t, 10, MTU_CAN_CLASSIC)
	payload := incrementingPayload(10)
	frames, err := ins.Message(100, payload)
	if err != nil {
		t.Fatal(err)
	}
	got, err := frames[len(frames)-1].CRC()
	if err != nil {
		t.Fatal(err)
	}
	if want := NewCRC().Add(payload); got != want {
		t.Errorf("got %#04x, want %#04x", got, want)
	}
	if _, err := frames[0].CRC(); !errors.Is(err, ErrInvalidState) {
		t.Error("expected ErrInvalidState reading CRC from first frame, got", err)
	}
	single, err := ins.Message(100, payload[:3])
	if err != nil {
		t.Fatal(err)
	}
	if _, err := single[0].CRC(); !errors.Is(err, ErrInvalidState) {
		t.Error("expected ErrInvalidState reading CRC from single frame, got", err)
	}
}

func TestEncodeErrors(t *testing.T) {
	anon := newInstanceHelper(t, NodeIDUnset, MTU_CAN_CLASSIC)
	_, err := anon.Message(1, incrementingPayload(8))
	if !errors.Is(err, ErrInvalidArgument) || !errors.Is(err, ErrInvalidCANID) {
		t.Error("anonymous multi-frame: expected ErrInvalidCANID wrapping ErrInvalidArgument, got", err)
	}
	_, err = anon.Request(3, 1, nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("anonymous request: expected ErrInvalidArgument, got", err)
	}
	_, err = anon.Response(3, 1, nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("anonymous response: expected ErrInvalidArgument, got", err)
	}
	if anon.TransferID() != 0 {
		t.Error("failed transfers must not advance the transfer-ID, got", anon.TransferID())
	}
	if _, err := anon.Encode(nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Error("nil metadata: expected ErrInvalidArgument, got", err)
	}
}
