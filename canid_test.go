package canard

import (
	"errors"
	"testing"
)

func TestMakeMessageID(t *testing.T) {
	const want CANID = 0b000_0_0_0_11_0000001100100_0_0001010
	got, err := MakeMessageID(100, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %029b, want %029b", got, want)
	}
	if got.PortID() != 100 || got.Source() != 10 || !got.IsMessage() || got.IsAnonymous() {
		t.Errorf("bad decode of %#x", uint32(got))
	}
	if _, err := MakeMessageID(SUBJECT_ID_MAX+1, 10); !errors.Is(err, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument for subject out of range, got", err)
	}
	if _, err := MakeMessageID(1, NODE_ID_MAX+1); !errors.Is(err, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument for node out of range, got", err)
	}
}

func TestMakeServiceID(t *testing.T) {
	const want CANID = 0b000_1_1_0_110011001_0000011_0100111
	got, err := MakeServiceID(0b110011001, true, 0b0100111, 0b0000011)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %029b, want %029b", got, want)
	}
	if got.Kind() != TxKindRequest || got.Source() != 0b0100111 || got.Destination() != 0b0000011 {
		t.Errorf("bad decode of %#x", uint32(got))
	}
	resp, err := MakeServiceID(5, false, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Kind() != TxKindResponse {
		t.Error("expected response kind, got", resp.Kind())
	}
	for _, tc := range []struct {
		service  PortID
		src, dst NodeID
	}{
		{SERVICE_ID_MAX + 1, 1, 2},
		{1, NODE_ID_MAX + 1, 2},
		{1, 1, NodeIDUnset},
	} {
		if _, err := MakeServiceID(tc.service, true, tc.src, tc.dst); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%+v: expected ErrInvalidArgument, got %v", tc, err)
		}
	}
}

func TestMakeCANID(t *testing.T) {
	const plMTU = 7
	meta := Metadata{Priority: PriorityHigh, TxKind: TxKindMessage, Port: 321, Remote: NodeIDUnset}
	id, err := meta.makeCANID([]byte{1, 2, 3}, 42, plMTU)
	if err != nil {
		t.Fatal(err)
	}
	if id.Priority() != PriorityHigh || id.PortID() != 321 || id.Source() != 42 {
		t.Errorf("bad message id %#x", uint32(id))
	}

	// Anonymous single frame: pseudo source from payload CRC.
	payload := []byte{1, 2, 3}
	id, err = meta.makeCANID(payload, NodeIDUnset, plMTU)
	if err != nil {
		t.Fatal(err)
	}
	if !id.IsAnonymous() || !id.Source().IsUnset() {
		t.Errorf("expected anonymous id, got %#x", uint32(id))
	}
	if NodeID(id&NODE_ID_MAX) != NodeID(NewCRC().Add(payload)&NODE_ID_MAX) {
		t.Error("pseudo node id not derived from payload CRC")
	}

	// Anonymous multi-frame.
	_, err = meta.makeCANID(incrementingPayload(plMTU+1), NodeIDUnset, plMTU)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument for anonymous multi-frame, got", err)
	}

	// Anonymous service.
	svc := Metadata{Priority: PriorityNominal, TxKind: TxKindRequest, Port: 10, Remote: 5}
	if _, err = svc.makeCANID(nil, NodeIDUnset, plMTU); !errors.Is(err, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument for anonymous service, got", err)
	}
	// Service without destination.
	svc.Remote = NodeIDUnset
	if _, err = svc.makeCANID(nil, 1, plMTU); !errors.Is(err, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument for service without remote, got", err)
	}
	// Message with destination.
	meta.Remote = 3
	if _, err = meta.makeCANID(nil, 1, plMTU); !errors.Is(err, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument for addressed message, got", err)
	}
	meta.Remote = NodeIDUnset
	meta.Priority = PriorityUndefined
	if _, err = meta.makeCANID(nil, 1, plMTU); !errors.Is(err, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument for undefined priority, got", err)
	}
}
