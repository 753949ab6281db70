package canard

import "testing"

func newInstanceHelper(t *testing.T, node NodeID, mtu int) *Instance {
	t.Helper()
	ins, err := NewInstance(node, mtu)
	if err != nil {
		t.Fatal(err)
	}
	return ins
}

// transferBytes concatenates the data of frames with the tail bytes removed.
func transferBytes(frames []TxFrame) (out []byte) {
	for i := range frames {
		data := frames[i].Data()
		out = append(out, data[:len(data)-1]...)
	}
	return out
}

func incrementingPayload(n int) []byte {
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i & 0xff)
	}
	return payload
}
