package canard

import (
	"fmt"
)

// Instance holds the local node identity, the link MTU and the outgoing
// transfer-ID counter. It is not safe for concurrent use; callers sharing an
// Instance must serialize calls that emit transfers.
type Instance struct {
	node NodeID
	mtu  int
	tid  TID
}

// NewInstance returns an Instance for node with a link MTU of mtuBytes.
// node may be NodeIDUnset (or any value above NODE_ID_MAX) for an anonymous node.
// mtuBytes must be a valid CAN FD data length between MTU_CAN_CLASSIC and MTU_CAN_FD.
func NewInstance(node NodeID, mtuBytes int) (*Instance, error) {
	if mtuBytes < MTU_CAN_CLASSIC || mtuBytes > MTU_CAN_FD {
		return nil, fmt.Errorf("mtu %d not in %d..%d: %w", mtuBytes, MTU_CAN_CLASSIC, MTU_CAN_FD, ErrInvalidArgument)
	}
	if rounded, _ := RoundUpFrameLength(mtuBytes); rounded != mtuBytes {
		return nil, fmt.Errorf("mtu %d is not a CAN FD data length (next is %d): %w", mtuBytes, rounded, ErrInvalidArgument)
	}
	return &Instance{node: node, mtu: mtuBytes}, nil
}

// NodeID returns the local node-ID. Values above NODE_ID_MAX mean the node is anonymous.
func (ins *Instance) NodeID() NodeID { return ins.node }

// SetNodeID changes the local node-ID. The transfer-ID counter is kept.
func (ins *Instance) SetNodeID(node NodeID) { ins.node = node }

// MTU returns the link MTU in bytes.
func (ins *Instance) MTU() int { return ins.mtu }

// TransferID returns the transfer-ID the next emitted transfer will carry.
func (ins *Instance) TransferID() TID { return ins.tid }

// Metadata describes an outgoing transfer.
type Metadata struct {
	Priority Priority
	TxKind   TxKind
	Port     PortID
	// Remote is the destination of a service transfer. Must be NodeIDUnset for messages.
	Remote NodeID
	TID    TID
}

// heartbeatPayload is uavcan.node.Heartbeat.1.0 with zero uptime, nominal health,
// operational mode and a vendor specific status code of 0xa1.
var heartbeatPayload = [...]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xa1}

// Heartbeat encodes a heartbeat message from the local node.
func (ins *Instance) Heartbeat() ([]TxFrame, error) {
	return ins.Message(HeartbeatSubjectID, heartbeatPayload[:])
}

// Message encodes a message on subject with nominal priority.
func (ins *Instance) Message(subject PortID, payload []byte) ([]TxFrame, error) {
	return ins.emit(TxKindMessage, subject, NodeIDUnset, payload)
}

// Request encodes a service request to remote with nominal priority.
func (ins *Instance) Request(remote NodeID, service PortID, payload []byte) ([]TxFrame, error) {
	return ins.emit(TxKindRequest, service, remote, payload)
}

// Response encodes a service response to remote with nominal priority.
func (ins *Instance) Response(remote NodeID, service PortID, payload []byte) ([]TxFrame, error) {
	return ins.emit(TxKindResponse, service, remote, payload)
}

// emit encodes a transfer with the current transfer-ID and advances the
// counter on success.
func (ins *Instance) emit(kind TxKind, port PortID, remote NodeID, payload []byte) ([]TxFrame, error) {
	meta := Metadata{
		Priority: PriorityNominal,
		TxKind:   kind,
		Port:     port,
		Remote:   remote,
		TID:      ins.tid,
	}
	frames, err := ins.Encode(&meta, payload)
	if err != nil {
		return nil, err
	}
	ins.tid = (ins.tid + 1) & TRANSFER_ID_MAX
	return frames, nil
}
