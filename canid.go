package canard

import (
	"fmt"
)

// CANID is a 29 bit extended CAN identifier carrying a Cyphal session specifier.
//
//	bits 28..26  priority
//	bit  25      service, not message
//	bit  24      request, not response (services) or anonymous (messages)
//	messages:  bits 21..8 subject-ID, bits 6..0 source node-ID
//	services:  bits 22..14 service-ID, bits 13..7 destination node-ID, bits 6..0 source node-ID
type CANID uint32

func (can CANID) Priority() Priority { return Priority(can>>offset_Priority) & priorityMask }
func (can CANID) IsMessage() bool    { return can&FLAG_SERVICE_NOT_MESSAGE == 0 }
func (can CANID) IsRequest() bool {
	return !can.IsMessage() && can&FLAG_REQUEST_NOT_RESPONSE != 0
}
func (can CANID) IsAnonymous() bool { return can.IsMessage() && can&FLAG_ANONYMOUS_MESSAGE != 0 }

// Kind returns the transfer kind encoded in the service and request flags.
func (can CANID) Kind() TxKind {
	switch {
	case can.IsMessage():
		return TxKindMessage
	case can.IsRequest():
		return TxKindRequest
	}
	return TxKindResponse
}

// PortID returns the subject-ID of a message or the service-ID of a service transfer.
func (can CANID) PortID() PortID {
	if can.IsMessage() {
		return PortID(can>>offset_SubjectID) & SUBJECT_ID_MAX
	}
	return PortID(can>>offset_ServiceID) & SERVICE_ID_MAX
}

// Source returns the source node-ID, which is unset for anonymous messages.
func (can CANID) Source() NodeID {
	if can.IsAnonymous() {
		return NodeIDUnset
	}
	return NodeID(can & NODE_ID_MAX)
}

// Destination returns the destination node-ID, which is always unset for messages.
func (can CANID) Destination() NodeID {
	if can.IsMessage() {
		return NodeIDUnset
	}
	return NodeID((can >> offset_DstNodeID) & NODE_ID_MAX)
}

// MakeMessageID returns the session specifier of a message on subject published by src.
// Priority is not included.
func MakeMessageID(subject PortID, src NodeID) (CANID, error) {
	switch {
	case src > NODE_ID_MAX:
		return 0, fmt.Errorf("source node %d: %w", src, ErrInvalidArgument)
	case subject > SUBJECT_ID_MAX:
		return 0, fmt.Errorf("subject %d: %w", subject, ErrInvalidArgument)
	}
	// Bits 21 and 22 are set for compatibility with v0 receivers.
	aux := uint32(subject) | (SUBJECT_ID_MAX + 1) | ((SUBJECT_ID_MAX + 1) * 2)
	return CANID(uint32(src) | aux<<offset_SubjectID), nil
}

// MakeServiceID returns the session specifier of a service transfer from src to dst.
// Priority is not included.
func MakeServiceID(service PortID, request bool, src, dst NodeID) (CANID, error) {
	switch {
	case src > NODE_ID_MAX:
		return 0, fmt.Errorf("source node %d: %w", src, ErrInvalidArgument)
	case dst > NODE_ID_MAX:
		return 0, fmt.Errorf("destination node %d: %w", dst, ErrInvalidArgument)
	case service > SERVICE_ID_MAX:
		return 0, fmt.Errorf("service %d: %w", service, ErrInvalidArgument)
	}
	spec := CANID(src) | CANID(dst)<<offset_DstNodeID
	spec |= CANID(service) << offset_ServiceID
	spec |= CANID(b2i(request)) << 24
	spec |= FLAG_SERVICE_NOT_MESSAGE
	return spec, nil
}

// makeCANID builds the full extended CAN identifier for a transfer sent by local.
// Anonymous messages get a pseudo source node-ID derived from the payload CRC and
// must fit in a single frame of presentationLayerMTU bytes.
func (m *Metadata) makeCANID(payload []byte, local NodeID, presentationLayerMTU int) (CANID, error) {
	if !m.Priority.IsValid() {
		return 0, fmt.Errorf("priority %d: %w", m.Priority, ErrInvalidArgument)
	}
	var (
		out CANID
		err error
	)
	switch {
	case m.TxKind == TxKindMessage && m.Remote.IsUnset() && m.Port <= SUBJECT_ID_MAX:
		if local.IsSet() {
			out, err = MakeMessageID(m.Port, local)
		} else if len(payload) <= presentationLayerMTU {
			out, err = MakeMessageID(m.Port, pseudoNodeID(payload))
			out |= FLAG_ANONYMOUS_MESSAGE
		} else {
			return 0, fmt.Errorf("anonymous multi-frame message of %d bytes: %w", len(payload), ErrInvalidArgument)
		}
	case m.TxKind.IsService() && m.Remote.IsSet() && m.Port <= SERVICE_ID_MAX:
		if !local.IsSet() {
			return 0, fmt.Errorf("anonymous %s: %w", m.TxKind, ErrInvalidArgument)
		}
		out, err = MakeServiceID(m.Port, m.TxKind == TxKindRequest, local, m.Remote)
	default:
		return 0, fmt.Errorf("%s on port %d to node %s: %w", m.TxKind, m.Port, m.Remote, ErrInvalidArgument)
	}
	if err != nil {
		return 0, err
	}
	out |= CANID(m.Priority) << offset_Priority
	if out == 0 || out > _CAN_EXT_ID_MASK {
		return 0, fmt.Errorf("degenerate identifier %#x: %w", uint32(out), ErrInvalidCANID)
	}
	return out, nil
}

func pseudoNodeID(data []byte) NodeID {
	return NodeID(NewCRC().Add(data)) & NODE_ID_MAX
}
