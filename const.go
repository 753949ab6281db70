package canard

import "strconv"

// Parameter ranges are inclusive; the lower bound is zero for all. See Cyphal/CAN Specification for background.
const (
	SUBJECT_ID_MAX         = 8191
	SERVICE_ID_MAX         = 511
	NODE_ID_MAX            = 127
	PRIORITY_MAX           = 7
	TRANSFER_ID_BIT_LENGTH = 5
	TRANSFER_ID_MAX        = ((1 << TRANSFER_ID_BIT_LENGTH) - 1)
)

// MTU values for the supported protocols. Per the recommendations given in the
// Cyphal/CAN Specification, other MTU values should not be used.
const (
	MTU_CAN_CLASSIC = 8
	MTU_CAN_FD      = 64
)

const (
	FLAG_SERVICE_NOT_MESSAGE  = 1 << 25
	FLAG_ANONYMOUS_MESSAGE    = 1 << 24
	FLAG_REQUEST_NOT_RESPONSE = 1 << 24
	FLAG_RESERVED_23          = 1 << 23
	FLAG_RESERVED_07          = 1 << 7
)

const (
	TAIL_START_OF_TRANSFER         = 128
	TAIL_END_OF_TRANSFER           = 64
	TAIL_TOGGLE                    = 32
	MFT_NON_LAST_FRAME_PAYLOAD_MIN = 7
)

const (
	offset_Priority  = 26
	offset_SubjectID = 8
	offset_ServiceID = 14
	offset_DstNodeID = 7

	_CAN_EXT_ID_MASK    = (1 << 29) - 1
	_INITIAL_TOGGLE     = true
	_PADDING_BYTE_VALUE = 0
	_TAIL_SIZE          = 1
)

// HeartbeatSubjectID is the fixed subject of uavcan.node.Heartbeat.
const HeartbeatSubjectID PortID = 7509

// Priority is a transfer priority level. Lower values take precedence on the bus.
type Priority uint8

// Transfer priority level mnemonics per the recommendations given in the Cyphal Specification.
const (
	PriorityExceptional Priority = iota
	PriorityImmediate
	PriorityFast
	PriorityHigh
	PriorityNominal // Nominal priority level should be the default.
	PriorityLow
	PrioritySlow
	PriorityOptional
	// PriorityUndefined is reported for values that do not fit in the 3 bit priority field.
	PriorityUndefined
)

const priorityMask = PRIORITY_MAX

func (p Priority) IsValid() bool { return p <= PRIORITY_MAX }

func (p Priority) String() string {
	switch p {
	case PriorityExceptional:
		return "exceptional"
	case PriorityImmediate:
		return "immediate"
	case PriorityFast:
		return "fast"
	case PriorityHigh:
		return "high"
	case PriorityNominal:
		return "nominal"
	case PriorityLow:
		return "low"
	case PrioritySlow:
		return "slow"
	case PriorityOptional:
		return "optional"
	}
	return "undefined"
}

// TxKind is the transfer kind as defined by the Cyphal Specification.
type TxKind uint8

const (
	TxKindMessage  TxKind = iota ///< Multicast, from publisher to all subscribers.
	TxKindResponse               ///< Point-to-point, from server to client.
	TxKindRequest                ///< Point-to-point, from client to server.
	numberOfTxKinds
)

func (k TxKind) String() string {
	switch k {
	case TxKindMessage:
		return "message"
	case TxKindResponse:
		return "response"
	case TxKindRequest:
		return "request"
	}
	return "TxKind(" + strconv.Itoa(int(k)) + ")"
}

// IsService reports whether the kind is a request or a response.
func (k TxKind) IsService() bool { return k == TxKindRequest || k == TxKindResponse }

// NodeID identifies a node on the bus. Values above NODE_ID_MAX
// mean broadcast destination or anonymous source.
type NodeID uint8

// NodeIDUnset represents an undefined node-ID.
const NodeIDUnset NodeID = 255

//go:inline
func (n NodeID) IsValid() bool {
	return n.IsSet() || n.IsUnset()
}

//go:inline
func (n NodeID) IsUnset() bool { return n == NodeIDUnset }

//go:inline
func (n NodeID) IsSet() bool { return n <= NODE_ID_MAX }

//go:inline
func (n *NodeID) Unset() { *n = NodeIDUnset }

func (n NodeID) String() string {
	if !n.IsSet() {
		return "anon"
	}
	return strconv.Itoa(int(n))
}

// PortID is a subject-ID for messages or a service-ID for requests and responses.
type PortID uint16

// TID is the transfer-ID. Only the lower TRANSFER_ID_BIT_LENGTH bits go on the wire.
type TID uint8

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
