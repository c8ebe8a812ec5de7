package pdu

import "github.com/rs/xid"

// TxnKey is the wire identity of a transaction: the CFDP entity ID of the
// PDU's source plus the sequence number it assigned. Two PDUs with the
// same TxnKey belong to the same transaction; this is the only identity
// the protocol itself defines.
type TxnKey struct {
	PeerEID        uint64
	SequenceNumber uint32
}

// CorrelationID is a synthetic, process-local identifier minted once per
// transaction for log lines and metric labels, so a human grepping logs
// doesn't have to carry a (peer_eid, sequence_number) pair around by hand.
// It carries no protocol meaning and is never put on the wire.
type CorrelationID string

// NewCorrelationID mints a fresh, sortable-by-creation-time correlation ID.
func NewCorrelationID() CorrelationID {
	return CorrelationID(xid.New().String())
}
