package pdu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDUVariantsImplementInterface(t *testing.T) {
	var variants = []PDU{
		FileData{Offset: 0, Data: []byte("x")},
		EOF{ConditionCode: NoError, FileSize: 10, CRC: 1},
		Metadata{SrcName: "a", DstName: "b", FileSize: 10},
		Nak{StartOfScope: 0, EndOfScope: 10},
		Fin{ConditionCode: NoError, DeliveryCode: DeliveryComplete},
		Ack{DirectiveCode: DirectiveFin, ConditionCode: NoError},
	}
	assert.Len(t, variants, 6)
}

func TestAckIsFinAck(t *testing.T) {
	assert.True(t, Ack{DirectiveCode: DirectiveFin}.IsFinAck())
	assert.False(t, Ack{DirectiveCode: DirectiveEOF}.IsFinAck())
}

func TestDirectiveCodeString(t *testing.T) {
	assert.Equal(t, "EOF", DirectiveEOF.String())
	assert.Equal(t, "FIN", DirectiveFin.String())
}

func TestConditionCodeString(t *testing.T) {
	cases := []struct {
		code ConditionCode
		want string
	}{
		{NoError, "NO_ERROR"},
		{ChecksumFailure, "CHECKSUM_FAILURE"},
		{CheckLimitReached, "CHECK_LIMIT_REACHED"},
		{InactivityDetected, "INACTIVITY_DETECTED"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.code.String())
	}
}

func TestConditionCodeIsError(t *testing.T) {
	assert.False(t, NoError.IsError())
	assert.True(t, ChecksumFailure.IsError())
}

func TestNewCorrelationIDIsUnique(t *testing.T) {
	a := NewCorrelationID()
	b := NewCorrelationID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, string(a))
}

func TestTxnKeyEquality(t *testing.T) {
	a := TxnKey{PeerEID: 1, SequenceNumber: 2}
	b := TxnKey{PeerEID: 1, SequenceNumber: 2}
	c := TxnKey{PeerEID: 1, SequenceNumber: 3}
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
