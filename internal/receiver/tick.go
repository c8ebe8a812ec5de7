package receiver

import "github.com/thnkslprpt/cfdp/internal/pdu"

// Tick advances this transaction by one wakeup's worth of timer
// processing, dispatching to the class-specific tick handler
// (CF_CFDP_R_Tick).
func (t *Transaction) Tick() {
	switch t.Class {
	case ClassUnacknowledged:
		t.TickR1()
	case ClassAcknowledged:
		t.TickR2()
	}
}

// Recv feeds one PDU into this transaction, dispatching to the
// class-specific receive handler.
func (t *Transaction) Recv(p pdu.PDU) error {
	switch t.Class {
	case ClassUnacknowledged:
		return t.RecvR1(p)
	case ClassAcknowledged:
		return t.RecvR2(p)
	}
	return nil
}

// TickAll advances every active transaction in the pool by one wakeup,
// then reaps whatever finished as a result.
func (p *Pool) TickAll() {
	for _, t := range p.Active() {
		t.Tick()
	}
	p.ReapFinished()
}
