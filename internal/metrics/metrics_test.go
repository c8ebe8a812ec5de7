package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPDUsReceivedIncrements(t *testing.T) {
	PDUsReceived.WithLabelValues("ch0", "filedata").Inc()
	got := testutil.ToFloat64(PDUsReceived.WithLabelValues("ch0", "filedata"))
	assert.GreaterOrEqual(t, got, float64(1))
}

func TestTransactionsCompletedLabelsByConditionCode(t *testing.T) {
	TransactionsCompleted.WithLabelValues("ch0", "NO_ERROR").Inc()
	TransactionsCompleted.WithLabelValues("ch0", "CHECKSUM_FAILURE").Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(TransactionsCompleted.WithLabelValues("ch0", "NO_ERROR")), float64(1))
	assert.GreaterOrEqual(t, testutil.ToFloat64(TransactionsCompleted.WithLabelValues("ch0", "CHECKSUM_FAILURE")), float64(1))
}

func TestActiveTransactionsGaugeSetAndAdd(t *testing.T) {
	ActiveTransactions.WithLabelValues("ch1").Set(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(ActiveTransactions.WithLabelValues("ch1")))
	ActiveTransactions.WithLabelValues("ch1").Dec()
	assert.Equal(t, float64(2), testutil.ToFloat64(ActiveTransactions.WithLabelValues("ch1")))
}
