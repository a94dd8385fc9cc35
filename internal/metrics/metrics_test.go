package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCatalogOp_CountsByOutcome(t *testing.T) {
	okBefore := testutil.ToFloat64(catalogOps.WithLabelValues("create", "ok"))
	errBefore := testutil.ToFloat64(catalogOps.WithLabelValues("create", "error"))

	CatalogOp("create", nil, 5*time.Millisecond)
	CatalogOp("create", errors.New("boom"), time.Millisecond)
	CatalogOp("create", nil, time.Millisecond)

	if got := testutil.ToFloat64(catalogOps.WithLabelValues("create", "ok")) - okBefore; got != 2 {
		t.Fatalf("ok counter delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(catalogOps.WithLabelValues("create", "error")) - errBefore; got != 1 {
		t.Fatalf("error counter delta = %v, want 1", got)
	}
}

func TestCatalogOp_ObservesDuration(t *testing.T) {
	before := testutil.CollectAndCount(catalogOpDur)
	CatalogOp("delete", nil, 3*time.Millisecond)
	if after := testutil.CollectAndCount(catalogOpDur); after < before {
		t.Fatalf("histogram series vanished: before=%d after=%d", before, after)
	}
}

func TestAuditEntry_CountsByLevel(t *testing.T) {
	before := testutil.ToFloat64(auditEntries.WithLabelValues("info"))
	AuditEntry("info")
	AuditEntry("info")
	if got := testutil.ToFloat64(auditEntries.WithLabelValues("info")) - before; got != 2 {
		t.Fatalf("info entries delta = %v, want 2", got)
	}
}

func TestAuditWriteFailure_Counts(t *testing.T) {
	before := testutil.ToFloat64(auditWriteFailures)
	AuditWriteFailure()
	if got := testutil.ToFloat64(auditWriteFailures) - before; got != 1 {
		t.Fatalf("failure counter delta = %v, want 1", got)
	}
}
