package marketlog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDeduplicate_LatestIssueDateWins(t *testing.T) {
	stale := Order{OrderID: 1, Price: decimal.RequireFromString("5.0"), IssueDate: "2026-08-01 10:00:00.000"}
	fresh := Order{OrderID: 1, Price: decimal.RequireFromString("5.5"), IssueDate: "2026-08-01 12:00:00.000"}

	// Latest copy wins regardless of slice position.
	for _, orders := range [][]Order{{stale, fresh}, {fresh, stale}} {
		got := Deduplicate(orders)
		if len(got) != 1 {
			t.Fatalf("Deduplicate len = %d, want 1", len(got))
		}
		if got[0].IssueDate != fresh.IssueDate {
			t.Errorf("kept IssueDate = %q, want %q", got[0].IssueDate, fresh.IssueDate)
		}
		if !got[0].Price.Equal(fresh.Price) {
			t.Errorf("kept Price = %v, want %v", got[0].Price, fresh.Price)
		}
	}
}

func TestDeduplicate_DistinctOrdersPreserved(t *testing.T) {
	orders := []Order{
		{OrderID: 1, IssueDate: "2026-08-01 10:00:00.000"},
		{OrderID: 2, IssueDate: "2026-08-01 10:00:00.000"},
		{OrderID: 3, IssueDate: "2026-08-01 10:00:00.000"},
	}
	got := Deduplicate(orders)
	if len(got) != 3 {
		t.Errorf("Deduplicate len = %d, want 3", len(got))
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	orders := []Order{
		{OrderID: 1, IssueDate: "2026-08-01 10:00:00.000"},
		{OrderID: 1, IssueDate: "2026-08-01 11:00:00.000"},
		{OrderID: 2, IssueDate: "2026-08-01 10:00:00.000"},
	}
	once := Deduplicate(orders)
	twice := Deduplicate(once)
	if len(once) != 2 || len(twice) != 2 {
		t.Errorf("Deduplicate lens = %d, %d; want 2, 2", len(once), len(twice))
	}
}

func TestDeduplicate_Empty(t *testing.T) {
	if got := Deduplicate(nil); len(got) != 0 {
		t.Errorf("Deduplicate(nil) = %v, want empty", got)
	}
}
