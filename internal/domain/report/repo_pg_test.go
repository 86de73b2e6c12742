package report

import (
	"strings"
	"testing"
	"time"
)

func TestRequestQuery_NoFilters(t *testing.T) {
	b := requestQuery(RequestFilter{})
	sql := b.SelectSQL()
	if strings.Contains(sql, "AND") {
		t.Errorf("expected no filter clauses, got %q", sql)
	}
	if !strings.Contains(sql, "ORDER BY "+requestOrder) {
		t.Errorf("fixed ordering missing from %q", sql)
	}
}

func TestRequestQuery_AllFiltersCompose(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	offset, limit := 10, 5
	b := requestQuery(RequestFilter{
		DefinitionUUID:      "def-1",
		RequestedOnOrAfter:  &from,
		RequestedOnOrBefore: &to,
		Statuses:            []Status{StatusRequested, StatusProcessing},
		Offset:              &offset,
		Limit:               &limit,
	})

	sql := b.SelectSQL()
	for _, clause := range []string{
		"report_definition_uuid = $1",
		"request_date >= $2",
		"request_date <= $3",
		"status IN ($4,$5)",
		"LIMIT $6",
		"OFFSET $7",
	} {
		if !strings.Contains(sql, clause) {
			t.Errorf("missing %q in %q", clause, sql)
		}
	}
	if got := len(b.SelectArgs()); got != 7 {
		t.Errorf("expected 7 args, got %d", got)
	}
}

func TestRequestQuery_CountSharesFiltersIgnoresPagination(t *testing.T) {
	offset, limit := 10, 5
	b := requestQuery(RequestFilter{
		DefinitionUUID: "def-1",
		Statuses:       []Status{StatusFailed},
		Offset:         &offset,
		Limit:          &limit,
	})

	count := b.CountSQL()
	if !strings.Contains(count, "report_definition_uuid = $1") || !strings.Contains(count, "status IN ($2)") {
		t.Errorf("count lost filter clauses: %q", count)
	}
	if strings.Contains(count, "LIMIT") || strings.Contains(count, "OFFSET") {
		t.Errorf("count must ignore pagination: %q", count)
	}
	if got := len(b.CountArgs()); got != 2 {
		t.Errorf("expected 2 count args, got %d", got)
	}
}
