package query

import (
	"testing"
	"time"
)

func TestBuilder_NoFilters(t *testing.T) {
	b := New("report_request", "id, uuid")
	if got := b.SelectSQL(); got != "SELECT id, uuid FROM report_request WHERE 1=1" {
		t.Errorf("unexpected SQL: %s", got)
	}
	if got := b.CountSQL(); got != "SELECT COUNT(*) FROM report_request WHERE 1=1" {
		t.Errorf("unexpected count SQL: %s", got)
	}
	if len(b.SelectArgs()) != 0 {
		t.Errorf("expected no args, got %v", b.SelectArgs())
	}
}

func TestBuilder_EqAndBounds(t *testing.T) {
	after := time.Date(2008, 8, 1, 0, 0, 0, 0, time.UTC)
	b := New("report_request", "id")
	b.Eq("report_definition_uuid", "abc")
	b.Ge("request_date", after)

	want := "SELECT id FROM report_request WHERE 1=1 AND report_definition_uuid = $1 AND request_date >= $2"
	if got := b.SelectSQL(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	args := b.SelectArgs()
	if len(args) != 2 || args[0] != "abc" || args[1] != after {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestBuilder_InExpandsPlaceholders(t *testing.T) {
	b := New("report_request", "id")
	b.Eq("report_definition_uuid", "abc")
	b.In("status", "REQUESTED", "PROCESSING")

	want := "SELECT id FROM report_request WHERE 1=1 AND report_definition_uuid = $1 AND status IN ($2,$3)"
	if got := b.SelectSQL(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(b.SelectArgs()) != 3 {
		t.Errorf("expected 3 args, got %v", b.SelectArgs())
	}
}

func TestBuilder_InEmptyIsNoop(t *testing.T) {
	b := New("report_request", "id")
	b.In("status")
	if got := b.SelectSQL(); got != "SELECT id FROM report_request WHERE 1=1" {
		t.Errorf("expected no filter, got %q", got)
	}
}

func TestBuilder_OrderAndPage(t *testing.T) {
	offset, limit := 10, 5
	b := New("report_request", "id")
	b.Eq("status", "COMPLETED")
	b.OrderBy("request_date DESC")
	b.Page(&offset, &limit)

	want := "SELECT id FROM report_request WHERE 1=1 AND status = $1 ORDER BY request_date DESC LIMIT $2 OFFSET $3"
	if got := b.SelectSQL(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	args := b.SelectArgs()
	if len(args) != 3 || args[1] != 5 || args[2] != 10 {
		t.Errorf("unexpected args: %v", args)
	}

	// Count ignores paging but shares the WHERE clause.
	if got := b.CountSQL(); got != "SELECT COUNT(*) FROM report_request WHERE 1=1 AND status = $1" {
		t.Errorf("unexpected count SQL: %q", got)
	}
	if len(b.CountArgs()) != 1 {
		t.Errorf("expected 1 count arg, got %v", b.CountArgs())
	}
}

func TestBuilder_PageOffsetOnly(t *testing.T) {
	offset := 20
	b := New("report_request", "id")
	b.Page(&offset, nil)

	want := "SELECT id FROM report_request WHERE 1=1 OFFSET $1"
	if got := b.SelectSQL(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuilder_IsNull(t *testing.T) {
	b := New("report_processor_configuration", "id")
	b.Eq("retired", false)
	b.IsNull("report_design_id")

	want := "SELECT id FROM report_processor_configuration WHERE 1=1 AND retired = $1 AND report_design_id IS NULL"
	if got := b.SelectSQL(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuilder_DeleteSQL(t *testing.T) {
	b := New("report_request", "")
	b.Eq("report_definition_uuid", "abc")

	want := "DELETE FROM report_request WHERE 1=1 AND report_definition_uuid = $1"
	if got := b.DeleteSQL(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
