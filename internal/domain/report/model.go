// Package report tracks report executions: requests moving through a status
// lifecycle, the designs that shape a report's output, and the processor
// configurations that post-process rendered output.
package report

import "time"

// Status is a report request's lifecycle state.
type Status string

const (
	StatusRequested  Status = "REQUESTED"
	StatusScheduled  Status = "SCHEDULED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusSaved      Status = "SAVED"
)

// Priority orders competing report requests. Higher values run first.
type Priority int

const (
	PriorityLowest  Priority = 1
	PriorityLow     Priority = 2
	PriorityNormal  Priority = 3
	PriorityHigh    Priority = 4
	PriorityHighest Priority = 5
)

// ReportDefinition names a report that can be requested. The evaluation
// logic behind a definition lives elsewhere; this store keeps the catalog
// entry that requests and designs reference by uuid.
type ReportDefinition struct {
	ID          int    `db:"id" json:"id"`
	UUID        string `db:"uuid" json:"uuid"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	Retired     bool   `db:"retired" json:"retired"`
}

// ReportRequest is one asked-for execution of a report definition.
type ReportRequest struct {
	ID                       int        `db:"id" json:"id"`
	UUID                     string     `db:"uuid" json:"uuid"`
	ReportDefinitionUUID     string     `db:"report_definition_uuid" json:"report_definition_uuid"`
	RequestedBy              string     `db:"requested_by" json:"requested_by,omitempty"`
	RequestDate              time.Time  `db:"request_date" json:"request_date"`
	EvaluateStartDatetime    *time.Time `db:"evaluate_start_datetime" json:"evaluate_start_datetime,omitempty"`
	EvaluateCompleteDatetime *time.Time `db:"evaluate_complete_datetime" json:"evaluate_complete_datetime,omitempty"`
	Priority                 Priority   `db:"priority" json:"priority"`
	Status                   Status     `db:"status" json:"status"`
	Description              string     `db:"description" json:"description,omitempty"`
}

// ReportDesign binds a report definition to a renderer. Designs are retired
// rather than deleted so existing requests keep their provenance.
type ReportDesign struct {
	ID                   int    `db:"id" json:"id"`
	UUID                 string `db:"uuid" json:"uuid"`
	Name                 string `db:"name" json:"name"`
	ReportDefinitionUUID string `db:"report_definition_uuid" json:"report_definition_uuid"`
	RendererType         string `db:"renderer_type" json:"renderer_type"`
	Retired              bool   `db:"retired" json:"retired"`
}

// ProcessorConfiguration describes a post-processing step for rendered
// reports. A nil ReportDesignID marks a global configuration that applies to
// every report.
type ProcessorConfiguration struct {
	ID             int               `db:"id" json:"id"`
	UUID           string            `db:"uuid" json:"uuid"`
	Name           string            `db:"name" json:"name"`
	ProcessorType  string            `db:"processor_type" json:"processor_type"`
	Configuration  map[string]string `db:"configuration" json:"configuration,omitempty"`
	RunOnSuccess   bool              `db:"run_on_success" json:"run_on_success"`
	RunOnError     bool              `db:"run_on_error" json:"run_on_error"`
	ReportDesignID *int              `db:"report_design_id" json:"report_design_id,omitempty"`
	Retired        bool              `db:"retired" json:"retired"`
}
