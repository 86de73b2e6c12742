package report

import (
	"context"
	"fmt"
	"time"
)

// PersistenceError wraps a storage failure so callers can distinguish it
// from validation errors. The store never retries; retry policy belongs to
// the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("report store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RequestFilter narrows request listing. Zero values mean no filter; all set
// filters combine with AND semantics. Offset and Limit only affect List,
// never Count.
type RequestFilter struct {
	DefinitionUUID      string
	RequestedOnOrAfter  *time.Time
	RequestedOnOrBefore *time.Time
	Statuses            []Status
	Offset              *int
	Limit               *int
}

// DesignFilter narrows design listing. Retired designs are excluded unless
// IncludeRetired is set.
type DesignFilter struct {
	DefinitionUUID string
	RendererType   string
	IncludeRetired bool
}

// ProcessorFilter narrows processor configuration listing. GlobalOnly
// restricts to configurations with no design association.
type ProcessorFilter struct {
	ProcessorType  string
	ReportDesignID *int
	GlobalOnly     bool
	IncludeRetired bool
}

// Repository is the report metadata store.
//
// Save operations upsert by identity: a record without an id is inserted
// and gets its id and uuid populated, a record with an id is updated in
// place. Lookups return (nil, nil) when nothing matches. ListRequests
// orders by request date, evaluation start, evaluation completion and
// priority, all descending; the ordering is fixed, not caller-configurable.
// CountRequests applies the same filters as ListRequests minus pagination.
type Repository interface {
	SaveDefinition(ctx context.Context, d *ReportDefinition) error
	GetDefinition(ctx context.Context, id int) (*ReportDefinition, error)
	GetDefinitionByUUID(ctx context.Context, uuid string) (*ReportDefinition, error)
	ListDefinitions(ctx context.Context, includeRetired bool) ([]*ReportDefinition, error)
	DeleteDefinitionByUUID(ctx context.Context, uuid string) error

	SaveRequest(ctx context.Context, r *ReportRequest) error
	GetRequest(ctx context.Context, id int) (*ReportRequest, error)
	GetRequestByUUID(ctx context.Context, uuid string) (*ReportRequest, error)
	ListRequests(ctx context.Context, f RequestFilter) ([]*ReportRequest, error)
	CountRequests(ctx context.Context, f RequestFilter) (int, error)
	ListRequestUUIDs(ctx context.Context, definitionUUID string) ([]string, error)
	DeleteRequest(ctx context.Context, id int) error
	PurgeRequestsByDefinition(ctx context.Context, definitionUUID string) error

	SaveDesign(ctx context.Context, d *ReportDesign) error
	GetDesign(ctx context.Context, id int) (*ReportDesign, error)
	GetDesignByUUID(ctx context.Context, uuid string) (*ReportDesign, error)
	ListDesigns(ctx context.Context, f DesignFilter) ([]*ReportDesign, error)
	PurgeDesignsByDefinition(ctx context.Context, definitionUUID string) error

	SaveProcessorConfiguration(ctx context.Context, p *ProcessorConfiguration) error
	GetProcessorConfiguration(ctx context.Context, id int) (*ProcessorConfiguration, error)
	GetProcessorConfigurationByUUID(ctx context.Context, uuid string) (*ProcessorConfiguration, error)
	ListProcessorConfigurations(ctx context.Context, f ProcessorFilter) ([]*ProcessorConfiguration, error)
	DeleteProcessorConfiguration(ctx context.Context, id int) error

	// InTx runs fn as one unit of work; every repository call made with the
	// context fn receives joins the same transaction.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
