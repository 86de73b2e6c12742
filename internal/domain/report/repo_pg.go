package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/reporting/internal/platform/db"
	"github.com/ehr/reporting/internal/platform/query"
)

const (
	requestColumns = `id, uuid, report_definition_uuid, requested_by, request_date,
		evaluate_start_datetime, evaluate_complete_datetime, priority, status, description`
	definitionColumns = `id, uuid, name, description, retired`
	designColumns     = `id, uuid, name, report_definition_uuid, renderer_type, retired`
	processorColumns  = `id, uuid, name, processor_type, configuration, run_on_success,
		run_on_error, report_design_id, retired`

	// The listing order is part of the store contract: most recently
	// requested first, ties broken by evaluation timestamps and priority.
	requestOrder = `request_date DESC, evaluate_start_datetime DESC,
		evaluate_complete_datetime DESC, priority DESC`
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewPGRepository returns a Repository backed by PostgreSQL.
func NewPGRepository(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.InTx(ctx, r.pool, fn)
}

// -- Report Definitions --

func (r *repoPG) SaveDefinition(ctx context.Context, d *ReportDefinition) error {
	if d.UUID == "" {
		d.UUID = uuid.NewString()
	}
	if d.ID == 0 {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO report_definition (uuid, name, description, retired)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			d.UUID, d.Name, d.Description, d.Retired,
		).Scan(&d.ID)
		if err != nil {
			return &PersistenceError{Op: "insert definition", Err: err}
		}
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE report_definition SET name = $2, description = $3, retired = $4
		WHERE id = $1`,
		d.ID, d.Name, d.Description, d.Retired,
	)
	if err != nil {
		return &PersistenceError{Op: "update definition", Err: err}
	}
	return nil
}

func (r *repoPG) GetDefinition(ctx context.Context, id int) (*ReportDefinition, error) {
	return r.scanDefinition(r.conn(ctx).QueryRow(ctx,
		`SELECT `+definitionColumns+` FROM report_definition WHERE id = $1`, id))
}

func (r *repoPG) GetDefinitionByUUID(ctx context.Context, u string) (*ReportDefinition, error) {
	return r.scanDefinition(r.conn(ctx).QueryRow(ctx,
		`SELECT `+definitionColumns+` FROM report_definition WHERE uuid = $1`, u))
}

func (r *repoPG) scanDefinition(row pgx.Row) (*ReportDefinition, error) {
	var d ReportDefinition
	err := row.Scan(&d.ID, &d.UUID, &d.Name, &d.Description, &d.Retired)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read definition", Err: err}
	}
	return &d, nil
}

func (r *repoPG) ListDefinitions(ctx context.Context, includeRetired bool) ([]*ReportDefinition, error) {
	b := query.New("report_definition", definitionColumns)
	if !includeRetired {
		b.Eq("retired", false)
	}
	b.OrderBy("name, id")

	rows, err := r.conn(ctx).Query(ctx, b.SelectSQL(), b.SelectArgs()...)
	if err != nil {
		return nil, &PersistenceError{Op: "list definitions", Err: err}
	}
	defer rows.Close()

	var result []*ReportDefinition
	for rows.Next() {
		var d ReportDefinition
		if err := rows.Scan(&d.ID, &d.UUID, &d.Name, &d.Description, &d.Retired); err != nil {
			return nil, &PersistenceError{Op: "list definitions", Err: err}
		}
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list definitions", Err: err}
	}
	return result, nil
}

func (r *repoPG) DeleteDefinitionByUUID(ctx context.Context, u string) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM report_definition WHERE uuid = $1`, u); err != nil {
		return &PersistenceError{Op: "delete definition", Err: err}
	}
	return nil
}

// -- Report Requests --

func (r *repoPG) SaveRequest(ctx context.Context, req *ReportRequest) error {
	if req.UUID == "" {
		req.UUID = uuid.NewString()
	}
	if req.ID == 0 {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO report_request (
				uuid, report_definition_uuid, requested_by, request_date,
				evaluate_start_datetime, evaluate_complete_datetime,
				priority, status, description
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			req.UUID, req.ReportDefinitionUUID, req.RequestedBy, req.RequestDate,
			req.EvaluateStartDatetime, req.EvaluateCompleteDatetime,
			req.Priority, req.Status, req.Description,
		).Scan(&req.ID)
		if err != nil {
			return &PersistenceError{Op: "insert request", Err: err}
		}
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE report_request SET
			report_definition_uuid = $2, requested_by = $3, request_date = $4,
			evaluate_start_datetime = $5, evaluate_complete_datetime = $6,
			priority = $7, status = $8, description = $9
		WHERE id = $1`,
		req.ID, req.ReportDefinitionUUID, req.RequestedBy, req.RequestDate,
		req.EvaluateStartDatetime, req.EvaluateCompleteDatetime,
		req.Priority, req.Status, req.Description,
	)
	if err != nil {
		return &PersistenceError{Op: "update request", Err: err}
	}
	return nil
}

func (r *repoPG) GetRequest(ctx context.Context, id int) (*ReportRequest, error) {
	return r.scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestColumns+` FROM report_request WHERE id = $1`, id))
}

func (r *repoPG) GetRequestByUUID(ctx context.Context, u string) (*ReportRequest, error) {
	return r.scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestColumns+` FROM report_request WHERE uuid = $1`, u))
}

func (r *repoPG) scanRequest(row pgx.Row) (*ReportRequest, error) {
	var req ReportRequest
	err := row.Scan(&req.ID, &req.UUID, &req.ReportDefinitionUUID, &req.RequestedBy,
		&req.RequestDate, &req.EvaluateStartDatetime, &req.EvaluateCompleteDatetime,
		&req.Priority, &req.Status, &req.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read request", Err: err}
	}
	return &req, nil
}

func requestQuery(f RequestFilter) *query.Builder {
	b := query.New("report_request", requestColumns)
	if f.DefinitionUUID != "" {
		b.Eq("report_definition_uuid", f.DefinitionUUID)
	}
	if f.RequestedOnOrAfter != nil {
		b.Ge("request_date", *f.RequestedOnOrAfter)
	}
	if f.RequestedOnOrBefore != nil {
		b.Le("request_date", *f.RequestedOnOrBefore)
	}
	statuses := make([]interface{}, len(f.Statuses))
	for i, s := range f.Statuses {
		statuses[i] = s
	}
	b.In("status", statuses...)
	b.OrderBy(requestOrder)
	b.Page(f.Offset, f.Limit)
	return b
}

func (r *repoPG) ListRequests(ctx context.Context, f RequestFilter) ([]*ReportRequest, error) {
	b := requestQuery(f)
	rows, err := r.conn(ctx).Query(ctx, b.SelectSQL(), b.SelectArgs()...)
	if err != nil {
		return nil, &PersistenceError{Op: "list requests", Err: err}
	}
	defer rows.Close()

	var result []*ReportRequest
	for rows.Next() {
		var req ReportRequest
		if err := rows.Scan(&req.ID, &req.UUID, &req.ReportDefinitionUUID, &req.RequestedBy,
			&req.RequestDate, &req.EvaluateStartDatetime, &req.EvaluateCompleteDatetime,
			&req.Priority, &req.Status, &req.Description); err != nil {
			return nil, &PersistenceError{Op: "list requests", Err: err}
		}
		result = append(result, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list requests", Err: err}
	}
	return result, nil
}

func (r *repoPG) CountRequests(ctx context.Context, f RequestFilter) (int, error) {
	b := requestQuery(f)
	var count int
	if err := r.conn(ctx).QueryRow(ctx, b.CountSQL(), b.CountArgs()...).Scan(&count); err != nil {
		return 0, &PersistenceError{Op: "count requests", Err: err}
	}
	return count, nil
}

func (r *repoPG) ListRequestUUIDs(ctx context.Context, definitionUUID string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT uuid FROM report_request WHERE report_definition_uuid = $1 ORDER BY `+requestOrder,
		definitionUUID)
	if err != nil {
		return nil, &PersistenceError{Op: "list request uuids", Err: err}
	}
	defer rows.Close()

	var uuids []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, &PersistenceError{Op: "list request uuids", Err: err}
		}
		uuids = append(uuids, u)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list request uuids", Err: err}
	}
	return uuids, nil
}

func (r *repoPG) DeleteRequest(ctx context.Context, id int) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM report_request WHERE id = $1`, id); err != nil {
		return &PersistenceError{Op: "delete request", Err: err}
	}
	return nil
}

func (r *repoPG) PurgeRequestsByDefinition(ctx context.Context, definitionUUID string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM report_request WHERE report_definition_uuid = $1`, definitionUUID)
	if err != nil {
		return &PersistenceError{Op: "purge requests", Err: err}
	}
	return nil
}

// -- Report Designs --

func (r *repoPG) SaveDesign(ctx context.Context, d *ReportDesign) error {
	if d.UUID == "" {
		d.UUID = uuid.NewString()
	}
	if d.ID == 0 {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO report_design (uuid, name, report_definition_uuid, renderer_type, retired)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			d.UUID, d.Name, d.ReportDefinitionUUID, d.RendererType, d.Retired,
		).Scan(&d.ID)
		if err != nil {
			return &PersistenceError{Op: "insert design", Err: err}
		}
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE report_design SET
			name = $2, report_definition_uuid = $3, renderer_type = $4, retired = $5
		WHERE id = $1`,
		d.ID, d.Name, d.ReportDefinitionUUID, d.RendererType, d.Retired,
	)
	if err != nil {
		return &PersistenceError{Op: "update design", Err: err}
	}
	return nil
}

func (r *repoPG) GetDesign(ctx context.Context, id int) (*ReportDesign, error) {
	return r.scanDesign(r.conn(ctx).QueryRow(ctx,
		`SELECT `+designColumns+` FROM report_design WHERE id = $1`, id))
}

func (r *repoPG) GetDesignByUUID(ctx context.Context, u string) (*ReportDesign, error) {
	return r.scanDesign(r.conn(ctx).QueryRow(ctx,
		`SELECT `+designColumns+` FROM report_design WHERE uuid = $1`, u))
}

func (r *repoPG) scanDesign(row pgx.Row) (*ReportDesign, error) {
	var d ReportDesign
	err := row.Scan(&d.ID, &d.UUID, &d.Name, &d.ReportDefinitionUUID, &d.RendererType, &d.Retired)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read design", Err: err}
	}
	return &d, nil
}

func (r *repoPG) ListDesigns(ctx context.Context, f DesignFilter) ([]*ReportDesign, error) {
	b := query.New("report_design", designColumns)
	if f.DefinitionUUID != "" {
		b.Eq("report_definition_uuid", f.DefinitionUUID)
	}
	if f.RendererType != "" {
		b.Eq("renderer_type", f.RendererType)
	}
	if !f.IncludeRetired {
		b.Eq("retired", false)
	}
	b.OrderBy("name, id")

	rows, err := r.conn(ctx).Query(ctx, b.SelectSQL(), b.SelectArgs()...)
	if err != nil {
		return nil, &PersistenceError{Op: "list designs", Err: err}
	}
	defer rows.Close()

	var result []*ReportDesign
	for rows.Next() {
		var d ReportDesign
		if err := rows.Scan(&d.ID, &d.UUID, &d.Name, &d.ReportDefinitionUUID, &d.RendererType, &d.Retired); err != nil {
			return nil, &PersistenceError{Op: "list designs", Err: err}
		}
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list designs", Err: err}
	}
	return result, nil
}

func (r *repoPG) PurgeDesignsByDefinition(ctx context.Context, definitionUUID string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM report_design WHERE report_definition_uuid = $1`, definitionUUID)
	if err != nil {
		return &PersistenceError{Op: "purge designs", Err: err}
	}
	return nil
}

// -- Processor Configurations --

func (r *repoPG) SaveProcessorConfiguration(ctx context.Context, p *ProcessorConfiguration) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	if p.ID == 0 {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO report_processor_config (
				uuid, name, processor_type, configuration,
				run_on_success, run_on_error, report_design_id, retired
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			p.UUID, p.Name, p.ProcessorType, p.Configuration,
			p.RunOnSuccess, p.RunOnError, p.ReportDesignID, p.Retired,
		).Scan(&p.ID)
		if err != nil {
			return &PersistenceError{Op: "insert processor config", Err: err}
		}
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE report_processor_config SET
			name = $2, processor_type = $3, configuration = $4,
			run_on_success = $5, run_on_error = $6, report_design_id = $7, retired = $8
		WHERE id = $1`,
		p.ID, p.Name, p.ProcessorType, p.Configuration,
		p.RunOnSuccess, p.RunOnError, p.ReportDesignID, p.Retired,
	)
	if err != nil {
		return &PersistenceError{Op: "update processor config", Err: err}
	}
	return nil
}

func (r *repoPG) GetProcessorConfiguration(ctx context.Context, id int) (*ProcessorConfiguration, error) {
	return r.scanProcessor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+processorColumns+` FROM report_processor_config WHERE id = $1`, id))
}

func (r *repoPG) GetProcessorConfigurationByUUID(ctx context.Context, u string) (*ProcessorConfiguration, error) {
	return r.scanProcessor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+processorColumns+` FROM report_processor_config WHERE uuid = $1`, u))
}

func (r *repoPG) scanProcessor(row pgx.Row) (*ProcessorConfiguration, error) {
	var p ProcessorConfiguration
	err := row.Scan(&p.ID, &p.UUID, &p.Name, &p.ProcessorType, &p.Configuration,
		&p.RunOnSuccess, &p.RunOnError, &p.ReportDesignID, &p.Retired)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read processor config", Err: err}
	}
	return &p, nil
}

func (r *repoPG) ListProcessorConfigurations(ctx context.Context, f ProcessorFilter) ([]*ProcessorConfiguration, error) {
	b := query.New("report_processor_config", processorColumns)
	if f.ProcessorType != "" {
		b.Eq("processor_type", f.ProcessorType)
	}
	if f.ReportDesignID != nil {
		b.Eq("report_design_id", *f.ReportDesignID)
	}
	if f.GlobalOnly {
		b.IsNull("report_design_id")
	}
	if !f.IncludeRetired {
		b.Eq("retired", false)
	}
	b.OrderBy("name, id")

	rows, err := r.conn(ctx).Query(ctx, b.SelectSQL(), b.SelectArgs()...)
	if err != nil {
		return nil, &PersistenceError{Op: "list processor configs", Err: err}
	}
	defer rows.Close()

	var result []*ProcessorConfiguration
	for rows.Next() {
		var p ProcessorConfiguration
		if err := rows.Scan(&p.ID, &p.UUID, &p.Name, &p.ProcessorType, &p.Configuration,
			&p.RunOnSuccess, &p.RunOnError, &p.ReportDesignID, &p.Retired); err != nil {
			return nil, &PersistenceError{Op: "list processor configs", Err: err}
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list processor configs", Err: err}
	}
	return result, nil
}

func (r *repoPG) DeleteProcessorConfiguration(ctx context.Context, id int) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM report_processor_config WHERE id = $1`, id); err != nil {
		return &PersistenceError{Op: "delete processor config", Err: err}
	}
	return nil
}
