package report

import (
	"context"
	"fmt"
	"time"
)

// Service drives the report request lifecycle on top of the Repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SaveDefinition upserts a report definition catalog entry.
func (s *Service) SaveDefinition(ctx context.Context, d *ReportDefinition) error {
	if d.Name == "" {
		return fmt.Errorf("report definition name is required")
	}
	return s.repo.SaveDefinition(ctx, d)
}

// GetDefinitionByUUID looks a definition up by uuid; absent yields (nil, nil).
func (s *Service) GetDefinitionByUUID(ctx context.Context, uuid string) (*ReportDefinition, error) {
	return s.repo.GetDefinitionByUUID(ctx, uuid)
}

// ListDefinitions returns the definition catalog, excluding retired entries
// unless asked otherwise.
func (s *Service) ListDefinitions(ctx context.Context, includeRetired bool) ([]*ReportDefinition, error) {
	return s.repo.ListDefinitions(ctx, includeRetired)
}

// RetireDefinition soft-deletes a definition. Its requests and designs stay.
func (s *Service) RetireDefinition(ctx context.Context, uuid string) error {
	d, err := s.repo.GetDefinitionByUUID(ctx, uuid)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("report definition %s not found", uuid)
	}
	d.Retired = true
	return s.repo.SaveDefinition(ctx, d)
}

// Submit records a new execution request for the given report definition.
// The request starts in REQUESTED state with the submission time stamped.
func (s *Service) Submit(ctx context.Context, req *ReportRequest) error {
	if req.ReportDefinitionUUID == "" {
		return fmt.Errorf("report definition reference is required")
	}
	if req.Priority == 0 {
		req.Priority = PriorityNormal
	}
	req.ID = 0
	req.Status = StatusRequested
	req.RequestDate = time.Now()
	req.EvaluateStartDatetime = nil
	req.EvaluateCompleteDatetime = nil
	return s.repo.SaveRequest(ctx, req)
}

// MarkProcessing moves a request into PROCESSING and stamps the evaluation
// start time.
func (s *Service) MarkProcessing(ctx context.Context, uuid string) (*ReportRequest, error) {
	return s.transition(ctx, uuid, func(req *ReportRequest) {
		now := time.Now()
		req.Status = StatusProcessing
		req.EvaluateStartDatetime = &now
	})
}

// MarkCompleted moves a request into COMPLETED and stamps the evaluation
// completion time.
func (s *Service) MarkCompleted(ctx context.Context, uuid string) (*ReportRequest, error) {
	return s.transition(ctx, uuid, func(req *ReportRequest) {
		now := time.Now()
		req.Status = StatusCompleted
		req.EvaluateCompleteDatetime = &now
	})
}

// MarkFailed moves a request into FAILED, stamps the completion time and
// records the failure description.
func (s *Service) MarkFailed(ctx context.Context, uuid, reason string) (*ReportRequest, error) {
	return s.transition(ctx, uuid, func(req *ReportRequest) {
		now := time.Now()
		req.Status = StatusFailed
		req.EvaluateCompleteDatetime = &now
		req.Description = reason
	})
}

func (s *Service) transition(ctx context.Context, uuid string, mutate func(*ReportRequest)) (*ReportRequest, error) {
	var req *ReportRequest
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.repo.GetRequestByUUID(ctx, uuid)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("report request %s not found", uuid)
		}
		mutate(req)
		return s.repo.SaveRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// GetRequest looks a request up by numeric id; absent yields (nil, nil).
func (s *Service) GetRequest(ctx context.Context, id int) (*ReportRequest, error) {
	return s.repo.GetRequest(ctx, id)
}

// GetRequestByUUID looks a request up by uuid; absent yields (nil, nil).
func (s *Service) GetRequestByUUID(ctx context.Context, uuid string) (*ReportRequest, error) {
	return s.repo.GetRequestByUUID(ctx, uuid)
}

// ListRequests returns matching requests plus the total count ignoring
// pagination, so callers can render page controls.
func (s *Service) ListRequests(ctx context.Context, f RequestFilter) ([]*ReportRequest, int, error) {
	requests, err := s.repo.ListRequests(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountRequests(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// ListRequestUUIDs returns the uuids of every request owned by a definition.
func (s *Service) ListRequestUUIDs(ctx context.Context, definitionUUID string) ([]string, error) {
	return s.repo.ListRequestUUIDs(ctx, definitionUUID)
}

// DeleteRequest removes a single request.
func (s *Service) DeleteRequest(ctx context.Context, id int) error {
	return s.repo.DeleteRequest(ctx, id)
}

// PurgeDefinition removes a report definition together with every request
// and design it owns, in one unit of work. Only single-kind deletes are
// promised atomic to callers; the pg store happens to run the whole cascade
// in one transaction.
func (s *Service) PurgeDefinition(ctx context.Context, definitionUUID string) error {
	if definitionUUID == "" {
		return fmt.Errorf("report definition reference is required")
	}
	return s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.PurgeRequestsByDefinition(ctx, definitionUUID); err != nil {
			return err
		}
		if err := s.repo.PurgeDesignsByDefinition(ctx, definitionUUID); err != nil {
			return err
		}
		return s.repo.DeleteDefinitionByUUID(ctx, definitionUUID)
	})
}

// SaveDesign upserts a report design.
func (s *Service) SaveDesign(ctx context.Context, d *ReportDesign) error {
	if d.ReportDefinitionUUID == "" {
		return fmt.Errorf("report definition reference is required")
	}
	return s.repo.SaveDesign(ctx, d)
}

// GetDesign looks a design up by numeric id; absent yields (nil, nil).
func (s *Service) GetDesign(ctx context.Context, id int) (*ReportDesign, error) {
	return s.repo.GetDesign(ctx, id)
}

// GetDesignByUUID looks a design up by uuid; absent yields (nil, nil).
func (s *Service) GetDesignByUUID(ctx context.Context, uuid string) (*ReportDesign, error) {
	return s.repo.GetDesignByUUID(ctx, uuid)
}

// ListDesigns returns designs matching the filter, excluding retired ones
// unless the filter says otherwise.
func (s *Service) ListDesigns(ctx context.Context, f DesignFilter) ([]*ReportDesign, error) {
	return s.repo.ListDesigns(ctx, f)
}

// RetireDesign soft-deletes a design.
func (s *Service) RetireDesign(ctx context.Context, id int) error {
	d, err := s.repo.GetDesign(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("report design %d not found", id)
	}
	d.Retired = true
	return s.repo.SaveDesign(ctx, d)
}

// SaveProcessorConfiguration upserts a processor configuration.
func (s *Service) SaveProcessorConfiguration(ctx context.Context, p *ProcessorConfiguration) error {
	if p.ProcessorType == "" {
		return fmt.Errorf("processor type is required")
	}
	return s.repo.SaveProcessorConfiguration(ctx, p)
}

// GetProcessorConfiguration looks a configuration up by numeric id.
func (s *Service) GetProcessorConfiguration(ctx context.Context, id int) (*ProcessorConfiguration, error) {
	return s.repo.GetProcessorConfiguration(ctx, id)
}

// GetProcessorConfigurationByUUID looks a configuration up by uuid.
func (s *Service) GetProcessorConfigurationByUUID(ctx context.Context, uuid string) (*ProcessorConfiguration, error) {
	return s.repo.GetProcessorConfigurationByUUID(ctx, uuid)
}

// ListProcessorConfigurations returns configurations matching the filter.
func (s *Service) ListProcessorConfigurations(ctx context.Context, f ProcessorFilter) ([]*ProcessorConfiguration, error) {
	return s.repo.ListProcessorConfigurations(ctx, f)
}

// ListGlobalProcessorConfigurations returns the active configurations with
// no design association, which apply to every report.
func (s *Service) ListGlobalProcessorConfigurations(ctx context.Context) ([]*ProcessorConfiguration, error) {
	return s.repo.ListProcessorConfigurations(ctx, ProcessorFilter{GlobalOnly: true})
}

// RetireProcessorConfiguration soft-deletes a configuration.
func (s *Service) RetireProcessorConfiguration(ctx context.Context, id int) error {
	p, err := s.repo.GetProcessorConfiguration(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("processor configuration %d not found", id)
	}
	p.Retired = true
	return s.repo.SaveProcessorConfiguration(ctx, p)
}

// DeleteProcessorConfiguration hard-deletes a configuration.
func (s *Service) DeleteProcessorConfiguration(ctx context.Context, id int) error {
	return s.repo.DeleteProcessorConfiguration(ctx, id)
}
