package cohort

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/reporting/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	evalGroup := api.Group("", auth.RequireRole("admin", "analyst"))
	evalGroup.POST("/cohorts/evaluate", h.Evaluate)
}

// evaluateRequest is the evaluation payload. Definition is decoded by Type.
type evaluateRequest struct {
	Type       string             `json:"type"`
	Definition json.RawMessage    `json:"definition"`
	Context    *EvaluationContext `json:"context,omitempty"`
}

type evaluateResponse struct {
	Type      string `json:"type"`
	MemberIDs []int  `json:"member_ids"`
	Size      int    `json:"size"`
}

func (h *Handler) Evaluate(c echo.Context) error {
	var req evaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	def, err := decodeDefinition(req.Type, req.Definition)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cohort, err := h.svc.Evaluate(c.Request().Context(), def, req.Context)
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return echo.NewHTTPError(http.StatusBadRequest, cfgErr.Error())
		}
		var evalErr *EvaluationError
		if errors.As(err, &evalErr) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, evalErr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, evaluateResponse{
		Type:      req.Type,
		MemberIDs: cohort.Members(),
		Size:      cohort.Size(),
	})
}

func decodeDefinition(defType string, raw json.RawMessage) (Definition, error) {
	if len(raw) == 0 {
		return nil, errors.New("definition is required")
	}
	switch defType {
	case TypeCodedObs:
		var d CodedObsDefinition
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	case TypeEncounterWithCodedObs:
		var d EncounterWithCodedObsDefinition
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	default:
		return nil, errors.New("unknown definition type " + defType)
	}
}
