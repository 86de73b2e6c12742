package report

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/reporting/internal/platform/auth"
	"github.com/ehr/reporting/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "analyst"))
	readGroup.GET("/report-requests", h.ListRequests)
	readGroup.GET("/report-requests/:uuid", h.GetRequest)
	readGroup.GET("/report-definitions", h.ListDefinitions)
	readGroup.GET("/report-definitions/:uuid", h.GetDefinition)
	readGroup.GET("/report-definitions/:uuid/request-uuids", h.ListRequestUUIDs)
	readGroup.GET("/report-designs", h.ListDesigns)
	readGroup.GET("/report-designs/:uuid", h.GetDesign)
	readGroup.GET("/processor-configurations", h.ListProcessorConfigurations)
	readGroup.GET("/processor-configurations/global", h.ListGlobalProcessorConfigurations)
	readGroup.GET("/processor-configurations/:uuid", h.GetProcessorConfiguration)

	writeGroup := api.Group("", auth.RequireRole("admin"))
	writeGroup.POST("/report-requests", h.SubmitRequest)
	writeGroup.POST("/report-requests/:uuid/processing", h.MarkProcessing)
	writeGroup.POST("/report-requests/:uuid/complete", h.MarkCompleted)
	writeGroup.POST("/report-requests/:uuid/fail", h.MarkFailed)
	writeGroup.DELETE("/report-requests/:id", h.DeleteRequest)
	writeGroup.POST("/report-definitions", h.SaveDefinition)
	writeGroup.POST("/report-definitions/:uuid/retire", h.RetireDefinition)
	writeGroup.DELETE("/report-definitions/:uuid", h.PurgeDefinition)
	writeGroup.POST("/report-designs", h.SaveDesign)
	writeGroup.POST("/report-designs/:id/retire", h.RetireDesign)
	writeGroup.POST("/processor-configurations", h.SaveProcessorConfiguration)
	writeGroup.POST("/processor-configurations/:id/retire", h.RetireProcessorConfiguration)
	writeGroup.DELETE("/processor-configurations/:id", h.DeleteProcessorConfiguration)
}

// -- Report Definitions --

func (h *Handler) SaveDefinition(c echo.Context) error {
	var d ReportDefinition
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SaveDefinition(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDefinition(c echo.Context) error {
	d, err := h.svc.GetDefinitionByUUID(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if d == nil {
		return echo.NewHTTPError(http.StatusNotFound, "report definition not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDefinitions(c echo.Context) error {
	includeRetired := c.QueryParam("include_retired") == "true"
	defs, err := h.svc.ListDefinitions(c.Request().Context(), includeRetired)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, defs)
}

func (h *Handler) RetireDefinition(c echo.Context) error {
	if err := h.svc.RetireDefinition(c.Request().Context(), c.Param("uuid")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Report Requests --

func (h *Handler) SubmitRequest(c echo.Context) error {
	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Submit(c.Request().Context(), &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) GetRequest(c echo.Context) error {
	req, err := h.svc.GetRequestByUUID(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if req == nil {
		return echo.NewHTTPError(http.StatusNotFound, "report request not found")
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) ListRequests(c echo.Context) error {
	f, err := requestFilterFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := pagination.FromContext(c)
	f.Limit = &p.Limit
	f.Offset = &p.Offset

	requests, total, err := h.svc.ListRequests(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(requests, total, p.Limit, p.Offset))
}

func requestFilterFromContext(c echo.Context) (RequestFilter, error) {
	f := RequestFilter{DefinitionUUID: c.QueryParam("definition")}
	if v := c.QueryParam("requested_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, err
		}
		f.RequestedOnOrAfter = &t
	}
	if v := c.QueryParam("requested_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, err
		}
		f.RequestedOnOrBefore = &t
	}
	for _, s := range c.QueryParams()["status"] {
		f.Statuses = append(f.Statuses, Status(s))
	}
	return f, nil
}

func (h *Handler) ListRequestUUIDs(c echo.Context) error {
	uuids, err := h.svc.ListRequestUUIDs(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"uuids": uuids})
}

func (h *Handler) MarkProcessing(c echo.Context) error {
	req, err := h.svc.MarkProcessing(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) MarkCompleted(c echo.Context) error {
	req, err := h.svc.MarkCompleted(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) MarkFailed(c echo.Context) error {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req, err := h.svc.MarkFailed(c.Request().Context(), c.Param("uuid"), body.Reason)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) DeleteRequest(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteRequest(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) PurgeDefinition(c echo.Context) error {
	if err := h.svc.PurgeDefinition(c.Request().Context(), c.Param("uuid")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Report Designs --

func (h *Handler) SaveDesign(c echo.Context) error {
	var d ReportDesign
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SaveDesign(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDesign(c echo.Context) error {
	d, err := h.svc.GetDesignByUUID(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if d == nil {
		return echo.NewHTTPError(http.StatusNotFound, "report design not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDesigns(c echo.Context) error {
	f := DesignFilter{
		DefinitionUUID: c.QueryParam("definition"),
		RendererType:   c.QueryParam("renderer_type"),
		IncludeRetired: c.QueryParam("include_retired") == "true",
	}
	designs, err := h.svc.ListDesigns(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, designs)
}

func (h *Handler) RetireDesign(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RetireDesign(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Processor Configurations --

func (h *Handler) SaveProcessorConfiguration(c echo.Context) error {
	var p ProcessorConfiguration
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SaveProcessorConfiguration(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetProcessorConfiguration(c echo.Context) error {
	p, err := h.svc.GetProcessorConfigurationByUUID(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "processor configuration not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListProcessorConfigurations(c echo.Context) error {
	f := ProcessorFilter{
		ProcessorType:  c.QueryParam("processor_type"),
		GlobalOnly:     c.QueryParam("global") == "true",
		IncludeRetired: c.QueryParam("include_retired") == "true",
	}
	configs, err := h.svc.ListProcessorConfigurations(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, configs)
}

func (h *Handler) ListGlobalProcessorConfigurations(c echo.Context) error {
	configs, err := h.svc.ListGlobalProcessorConfigurations(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, configs)
}

func (h *Handler) RetireProcessorConfiguration(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RetireProcessorConfiguration(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteProcessorConfiguration(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteProcessorConfiguration(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
