// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opencurb/curbmap/internal/geo"
	"github.com/opencurb/curbmap/internal/humastar"
	"github.com/opencurb/curbmap/internal/service"
)

// Version is reported by the health and info endpoints.
const Version = "0.1.0"

const defaultStopsLimit = 50

// Services holds the service dependencies for API handlers.
type Services struct {
	Dataset *service.DatasetService
	Transit *service.TransitService
	Map     *service.MapService
	Stats   *service.StatsService
	Loader  *geo.Loader
}

// Types

type DatasetNameInput struct {
	Name string `path:"name" doc:"Dataset display name" example:"Traffic Volume"`
}

type PreviewInput struct {
	DatasetNameInput
	Limit int `query:"limit" minimum:"1" maximum:"50" default:"5" doc:"Rows to return"`
}

type RangeInput struct {
	DatasetNameInput
	Column string `query:"column" required:"true" doc:"Attribute column" example:"AADT"`
}

type BundleInput struct {
	Layers string `query:"layers" doc:"Comma-separated dataset names to include" example:"Traffic Volume,Public Transportation"`
	Stop   string `query:"stop" doc:"Transit stop label to focus" example:"METRO CENTER"`
}

type StopsInput struct {
	Query  string `query:"q" doc:"Filter stops by substring" example:"metro"`
	Offset int    `query:"offset" minimum:"0" default:"0" doc:"Pagination offset"`
	Limit  int    `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Page size"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"0.1.0"`
}

// DatasetDetail is a dataset description plus its hypermedia actions.
type DatasetDetail struct {
	service.DatasetInfo
}

var datasetActionDefs = []humastar.ActionDef{
	{Rel: "invalidate", Pattern: "/api/v1/datasets/%s/invalidate", Method: "POST", Title: "Reload from disk"},
	{Rel: "preview", Pattern: "/api/v1/datasets/%s/preview", Method: "GET", Title: "Preview attribute rows"},
}

// Actions implements humastar.Actor so dataset responses carry their
// action links.
func (d DatasetDetail) Actions() []humastar.Action {
	return humastar.ActionsFor(url.PathEscape(d.Name), datasetActionDefs)
}

type DatasetsOutput struct {
	Body []service.DatasetInfo
}

type DatasetOutput struct {
	Body DatasetDetail
}

type PreviewOutput struct {
	Body struct {
		Dataset string           `json:"dataset" doc:"Dataset name"`
		Rows    []map[string]any `json:"rows" doc:"Attribute rows without geometry"`
		Count   int              `json:"count" doc:"Number of rows returned"`
	}
}

type ColumnsOutput struct {
	Body struct {
		Dataset string               `json:"dataset" doc:"Dataset name"`
		Columns []service.ColumnInfo `json:"columns" doc:"Attribute columns"`
	}
}

type RangeOutput struct {
	Body struct {
		Dataset string  `json:"dataset" doc:"Dataset name"`
		Column  string  `json:"column" doc:"Attribute column"`
		Min     float64 `json:"min" doc:"Smallest numeric value"`
		Max     float64 `json:"max" doc:"Largest numeric value"`
	}
}

type BundleOutput struct {
	Body service.MapBundle
}

type StopsOutput struct {
	Body humastar.PageBody[service.Stop]
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/api/v1/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterDatasets registers dataset catalog and attribute routes.
func (h *APIHandler) RegisterDatasets(api huma.API) {
	huma.Get(api, "/api/v1/datasets", h.GetDatasets, huma.OperationTags("datasets"))
	huma.Get(api, "/api/v1/datasets/{name}", h.GetDataset, huma.OperationTags("datasets"))
	huma.Get(api, "/api/v1/datasets/{name}/preview", h.GetPreview, huma.OperationTags("datasets"))
	huma.Get(api, "/api/v1/datasets/{name}/columns", h.GetColumns, huma.OperationTags("datasets"))
	huma.Get(api, "/api/v1/datasets/{name}/range", h.GetRange, huma.OperationTags("datasets"))
	huma.Post(api, "/api/v1/datasets/{name}/invalidate", h.InvalidateDataset, huma.OperationTags("datasets"))
}

// RegisterMap registers the map bundle route.
func (h *APIHandler) RegisterMap(api huma.API) {
	huma.Get(api, "/api/v1/map/bundle", h.GetBundle, huma.OperationTags("map"))
}

// RegisterTransit registers transit stop routes.
func (h *APIHandler) RegisterTransit(api huma.API) {
	huma.Get(api, "/api/v1/transit/stops", h.GetStops, huma.OperationTags("transit"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version}}, nil
}

func (h *APIHandler) GetDatasets(ctx context.Context, input *struct{}) (*DatasetsOutput, error) {
	return &DatasetsOutput{Body: h.svc.Dataset.List(ctx)}, nil
}

func (h *APIHandler) GetDataset(ctx context.Context, input *DatasetNameInput) (*DatasetOutput, error) {
	info, err := h.svc.Dataset.Get(ctx, input.Name)
	if err != nil {
		return nil, datasetError(err)
	}
	return &DatasetOutput{Body: DatasetDetail{DatasetInfo: info}}, nil
}

func (h *APIHandler) GetPreview(ctx context.Context, input *PreviewInput) (*PreviewOutput, error) {
	rows, err := h.svc.Dataset.Preview(ctx, input.Name, input.Limit)
	if err != nil {
		return nil, datasetError(err)
	}

	out := &PreviewOutput{}
	out.Body.Dataset = input.Name
	out.Body.Rows = make([]map[string]any, len(rows))
	for i, row := range rows {
		out.Body.Rows[i] = row
	}
	out.Body.Count = len(rows)
	return out, nil
}

func (h *APIHandler) GetColumns(ctx context.Context, input *DatasetNameInput) (*ColumnsOutput, error) {
	cols, err := h.svc.Stats.Columns(ctx, input.Name)
	if err != nil {
		return nil, datasetError(err)
	}

	out := &ColumnsOutput{}
	out.Body.Dataset = input.Name
	out.Body.Columns = cols
	return out, nil
}

func (h *APIHandler) GetRange(ctx context.Context, input *RangeInput) (*RangeOutput, error) {
	lo, hi, err := h.svc.Stats.NumericRange(ctx, input.Name, input.Column)
	if err != nil {
		return nil, datasetError(err)
	}

	out := &RangeOutput{}
	out.Body.Dataset = input.Name
	out.Body.Column = input.Column
	out.Body.Min = lo
	out.Body.Max = hi
	return out, nil
}

func (h *APIHandler) InvalidateDataset(ctx context.Context, input *DatasetNameInput) (*struct{ Body MessageBody }, error) {
	info, err := h.svc.Dataset.Get(ctx, input.Name)
	if err != nil {
		return nil, datasetError(err)
	}

	h.svc.Loader.Invalidate(info.File)
	if h.svc.Stats != nil {
		if err := h.svc.Stats.Invalidate(ctx, input.Name); err != nil {
			return nil, huma.Error500InternalServerError("Failed to drop attribute table", err)
		}
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Dataset invalidated"}}, nil
}

func (h *APIHandler) GetBundle(ctx context.Context, input *BundleInput) (*BundleOutput, error) {
	sel := service.Selection{
		Datasets: splitNames(input.Layers),
		Stop:     strings.TrimSpace(input.Stop),
	}
	return &BundleOutput{Body: *h.svc.Map.Bundle(ctx, sel)}, nil
}

func (h *APIHandler) GetStops(ctx context.Context, input *StopsInput) (*StopsOutput, error) {
	stops, err := h.svc.Transit.Search(ctx, input.Query)
	if err != nil {
		if errors.Is(err, service.ErrNoTransitDataset) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError("Failed to load transit stops", err)
	}

	limit := input.Limit
	if limit < 1 {
		limit = defaultStopsLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	page := humastar.PageBody[service.Stop]{
		Total:  len(stops),
		Offset: offset,
		Limit:  limit,
		Data:   []service.Stop{},
	}
	if offset < len(stops) {
		end := offset + limit
		if end > len(stops) {
			end = len(stops)
		}
		page.Data = stops[offset:end]
	}
	return &StopsOutput{Body: page}, nil
}

// datasetError maps service errors onto Huma status errors.
func datasetError(err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownDataset):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, geo.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, geo.ErrBadGeoJSON), errors.Is(err, geo.ErrBadCRS),
		errors.Is(err, geo.ErrEmptyFile), errors.Is(err, geo.ErrNoFeatures):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, service.ErrStatsUnavailable):
		return huma.Error503ServiceUnavailable(err.Error())
	case errors.Is(err, service.ErrNoNumericValues):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError("Dataset operation failed", err)
	}
}

func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
