package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opencurb/curbmap/internal/catalog"
)

type InfoHandler struct {
	dataDir  string
	registry *catalog.Registry
	dbOK     bool
}

func NewInfoHandler(dataDir string, registry *catalog.Registry, dbOK bool) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, registry: registry, dbOK: dbOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DataDir  string   `json:"data_dir" doc:"Data directory path"`
	Datasets int      `json:"datasets" doc:"Number of registered datasets"`
	DB       bool     `json:"db" doc:"Whether the attribute database is available"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "curbmap",
		Version:  Version,
		DataDir:  h.dataDir,
		Datasets: h.registry.Len(),
		DB:       h.dbOK,
		Features: []string{"geojson", "crs-inference", "boundary-mask", "duckdb", "datastar"},
	}}, nil
}
