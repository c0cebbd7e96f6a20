package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/geo"
	"github.com/opencurb/curbmap/internal/logging"
	"github.com/opencurb/curbmap/internal/server"
	"github.com/opencurb/curbmap/internal/service"
)

// Options defines all CLI flags and env vars for the dashboard server.
// Flags: --host, --port, --data-dir, --web-dir, --catalog, --db-path,
// --log-level, --log-format
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_WEB_DIR, ...
type Options struct {
	Host      string `doc:"Host to bind to" default:"0.0.0.0"`
	Port      int    `doc:"Port to listen on" short:"p" default:"8090"`
	DataDir   string `doc:"Directory holding GeoJSON datasets" default:".data"`
	WebDir    string `doc:"Path to web/ directory" default:"web"`
	Catalog   string `doc:"Dataset catalog YAML (built-in DC catalog when empty)"`
	DBPath    string `doc:"DuckDB database file (stored under the data dir when empty)"`
	LogLevel  string `doc:"Log level (trace, debug, info, warn, error)" default:"info"`
	LogFormat string `doc:"Log format (text or json)" default:"text"`
}

func newServer(opts *Options) (*server.Server, error) {
	return server.New(server.Config{
		Host:        opts.Host,
		Port:        fmt.Sprintf("%d", opts.Port),
		DataDir:     opts.DataDir,
		WebDir:      opts.WebDir,
		CatalogPath: opts.Catalog,
		DBPath:      opts.DBPath,
	})
}

// loadRegistry resolves the dataset catalog for headless subcommands.
func loadRegistry(opts *Options) (*catalog.Registry, error) {
	if opts.Catalog == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(opts.Catalog)
}

func main() {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		logging.Setup(opts.LogLevel, opts.LogFormat)

		srv, err := newServer(opts)
		if err != nil {
			log.Fatal().Err(err).Msg("server init failed")
		}

		hooks.OnStart(func() {
			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("curbmap dashboard starting...\n")
			fmt.Printf("  Server:    %s\n", baseURL)
			fmt.Printf("  Data:      %s\n", opts.DataDir)
			fmt.Println()
			fmt.Printf("  Dashboard: %s/\n", baseURL)
			fmt.Printf("  Docs:      %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI:   %s/openapi.json\n", baseURL)
			fmt.Printf("  Metrics:   %s/metrics\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatal().Err(err).Msg("server error")
			}
		})

		hooks.OnStop(func() {
			if err := srv.Close(); err != nil {
				log.Warn().Err(err).Msg("shutdown cleanup failed")
			}
		})
	})

	cli.Root().Use = "curbmap"
	cli.Root().Short = "Municipal curb and mobility map dashboard"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, err := newServer(opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error building server: %v\n", err)
				os.Exit(1)
			}
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// datasets subcommand: show the catalog and which files resolve
	datasetsCmd := &cobra.Command{
		Use:   "datasets",
		Short: "List catalog datasets and their load status",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			registry, err := loadRegistry(opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
				os.Exit(1)
			}
			loader := geo.NewLoader(opts.DataDir, 0, nil)
			datasets := service.NewDatasetService(registry, loader)

			for _, info := range datasets.List(context.Background()) {
				status := "missing"
				if info.Available {
					status = fmt.Sprintf("%d features", info.Features)
				}
				fmt.Printf("  %-26s %-9s %-28s %s\n", info.Name, info.Kind, info.File, status)
			}
		}),
	}
	cli.Root().AddCommand(datasetsCmd)

	// render subcommand: build a map bundle without a server
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Build a map bundle headlessly and print it as JSON",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			registry, err := loadRegistry(opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
				os.Exit(1)
			}
			loader := geo.NewLoader(opts.DataDir, 0, nil)
			transit := service.NewTransitService(registry, loader)
			maps := service.NewMapService(registry, loader, transit, nil)

			layers, _ := cmd.Flags().GetString("layers")
			stop, _ := cmd.Flags().GetString("stop")

			sel := service.Selection{Stop: strings.TrimSpace(stop)}
			if layers == "" {
				// Every non-boundary dataset, in catalog order.
				for _, ds := range registry.All() {
					if ds.Kind == catalog.KindBoundary {
						continue
					}
					sel.Datasets = append(sel.Datasets, ds.Name)
				}
			} else {
				for _, name := range strings.Split(layers, ",") {
					if name = strings.TrimSpace(name); name != "" {
						sel.Datasets = append(sel.Datasets, name)
					}
				}
			}

			bundle := maps.Bundle(context.Background(), sel)
			output, err := json.MarshalIndent(bundle, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling bundle: %v\n", err)
				os.Exit(1)
			}

			if out, _ := cmd.Flags().GetString("out"); out != "" {
				if err := os.WriteFile(out, append(output, '\n'), 0o644); err != nil {
					fmt.Fprintf(os.Stderr, "Error writing bundle: %v\n", err)
					os.Exit(1)
				}
				return
			}
			fmt.Println(string(output))
		}),
	}
	renderCmd.Flags().StringP("layers", "l", "", "Comma-separated dataset names (all non-boundary by default)")
	renderCmd.Flags().String("stop", "", "Transit stop label to focus the view on")
	renderCmd.Flags().StringP("out", "o", "", "Write the bundle to a file instead of stdout")
	cli.Root().AddCommand(renderCmd)

	cli.Run()
}
