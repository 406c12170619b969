// Command fedcore is the CLI entrypoint: version/init/serve/dev, the same
// command set gateway/gateway.go (gone) and server/gateway.go (gone) wired
// by hand, rebuilt around internal/server and the composed internal/schema
// rather than the teacher's v1/v2 federation packages. `dev` additionally
// ports the gateway-local/federated-dev shape SPEC_FULL.md §6 point 5 adds:
// compose from on-disk SDL and serve immediately, no registry round-trip.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

const fedcoreVersion = "v0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "fedcore",
		Short: "Federated GraphQL execution core",
	}

	var configPath string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway against a schema registry (subgraphs POST their SDL at /schema/registration)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	serveCmd.Flags().StringVar(&configPath, "config", "fedcore.yaml", "path to the YAML configuration file")

	var devConfigPath string
	devCmd := &cobra.Command{
		Use:   "dev",
		Short: "Compose subgraphs from on-disk SDL/endpoints and serve immediately, no registry round-trip",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(devConfigPath)
		},
	}
	devCmd.Flags().StringVar(&devConfigPath, "config", "fedcore.yaml", "path to the YAML configuration file")

	var initPath string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter fedcore.yaml configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initPath)
		},
	}
	initCmd.Flags().StringVar(&initPath, "config", "fedcore.yaml", "path to write the starter configuration to")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the fedcore version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fedcore %s\n", fedcoreVersion)
		},
	}

	rootCmd.AddCommand(versionCmd, initCmd, serveCmd, devCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runInit(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return os.WriteFile(path, []byte(starterConfig), 0o644)
}

const starterConfig = `service_name: fedcore
port: 8080
timeout_duration: 5s
enable_introspection: true

operation_limits:
  max_depth: 0
  max_aliases: 0
  max_root_fields: 0
  max_complexity: 0

default_headers:
  - name: x-request-id
    forward: true

trusted_documents:
  enable: false

subgraphs:
  products:
    endpoint: http://localhost:4001/graphql
    schema_files:
      - subgraphs/products.graphql
  reviews:
    endpoint: http://localhost:4002/graphql
    schema_files:
      - subgraphs/reviews.graphql

opentelemetry:
  tracing:
    enable: false
    otlp_endpoint: ""
`
