// meshctl is the command-line companion to the neuromesh server. It
// works directly against the local cache and manifest, so meshes can be
// downloaded, healed, masked, and exported without a running server.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"neuromesh/internal/config"
	"neuromesh/internal/meshsource"
	"neuromesh/internal/repository/sqlite"
	"neuromesh/internal/segmentgraph"
	"neuromesh/internal/service"
)

var (
	configPath string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "meshctl",
	Short: "Manage cached neuron meshes",
	Long: `meshctl downloads neuron segmentation meshes into a local cache,
heals fragmented meshes using segmentation-graph merge logs, applies
vertex masks, computes geometry summaries, and exports viewer scenes.`,
	SilenceUsage: true,
}

// newService builds a MeshService from the config file. The returned
// cleanup closes the manifest database.
func newService() (*service.MeshService, func(), error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, _, err = config.LoadFromPath(configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open manifest: %w", err)
	}

	client, err := meshsource.New(cfg.Source.BaseURL, cfg.Source.CacheDir)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	var graph *segmentgraph.Client
	if cfg.HealingEnabled() {
		graph = segmentgraph.New(cfg.SegmentGraph.BaseURL)
	}

	svc := service.NewMeshService(repo, client, graph, service.NewEventBus())
	return svc, func() { repo.Close() }, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: search standard locations)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(healCmd)
	rootCmd.AddCommand(maskCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(evictCmd)
	rootCmd.AddCommand(sceneCmd)

	// Library code logs progress through the standard logger; keep it
	// quiet unless asked for.
	cobra.OnInitialize(func() {
		if !verbose {
			log.SetOutput(io.Discard)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
