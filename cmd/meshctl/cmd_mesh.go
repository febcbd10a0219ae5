package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listKind string

// statsCmd prints the geometry summary for a cached mesh
var statsCmd = &cobra.Command{
	Use:   "stats <mesh-id>",
	Short: "Print the geometry summary for a cached mesh",
	Long: `Print vertex, face, and edge counts plus surface area, enclosed
volume, and center of mass. Volume and center of mass assume a
watertight mesh and are reported without validation.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

// listCmd lists manifest records
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached meshes",
	RunE:  runList,
}

// evictCmd removes a mesh from the cache and the manifest
var evictCmd = &cobra.Command{
	Use:   "evict <mesh-id>",
	Short: "Remove a mesh from the cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvict,
}

func init() {
	listCmd.Flags().StringVar(&listKind, "kind", "", "Filter by kind (source or derived)")
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := svc.Stats(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("vertices:       %d\n", stats.VertexCount)
	fmt.Printf("faces:          %d\n", stats.FaceCount)
	fmt.Printf("edges:          %d (%d link)\n", stats.EdgeCount, stats.LinkEdgeCount)
	fmt.Printf("area:           %.1f nm^2\n", stats.Area)
	fmt.Printf("volume:         %.1f nm^3\n", stats.Volume)
	fmt.Printf("center of mass: (%.1f, %.1f, %.1f)\n",
		stats.CenterOfMass[0], stats.CenterOfMass[1], stats.CenterOfMass[2])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := svc.ListMeshes(cmd.Context(), listKind)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("Cache is empty")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSEGMENT\tVERTICES\tFACES\tLINKS\tFETCHED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			rec.ID, rec.Kind, rec.SegmentID,
			rec.VertexCount, rec.FaceCount, rec.LinkEdgeCount,
			rec.FetchedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runEvict(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.Evict(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Evicted %s\n", args[0])
	return nil
}
