package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// healCmd applies merge-log link edges to a cached mesh
var healCmd = &cobra.Command{
	Use:   "heal <segment-id>",
	Short: "Bridge mesh fragments using the segmentation-graph merge log",
	Long: `Fetch the merge log for a segment and add link edges connecting the
mesh vertices nearest each recorded merge point. Link edges carry no
surface; they only restore connectivity across gaps left by
segmentation merges, so component filters see the neuron as one piece.`,
	Args: cobra.ExactArgs(1),
	RunE: runHeal,
}

func runHeal(cmd *cobra.Command, args []string) error {
	segmentID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid segment ID %q", args[0])
	}

	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	rec, added, err := svc.Heal(cmd.Context(), segmentID)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d link edges added (%d total)\n", rec.ID, added, rec.LinkEdgeCount)
	return nil
}
