package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

var fetchWorkers int

// fetchCmd downloads one or more segments into the cache
var fetchCmd = &cobra.Command{
	Use:   "fetch <segment-id>...",
	Short: "Download meshes into the local cache",
	Long: `Download meshes for the given segment IDs. Segments already in the
cache are skipped. With more than one ID the download runs in parallel
with the configured number of workers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 4, "Concurrent downloads for bulk fetches")
}

func runFetch(cmd *cobra.Command, args []string) error {
	segmentIDs := make([]uint64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid segment ID %q", arg)
		}
		segmentIDs = append(segmentIDs, id)
	}

	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	if len(segmentIDs) == 1 {
		rec, fromCache, err := svc.Fetch(cmd.Context(), segmentIDs[0])
		if err != nil {
			return err
		}
		origin := "downloaded"
		if fromCache {
			origin = "cached"
		}
		fmt.Printf("%s: %d vertices, %d faces (%s)\n", rec.ID, rec.VertexCount, rec.FaceCount, origin)
		return nil
	}

	result, err := svc.FetchBulk(cmd.Context(), segmentIDs, fetchWorkers)
	if err != nil {
		return err
	}

	fmt.Printf("Fetched %d of %d segments (%d from cache)\n",
		len(result.Fetched), len(segmentIDs), len(result.FromCache))

	if len(result.Failed) > 0 {
		failed := make([]uint64, 0, len(result.Failed))
		for id := range result.Failed {
			failed = append(failed, id)
		}
		sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
		for _, id := range failed {
			fmt.Printf("  failed %d: %s\n", id, result.Failed[id])
		}
		return fmt.Errorf("%d segments failed", len(result.Failed))
	}
	return nil
}
