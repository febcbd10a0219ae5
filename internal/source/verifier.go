package source

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"neuromesh/internal/domain"
	"neuromesh/internal/meshsource"
)

// RecordLister retrieves manifest records that need verification
type RecordLister interface {
	ListMeshes(ctx context.Context, kind string) ([]domain.MeshRecord, error)
}

// VerifierConfig holds configuration for the verifier adapter
type VerifierConfig struct {
	// MaxConcurrent limits parallel hash operations
	MaxConcurrent int
}

// DefaultVerifierConfig returns sensible defaults
func DefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{
		MaxConcurrent: 4,
	}
}

// Verifier re-hashes cached mesh files against the checksums recorded in
// the manifest. Missing files and content drift both become findings.
type Verifier struct {
	config    VerifierConfig
	lister    RecordLister
	publisher EventPublisher
	mu        sync.Mutex
	running   bool
}

// NewVerifier creates a new cache integrity verifier
func NewVerifier(lister RecordLister, config VerifierConfig) *Verifier {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	return &Verifier{
		config: config,
		lister: lister,
	}
}

// SetEventPublisher sets the event publisher for progress updates
func (v *Verifier) SetEventPublisher(pub EventPublisher) {
	v.publisher = pub
}

func (v *Verifier) publishEvent(eventType string, payload interface{}) {
	if v.publisher != nil {
		v.publisher.PublishMaintenanceEvent(eventType, payload)
	}
}

// Name returns the adapter identifier
func (v *Verifier) Name() string {
	return "verifier"
}

// Type returns the adapter type
func (v *Verifier) Type() AdapterType {
	return AdapterTypePolling
}

// Start initializes the adapter
func (v *Verifier) Start(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.running = true
	log.Printf("Verifier adapter started (concurrency=%d)", v.config.MaxConcurrent)
	return nil
}

// Stop shuts down the adapter
func (v *Verifier) Stop() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.running = false
	log.Printf("Verifier adapter stopped")
	return nil
}

// Sync hashes every cached file in the manifest and reports entries
// whose file is missing or whose content no longer matches
func (v *Verifier) Sync(ctx context.Context) (*Report, error) {
	records, err := v.lister.ListMeshes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list manifest: %w", err)
	}

	if len(records) == 0 {
		v.publishEvent("verify-complete", map[string]interface{}{
			"checked":  0,
			"findings": 0,
			"message":  "Cache manifest is empty",
		})
		return nil, nil
	}

	log.Printf("Verifying %d cached meshes", len(records))
	v.publishEvent("verify-started", map[string]interface{}{
		"total":   len(records),
		"message": fmt.Sprintf("Verifying %d cached meshes", len(records)),
	})

	workCh := make(chan domain.MeshRecord, len(records))
	resultCh := make(chan *domain.Discrepancy, len(records))

	var wg sync.WaitGroup
	for i := 0; i < v.config.MaxConcurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range workCh {
				select {
				case <-ctx.Done():
					return
				default:
					finding := v.checkRecord(rec)
					if finding != nil {
						v.publishEvent("verify-progress", map[string]interface{}{
							"mesh_id": rec.ID,
							"kind":    string(finding.Kind),
							"path":    rec.Path,
						})
					}
					resultCh <- finding
				}
			}
		}()
	}

	for _, rec := range records {
		workCh <- rec
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	report := &Report{Checked: len(records)}
	for finding := range resultCh {
		if finding != nil {
			report.Findings = append(report.Findings, *finding)
		}
	}

	v.publishEvent("verify-complete", map[string]interface{}{
		"checked":  report.Checked,
		"findings": len(report.Findings),
		"message":  fmt.Sprintf("Verification complete: %d findings in %d entries", len(report.Findings), report.Checked),
	})

	return report, nil
}

// checkRecord compares one manifest entry against the file on disk.
// Returns nil when the entry is healthy.
func (v *Verifier) checkRecord(rec domain.MeshRecord) *domain.Discrepancy {
	if _, err := os.Stat(rec.Path); os.IsNotExist(err) {
		return &domain.Discrepancy{
			MeshID:     rec.ID,
			Kind:       domain.DiscrepancyMissingFile,
			Expected:   rec.Path,
			DetectedAt: time.Now(),
		}
	}

	actual, err := meshsource.Checksum(rec.Path)
	if err != nil {
		log.Printf("Verifier: cannot hash %s: %v", rec.Path, err)
		return nil
	}
	if actual != rec.Checksum {
		return &domain.Discrepancy{
			MeshID:     rec.ID,
			Kind:       domain.DiscrepancyChecksumMismatch,
			Expected:   rec.Checksum,
			Actual:     actual,
			DetectedAt: time.Now(),
		}
	}
	return nil
}
