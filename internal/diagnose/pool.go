package diagnose

import (
	"context"
	"log/slog"
	"sync"

	"autodiag/internal/acoustic"
	"autodiag/internal/evidence"
	"autodiag/internal/logging"
)

// fingerprintCorpus extracts fingerprints for corpus items with decoded audio
// using a bounded worker pool. Per-item failures are swallowed: the item keeps
// a nil fingerprint and its text evidence still counts. Output order matches
// input order so downstream ranking stays deterministic.
func fingerprintCorpus(ctx context.Context, items []CorpusItem, workers int, logger *slog.Logger) []evidence.ReferenceItem {
	if workers < 1 {
		workers = 1
	}

	out := make([]evidence.ReferenceItem, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out[idx] = fingerprintItem(items[idx], logger)
			}
		}()
	}

	for idx := range items {
		select {
		case <-ctx.Done():
			// Abandoned request: stop feeding work, remaining items keep
			// their zero value and are skipped by the collector.
			close(jobs)
			wg.Wait()
			return out
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()
	return out
}

func fingerprintItem(item CorpusItem, logger *slog.Logger) evidence.ReferenceItem {
	ref := item.Item
	if ref.Fingerprint != nil || len(item.Samples) == 0 {
		return ref
	}
	fp, err := acoustic.Extract(item.Samples, item.SampleRate)
	if err != nil {
		if logger != nil {
			logger.Debug("reference item audio skipped",
				logging.String("item_id", ref.ID),
				logging.Error(err),
			)
		}
		return ref
	}
	ref.Fingerprint = fp
	return ref
}
