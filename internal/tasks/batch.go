package tasks

import (
	"context"
	"sync"
)

// BatchOpts configures [PlaylistEngine.RunBatch].
type BatchOpts struct {
	RunOptions
	Workers int // concurrent pages (default 1, max 4)
}

// BatchItem is the outcome for one URL.
type BatchItem struct {
	URL    string
	Result *RunResult
	Err    error
}

// BatchResult holds one item per input URL, in input order.
type BatchResult struct {
	Items []BatchItem
}

// Succeeded returns the results of URLs that completed.
func (b *BatchResult) Succeeded() []*RunResult {
	var out []*RunResult
	for _, item := range b.Items {
		if item.Err == nil && item.Result != nil {
			out = append(out, item.Result)
		}
	}
	return out
}

// Failed returns the items that ended with an error.
func (b *BatchResult) Failed() []BatchItem {
	var out []BatchItem
	for _, item := range b.Items {
		if item.Err != nil {
			out = append(out, item)
		}
	}
	return out
}

type batchJob struct {
	index int
	url   string
}

// RunBatch runs every URL. A failing URL is recorded and the rest continue.
//
// Workers share the engine's fetcher and service, so their rate limits apply across the batch.
func (e *PlaylistEngine) RunBatch(ctx context.Context, urls []string, opts BatchOpts, progress chan<- ProgressUpdate) *BatchResult {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, 4, max(len(urls), 1))

	result := &BatchResult{Items: make([]BatchItem, len(urls))}
	jobs := make(chan batchJob)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res, err := e.Run(ctx, job.url, opts.RunOptions, progress)
				if err != nil {
					e.logger.Error("playlist failed", "url", job.url, "error", err)
				}

				mu.Lock()
				result.Items[job.index] = BatchItem{URL: job.url, Result: res, Err: err}
				done++
				step := done
				mu.Unlock()

				e.sendProgress(progress, batchUpdate(step, len(urls), job.url, err))
			}
		}()
	}

	for i, url := range urls {
		if ctx.Err() != nil {
			result.Items[i] = BatchItem{URL: url, Err: ctx.Err()}
			continue
		}
		jobs <- batchJob{index: i, url: url}
	}
	close(jobs)
	wg.Wait()

	return result
}
