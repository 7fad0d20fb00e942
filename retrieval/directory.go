package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/grounder/core"
)

// DirectoryConnector fans a query out across the directory backend's
// sub-endpoints (unified search, messages, files, lists) and concatenates
// the results in fixed endpoint order. A sub-endpoint that fails contributes
// an empty slice plus a warning; it never aborts the other endpoints.
type DirectoryConnector struct {
	client DirectoryClient
	pool   *ants.Pool
	logger *slog.Logger
}

var _ Connector = (*DirectoryConnector)(nil)

// DirectoryOption configures a DirectoryConnector.
type DirectoryOption func(*DirectoryConnector) error

// WithDirectoryPoolSize sets the worker pool size for sub-endpoint fan-out.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithDirectoryPoolSize(size int) DirectoryOption {
	return func(d *DirectoryConnector) error {
		if size < 1 {
			size = 1
		}
		if d.pool != nil {
			d.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		d.pool = pool
		return nil
	}
}

// WithDirectoryLogger sets a custom logger.
// Default is slog.Default().
func WithDirectoryLogger(logger *slog.Logger) DirectoryOption {
	return func(d *DirectoryConnector) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger.With("component", "directory-connector")
		return nil
	}
}

// NewDirectoryConnector creates a directory connector over the given client.
func NewDirectoryConnector(client DirectoryClient, opts ...DirectoryOption) (*DirectoryConnector, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	d := &DirectoryConnector{
		client: client,
		pool:   pool,
		logger: slog.Default().With("component", "directory-connector"),
	}

	for _, opt := range opts {
		if optErr := opt(d); optErr != nil {
			d.Release()
			return nil, optErr
		}
	}

	return d, nil
}

// Name returns the directory source tag.
func (d *DirectoryConnector) Name() core.SourceType {
	return core.SourceDirectory
}

// Endpoints returns the sub-endpoints queried for an identity, in the fixed
// order their results are concatenated.
func (d *DirectoryConnector) Endpoints(identity *core.UserContext) []string {
	userId := "unknown"
	if identity != nil && identity.UserId != "" {
		userId = identity.UserId
	}
	return []string{
		"/search/query",
		"/users/" + userId + "/messages",
		"/users/" + userId + "/drive/root/search",
		"/sites/root/lists",
	}
}

// Search fetches every sub-endpoint concurrently and waits for all of them.
func (d *DirectoryConnector) Search(ctx context.Context, query string, identity *core.UserContext) (*Result, error) {
	endpoints := d.Endpoints(identity)

	var wg sync.WaitGroup
	fetched := make([][]*core.Candidate, len(endpoints))
	failures := make([]error, len(endpoints))

	for i, endpoint := range endpoints {
		wg.Add(1)
		run := func() {
			defer wg.Done()
			rows, err := d.client.Fetch(ctx, endpoint, query)
			if err != nil {
				d.logger.Warn("directory endpoint failed", "endpoint", endpoint, "err", err)
				failures[i] = fmt.Errorf("%w: endpoint %s: %w", ErrConnector, endpoint, err)
				return
			}
			fetched[i] = rows
		}
		if err := d.pool.Submit(run); err != nil {
			// Pool unavailable, run the fetch on the caller's goroutine.
			run()
		}
	}
	wg.Wait()

	result := &Result{Source: core.SourceDirectory}
	for i := range endpoints {
		if failures[i] != nil {
			result.Warnings = append(result.Warnings, failures[i].Error())
			continue
		}
		for _, candidate := range fetched[i] {
			if candidate == nil {
				continue
			}
			candidate.SourceType = core.SourceDirectory
			candidate.RelevanceScore = core.SafeScore(candidate.RelevanceScore)
			result.Candidates = append(result.Candidates, candidate)
		}
	}

	return result, nil
}

// Release releases the worker pool.
// The connector should not be used after calling Release.
func (d *DirectoryConnector) Release() {
	if d.pool != nil {
		d.pool.Release()
	}
}
