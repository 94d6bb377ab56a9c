// Package dispatcher implements the Priority Dispatcher (C6), the
// Recursive Ingestor (C5), and the Failure Governor (C7): it routes each
// submitted file to an I/O or CPU worker pool by priority, enforces a
// per-task timeout, re-submits container children with parent linkage up
// to a depth cap, and aggregates per-run statistics. Grounded on the
// teacher's pipeline.Orchestrator (two fixed-size worker pools reading
// from a channel) generalized from one executor kind to two.
package dispatcher

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/lattice-data/ingestor/internal/content"
	"github.com/lattice-data/ingestor/internal/extractor"
	"github.com/lattice-data/ingestor/internal/logging"
	"github.com/lattice-data/ingestor/internal/storagepipeline"
)

// maxRecursionDepth caps container nesting (archives-of-archives, etc).
const maxRecursionDepth = 5

// defaultTaskTimeout is the per-task completion deadline.
const defaultTaskTimeout = 3600 * time.Second

// Task is one file to dispatch. Run groups eligible small-file Tasks into
// batches that one worker processes sequentially.
type Task struct {
	Path          string
	Name          string
	Size          int64
	ParentTitleID *int64 // set when this file is a container's child
	Depth         int
}

// Outcome is the per-task result the dispatcher records, always exactly
// one per submitted file per the completeness invariant.
type Outcome struct {
	Task    Task
	Result  storagepipeline.Result
	IsError bool
}

// Storer is the narrow surface the dispatcher needs from the storage
// pipeline, letting tests substitute a fake.
type Storer interface {
	Store(ctx context.Context, sourceID, sideID int64, fi storagepipeline.FileInfo, extracted content.ExtractedContent, parentTitleID *int64) storagepipeline.Result
}

// Dispatcher routes tasks to I/O/CPU worker pools, recursively re-submits
// container children, and tracks statistics via the Governor.
type Dispatcher struct {
	store    Storer
	sourceID int64
	sideID   int64
	timeout  time.Duration
	governor *Governor
	log      logging.Logger

	ioSem  chan struct{}
	cpuSem chan struct{}

	mu      sync.Mutex
	results []Outcome
	wg      sync.WaitGroup
}

func New(store Storer, sourceID, sideID int64, ioWorkers, cpuWorkers int, timeout time.Duration, governor *Governor, log logging.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	if ioWorkers <= 0 {
		ioWorkers = 4
	}
	if cpuWorkers <= 0 {
		cpuWorkers = 4
	}
	return &Dispatcher{
		store:    store,
		sourceID: sourceID,
		sideID:   sideID,
		timeout:  timeout,
		governor: governor,
		log:      log,
		ioSem:    make(chan struct{}, ioWorkers),
		cpuSem:   make(chan struct{}, cpuWorkers),
	}
}

// Run submits every task in files, groups eligible small files into
// batches, waits for completion, and returns the accumulated results.
// There is no total ordering between tasks; post-accumulation order is
// completion order.
func (d *Dispatcher) Run(ctx context.Context, files []Task) []Outcome {
	d.governor.Start(time.Now())

	var singles []Task
	var smallGroup []Task
	for _, f := range files {
		if IsSmallFile(f.Name, f.Size) {
			smallGroup = append(smallGroup, f)
			if len(smallGroup) == 10 {
				d.submitBatch(ctx, smallGroup)
				smallGroup = nil
			}
			continue
		}
		singles = append(singles, f)
	}
	if len(smallGroup) > 0 {
		d.submitBatch(ctx, smallGroup)
	}

	for _, f := range singles {
		d.submitOne(ctx, f)
	}

	d.wg.Wait()
	d.governor.Finish(time.Now())

	if d.governor.Tripped() {
		d.log.Warn("circuit breaker tripped: failure rate exceeds threshold, continuing dispatch", "stats", d.governor.Snapshot())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Outcome(nil), d.results...)
}

// submitBatch dispatches up to 10 small files as one I/O-executor task,
// processed sequentially in submission order within the batch.
func (d *Dispatcher) submitBatch(ctx context.Context, group []Task) {
	d.wg.Add(1)
	d.ioSem <- struct{}{}
	go func() {
		defer d.wg.Done()
		defer func() { <-d.ioSem }()
		for _, f := range group {
			d.runTaskWithTimeout(ctx, f)
		}
	}()
}

// submitOne routes a single file to the I/O or CPU pool by size/extension.
// The slot is acquired inside the spawned goroutine, not by the caller:
// submitOne is called from ingestChildren while a worker goroutine is
// itself holding a slot in the same pool (container -> child re-entry), so
// blocking on the semaphore here, before spawning, would deadlock the pool
// once every worker is occupied by a container waiting on its own children.
func (d *Dispatcher) submitOne(ctx context.Context, f Task) {
	sem := d.ioSem
	if useCPUExecutor(f.Name, f.Size) {
		sem = d.cpuSem
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sem <- struct{}{}
		defer func() { <-sem }()
		d.runTaskWithTimeout(ctx, f)
	}()
}

// runTaskWithTimeout isolates a panic/unhandled error inside the worker
// (translated into Error{Internal}) and enforces the absolute per-task
// deadline, recording a timeout result without cancelling the underlying
// operation's goroutine.
func (d *Dispatcher) runTaskWithTimeout(ctx context.Context, f Task) {
	taskCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Outcome{Task: f, IsError: true, Result: storagepipeline.Result{
					Kind: storagepipeline.ResultError, Message: "internal: panic in worker",
				}}
			}
		}()
		done <- d.process(taskCtx, f)
	}()

	select {
	case out := <-done:
		d.record(out)
	case <-taskCtx.Done():
		d.record(Outcome{Task: f, IsError: true, Result: storagepipeline.Result{
			Kind: storagepipeline.ResultError, Message: "timeout",
		}})
	}
}

// process extracts and stores one file, then re-submits any staged
// children produced by a container extractor.
func (d *Dispatcher) process(ctx context.Context, f Task) Outcome {
	if f.Depth > maxRecursionDepth {
		return Outcome{Task: f, IsError: true, Result: storagepipeline.Result{
			Kind: storagepipeline.ResultError, Message: "max recursion depth exceeded",
		}}
	}

	extracted := extractor.Extract(ctx, extractor.FileInfo{Path: f.Path, Name: f.Name, Size: f.Size})

	fi := storagepipeline.FileInfo{Path: f.Path, Name: f.Name, Size: f.Size}
	res := d.store.Store(ctx, d.sourceID, d.sideID, fi, extracted, f.ParentTitleID)

	if res.Kind == storagepipeline.ResultSuccess && extracted.ExtractionDir != "" {
		d.ingestChildren(ctx, extracted.ExtractionDir, res.TitleID, f.Depth+1)
	}

	return Outcome{Task: f, IsError: res.Kind == storagepipeline.ResultError, Result: res}
}

// ingestChildren walks a container's staged extraction directory,
// correcting any misnamed file's extension by magic bytes, and
// re-submits each child to the same executor pools with parent linkage.
func (d *Dispatcher) ingestChildren(ctx context.Context, dir string, parentTitleID int64, depth int) {
	entries, err := osReadDir(dir)
	if err != nil {
		d.log.Warn("read staged children failed", "dir", dir, "error", err)
		return
	}

	parent := parentTitleID
	for _, e := range entries {
		if e.isDir {
			continue
		}
		correctedPath := extractor.CorrectExtension(e.path)
		if correctedPath != e.path {
			// Rename on disk so the corrected path exists; keep the
			// original name if the target is taken or the rename fails.
			if _, err := os.Stat(correctedPath); err == nil || os.Rename(e.path, correctedPath) != nil {
				correctedPath = e.path
			}
		}
		child := Task{
			Path:          correctedPath,
			Name:          filepathBase(correctedPath),
			Size:          e.size,
			ParentTitleID: &parent,
			Depth:         depth,
		}
		if depth > maxRecursionDepth {
			d.record(Outcome{Task: child, IsError: true, Result: storagepipeline.Result{
				Kind: storagepipeline.ResultError, Message: "max recursion depth exceeded",
			}})
			continue
		}
		d.submitOne(ctx, child)
	}
}

// record appends a result and updates the governor; guarded by mu since
// workers complete concurrently.
func (d *Dispatcher) record(out Outcome) {
	d.mu.Lock()
	d.results = append(d.results, out)
	d.mu.Unlock()
	d.governor.RecordOutcome(out.IsError, out.Result.Kind == storagepipeline.ResultDuplicate, out.Task.ParentTitleID == nil)
}
