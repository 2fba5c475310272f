// Package pipeline sequences one sync run: for each dataset it consults the
// cache, fetches and extracts the source when needed, validates the result
// and only then writes the cache artifact.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/papapumpkin/textage/internal/cache"
	"github.com/papapumpkin/textage/internal/decode"
	"github.com/papapumpkin/textage/internal/extract"
	"github.com/papapumpkin/textage/internal/fetch"
	"github.com/papapumpkin/textage/internal/rules"
	"github.com/papapumpkin/textage/internal/telemetry"
)

// memoSize bounds the decoded-result memo. A run touches a handful of
// datasets, so this only matters for long-lived callers.
const memoSize = 32

// Source says where a dataset's result came from.
type Source string

const (
	FromCache   Source = "cache"
	FromNetwork Source = "fetched"
)

// Runner processes datasets one at a time.
type Runner struct {
	Cache   *cache.Store
	Fetcher fetch.Fetcher
	Events  *telemetry.Emitter // Optional; nil disables the event log.
	Logger  *slog.Logger
	Force   bool // Refetch even when the cache is fresh.

	memo *lru.Cache[string, decode.Result]
	now  func() time.Time
}

// NewRunner returns a Runner writing artifacts to store and reading sources
// through f.
func NewRunner(store *cache.Store, f fetch.Fetcher, events *telemetry.Emitter, logger *slog.Logger) (*Runner, error) {
	memo, err := lru.New[string, decode.Result](memoSize)
	if err != nil {
		return nil, fmt.Errorf("pipeline: create memo: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		Cache:   store,
		Fetcher: f,
		Events:  events,
		Logger:  logger,
		memo:    memo,
		now:     time.Now,
	}, nil
}

// Run processes every dataset in table in order. A failing dataset is
// recorded in the report and does not stop the others.
func (r *Runner) Run(ctx context.Context, table rules.Table) *Report {
	start := r.now()
	rep := &Report{RunID: strconv.FormatInt(start.UnixNano(), 36)}
	r.emit(telemetry.Event{Kind: telemetry.KindRunStart, RunID: rep.RunID, Data: map[string]any{
		"datasets": table.Names(),
		"force":    r.Force,
	}})

	for _, spec := range table {
		out := r.run(ctx, rep.RunID, spec)
		rep.Outcomes = append(rep.Outcomes, out)
	}

	rep.Elapsed = r.now().Sub(start)
	r.emit(telemetry.Event{Kind: telemetry.KindRunDone, RunID: rep.RunID, Data: map[string]any{
		"ok":      len(rep.Outcomes) - rep.Failed(),
		"failed":  rep.Failed(),
		"elapsed": rep.Elapsed.String(),
	}})
	return rep
}

// RunOne processes a single dataset outside of a run.
func (r *Runner) RunOne(ctx context.Context, spec rules.DatasetSpec) (Outcome, error) {
	out := r.run(ctx, "", spec)
	return out, out.Err
}

func (r *Runner) run(ctx context.Context, runID string, spec rules.DatasetSpec) Outcome {
	began := r.now()
	out, err := r.process(ctx, runID, spec)
	out.Dataset = spec.Name
	out.Elapsed = r.now().Sub(began)
	if err != nil {
		out.Err = err
		de := asDatasetError(err)
		r.Logger.Warn("dataset failed", "dataset", spec.Name, "stage", de.Stage, "error", de.Err)
		r.emit(telemetry.Event{Kind: telemetry.KindDatasetFailed, RunID: runID, Dataset: spec.Name, Data: map[string]any{
			"stage": string(de.Stage),
			"error": de.Err.Error(),
		}})
		return out
	}
	r.Logger.Info("dataset ready", "dataset", spec.Name, "source", out.Source, "entries", out.Entries, "path", out.Path)
	return out
}

func (r *Runner) process(ctx context.Context, runID string, spec rules.DatasetSpec) (Outcome, error) {
	entry, err := r.Cache.Stat(spec.CacheName)
	if err != nil {
		return Outcome{}, &DatasetError{Dataset: spec.Name, Stage: StageCache, Err: err}
	}
	r.Logger.Debug("cache check", "dataset", spec.Name, "path", entry.Path, "state", entry.State, "age", entry.Age.Round(time.Second))

	if entry.State == cache.Fresh && !r.Force {
		res, err := r.load(spec, entry)
		if err != nil {
			return Outcome{}, err
		}
		r.emit(telemetry.Event{Kind: telemetry.KindCacheHit, RunID: runID, Dataset: spec.Name, Data: map[string]any{
			"path": entry.Path,
			"age":  entry.Age.Round(time.Second).String(),
		}})
		return Outcome{Source: FromCache, Path: entry.Path, Entries: res.Len(), Result: res}, nil
	}

	text, err := r.Fetcher.Fetch(ctx, spec.SourceName)
	if err != nil {
		return Outcome{}, &DatasetError{Dataset: spec.Name, Stage: StageFetch, Err: err}
	}
	r.emit(telemetry.Event{Kind: telemetry.KindFetched, RunID: runID, Dataset: spec.Name, Data: map[string]any{
		"resource": spec.SourceName,
		"bytes":    len(text),
	}})

	block, err := extract.Extract(text, spec)
	if err != nil {
		return Outcome{}, &DatasetError{Dataset: spec.Name, Stage: StageExtract, Err: err}
	}
	r.Logger.Debug("block extracted", "dataset", spec.Name, "start_line", block.StartLine, "end_line", block.EndLine, "entries", block.Entries)
	r.emit(telemetry.Event{Kind: telemetry.KindExtracted, RunID: runID, Dataset: spec.Name, Data: map[string]any{
		"start_line": block.StartLine,
		"end_line":   block.EndLine,
		"entries":    block.Entries,
	}})

	res, err := decode.Decode(spec.Kind, []byte(block.Text))
	if err != nil {
		return Outcome{}, &DatasetError{Dataset: spec.Name, Stage: StageDecode, Text: block.Text, Err: err}
	}

	path, err := r.Cache.Write(spec.CacheName, block.Text)
	if err != nil {
		return Outcome{}, &DatasetError{Dataset: spec.Name, Stage: StageCache, Text: block.Text, Err: err}
	}
	r.emit(telemetry.Event{Kind: telemetry.KindCached, RunID: runID, Dataset: spec.Name, Data: map[string]any{
		"path":  path,
		"bytes": len(block.Text),
	}})
	if written, err := r.Cache.Stat(spec.CacheName); err == nil {
		r.memo.Add(memoKey(written), res)
	}

	return Outcome{Source: FromNetwork, Path: path, Entries: res.Len(), Result: res}, nil
}

// load decodes the cached artifact, reusing a memoized result while the
// file's modification time is unchanged.
func (r *Runner) load(spec rules.DatasetSpec, entry cache.Entry) (decode.Result, error) {
	key := memoKey(entry)
	if res, ok := r.memo.Get(key); ok && res.Kind == spec.Kind {
		r.Logger.Debug("memo hit", "dataset", spec.Name, "path", entry.Path)
		return res, nil
	}

	data, err := r.Cache.Read(spec.CacheName)
	if err != nil {
		return decode.Result{}, &DatasetError{Dataset: spec.Name, Stage: StageCache, Err: err}
	}
	res, err := decode.Decode(spec.Kind, data)
	if err != nil {
		return decode.Result{}, &DatasetError{Dataset: spec.Name, Stage: StageDecode, Text: string(data), Err: err}
	}
	r.memo.Add(key, res)
	return res, nil
}

func memoKey(e cache.Entry) string {
	return e.Path + "@" + strconv.FormatInt(e.ModTime.UnixNano(), 10)
}

func (r *Runner) emit(evt telemetry.Event) {
	if err := r.Events.Emit(evt); err != nil {
		r.Logger.Warn("event log write failed", "kind", evt.Kind, "error", err)
	}
}
