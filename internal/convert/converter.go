// Package convert drives the per-file conversion loop: read a source
// file, extract and translate its regions, assemble per-distro scripts,
// and write them out. Failures are isolated per file; the batch always
// runs to the end.
package convert

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openstack-archive/rst2bash/internal/assemble"
	"github.com/openstack-archive/rst2bash/internal/config"
	apperr "github.com/openstack-archive/rst2bash/internal/errors"
	"github.com/openstack-archive/rst2bash/internal/extract"
	"github.com/openstack-archive/rst2bash/internal/journal"
	"github.com/openstack-archive/rst2bash/internal/logfields"
	"github.com/openstack-archive/rst2bash/internal/metrics"
)

// sourceExtension marks convertible input files.
const sourceExtension = ".rst"

// Converter converts documentation source files into per-distro scripts.
// Runs are serialized: concurrent triggers (watcher debounce firing while
// a scheduled run is in flight) wait for the active run to finish rather
// than interleaving their writes and journal rows.
type Converter struct {
	cfg     *config.Config
	rec     *metrics.Recorder
	journal *journal.Store
	runMu   sync.Mutex
}

// New creates a converter for the given configuration.
func New(cfg *config.Config) *Converter { return &Converter{cfg: cfg} }

// WithMetrics attaches a metrics recorder (fluent helper).
func (c *Converter) WithMetrics(r *metrics.Recorder) *Converter { c.rec = r; return c }

// WithJournal attaches a conversion journal (fluent helper).
func (c *Converter) WithJournal(j *journal.Store) *Converter { c.journal = j; return c }

// Result is the outcome of converting one input file.
type Result struct {
	File    string
	Units   int
	Written []string
	Err     error
}

// Summary aggregates one conversion run.
type Summary struct {
	RunID     string
	Succeeded int
	Failed    int
	Results   []Result
}

// DiscoverFiles returns the input files to convert, relative to the
// source directory: the configured list when present, otherwise every
// source file found under the directory.
func (c *Converter) DiscoverFiles() ([]string, error) {
	if len(c.cfg.Files) > 0 {
		return append([]string(nil), c.cfg.Files...), nil
	}

	var files []string
	err := filepath.WalkDir(c.cfg.Source.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != sourceExtension {
			return nil
		}
		rel, rerr := filepath.Rel(c.cfg.Source.Dir, path)
		if rerr != nil {
			return rerr
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CategorySource, apperr.SeverityFatal, "source discovery failed").
			WithContext("dir", c.cfg.Source.Dir)
	}
	sort.Strings(files)
	return files, nil
}

// Run converts every discovered input file. A failed file is reported
// and recorded, and the run continues with the next one.
func (c *Converter) Run(ctx context.Context) (*Summary, error) {
	files, err := c.DiscoverFiles()
	if err != nil {
		return nil, err
	}
	return c.RunFiles(ctx, files)
}

// RunFiles converts the given input files (relative to the source dir).
// One run executes at a time per Converter.
func (c *Converter) RunFiles(ctx context.Context, files []string) (*Summary, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	started := time.Now()
	summary := &Summary{RunID: uuid.NewString()}
	c.rec.IncRun()

	slog.Info("Starting conversion run",
		logfields.RunID(summary.RunID),
		slog.Int("files", len(files)),
		slog.String("source", c.cfg.Source.Dir))

	for _, file := range files {
		res := c.convertFile(file)
		summary.Results = append(summary.Results, res)

		if res.Err != nil {
			summary.Failed++
			c.rec.IncFileResult(metrics.ResultFailed)
			c.rec.IncFailure(string(apperr.GetCategory(res.Err)))
			slog.Error("Conversion failed",
				logfields.RunID(summary.RunID),
				logfields.File(file),
				logfields.Category(string(apperr.GetCategory(res.Err))),
				logfields.Error(res.Err))
		} else {
			summary.Succeeded++
			c.rec.IncFileResult(metrics.ResultSuccess)
			c.rec.AddUnits(res.Units)
			slog.Info("Converted",
				logfields.RunID(summary.RunID),
				logfields.File(file),
				logfields.Units(res.Units),
				slog.Int("scripts", len(res.Written)))
		}
		c.record(ctx, summary.RunID, res)
	}

	c.rec.ObserveConvertDuration(time.Since(started))
	slog.Info("Conversion run finished",
		logfields.RunID(summary.RunID),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		logfields.DurationMS(float64(time.Since(started).Milliseconds())))
	return summary, nil
}

// convertFile processes one input file end to end. Nothing is written
// for a file whose extraction or translation fails.
func (c *Converter) convertFile(file string) Result {
	res := Result{File: file}

	data, err := os.ReadFile(filepath.Join(c.cfg.Source.Dir, file))
	if err != nil {
		res.Err = apperr.Wrap(err, apperr.CategorySource, apperr.SeverityFatal, "failed to read input").
			WithContext("file", file)
		return res
	}

	engine := extract.NewEngine(string(data), c.cfg.DefaultDistros)
	engine.BuildIndices()
	units, err := engine.Extract()
	if err != nil {
		res.Err = err
		return res
	}
	res.Units = len(units)

	asm := assemble.New()
	for _, u := range units {
		asm.Add(u)
	}

	name := ScriptName(file)
	for distro, content := range asm.Scripts() {
		outDir, ok := c.cfg.Output[distro]
		if !ok {
			slog.Warn("No output directory configured for distro, skipping",
				logfields.File(file), logfields.Distro(distro))
			continue
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			res.Err = apperr.WriteError(outDir, err)
			return res
		}
		target := filepath.Join(outDir, name)
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			res.Err = apperr.WriteError(target, err)
			return res
		}
		res.Written = append(res.Written, target)
	}
	sort.Strings(res.Written)
	return res
}

// record appends the result to the journal when one is attached.
func (c *Converter) record(ctx context.Context, runID string, res Result) {
	if c.journal == nil {
		return
	}
	entry := journal.Entry{
		RunID:  runID,
		File:   res.File,
		Status: journal.StatusConverted,
		Units:  res.Units,
	}
	if res.Err != nil {
		entry.Status = journal.StatusFailed
		entry.Detail = res.Err.Error()
	}
	if err := c.journal.Record(ctx, entry); err != nil {
		slog.Warn("Failed to record journal entry", logfields.File(res.File), logfields.Error(err))
	}
}

// ScriptName swaps the input file's extension for the shell script
// extension, keeping only the base name.
func ScriptName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".sh"
}
