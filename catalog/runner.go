package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunnerConfig drives one polling ingest pass over inspector payload
// files.
type RunnerConfig struct {
	DBPath string
	// Inputs: each glob carries an optional label and quarantine dir.
	Inputs []InputSpec
	// ReportAddr, when set, ships report lines over TCP instead of
	// stdout.
	ReportAddr    string
	MetadataDim   int
	ChannelDim    int
	SchemaVersion int
	// DeletePersisted removes payload files only after the persist
	// succeeded and the report was delivered.
	DeletePersisted bool
	Debug           bool
	Timeout         time.Duration
}

type InputSpec struct {
	Glob     string
	Label    string
	ErrorDir string
}

type Runner struct {
	cfg   RunnerConfig
	db    *gorm.DB
	store *Store
	sink  ReportSink
}

func (r *Runner) debugf(format string, args ...any) {
	if r == nil || !r.cfg.Debug {
		return
	}
	log.Printf(format, args...)
}

type runStats struct {
	PayloadsSeen int
	Inserted     int
	Duplicates   int
	Errors       int
	Quarantined  int
	Deleted      int
	ReportErrs   int
}

func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, fmt.Errorf("DBPath is required")
	}
	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("Inputs is required")
	}

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg: cfg,
		db:  db,
		store: NewStore(db, StoreOptions{
			MetadataDim:   cfg.MetadataDim,
			ChannelDim:    cfg.ChannelDim,
			SchemaVersion: cfg.SchemaVersion,
			Debug:         cfg.Debug,
		}),
	}
	if strings.TrimSpace(cfg.ReportAddr) != "" {
		r.sink = NewTCPSink(cfg.ReportAddr)
	} else {
		r.sink = NewStdoutSink()
	}
	return r, nil
}

func (r *Runner) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	r.db = nil
	return err
}

// RunOnce ingests every payload file the input globs match. The
// deadline is checked between payloads only; a Persist in flight is
// never interrupted, so no transaction is abandoned mid-write.
func (r *Runner) RunOnce() error {
	start := time.Now()
	runID := uuid.NewString()
	stats := &runStats{}
	deadline := time.Time{}
	if r.cfg.Timeout > 0 {
		deadline = time.Now().Add(r.cfg.Timeout)
	}

	items, err := r.expandInputs(r.cfg.Inputs)
	if err != nil {
		return err
	}
	r.debugf("run_once start: run=%s inputs=%d matched=%d deletePersisted=%v timeout=%s",
		runID, len(r.cfg.Inputs), len(items), r.cfg.DeletePersisted, r.cfg.Timeout)

	for _, it := range items {
		if isDeadlineExceeded(deadline) {
			return fmt.Errorf("timeout exceeded")
		}
		_ = r.ingestPayload(it, runID, deadline, stats)
	}

	r.debugf("run_once done: run=%s seen=%d inserted=%d duplicates=%d errors=%d quarantined=%d deleted=%d reportErrs=%d elapsed=%s",
		runID, stats.PayloadsSeen, stats.Inserted, stats.Duplicates, stats.Errors,
		stats.Quarantined, stats.Deleted, stats.ReportErrs, time.Since(start))
	return nil
}

func isDeadlineExceeded(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}

func remainingTimeout(deadline time.Time, fallback time.Duration) time.Duration {
	if deadline.IsZero() {
		return fallback
	}
	rem := time.Until(deadline)
	if rem <= 0 {
		return 1 * time.Millisecond
	}
	if fallback <= 0 || rem < fallback {
		return rem
	}
	return fallback
}

type inputItem struct {
	Path     string
	Label    string
	ErrorDir string
}

func (r *Runner) expandInputs(inputs []InputSpec) ([]inputItem, error) {
	seen := make(map[string]struct{})
	var out []inputItem
	for _, in := range inputs {
		if strings.TrimSpace(in.Glob) == "" {
			continue
		}
		matches, err := expandGlobWithDoubleStar(in.Glob)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, inputItem{Path: m, Label: in.Label, ErrorDir: in.ErrorDir})
		}
	}
	return out, nil
}

func expandGlobWithDoubleStar(pattern string) ([]string, error) {
	// Go's filepath.Glob doesn't support **; implement a minimal recursive matcher.
	if !strings.Contains(pattern, "**") {
		return filepath.Glob(pattern)
	}

	// Split at the first ** occurrence.
	idx := strings.Index(pattern, "**")
	basePart := strings.TrimRight(pattern[:idx], string(filepath.Separator)+"/")
	if basePart == "" {
		basePart = "."
	}
	basePart = filepath.Clean(basePart)

	suffix := pattern[idx+2:]
	suffix = strings.TrimLeft(suffix, string(filepath.Separator)+"/")
	if suffix == "" {
		suffix = "*"
	}

	baseSlash := filepath.ToSlash(basePart)
	suffixSlash := filepath.ToSlash(suffix)
	matchBasenameOnly := !strings.Contains(suffixSlash, "/")

	var matches []string
	err := filepath.WalkDir(basePart, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		pSlash := filepath.ToSlash(p)
		rel := strings.TrimPrefix(pSlash, baseSlash)
		rel = strings.TrimLeft(rel, "/")
		candidate := rel
		if matchBasenameOnly {
			candidate = path.Base(rel)
		}
		ok, matchErr := path.Match(suffixSlash, candidate)
		if matchErr != nil {
			return matchErr
		}
		if ok {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *Runner) ingestPayload(it inputItem, runID string, deadline time.Time, stats *runStats) error {
	info, err := os.Stat(it.Path)
	if err != nil {
		return err
	}
	if info.IsDir() || info.Size() <= 0 {
		return nil
	}
	stats.PayloadsSeen++

	content, err := os.ReadFile(it.Path)
	if err != nil {
		// Best-effort: move unreadable payloads out of the input directory.
		if strings.TrimSpace(it.ErrorDir) != "" {
			if _, mvErr := MoveFileToDir(it.Path, it.ErrorDir); mvErr == nil {
				stats.Quarantined++
			}
		}
		return err
	}

	var rec Record
	if err := json.Unmarshal(content, &rec); err != nil {
		r.debugf("decode error path=%q err=%v", it.Path, err)
		if strings.TrimSpace(it.ErrorDir) != "" {
			if _, mvErr := MoveFileToDir(it.Path, it.ErrorDir); mvErr == nil {
				stats.Quarantined++
			}
		}
		return err
	}

	result := r.store.Persist(&rec)
	switch {
	case result.Status == StatusSuccess && result.Inserted:
		stats.Inserted++
	case result.Status == StatusSuccess:
		stats.Duplicates++
	case result.Status == StatusError:
		stats.Errors++
	}
	r.debugf("persist path=%q status=%s inserted=%v file_id=%s", it.Path, result.Status, result.Inserted, result.FileID)

	rep := Report{
		Type:    "catalog_upsert",
		RunID:   runID,
		Label:   it.Label,
		Source:  it.Path,
		Result:  result,
		Emitted: time.Now().UTC().Format(time.RFC3339Nano),
	}
	reported := true
	if err := r.sink.Send(rep, remainingTimeout(deadline, 3*time.Second)); err != nil {
		r.debugf("report send failed path=%q err=%v", it.Path, err)
		stats.ReportErrs++
		reported = false
	}

	// Delete the payload only after confirmed persist + report. Errored
	// payloads stay in place so the next pass retries them.
	if r.cfg.DeletePersisted && reported && result.Status == StatusSuccess {
		if err := os.Remove(it.Path); err != nil {
			r.debugf("delete failed path=%q err=%v", it.Path, err)
			return err
		}
		stats.Deleted++
	}
	return nil
}
