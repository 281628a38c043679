package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/backmassage/subenlarge/internal/planner"
	"github.com/backmassage/subenlarge/internal/probe"
)

// Stage names one step of the per-file flow.
type Stage string

const (
	StageValidate    Stage = "validate"
	StageInspect     Stage = "inspect"
	StagePlan        Stage = "plan"
	StageExtract     Stage = "extract"
	StageEnlarge     Stage = "enlarge"
	StageTagLanguage Stage = "tag-language"
	StageRemux       Stage = "remux"
	StageCleanup     Stage = "cleanup"
)

// StageError is a per-file failure. The batch records it and continues
// with the next file.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, filepath.Base(e.Path), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// skipError ends a file's flow without counting it as failed.
type skipError struct{ reason string }

func (e *skipError) Error() string { return e.reason }

func skipf(format string, args ...interface{}) error {
	return &skipError{reason: fmt.Sprintf(format, args...)}
}

// job carries one file's state between stages.
type job struct {
	path   string
	size   int64
	inv    *probe.Inventory
	plan   *planner.FilePlan
	tracks int  // Tracks restyled so far.
	wrote  bool // Extraction has started; intermediates may exist.
}

// stage is one entry of the per-file flow. Stages that write to disk are
// replaced by a command preview in dry-run mode.
type stage struct {
	name   Stage
	writes bool
	run    func(ctx context.Context, j *job) error
}

func (p *processor) stages() []stage {
	return []stage{
		{name: StageValidate, run: p.validate},
		{name: StageInspect, run: p.inspect},
		{name: StagePlan, run: p.planFile},
		{name: StageExtract, writes: true, run: p.extract},
		{name: StageEnlarge, writes: true, run: p.enlarge},
		{name: StageTagLanguage, writes: true, run: p.tagLanguage},
		{name: StageRemux, writes: true, run: p.remux},
		{name: StageCleanup, writes: true, run: p.cleanup},
	}
}
