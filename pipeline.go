package strata

import (
	"sort"
	"time"
)

// BoolMode selects how HasStages/StagesEmpty combine multiple stage names.
type BoolMode int

const (
	ModeAnd BoolMode = iota
	ModeOr
)

// Pipeline is an ordered sequence of named stages, driving the execution
// order of systems. Recursive: any Stage may own a nested Pipeline of
// substages, which run before that stage's own systems.
type Pipeline struct {
	stages []*Stage
	index  map[string]int
}

func newPipeline() *Pipeline {
	return &Pipeline{index: make(map[string]int)}
}

// NewPipeline constructs an empty Pipeline.
func NewPipeline() *Pipeline {
	return newPipeline()
}

func (p *Pipeline) rebuildIndex() {
	p.index = make(map[string]int, len(p.stages))
	for i, s := range p.stages {
		p.index[s.name] = i
	}
}

// AddStage appends a new stage. The name must be unique within this
// pipeline.
func (p *Pipeline) AddStage(name string, cfg StageConfig) error {
	if _, ok := p.index[name]; ok {
		return DuplicateStageError{Stage: name}
	}
	p.stages = append(p.stages, newStage(name, cfg))
	p.index[name] = len(p.stages) - 1
	return nil
}

// AddStageAfter inserts a new stage immediately after the stage named
// after.
func (p *Pipeline) AddStageAfter(name, after string, cfg StageConfig) error {
	if _, ok := p.index[name]; ok {
		return DuplicateStageError{Stage: name}
	}
	idx, ok := p.index[after]
	if !ok {
		return StageNotFoundError{Stage: after}
	}
	p.stages = append(p.stages, nil)
	copy(p.stages[idx+2:], p.stages[idx+1:])
	p.stages[idx+1] = newStage(name, cfg)
	p.rebuildIndex()
	return nil
}

// AddStageBefore inserts a new stage immediately before the stage named
// before.
func (p *Pipeline) AddStageBefore(name, before string, cfg StageConfig) error {
	if _, ok := p.index[name]; ok {
		return DuplicateStageError{Stage: name}
	}
	idx, ok := p.index[before]
	if !ok {
		return StageNotFoundError{Stage: before}
	}
	p.stages = append(p.stages, nil)
	copy(p.stages[idx+1:], p.stages[idx:])
	p.stages[idx] = newStage(name, cfg)
	p.rebuildIndex()
	return nil
}

// RemoveStage removes a stage by name, tearing down every system it (and
// its substages) owns.
func (p *Pipeline) RemoveStage(name string) error {
	idx, ok := p.index[name]
	if !ok {
		return StageNotFoundError{Stage: name}
	}
	p.stages[idx].teardown()
	p.stages = append(p.stages[:idx], p.stages[idx+1:]...)
	p.rebuildIndex()
	return nil
}

// AddSystem appends sys to the named stage's system list.
func (p *Pipeline) AddSystem(stage string, sys System) error {
	idx, ok := p.index[stage]
	if !ok {
		return StageNotFoundError{Stage: stage}
	}
	p.stages[idx].addSystem(sys)
	return nil
}

// AddSystems appends every sys in syss to the named stage's system list,
// in order.
func (p *Pipeline) AddSystems(stage string, syss ...System) error {
	idx, ok := p.index[stage]
	if !ok {
		return StageNotFoundError{Stage: stage}
	}
	for _, sys := range syss {
		p.stages[idx].addSystem(sys)
	}
	return nil
}

// GetStage returns the named stage.
func (p *Pipeline) GetStage(name string) (*Stage, bool) {
	idx, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.stages[idx], true
}

// HasStage reports whether name exists in this pipeline.
func (p *Pipeline) HasStage(name string) bool {
	_, ok := p.index[name]
	return ok
}

// HasStages reports whether the given names exist, combined with mode.
func (p *Pipeline) HasStages(names []string, mode BoolMode) bool {
	for _, name := range names {
		has := p.HasStage(name)
		if mode == ModeAnd && !has {
			return false
		}
		if mode == ModeOr && has {
			return true
		}
	}
	return mode == ModeAnd
}

// GetStageNames returns every stage's name, in pipeline order.
func (p *Pipeline) GetStageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.name
	}
	return names
}

// GetSystemNames returns the names of every system registered in the
// named stage, in registration order.
func (p *Pipeline) GetSystemNames(stage string) ([]string, error) {
	idx, ok := p.index[stage]
	if !ok {
		return nil, StageNotFoundError{Stage: stage}
	}
	return p.stages[idx].systemNames(), nil
}

// StageEmpty reports whether the named stage has no systems.
func (p *Pipeline) StageEmpty(name string) (bool, error) {
	idx, ok := p.index[name]
	if !ok {
		return false, StageNotFoundError{Stage: name}
	}
	return p.stages[idx].empty(), nil
}

// StagesEmpty reports emptiness of the given stages, combined with mode.
func (p *Pipeline) StagesEmpty(names []string, mode BoolMode) (bool, error) {
	for _, name := range names {
		empty, err := p.StageEmpty(name)
		if err != nil {
			return false, err
		}
		if mode == ModeAnd && !empty {
			return false, nil
		}
		if mode == ModeOr && empty {
			return true, nil
		}
	}
	return mode == ModeAnd, nil
}

// Execute runs every stage in pipeline order.
func (p *Pipeline) Execute(r *Registry) {
	for _, s := range p.stages {
		s.execute(r)
	}
}

// ExecuteStages runs the named stages, in pipeline order regardless of the
// order names was given in. A missing name is logged and skipped. A name
// repeated in names runs its stage once per occurrence, by design.
func (p *Pipeline) ExecuteStages(r *Registry, names []string) {
	indices := make([]int, 0, len(names))
	for _, name := range names {
		idx, ok := p.index[name]
		if !ok {
			r.cfg.Logger.Printf("strata: execute_stages: no such stage %q, skipping", name)
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		p.stages[idx].execute(r)
	}
}

// ExecuteStagesIf runs every stage whose name satisfies predicate.
func (p *Pipeline) ExecuteStagesIf(r *Registry, predicate func(name string) bool) {
	for _, s := range p.stages {
		if predicate(s.name) {
			s.execute(r)
		}
	}
}

func (p *Pipeline) teardown() {
	for _, s := range p.stages {
		s.teardown()
	}
}

// StageStats reports execution statistics for one system within a stage,
// including per-system min/max/avg time.Duration.
type StageStats struct {
	Stage          string
	System         string
	ExecutionCount int64
	ErrorCount     int64
	LastDuration   time.Duration
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
}

// Stats returns per-system execution statistics for every stage in the
// pipeline, recursing into substages. Stats are tallied on every system
// run whether or not a caller ever reads them back.
func (p *Pipeline) Stats() []StageStats {
	var out []StageStats
	for _, s := range p.stages {
		for _, stat := range s.stats {
			out = append(out, StageStats{
				Stage:          s.name,
				System:         stat.name,
				ExecutionCount: stat.executionCount,
				ErrorCount:     stat.errorCount,
				LastDuration:   stat.lastDuration,
				MinDuration:    stat.minDuration,
				MaxDuration:    stat.maxDuration,
				AvgDuration:    stat.avgDuration(),
			})
		}
		if s.substages != nil {
			out = append(out, s.substages.Stats()...)
		}
	}
	return out
}
