package strata

import "time"

// StageConfig configures a Stage at add_stage time.
type StageConfig struct {
	// Enabled gates whether the stage runs at all. Defaults to true via
	// DefaultStageConfig.
	Enabled bool

	// ContinueOnError, when true, keeps running the remaining systems in
	// this stage after one of them errors. When false, the stage stops at
	// the first error (sibling stages still run).
	ContinueOnError bool

	// RunCondition, if set, gates execution on the current Registry state,
	// evaluated fresh on every execute.
	RunCondition func(r *Registry) bool

	// Parallel is reserved; stages always execute their systems
	// sequentially in registration order.
	Parallel bool
}

// DefaultStageConfig returns an enabled, halt-on-error stage configuration.
func DefaultStageConfig() StageConfig {
	return StageConfig{Enabled: true}
}

type systemStats struct {
	name           string
	executionCount int64
	errorCount     int64
	lastDuration   time.Duration
	totalDuration  time.Duration
	minDuration    time.Duration
	maxDuration    time.Duration
}

func (s *systemStats) record(d time.Duration) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	if s.executionCount == 1 || d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
}

func (s *systemStats) avgDuration() time.Duration {
	if s.executionCount == 0 {
		return 0
	}
	return s.totalDuration / time.Duration(s.executionCount)
}

// Stage is a named ordered bucket of systems with gating and error policy,
// plus an optional nested Pipeline of substages that runs before the
// stage's own systems.
type Stage struct {
	name      string
	cfg       StageConfig
	systems   []System
	stats     []*systemStats
	substages *Pipeline
}

func newStage(name string, cfg StageConfig) *Stage {
	return &Stage{name: name, cfg: cfg}
}

// Name returns the stage's name.
func (s *Stage) Name() string {
	return s.name
}

// SetEnabled toggles the stage's enabled flag.
func (s *Stage) SetEnabled(enabled bool) {
	s.cfg.Enabled = enabled
}

// Enabled reports the stage's current enabled flag.
func (s *Stage) Enabled() bool {
	return s.cfg.Enabled
}

// Substages returns the stage's nested pipeline, if it has one.
func (s *Stage) Substages() (*Pipeline, bool) {
	if s.substages == nil {
		return nil, false
	}
	return s.substages, true
}

// AddSubstage appends a substage to this stage's nested pipeline, creating
// the nested pipeline on first use.
func (s *Stage) AddSubstage(name string, cfg StageConfig) error {
	if s.substages == nil {
		s.substages = newPipeline()
	}
	return s.substages.AddStage(name, cfg)
}

// AddSubstageAfter inserts a substage immediately after an existing one.
func (s *Stage) AddSubstageAfter(name, after string, cfg StageConfig) error {
	if s.substages == nil {
		s.substages = newPipeline()
	}
	return s.substages.AddStageAfter(name, after, cfg)
}

// AddSubstageBefore inserts a substage immediately before an existing one.
func (s *Stage) AddSubstageBefore(name, before string, cfg StageConfig) error {
	if s.substages == nil {
		s.substages = newPipeline()
	}
	return s.substages.AddStageBefore(name, before, cfg)
}

// RemoveSubstage removes a substage, tearing down its systems.
func (s *Stage) RemoveSubstage(name string) error {
	if s.substages == nil {
		return StageNotFoundError{Stage: name}
	}
	return s.substages.RemoveStage(name)
}

func (s *Stage) addSystem(sys System) {
	s.systems = append(s.systems, sys)
	s.stats = append(s.stats, &systemStats{name: systemName(sys)})
}

func (s *Stage) teardown() {
	for _, sys := range s.systems {
		teardownSystem(sys)
	}
	if s.substages != nil {
		s.substages.teardown()
	}
}

// execute runs the stage: skip if disabled or gated off, run substages,
// then run own systems in order, honoring ContinueOnError.
func (s *Stage) execute(r *Registry) {
	if !s.cfg.Enabled {
		return
	}
	if s.cfg.RunCondition != nil && !s.cfg.RunCondition(r) {
		return
	}
	if s.substages != nil {
		s.substages.Execute(r)
	}

	for i, sys := range s.systems {
		start := time.Now()
		err := sys.Process(r)
		duration := time.Since(start)

		stat := s.stats[i]
		stat.record(duration)

		if err != nil {
			stat.errorCount++
			r.cfg.Logger.Printf("%v", SystemError{Stage: s.name, System: stat.name, Err: err})
			if !s.cfg.ContinueOnError {
				return
			}
		}
	}
}

func (s *Stage) empty() bool {
	return len(s.systems) == 0
}

func (s *Stage) systemNames() []string {
	names := make([]string, len(s.systems))
	for i, sys := range s.systems {
		names[i] = systemName(sys)
	}
	return names
}
