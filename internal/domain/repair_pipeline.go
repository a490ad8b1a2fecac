package domain

import (
	"zigtestgen.dev/pkg/zigtestgen/internal/domain/repairs"
	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// RepairRule is one whole-file rewrite of the repair pipeline. Applying a
// rule to its own output must not change it.
type RepairRule interface {
	Name() string
	Apply(text string, env *RepairEnv) string
}

// RepairTarget identifies the module a test file belongs to.
type RepairTarget struct {
	Namespace     string
	ExportedTypes []string
}

// RepairEnv is shared by the rules of one pipeline run.
type RepairEnv struct {
	Target    RepairTarget
	Allocator string
}

// RepairResult is the output of a pipeline run.
type RepairResult struct {
	Text       string
	Allocator  string
	Applied    []string
	Delimiters m.DelimiterReport
	Flagged    bool
}

// Changed reports whether any rule rewrote the text.
func (r RepairResult) Changed() bool {
	return len(r.Applied) > 0
}

// RepairPipeline normalizes generated test text.
type RepairPipeline interface {
	Run(text string, target RepairTarget) RepairResult
	Rules() []RepairRule
}

type repairPipeline struct {
	rules []RepairRule
}

// NewRepairPipeline builds the pipeline in its fixed order: allocator
// detection, cleanup injection, symbol qualification, structural cleanup.
// Delimiter validation runs after the rules and never rewrites.
func NewRepairPipeline(settings RepairSettings) RepairPipeline {
	rules := []RepairRule{
		allocatorRule{},
		cleanupRule{bufferTypes: settings.BufferTypes},
	}

	if settings.LooseBuffers && len(settings.LooseBufferNames) > 0 {
		rules = append(rules, looseCleanupRule{names: settings.LooseBufferNames})
	}

	rules = append(rules,
		qualifyRule{},
		structureRule{strayTokens: settings.StrayTokens},
	)

	return &repairPipeline{rules: rules}
}

func (p *repairPipeline) Rules() []RepairRule {
	return p.rules
}

func (p *repairPipeline) Run(text string, target RepairTarget) RepairResult {
	env := &RepairEnv{Target: target, Allocator: repairs.DefaultAllocatorName}

	var applied []string

	for _, rule := range p.rules {
		next := rule.Apply(text, env)
		if next != text {
			applied = append(applied, rule.Name())
		}

		text = next
	}

	report := repairs.ValidateDelimiters(text)

	return RepairResult{
		Text:       text,
		Allocator:  env.Allocator,
		Applied:    applied,
		Delimiters: report,
		Flagged:    !report.Balanced(),
	}
}

type allocatorRule struct{}

func (allocatorRule) Name() string { return "allocator" }

func (allocatorRule) Apply(text string, env *RepairEnv) string {
	env.Allocator = repairs.DetectAllocator(text)
	return text
}

type cleanupRule struct {
	bufferTypes []string
}

func (cleanupRule) Name() string { return "cleanup" }

func (r cleanupRule) Apply(text string, env *RepairEnv) string {
	variables := repairs.BufferVariables(text, r.bufferTypes)
	return repairs.InjectCleanupAllocator(text, variables, env.Allocator)
}

type looseCleanupRule struct {
	names []string
}

func (looseCleanupRule) Name() string { return "loose-cleanup" }

func (r looseCleanupRule) Apply(text string, env *RepairEnv) string {
	return repairs.InjectLooseCleanupAllocator(text, r.names, env.Allocator)
}

type qualifyRule struct{}

func (qualifyRule) Name() string { return "qualify" }

func (qualifyRule) Apply(text string, env *RepairEnv) string {
	return repairs.QualifySymbols(text, env.Target.Namespace, env.Target.ExportedTypes)
}

type structureRule struct {
	strayTokens []string
}

func (structureRule) Name() string { return "structure" }

// Apply qualifies again after the cleanup, since `var X = const T` becomes
// `const X = T` and exposes type names the qualify rule could not see.
func (r structureRule) Apply(text string, env *RepairEnv) string {
	text = repairs.CleanupStructure(text, repairs.StructureOptions{
		Namespace:   env.Target.Namespace,
		StrayTokens: r.strayTokens,
	})

	return repairs.QualifySymbols(text, env.Target.Namespace, env.Target.ExportedTypes)
}
