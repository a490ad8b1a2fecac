package model

import (
	"fmt"
	"time"
)

// Stage names the pipeline stage a command runs.
type Stage string

const (
	// StageGenerate creates fresh test files for modules that have none.
	StageGenerate Stage = "generate"
	// StageRepair runs the repair pipeline over existing test files.
	StageRepair Stage = "repair"
	// StageFill appends tests for untested symbols.
	StageFill Stage = "fill"
)

// FileStatus represents the outcome of processing one module.
type FileStatus int

const (
	// StatusWritten indicates new content was persisted.
	StatusWritten FileStatus = iota
	// StatusUnchanged indicates processing succeeded but nothing needed writing.
	StatusUnchanged
	// StatusSkipped indicates the module was already satisfied.
	StatusSkipped
	// StatusFailed indicates processing failed for this module.
	StatusFailed
)

func (s FileStatus) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Success reports whether the status counts as a success in the summary.
func (s FileStatus) Success() bool {
	return s != StatusFailed
}

// DelimiterReport holds paired delimiter counts for a text.
type DelimiterReport struct {
	OpenBraces    int
	CloseBraces   int
	OpenParens    int
	CloseParens   int
	OpenBrackets  int
	CloseBrackets int
}

// Balanced reports whether every delimiter pair has matching counts.
func (d DelimiterReport) Balanced() bool {
	return d.OpenBraces == d.CloseBraces &&
		d.OpenParens == d.CloseParens &&
		d.OpenBrackets == d.CloseBrackets
}

func (d DelimiterReport) String() string {
	return fmt.Sprintf("{%d/%d} (%d/%d) [%d/%d]",
		d.OpenBraces, d.CloseBraces,
		d.OpenParens, d.CloseParens,
		d.OpenBrackets, d.CloseBrackets)
}

// BackupRecord describes a pre-write copy of a file.
type BackupRecord struct {
	Original  Path
	Timestamp time.Time
	Copy      Path
}

// FileResult is the per-module outcome of a stage.
type FileResult struct {
	Source     Path
	TestFile   Path
	Status     FileStatus
	Reason     string
	Err        string
	Flagged    bool
	Delimiters DelimiterReport
	Backup     *BackupRecord
	Functions  int
	Tested     int
	Untested   int
	Repairs    []string
}

// Summary aggregates the results of a stage run.
type Summary struct {
	RunID    string
	Stage    Stage
	Started  time.Time
	Finished time.Time
	Results  []FileResult
}

// Counts returns the successful and failed totals.
func (s Summary) Counts() (succeeded, failed int) {
	for _, r := range s.Results {
		if r.Status.Success() {
			succeeded++
		} else {
			failed++
		}
	}

	return succeeded, failed
}

// Flagged returns results whose delimiters did not balance after repair.
func (s Summary) Flagged() []FileResult {
	var out []FileResult

	for _, r := range s.Results {
		if r.Flagged {
			out = append(out, r)
		}
	}

	return out
}

// ModuleCoverage is one row of the list command.
type ModuleCoverage struct {
	Source       Path
	TestFile     Path
	HasTests     bool
	Functions    int
	Aggregates   int
	Enumerations int
	Tested       int
	Untested     []string
}
