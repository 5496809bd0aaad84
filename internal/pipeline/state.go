package pipeline

import (
	"errors"
	"time"

	"aaxconv/internal/history"
	"aaxconv/internal/services"
)

// State is one step of the per-file state machine.
type State int

const (
	StateDeriveParams State = iota
	StateValidate
	StateExtractMetadata
	StateApplyOverrides
	StatePlanOutput
	StateChapterMode
	StateSingleMode
	StateEmbedChapterTable
	StateCleanup
	StateMoveSource
	StateDone
	StateSkipped
	StateValidated
	StateAborted
)

var stateNames = map[State]string{
	StateDeriveParams:      "derive_params",
	StateValidate:          "validate",
	StateExtractMetadata:   "extract_metadata",
	StateApplyOverrides:    "apply_overrides",
	StatePlanOutput:        "plan_output",
	StateChapterMode:       "chapter_mode",
	StateSingleMode:        "single_mode",
	StateEmbedChapterTable: "embed_chapter_table",
	StateCleanup:           "cleanup",
	StateMoveSource:        "move_source",
	StateDone:              "done",
	StateSkipped:           "skipped",
	StateValidated:         "validated",
	StateAborted:           "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the machine stops in s.
func (s State) Terminal() bool {
	return s >= StateDone
}

// Outcome is the final disposition of one file.
type Outcome string

const (
	OutcomeDone      Outcome = "done"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeValidated Outcome = "validated"
	OutcomeAborted   Outcome = "aborted"
)

func outcomeFor(s State) Outcome {
	switch s {
	case StateDone:
		return OutcomeDone
	case StateSkipped:
		return OutcomeSkipped
	case StateValidated:
		return OutcomeValidated
	default:
		return OutcomeAborted
	}
}

func (o Outcome) historyStatus() history.Status {
	switch o {
	case OutcomeDone:
		return history.StatusDone
	case OutcomeSkipped:
		return history.StatusSkipped
	case OutcomeValidated:
		return history.StatusValidated
	default:
		return history.StatusAborted
	}
}

// ErrOutputExists marks a file skipped because its output directory exists
// and no-clobber is set.
var ErrOutputExists = errors.New("output directory exists")

// Result is what Convert reports for one file. State is the last state
// entered: for an aborted file, the state that failed.
type Result struct {
	Source         string
	State          State
	Outcome        Outcome
	Err            error
	OutputDir      string
	Outputs        []string
	Playlist       string
	ChaptersFailed int
	Elapsed        time.Duration
}

// Reason is a one-line explanation for skipped and aborted files.
func (r Result) Reason() string {
	switch {
	case r.Err == nil:
		return ""
	case errors.Is(r.Err, ErrOutputExists):
		return r.Err.Error()
	default:
		return services.Classify(r.Err) + ": " + r.Err.Error()
	}
}

// AnyAborted reports whether at least one file in results aborted.
func AnyAborted(results []Result) bool {
	for _, r := range results {
		if r.Outcome == OutcomeAborted {
			return true
		}
	}
	return false
}
