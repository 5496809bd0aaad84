package history

import "time"

// Status is the persisted outcome of a conversion.
type Status string

const (
	StatusRunning   Status = "running"
	StatusDone      Status = "done"
	StatusSkipped   Status = "skipped"
	StatusValidated Status = "validated"
	StatusAborted   Status = "aborted"
)

// ChapterStatus is the persisted outcome of one chapter.
type ChapterStatus string

const (
	ChapterDone   ChapterStatus = "done"
	ChapterFailed ChapterStatus = "failed"
)

// Conversion is one row of the conversions table.
type Conversion struct {
	ID              int64
	RunID           string
	SourcePath      string
	OutputDir       string
	Title           string
	Codec           string
	Mode            string
	Status          Status
	Error           string
	DurationSeconds float64
	ChaptersTotal   int
	StartedAt       time.Time
	FinishedAt      time.Time
}

// ChapterResult is one row of the chapter_results table.
type ChapterResult struct {
	ConversionID int64
	ChapterNum   int
	Path         string
	Status       ChapterStatus
	Error        string
}

// Completion closes a conversion row.
type Completion struct {
	Status  Status
	Error   string
	Elapsed time.Duration
}
