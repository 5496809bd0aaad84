package pipeline

import (
	"context"

	"aaxconv/internal/chapters"
	"aaxconv/internal/history"
	"aaxconv/internal/logging"
	"aaxconv/internal/services"
)

// Ledger writes are best effort: a failing history database is logged and
// never changes the outcome of a conversion.

func (c *Converter) begin(ctx context.Context, j *job) {
	if c.recorder == nil {
		return
	}
	id, err := c.recorder.Begin(ctx, history.Conversion{
		RunID:      c.runID,
		SourcePath: j.ledgerID,
		Codec:      c.profile.Codec.String(),
		Mode:       c.profile.Mode.String(),
	})
	if err != nil {
		c.ledgerWarning(j, "begin", err)
		return
	}
	j.historyID = id
	j.logger = j.logger.With(logging.Int64("conversion_id", id))
}

func (c *Converter) plan(ctx context.Context, j *job) {
	if c.recorder == nil || j.historyID == 0 {
		return
	}
	if err := c.recorder.Plan(ctx, j.historyID, j.md.Title, j.outputDir, len(j.chapters)); err != nil {
		c.ledgerWarning(j, "plan", err)
	}
}

// resumePoint combines --continue with the ledger when --resume is set; the
// larger ordinal wins.
func (c *Converter) resumePoint(ctx context.Context, j *job) int {
	from := max(c.cfg.Conversion.ContinueAt, 1)
	if !c.cfg.Conversion.Resume || c.recorder == nil {
		return from
	}
	point, err := c.recorder.ResumePoint(ctx, j.ledgerID, j.outputDir)
	if err != nil {
		c.ledgerWarning(j, "resume point", err)
		return from
	}
	return max(from, point)
}

func (c *Converter) recordChapter(ctx context.Context, j *job, o chapters.Outcome) {
	if c.recorder == nil || j.historyID == 0 {
		return
	}
	row := history.ChapterResult{
		ConversionID: j.historyID,
		ChapterNum:   o.Chapter.Number,
		Path:         o.Path,
		Status:       history.ChapterDone,
	}
	if o.Err != nil {
		row.Status = history.ChapterFailed
		row.Error = o.Err.Error()
	}
	if err := c.recorder.RecordChapter(ctx, row); err != nil {
		c.ledgerWarning(j, "record chapter", err)
	}
}

func (c *Converter) finish(ctx context.Context, j *job) {
	if c.recorder == nil || j.historyID == 0 {
		return
	}
	// Record aborts caused by cancellation too.
	ctx = context.WithoutCancel(ctx)
	err := c.recorder.Finish(ctx, j.historyID, history.Completion{
		Status:  j.result.Outcome.historyStatus(),
		Error:   j.result.Reason(),
		Elapsed: j.result.Elapsed,
	})
	if err != nil {
		c.ledgerWarning(j, "finish", err)
	}
}

func (c *Converter) ledgerWarning(j *job, op string, err error) {
	logging.WarnWithContext(j.logger, "history ledger write failed", "history_write_failed",
		logging.String("operation", op),
		logging.Error(err),
		logging.String("error_class", services.Classify(err)),
		logging.String(logging.FieldImpact, "conversion continues; --resume may not see this run"),
	)
}
