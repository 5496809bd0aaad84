package pipeline

import (
	"errors"
	"os"

	"aaxconv/internal/fileutil"
	"aaxconv/internal/logging"
)

// cleanup removes the extracted cover and the chaptered temp file. It is
// idempotent and runs deferred, so aborted files are cleaned too.
func (c *Converter) cleanup(j *job) {
	if j.coverFile != "" {
		if err := os.Remove(j.coverFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			j.logger.Debug("cover not removed", logging.Error(err))
		}
		j.coverFile = ""
	}
	c.removeTemp(j)
}

func (c *Converter) removeTemp(j *job) {
	if j.tempFile == "" {
		return
	}
	if err := os.Remove(j.tempFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		j.logger.Debug("temp file not removed", logging.Error(err))
	}
	j.tempFile = ""
}

// moveSource files the source, and its voucher for AAXC, under the complete
// directory. Failures are logged; the conversion itself already succeeded.
func (c *Converter) moveSource(j *job) {
	dir := c.cfg.Paths.CompleteDir
	moved, err := fileutil.MoveInto(j.src.Path, dir)
	if err != nil {
		logging.ErrorWithContext(j.logger, "source not moved", "move_source_failed",
			logging.Error(err),
			logging.String("complete_dir", dir),
			logging.String(logging.FieldImpact, "source stays in place; outputs are complete"),
		)
		return
	}
	j.logger.Info("source moved", logging.String("path", moved))

	if j.src.VoucherPath == "" {
		return
	}
	if _, err := fileutil.MoveInto(j.src.VoucherPath, dir); err != nil {
		logging.ErrorWithContext(j.logger, "voucher not moved", "move_source_failed", logging.Error(err))
	}
}
