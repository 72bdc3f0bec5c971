package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/pathstore"
)

// Worker processes a single document job.
type Worker struct {
	engine *extract.Engine
	store  Store
	log    *slog.Logger
}

func NewWorker(engine *extract.Engine, store Store, log *slog.Logger) *Worker {
	return &Worker{engine: engine, store: store, log: log}
}

// Process runs extraction for a job. Failures are recorded on the job and
// never affect other jobs.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	data := job.FileData()
	defer job.SetFileData(nil)

	cacheable := w.store != nil && job.Cacheable()
	if cacheable {
		entry, err := w.store.GetOutline(ctx, job.ContentHash)
		switch {
		case err != nil:
			log.Warn("cache lookup failed, proceeding", "error", err)
		case entry != nil && entry.Filename != job.Filename:
			// The title may fall back to the filename stem and the parser
			// follows the extension, so a renamed upload is extracted again.
			log.Debug("cached outline belongs to another filename", "cached_filename", entry.Filename)
		case entry != nil:
			log.Info("outline served from cache", "content_hash", job.ContentHash)
			job.SetResult(&entry.Result)
			job.SetStatus(StatusCached, "cache")
			return
		}
	}

	phase := string(StatusQueued)
	opts := job.opts
	opts.OnPhase = func(p extract.Phase) {
		phase = string(p)
		job.SetStatus(JobStatus(p), phase)
	}

	res, err := w.engine.Extract(ctx, data, job.Filename, opts)
	if err != nil {
		log.Error("extraction failed", "phase", phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
		return
	}
	job.SetResult(res)

	if cacheable {
		err := w.store.PutOutline(ctx, pathstore.Entry{
			ContentHash: job.ContentHash,
			Filename:    job.Filename,
			Result:      *res,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			log.Warn("cache write failed", "error", err)
		}
	}

	job.SetStatus(StatusCompleted, "done")
}
