package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zsiec/ringvideo/internal/capture"
	"github.com/zsiec/ringvideo/internal/config"
	"github.com/zsiec/ringvideo/internal/index"
	"github.com/zsiec/ringvideo/internal/logger"
	"github.com/zsiec/ringvideo/internal/metrics"
	"github.com/zsiec/ringvideo/internal/ringvideo/decoder"
	"github.com/zsiec/ringvideo/internal/ringvideo/locator"
	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
	"github.com/zsiec/ringvideo/internal/ringvideo/resync"
)

const (
	driftLogRate  = 1.0
	driftLogBurst = 10
)

// Summary describes a finished run.
type Summary struct {
	RunID        string
	Fingerprint  string
	Size         int64
	Mode         marker.Mode
	Flip         decoder.Flip
	Frames       int
	Resyncs      int
	MaxDrift     int64
	Variants     map[marker.Variant]int
	AudioSamples int
	BytesScanned int64
	CacheHit     bool
	Index        *index.Index
	Duration     time.Duration
}

// Runner decodes a whole capture into a set of sinks.
type Runner struct {
	cfg    config.DecodeConfig
	logger *logrus.Logger
	store  index.Store
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStore enables the frame index cache.
func WithStore(s index.Store) RunnerOption {
	return func(r *Runner) {
		r.store = s
	}
}

// NewRunner creates a Runner for the given decode settings.
func NewRunner(cfg config.DecodeConfig, log *logrus.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run decodes every frame of src and hands it to each sink in order. It
// stops at the first error, including cancellation of ctx, and returns the
// summary of what was decoded so far.
func (r *Runner) Run(ctx context.Context, src capture.Source, sinks ...Sink) (*Summary, error) {
	start := time.Now()
	ctx, log := logger.WithRun(ctx, r.logger)
	mode := r.cfg.ParsedMode()

	summary := &Summary{
		RunID:    logger.GetRunID(ctx),
		Size:     src.Size(),
		Mode:     mode,
		Flip:     r.cfg.ParsedFlip(),
		Variants: make(map[marker.Variant]int),
	}
	defer func() {
		summary.Duration = time.Since(start)
		metrics.RecordRunDuration(summary.Duration.Seconds())
	}()

	fp, err := capture.Fingerprint(src)
	if err != nil {
		return summary, fmt.Errorf("fingerprint capture: %w", err)
	}
	summary.Fingerprint = fp
	log = log.WithField("fingerprint", fp)

	dec := decoder.New(decoder.WithFlip(summary.Flip))
	seq := r.cachedSequence(ctx, log, src, fp, mode, dec)
	if seq == nil {
		seq = NewSequence(src, r.walker(log, src, mode), dec)
	}
	summary.CacheHit = seq.Indexed()

	built := &index.Index{
		Fingerprint: fp,
		Mode:        mode.String(),
		RunID:       summary.RunID,
	}
	drift := logger.NewRateLimitedLogger(logger.NewLogrusAdapter(log), driftLogRate, driftLogBurst)

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		f, err := seq.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.BytesScanned = seq.BytesScanned()
			if errors.Is(err, decoder.ErrLength) {
				metrics.IncrementDecodeError("LENGTH_PRECONDITION")
			}
			if errors.Is(err, index.ErrStale) && seq.Indexed() {
				// frames already emitted passed their checksum, so the
				// search picks up right after the last of them
				metrics.RecordIndexCache(metrics.CacheError)
				log.WithError(err).Warn("Cached frame index does not match capture")
				r.evict(ctx, log, built.Key())

				w := r.walker(log, src, mode)
				if n := built.Len(); n > 0 {
					w.Resume(built.Frame(n - 1))
				}
				seq = NewSequence(src, w, dec)
				summary.CacheHit = false
				continue
			}
			return summary, err
		}

		metrics.RecordFrameLocated(f.Variant.String(), f.Resynced, f.Drift)
		metrics.IncrementFramesDecoded()

		if f.Resynced {
			summary.Resyncs++
			if f.Drift > summary.MaxDrift {
				summary.MaxDrift = f.Drift
			}
			drift.Log(logrus.WarnLevel, "resync", "Frame marker missed, resynchronized", map[string]interface{}{
				"frame":  f.Index,
				"offset": f.Offset,
				"drift":  f.Drift,
			})
		}

		for _, s := range sinks {
			if err := s.WriteFrame(ctx, f); err != nil {
				return summary, fmt.Errorf("write frame %d: %w", f.Index, err)
			}
		}

		built.Add(f.Frame, f.Checksum)
		summary.Frames++
		summary.Variants[f.Variant]++
		summary.AudioSamples += len(f.Audio)
	}

	summary.BytesScanned = seq.BytesScanned()
	summary.Index = built
	metrics.AddBytesScanned(summary.BytesScanned)

	if r.store != nil && !summary.CacheHit {
		r.save(ctx, log, built)
	}

	log.WithFields(logrus.Fields{
		"frames":  summary.Frames,
		"resyncs": summary.Resyncs,
		"cached":  summary.CacheHit,
	}).Infof("%d frames found", summary.Frames)

	return summary, nil
}

// cachedSequence returns a sequence replaying a cached index, or nil when
// the cache is disabled or has nothing for this capture. Cache failures are
// logged and never end the run.
func (r *Runner) cachedSequence(ctx context.Context, log *logrus.Entry, src capture.Source, fp string, mode marker.Mode, dec *decoder.Decoder) *Sequence {
	if r.store == nil {
		return nil
	}

	ix, err := r.store.Get(ctx, index.Key(fp, mode))
	switch {
	case err == nil:
		metrics.RecordIndexCache(metrics.CacheHit)
		log.WithField("frames", ix.Len()).Info("Using cached frame index")
		return NewIndexedSequence(src, ix, dec)
	case errors.Is(err, index.ErrMiss):
		metrics.RecordIndexCache(metrics.CacheMiss)
		log.Debug("Frame index not cached")
	default:
		metrics.RecordIndexCache(metrics.CacheError)
		log.WithError(err).Warn("Frame index cache unavailable")
	}
	return nil
}

func (r *Runner) walker(log *logrus.Entry, src capture.Source, mode marker.Mode) *resync.Walker {
	return resync.New(src, src.Size(),
		resync.WithLocator(locator.New(mode, locator.WithChunkSize(r.cfg.ReadChunk))),
		resync.WithSearchWindow(r.cfg.SearchWindow),
		resync.WithObserver(func(from, to resync.State, offset int64) {
			log.WithFields(logrus.Fields{
				"from":   from.String(),
				"to":     to.String(),
				"offset": offset,
			}).Debug("Walker state changed")
		}),
	)
}

func (r *Runner) save(ctx context.Context, log *logrus.Entry, ix *index.Index) {
	if err := r.store.Put(ctx, ix); err != nil {
		metrics.RecordIndexCache(metrics.CacheError)
		log.WithError(err).Warn("Failed to store frame index")
		return
	}
	metrics.RecordIndexCache(metrics.CacheStore)
}

func (r *Runner) evict(ctx context.Context, log *logrus.Entry, key string) {
	if r.store == nil {
		return
	}
	if err := r.store.Delete(ctx, key); err != nil && !errors.Is(err, index.ErrMiss) {
		log.WithError(err).Warn("Failed to evict stale frame index")
		return
	}
	log.Warn("Evicted stale frame index")
}
