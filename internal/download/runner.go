package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"dalo/internal/history"
	"dalo/internal/logging"
	"dalo/internal/media/format"
	"dalo/internal/selection"
	"dalo/internal/services"
	"dalo/internal/services/ytdlp"
	"dalo/internal/textutil"
)

// Delegate is the retrieval backend: a read-only probe and a single-stream
// fetch. *ytdlp.Client satisfies it.
type Delegate interface {
	Probe(ctx context.Context, url string) (*ytdlp.Info, error)
	Fetch(ctx context.Context, req ytdlp.FetchRequest, progress func(ytdlp.Progress)) (ytdlp.FetchResult, error)
}

// Recorder stores a finished run. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder records every run in a history ledger.
func WithRecorder(recorder Recorder) Option {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// Runner executes download runs against a delegate.
type Runner struct {
	delegate Delegate
	logger   *slog.Logger
	recorder Recorder
}

// New constructs a Runner.
func New(delegate Delegate, opts ...Option) (*Runner, error) {
	if delegate == nil {
		return nil, errors.New("download runner requires a delegate")
	}
	r := &Runner{delegate: delegate, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "download")
	return r, nil
}

// Stage names attached to run logs.
const (
	stageRequest = "request"
	stageProbe   = "probe"
	stagePolicy  = "policy"
)

// runState collects what a run decided and fetched for logging and history.
type runState struct {
	runID     string
	url       string
	workDir   string
	target    selection.Target
	progress  *progressTracker
	decision  *selection.Decision
	formatIDs []string
	lock      *WorkDirLock
}

// Run executes one request and never fails: every error is folded into a
// StatusError result.
func (r *Runner) Run(ctx context.Context, req Request) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	st := &runState{
		runID:    uuid.NewString(),
		url:      strings.TrimSpace(req.URL),
		workDir:  strings.TrimSpace(req.WorkDir),
		target:   req.target(),
		progress: newProgressTracker(req.Progress),
	}
	ctx = services.WithRunID(ctx, st.runID)
	ctx = services.WithSourceURL(ctx, st.url)

	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.String("mode", req.Mode.String()),
		logging.Int("height", st.target.Height),
		logging.Int("fps", st.target.FPS),
		logging.String("audio_quality", string(st.target.AudioQuality)),
		logging.String("work_dir", st.workDir),
	)

	result := r.execute(ctx, req.Mode, st)
	if result.OK() {
		logger.Info("run finished",
			logging.String("status", string(result.Status)),
			logging.String("title", result.Title),
			logging.Duration("elapsed", time.Since(started)),
		)
	}
	r.record(ctx, req.Mode, st, result, started)
	return result
}

func (r *Runner) execute(ctx context.Context, mode Mode, st *runState) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			result = r.fail(ctx, fmt.Errorf("download panicked: %v", p))
		}
	}()

	reqCtx := services.WithStage(ctx, stageRequest)
	if st.url == "" {
		return r.fail(reqCtx, services.Wrap(services.ErrValidation, stageRequest, "validate", "source url is empty", nil))
	}
	if st.workDir == "" {
		return r.fail(reqCtx, services.Wrap(services.ErrValidation, stageRequest, "validate", "working directory is empty", nil))
	}
	if err := os.MkdirAll(st.workDir, 0o755); err != nil {
		return r.fail(reqCtx, services.Wrap(services.ErrConfiguration, stageRequest, "create working directory", st.workDir, err))
	}
	defer r.releaseLock(reqCtx, st)

	if mode.IsAudio() {
		return r.runAudio(ctx, st)
	}
	return r.runVideo(ctx, st)
}

// runAudio fetches an m4a stream with the audio-quality selector. Height and
// fps policy do not apply.
func (r *Runner) runAudio(ctx context.Context, st *runState) Result {
	selector := selection.AudioSelector(st.target.AudioQuality)
	logging.WithContext(services.WithStage(ctx, stagePolicy), r.logger).Info("audio mode selected",
		logging.Args(append(
			logging.DecisionAttrs("download_strategy", tagMusic, "audio mode bypasses height and fps policy"),
			logging.String("selector", selector),
		)...)...,
	)
	fetched, err := r.fetch(ctx, st, tagMusic, selector, OutputTemplate(st.workDir, tagMusic, 0, st.target.FPS))
	if err != nil {
		return r.fail(ctx, err)
	}
	return Result{Status: StatusAudio, File: fetched.Path, Title: textutil.SanitizeTitle(fetched.Title)}
}

// runVideo probes, resolves the policy, and tries progressive, split, then
// best in that order.
func (r *Runner) runVideo(ctx context.Context, st *runState) Result {
	probeCtx := services.WithStage(ctx, stageProbe)
	info, err := r.delegate.Probe(probeCtx, st.url)
	if err != nil {
		return r.fail(probeCtx, err)
	}
	title := textutil.SanitizeTitle(info.Title)

	policyCtx := services.WithStage(ctx, stagePolicy)
	logger := logging.WithContext(policyCtx, r.logger)
	decision := selection.Resolve(info.Formats, st.target)
	st.decision = &decision
	logger.Info("probe complete",
		logging.String("title", title),
		logging.Int("format_count", len(info.Formats)),
		logging.Bool("split_eligible", decision.SplitEligible),
	)
	logger.Info("height policy resolved", logging.Args(logging.DecisionAttrs("height_mode", string(decision.HeightMode), heightReason(decision, st.target))...)...)
	logger.Info("fps policy resolved", logging.Args(logging.DecisionAttrs("fps_mode", string(decision.FPSMode), fpsReason(decision, st.target))...)...)

	if chosen, ok := selection.Pick(info.Formats, format.KindProgressive, st.target, decision); ok {
		logChoice(logger, format.KindProgressive, chosen)
		fetched, err := r.fetch(ctx, st, tagSingle, chosen.ID, OutputTemplate(st.workDir, tagSingle, st.target.Height, st.target.FPS))
		if err != nil {
			return r.fail(ctx, err)
		}
		return Result{Status: StatusSingle, File: fetched.Path, Title: title}
	}
	logger.Debug("no progressive candidate", logging.Args(logging.DecisionAttrs("progressive_pick", "none", "no eligible progressive stream")...)...)

	if decision.SplitEligible {
		if chosen, ok := selection.Pick(info.Formats, format.KindVideoOnly, st.target, decision); ok {
			logChoice(logger, format.KindVideoOnly, chosen)
			return r.runSplit(ctx, st, chosen, title)
		}
		logger.Debug("no video-only candidate", logging.Args(logging.DecisionAttrs("video_only_pick", "none", "no muxable video-only stream")...)...)
	}

	logger.Info("falling back to generic selection",
		logging.Args(logging.DecisionAttrs("download_strategy", tagBest, "no progressive or split candidate")...)...,
	)
	fetched, err := r.fetch(ctx, st, tagBest, selection.BestSelector, OutputTemplate(st.workDir, tagBest, st.target.Height, st.target.FPS))
	if err != nil {
		return r.fail(ctx, err)
	}
	return Result{Status: StatusSingle, File: fetched.Path, Title: title}
}

// runSplit fetches the video leg then the audio leg. When the audio leg fails
// the already-written video file is removed and the run reports an error.
func (r *Runner) runSplit(ctx context.Context, st *runState, video format.Descriptor, title string) Result {
	videoOut, err := r.fetch(ctx, st, tagVideo, video.ID, OutputTemplate(st.workDir, tagVideo, st.target.Height, st.target.FPS))
	if err != nil {
		return r.fail(ctx, err)
	}
	audioOut, err := r.fetch(ctx, st, tagAudio, selection.AudioSelector(st.target.AudioQuality), OutputTemplate(st.workDir, tagAudio, st.target.Height, st.target.FPS))
	if err != nil {
		r.removeOrphan(services.WithStage(ctx, tagAudio), videoOut.Path)
		return r.fail(ctx, err)
	}
	return Result{Status: StatusSplit, Video: videoOut.Path, Audio: audioOut.Path, Title: title}
}

// fetch issues exactly one delegate fetch for selector. The working
// directory lock is taken before the first fetch of a run.
func (r *Runner) fetch(ctx context.Context, st *runState, leg, selector, template string) (ytdlp.FetchResult, error) {
	ctx = services.WithStage(ctx, leg)
	logger := logging.WithContext(ctx, r.logger)
	if st.lock == nil {
		lock, err := LockWorkDir(ctx, st.workDir)
		if err != nil {
			return ytdlp.FetchResult{}, err
		}
		st.lock = lock
		logger.Debug("working directory locked", logging.String("lock_path", lock.Path()))
	}
	st.formatIDs = append(st.formatIDs, selector)
	logger.Info("fetch started", logging.String("selector", selector), logging.String("template", template))

	sampler := logging.NewProgressSampler(0)
	started := time.Now()
	fetched, err := r.delegate.Fetch(ctx, ytdlp.FetchRequest{URL: st.url, Selector: selector, OutputTemplate: template}, func(p ytdlp.Progress) {
		percent, changed := st.progress.update(p.Status, p.DownloadedBytes, p.TotalBytes, p.EstimatedBytes)
		if changed && sampler.ShouldLog(float64(percent), leg) {
			logger.Debug("download progress", logging.Int(logging.FieldProgressPercent, percent))
		}
	})
	if err != nil {
		return ytdlp.FetchResult{}, err
	}

	attrs := []logging.Attr{
		logging.String("file", fetched.Path),
		logging.Duration("elapsed", time.Since(started)),
	}
	if info, statErr := os.Stat(fetched.Path); statErr == nil {
		attrs = append(attrs, logging.Int64("size_bytes", info.Size()))
	}
	logger.Info("fetch finished", logging.Args(attrs...)...)
	return fetched, nil
}

func (r *Runner) releaseLock(ctx context.Context, st *runState) {
	if st.lock == nil {
		return
	}
	if err := st.lock.Release(); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "working directory lock not released", "lock_release_failed",
			logging.String("lock_path", st.lock.Path()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "lock stays held until the process exits"),
		)
	}
	st.lock = nil
}

func (r *Runner) fail(ctx context.Context, err error) Result {
	kind := services.FailureKind(err)
	logging.ErrorWithContext(logging.WithContext(ctx, r.logger), "run failed", "run_failed",
		logging.String(logging.FieldErrorKind, kind),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, failureHint(kind)),
	)
	return errorResult(kind, err.Error())
}

func (r *Runner) removeOrphan(ctx context.Context, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	logger := logging.WithContext(ctx, r.logger)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WarnWithContext(logger, "orphaned video leg not removed", "orphan_cleanup_failed",
			logging.Alert("orphaned_file"),
			logging.String("file", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file manually"),
			logging.String(logging.FieldImpact, "video file left in working directory"),
		)
		return
	}
	logger.Info("removed orphaned video leg",
		logging.String(logging.FieldEventType, "orphan_removed"),
		logging.String("file", path),
	)
}

func (r *Runner) record(ctx context.Context, mode Mode, st *runState, result Result, started time.Time) {
	if r.recorder == nil {
		return
	}
	run := history.Run{
		ID:           st.runID,
		URL:          st.url,
		Mode:         mode.String(),
		TargetHeight: st.target.Height,
		TargetFPS:    st.target.FPS,
		AudioQuality: string(st.target.AudioQuality),
		FormatIDs:    st.formatIDs,
		Status:       string(result.Status),
		File:         result.File,
		VideoPath:    result.Video,
		AudioPath:    result.Audio,
		Title:        result.Title,
		ErrorKind:    result.ErrKind,
		ErrorMessage: result.ErrMessage,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if st.decision != nil {
		run.HeightMode = string(st.decision.HeightMode)
		run.FPSMode = string(st.decision.FPSMode)
	}
	if err := r.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "run not recorded in history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.history_db"),
			logging.String(logging.FieldImpact, "run missing from dalo history"),
		)
	}
}

func logChoice(logger *slog.Logger, kind format.Kind, d format.Descriptor) {
	attrs := append(logging.DecisionAttrs(string(kind)+"_pick", d.ID, describe(d)),
		logging.String("format_id", d.ID),
		logging.Int("height", d.Height),
		logging.String("ext", d.Ext),
		logging.String("vcodec", d.VideoCodec),
		logging.String("acodec", d.AudioCodec),
		logging.Float64("tbr", d.Bitrate),
	)
	if d.HasFPS {
		attrs = append(attrs, logging.Float64("fps", d.FPS))
	}
	logger.Info("format selected", logging.Args(attrs...)...)
}

func describe(d format.Descriptor) string {
	desc := fmt.Sprintf("%dp %s", d.Height, d.Ext)
	if d.HasFPS {
		desc += fmt.Sprintf(" %gfps", d.FPS)
	}
	return desc
}

func heightReason(d selection.Decision, t selection.Target) string {
	if d.HeightMode == selection.ModeTarget {
		return fmt.Sprintf("a stream at or above %dp exists", t.Height)
	}
	return fmt.Sprintf("no stream reaches %dp; using best available height", t.Height)
}

func fpsReason(d selection.Decision, t selection.Target) string {
	region := "at or above target height"
	if d.HeightMode == selection.ModeBest {
		region = "at best height"
	}
	if d.FPSMode == selection.ModeTarget {
		return fmt.Sprintf("a stream within %dfps exists %s", t.FPS, region)
	}
	return fmt.Sprintf("no stream within %dfps %s; using highest fps", t.FPS, region)
}

func failureHint(kind string) string {
	switch kind {
	case services.KindProbe, services.KindExtractor:
		return "check the URL and network access, then try dalo formats <url>"
	case services.KindDownload:
		return "retry the download; set ytdlp.cookies_file if the site requires sign-in"
	case services.KindConfiguration:
		return "check paths.work_dir permissions and run dalo config validate"
	case services.KindValidation:
		return "pass a URL and a working directory"
	case services.KindCanceled:
		return "run was interrupted; start it again to resume from scratch"
	default:
		return "check logs for details"
	}
}
