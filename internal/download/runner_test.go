package download_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"dalo/internal/download"
	"dalo/internal/history"
	"dalo/internal/media/format"
	"dalo/internal/selection"
	"dalo/internal/services"
	"dalo/internal/services/ytdlp"
)

type stubDelegate struct {
	info      *ytdlp.Info
	probeErr  error
	fetchErrs map[string]error
	progress  []ytdlp.Progress
	title     string
	probes    int
	fetches   []ytdlp.FetchRequest
}

func (s *stubDelegate) Probe(ctx context.Context, url string) (*ytdlp.Info, error) {
	s.probes++
	if s.probeErr != nil {
		return nil, s.probeErr
	}
	return s.info, nil
}

func (s *stubDelegate) Fetch(ctx context.Context, req ytdlp.FetchRequest, progress func(ytdlp.Progress)) (ytdlp.FetchResult, error) {
	s.fetches = append(s.fetches, req)
	if err := s.fetchErrs[req.Selector]; err != nil {
		return ytdlp.FetchResult{}, err
	}
	for _, p := range s.progress {
		progress(p)
	}
	ext := "mp4"
	if strings.HasPrefix(req.Selector, "bestaudio") {
		ext = "m4a"
	}
	path := strings.NewReplacer("%(title).80s", "Clip", "%(id)s", "abc", "%(ext)s", ext).Replace(req.OutputTemplate)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		return ytdlp.FetchResult{}, err
	}
	return ytdlp.FetchResult{Path: path, Title: s.title, ID: "abc"}, nil
}

type memoryRecorder struct {
	runs []history.Run
	err  error
}

func (m *memoryRecorder) Record(ctx context.Context, run history.Run) error {
	m.runs = append(m.runs, run)
	return m.err
}

func progressive(id string, height int, fps float64, ext string) format.Descriptor {
	return format.Descriptor{ID: id, Ext: ext, VideoCodec: "avc1.64001F", AudioCodec: "mp4a.40.2", Height: height, FPS: fps, HasFPS: fps > 0, Bitrate: 1500}
}

func videoOnly(id string, height int, fps float64) format.Descriptor {
	return format.Descriptor{ID: id, Ext: "mp4", VideoCodec: "avc1.640028", Height: height, FPS: fps, HasFPS: true, Bitrate: 4000}
}

func m4aAudio(id string) format.Descriptor {
	return format.Descriptor{ID: id, Ext: "m4a", AudioCodec: "mp4a.40.2", AudioRate: 129}
}

func newRunner(t *testing.T, delegate download.Delegate, opts ...download.Option) *download.Runner {
	t.Helper()
	runner, err := download.New(delegate, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return runner
}

func videoRequest(workDir string, height, fps int) download.Request {
	return download.Request{URL: "https://example.com/watch?v=abc", Mode: download.ModeVideo, WorkDir: workDir, Height: height, FPS: fps}
}

func TestNewRequiresDelegate(t *testing.T) {
	if _, err := download.New(nil); err == nil {
		t.Fatal("expected error for nil delegate")
	}
}

func TestRunProgressiveAtTarget(t *testing.T) {
	dir := t.TempDir()
	delegate := &stubDelegate{info: &ytdlp.Info{ID: "abc", Title: "Clip: One", Formats: format.Collection{progressive("22", 1080, 30, "mp4")}}}
	recorder := &memoryRecorder{}

	result := newRunner(t, delegate, download.WithRecorder(recorder)).Run(context.Background(), videoRequest(dir, 1080, 60))

	if result.Status != download.StatusSingle {
		t.Fatalf("expected OK_SINGLE, got %s", result)
	}
	if len(delegate.fetches) != 1 || delegate.fetches[0].Selector != "22" {
		t.Fatalf("expected one fetch of format 22, got %+v", delegate.fetches)
	}
	if filepath.Base(result.File) != "Clip__abc__H1080_F60_single.mp4" {
		t.Fatalf("unexpected file %q", result.File)
	}
	if result.Title != "Clip_ One" {
		t.Fatalf("expected sanitized probe title, got %q", result.Title)
	}

	if len(recorder.runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(recorder.runs))
	}
	run := recorder.runs[0]
	if run.HeightMode != "TARGET" || run.FPSMode != "TARGET" || run.Status != "OK_SINGLE" || run.Mode != "video" {
		t.Fatalf("unexpected recorded run: %+v", run)
	}
	if run.ID == "" || run.File != result.File {
		t.Fatalf("expected run id and file in record: %+v", run)
	}
}

func TestRunSplitWhenOnlyVideoOnlyQualifies(t *testing.T) {
	dir := t.TempDir()
	delegate := &stubDelegate{info: &ytdlp.Info{ID: "abc", Title: "Clip", Formats: format.Collection{videoOnly("137", 1080, 60), m4aAudio("140")}}}
	recorder := &memoryRecorder{}

	result := newRunner(t, delegate, download.WithRecorder(recorder)).Run(context.Background(), videoRequest(dir, 1080, 30))

	if result.Status != download.StatusSplit {
		t.Fatalf("expected OK_SPLIT, got %s", result)
	}
	if len(delegate.fetches) != 2 {
		t.Fatalf("expected two fetches, got %d", len(delegate.fetches))
	}
	if delegate.fetches[0].Selector != "137" {
		t.Fatalf("expected video leg first, got %q", delegate.fetches[0].Selector)
	}
	if delegate.fetches[1].Selector != selection.AudioSelector(selection.AudioHigh) {
		t.Fatalf("expected high-quality audio selector, got %q", delegate.fetches[1].Selector)
	}
	if !strings.HasSuffix(result.Video, "_video.mp4") || !strings.HasSuffix(result.Audio, "_audio.m4a") {
		t.Fatalf("unexpected split paths: %+v", result)
	}
	if got := recorder.runs[0]; got.HeightMode != "TARGET" || got.FPSMode != "BEST" {
		t.Fatalf("expected TARGET/BEST modes, got %s/%s", got.HeightMode, got.FPSMode)
	}
}

func TestRunBestHeightWhenTargetUnavailable(t *testing.T) {
	dir := t.TempDir()
	delegate := &stubDelegate{info: &ytdlp.Info{ID: "abc", Title: "Clip", Formats: format.Collection{progressive("22", 720, 30, "mp4")}}}

	result := newRunner(t, delegate).Run(context.Background(), videoRequest(dir, 1080, 60))

	if result.Status != download.StatusSingle || delegate.fetches[0].Selector != "22" {
		t.Fatalf("expected 720p progressive, got %s (%+v)", result, delegate.fetches)
	}
}

func TestRunFallsBackToBest(t *testing.T) {
	dir := t.TempDir()
	delegate := &stubDelegate{info: &ytdlp.Info{ID: "abc", Title: "Clip"}}

	result := newRunner(t, delegate).Run(context.Background(), videoRequest(dir, 1080, 60))

	if result.Status != download.StatusSingle {
		t.Fatalf("expected OK_SINGLE, got %s", result)
	}
	if len(delegate.fetches) != 1 || delegate.fetches[0].Selector != selection.BestSelector {
		t.Fatalf("expected generic best fetch, got %+v", delegate.fetches)
	}
	if filepath.Base(result.File) != "Clip__abc__H1080_F60_best.mp4" {
		t.Fatalf("unexpected file %q", result.File)
	}
}

func TestRunSkipsSplitWithoutCompatibleAudio(t *testing.T) {
	dir := t.TempDir()
	webmAudio := format.Descriptor{ID: "251", Ext: "webm", AudioCodec: "opus"}
	delegate := &stubDelegate{info: &ytdlp.Info{ID: "abc", Title: "Clip", Formats: format.Collection{videoOnly("137", 1080, 30), webmAudio}}}

	result := newRunner(t, delegate).Run(context.Background(), videoRequest(dir, 1080, 60))

	if result.Status != download.StatusSingle || delegate.fetches[0].Selector != selection.BestSelector {
		t.Fatalf("expected best fallback, got %s (%+v)", result, delegate.fetches)
	}
}

func TestRunProbeFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "work")
	delegate := &stubDelegate{probeErr: &ytdlp.ToolError{Op: ytdlp.OpProbe, Message: "[generic] abc: Unsupported URL"}}
	recorder := &memoryRecorder{}

	result := newRunner(t, delegate, download.WithRecorder(recorder)).Run(context.Background(), videoRequest(dir, 1080, 60))

	if got := result.String(); got != "ERR: ProbeError\n[generic] abc: Unsupported URL" {
		t.Fatalf("unexpected block %q", got)
	}
	if len(delegate.fetches) != 0 {
		t.Fatalf("expected no fetches, got %d", len(delegate.fetches))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files written, found %d", len(entries))
	}
	if recorder.runs[0].ErrorKind != services.KindProbe || recorder.runs[0].HeightMode != "" {
		t.Fatalf("unexpected recorded run: %+v", recorder.runs[0])
	}
}

func TestRunAudioMode(t *testing.T) {
	dir := t.TempDir()
	delegate := &stubDelegate{title: "Song: One"}

	result := newRunner(t, delegate).Run(context.Background(), download.Request{
		URL:          "https://example.com/track",
		Mode:         download.ModeAudio,
		WorkDir:      dir,
		AudioQuality: selection.AudioLow,
		FPS:          30,
	})

	if result.Status != download.StatusAudio {
		t.Fatalf("expected OK_AUDIO, got %s", result)
	}
	if delegate.probes != 0 {
		t.Fatalf("audio mode should not probe, got %d probes", delegate.probes)
	}
	if delegate.fetches[0].Selector != "bestaudio[ext=m4a][abr<=64]/bestaudio[ext=m4a]" {
		t.Fatalf("unexpected selector %q", delegate.fetches[0].Selector)
	}
	if filepath.Base(result.File) != "Clip__abc__H0_F30_music.m4a" {
		t.Fatalf("unexpected file %q", result.File)
	}
	if result.Title != "Song_ One" {
		t.Fatalf("expected title from download, got %q", result.Title)
	}
}

func TestRunAudioModeNamesWithZeroHeight(t *testing.T) {
	delegate := &stubDelegate{title: "Clip"}
	result := newRunner(t, delegate).Run(context.Background(), download.Request{
		URL:     "https://example.com/track",
		Mode:    download.ModeAudio,
		WorkDir: t.TempDir(),
		Height:  1440,
		FPS:     24,
	})

	if result.Status != download.StatusAudio {
		t.Fatalf("expected OK_AUDIO, got %s", result)
	}
	if got := delegate.fetches[0].OutputTemplate; !strings.HasSuffix(got, "__H0_F24_music.%(ext)s") {
		t.Fatalf("music template should carry H0 and the target fps, got %q", got)
	}
}

func TestRunSplitAudioFailureRemovesVideoLeg(t *testing.T) {
	dir := t.TempDir()
	audioSelector := selection.AudioSelector(selection.AudioHigh)
	delegate := &stubDelegate{
		info:      &ytdlp.Info{ID: "abc", Title: "Clip", Formats: format.Collection{videoOnly("137", 1080, 30), m4aAudio("140")}},
		fetchErrs: map[string]error{audioSelector: &ytdlp.ToolError{Op: ytdlp.OpFetch, Message: "HTTP Error 403: Forbidden"}},
	}

	result := newRunner(t, delegate).Run(context.Background(), videoRequest(dir, 1080, 60))

	if result.Status != download.StatusError || result.ErrKind != services.KindDownload {
		t.Fatalf("expected DownloadError, got %s", result)
	}
	if result.Video != "" || result.Audio != "" {
		t.Fatalf("error result must not carry paths: %+v", result)
	}
	videoPath := filepath.Join(dir, "Clip__abc__H1080_F60_video.mp4")
	if _, err := os.Stat(videoPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected orphaned video leg removed, stat err = %v", err)
	}
}

func TestRunReportsWholePercentChanges(t *testing.T) {
	dir := t.TempDir()
	delegate := &stubDelegate{
		info: &ytdlp.Info{ID: "abc", Title: "Clip", Formats: format.Collection{progressive("22", 1080, 30, "mp4")}},
		progress: []ytdlp.Progress{
			{Status: "downloading", DownloadedBytes: 0, EstimatedBytes: 1000},
			{Status: "downloading", DownloadedBytes: 5, TotalBytes: 1000},
			{Status: "downloading", DownloadedBytes: 500, TotalBytes: 1000},
			{Status: "downloading", DownloadedBytes: 10},
			{Status: "finished", DownloadedBytes: 1000, TotalBytes: 1000},
			{Status: "downloading", DownloadedBytes: 1000, TotalBytes: 1000},
		},
	}
	var got []int
	req := videoRequest(dir, 1080, 60)
	req.Progress = download.ProgressFunc(func(p int) { got = append(got, p) })

	if result := newRunner(t, delegate).Run(context.Background(), req); !result.OK() {
		t.Fatalf("unexpected failure: %s", result)
	}
	if fmt.Sprint(got) != "[0 50 100]" {
		t.Fatalf("unexpected progress sequence %v", got)
	}
}

func TestRunSurvivesPanickingReceiver(t *testing.T) {
	dir := t.TempDir()
	delegate := &stubDelegate{
		info:     &ytdlp.Info{ID: "abc", Title: "Clip", Formats: format.Collection{progressive("22", 1080, 30, "mp4")}},
		progress: []ytdlp.Progress{{Status: "downloading", DownloadedBytes: 1, TotalBytes: 2}},
	}
	req := videoRequest(dir, 1080, 60)
	req.Progress = download.ProgressFunc(func(int) { panic("receiver broke") })

	if result := newRunner(t, delegate).Run(context.Background(), req); result.Status != download.StatusSingle {
		t.Fatalf("expected OK_SINGLE despite receiver panic, got %s", result)
	}
}

// gatedDelegate holds its first fetch until release is closed.
type gatedDelegate struct {
	info    *ytdlp.Info
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu      sync.Mutex
	fetches []string
}

func (g *gatedDelegate) Probe(ctx context.Context, url string) (*ytdlp.Info, error) {
	return g.info, nil
}

func (g *gatedDelegate) Fetch(ctx context.Context, req ytdlp.FetchRequest, progress func(ytdlp.Progress)) (ytdlp.FetchResult, error) {
	g.mu.Lock()
	g.fetches = append(g.fetches, req.OutputTemplate)
	g.mu.Unlock()

	g.once.Do(func() { close(g.entered) })
	<-g.release

	path := strings.NewReplacer("%(title).80s", "Clip", "%(id)s", "abc", "%(ext)s", "mp4").Replace(req.OutputTemplate)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		return ytdlp.FetchResult{}, err
	}
	return ytdlp.FetchResult{Path: path, Title: "Clip", ID: "abc"}, nil
}

func waitResult(t *testing.T, ch <-chan download.Result) download.Result {
	t.Helper()
	select {
	case result := <-ch:
		return result
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
		return download.Result{}
	}
}

func TestRunWaitsForBusyWorkDir(t *testing.T) {
	dir := t.TempDir()
	delegate := &gatedDelegate{
		info:    &ytdlp.Info{ID: "abc", Title: "Clip", Formats: format.Collection{progressive("22", 1080, 30, "mp4"), progressive("18", 720, 30, "mp4")}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	runner := newRunner(t, delegate)

	first := make(chan download.Result, 1)
	go func() { first <- runner.Run(context.Background(), videoRequest(dir, 1080, 60)) }()
	select {
	case <-delegate.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first run never reached fetch")
	}

	second := make(chan download.Result, 1)
	go func() { second <- runner.Run(context.Background(), videoRequest(dir, 720, 30)) }()
	select {
	case result := <-second:
		t.Fatalf("second run finished while the directory was locked: %s", result)
	case <-time.After(300 * time.Millisecond):
	}

	close(delegate.release)
	firstResult := waitResult(t, first)
	secondResult := waitResult(t, second)

	if firstResult.Status != download.StatusSingle || filepath.Base(firstResult.File) != "Clip__abc__H1080_F60_single.mp4" {
		t.Fatalf("unexpected first result %s", firstResult)
	}
	if secondResult.Status != download.StatusSingle || filepath.Base(secondResult.File) != "Clip__abc__H720_F30_single.mp4" {
		t.Fatalf("unexpected second result %s", secondResult)
	}
	delegate.mu.Lock()
	defer delegate.mu.Unlock()
	if len(delegate.fetches) != 2 {
		t.Fatalf("expected two fetches, got %d", len(delegate.fetches))
	}
}

func TestRunCanceledWhileWaitingForWorkDir(t *testing.T) {
	dir := t.TempDir()
	lock, err := download.LockWorkDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LockWorkDir returned error: %v", err)
	}
	defer lock.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(100*time.Millisecond, cancel)

	delegate := &stubDelegate{info: &ytdlp.Info{ID: "abc", Title: "Clip", Formats: format.Collection{progressive("22", 1080, 30, "mp4")}}}
	result := newRunner(t, delegate).Run(ctx, videoRequest(dir, 1080, 60))

	if result.Status != download.StatusError || result.ErrKind != services.KindCanceled {
		t.Fatalf("expected Canceled, got %s", result)
	}
	if len(delegate.fetches) != 0 {
		t.Fatalf("expected no fetch while locked, got %d", len(delegate.fetches))
	}
}

func TestRunReleasesLockAfterRun(t *testing.T) {
	dir := t.TempDir()
	delegate := &stubDelegate{info: &ytdlp.Info{ID: "abc", Title: "Clip"}}
	runner := newRunner(t, delegate)

	for i := 0; i < 2; i++ {
		if result := runner.Run(context.Background(), videoRequest(dir, 1080, 60)); !result.OK() {
			t.Fatalf("run %d failed: %s", i, result)
		}
	}
}

func TestRunValidatesRequest(t *testing.T) {
	delegate := &stubDelegate{}
	result := newRunner(t, delegate).Run(context.Background(), download.Request{WorkDir: t.TempDir(), Mode: download.ModeVideo})
	if result.ErrKind != services.KindValidation {
		t.Fatalf("expected ValidationError, got %s", result)
	}
	if delegate.probes != 0 {
		t.Fatal("invalid request should not reach the delegate")
	}
}

func TestRunCanceledProbe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	delegate := &stubDelegate{probeErr: &ytdlp.ToolError{Op: ytdlp.OpProbe, Err: context.Canceled}}
	recorder := &memoryRecorder{}

	result := newRunner(t, delegate, download.WithRecorder(recorder)).Run(ctx, videoRequest(t.TempDir(), 1080, 60))

	if result.ErrKind != services.KindCanceled {
		t.Fatalf("expected Canceled, got %s", result)
	}
	if len(recorder.runs) != 1 {
		t.Fatal("canceled runs should still be recorded")
	}
}

func TestRunIgnoresRecorderFailure(t *testing.T) {
	delegate := &stubDelegate{info: &ytdlp.Info{ID: "abc", Title: "Clip"}}
	recorder := &memoryRecorder{err: errors.New("disk full")}

	result := newRunner(t, delegate, download.WithRecorder(recorder)).Run(context.Background(), videoRequest(t.TempDir(), 1080, 60))
	if !result.OK() {
		t.Fatalf("recorder failure must not change the result, got %s", result)
	}
}
