package postprocess

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"scrapurr/internal/config"
	"scrapurr/internal/logging"
	"scrapurr/internal/media/ffprobe"
	"scrapurr/internal/notifications"
	"scrapurr/internal/testsupport"
)

type fakeRemuxer struct {
	calls   int
	err     error
	noWrite bool
}

func (f *fakeRemuxer) Remux(_ context.Context, input, output string) error {
	f.calls++
	if f.noWrite {
		return f.err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	if writeErr := os.WriteFile(output, data, 0o644); writeErr != nil {
		return writeErr
	}
	return f.err
}

type fakeSheets struct {
	media []string
	err   error
}

func (f *fakeSheets) Generate(_ context.Context, media string) (string, error) {
	f.media = append(f.media, media)
	if f.err != nil {
		return "", f.err
	}
	return media + ".jpg", nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
	last   notifications.Payload
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.last = payload
	return nil
}

func noSummary(context.Context, string, string) (ffprobe.Summary, error) {
	return ffprobe.Summary{}, errors.New("ffprobe unavailable")
}

func newTestPipeline(opts Options, remuxer *fakeRemuxer, sheets *fakeSheets, notifier notifications.Service) *Pipeline {
	return New(opts, nil, config.Tools{},
		WithRemuxer(remuxer),
		WithSheetGenerator(sheets),
		WithNotifier(notifier),
		WithLogger(logging.NewNop()),
		withInspector(noSummary),
	)
}

func writeCapture(t *testing.T, name string, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testsupport.WriteCapture(t, path, size)
	return path
}

func allOn() Options {
	return Options{ConvertToMP4: true, UseFFmpegConvert: true, GenerateContactSheet: true}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestProcessSkipsMissingAndEmptyFiles(t *testing.T) {
	remuxer := &fakeRemuxer{}
	sheets := &fakeSheets{}
	notifier := &recordingNotifier{}
	p := newTestPipeline(allOn(), remuxer, sheets, notifier)

	missing := filepath.Join(t.TempDir(), "missing.ts")
	artifact, err := p.Process(context.Background(), missing)
	if err != nil || artifact != (Artifact{}) {
		t.Fatalf("expected no-op for missing file, got %+v err=%v", artifact, err)
	}

	empty := writeCapture(t, "empty.ts", 0)
	artifact, err = p.Process(context.Background(), empty)
	if err != nil || artifact != (Artifact{}) {
		t.Fatalf("expected no-op for empty file, got %+v err=%v", artifact, err)
	}
	if remuxer.calls != 0 || len(sheets.media) != 0 || len(notifier.events) != 0 {
		t.Fatalf("guard must not invoke external steps: remux=%d sheets=%v events=%v", remuxer.calls, sheets.media, notifier.events)
	}
	if !exists(empty) {
		t.Fatal("empty file must be left untouched")
	}
}

func TestProcessConvertsWithFFmpeg(t *testing.T) {
	raw := writeCapture(t, "foo-01_02_24-10_00.ts", 4096)
	remuxer := &fakeRemuxer{}
	sheets := &fakeSheets{}
	notifier := &recordingNotifier{}

	artifact, err := newTestPipeline(allOn(), remuxer, sheets, notifier).Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	mp4 := filepath.Join(filepath.Dir(raw), "foo-01_02_24-10_00.mp4")
	if artifact.MediaPath != mp4 || !artifact.Converted {
		t.Fatalf("unexpected artifact: %+v", artifact)
	}
	if exists(raw) {
		t.Fatal("raw capture should be deleted after successful conversion")
	}
	if !exists(mp4) {
		t.Fatal("expected mp4 on disk")
	}
	if len(sheets.media) != 1 || sheets.media[0] != mp4 {
		t.Fatalf("contact sheet should target converted file, got %v", sheets.media)
	}
	if artifact.ContactSheetPath != mp4+".jpg" {
		t.Fatalf("unexpected contact sheet path: %q", artifact.ContactSheetPath)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventArtifactSaved {
		t.Fatalf("expected artifact saved notification, got %v", notifier.events)
	}
	if notifier.last["path"] != mp4 {
		t.Fatalf("unexpected notification payload: %v", notifier.last)
	}
}

func TestProcessKeepsRawWhenFFmpegFails(t *testing.T) {
	raw := writeCapture(t, "vod_12345.ts", 4096)
	remuxer := &fakeRemuxer{err: errors.New("exit code 1")}
	sheets := &fakeSheets{}

	artifact, err := newTestPipeline(allOn(), remuxer, sheets, &recordingNotifier{}).Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("conversion failure must not be returned, got %v", err)
	}
	if artifact.MediaPath != raw || artifact.Converted {
		t.Fatalf("expected raw path retained, got %+v", artifact)
	}
	if !exists(raw) {
		t.Fatal("raw capture must survive a failed conversion")
	}
	if exists(filepath.Join(filepath.Dir(raw), "vod_12345.mp4")) {
		t.Fatal("partial mp4 should be removed after a failed conversion")
	}
	if len(sheets.media) != 1 || sheets.media[0] != raw {
		t.Fatalf("contact sheet should target the raw file, got %v", sheets.media)
	}
}

func TestProcessFailedRemuxKeepsExistingMP4(t *testing.T) {
	raw := writeCapture(t, "vod_42.ts", 4096)
	mp4 := filepath.Join(filepath.Dir(raw), "vod_42.mp4")
	if err := os.WriteFile(mp4, []byte("earlier run"), 0o644); err != nil {
		t.Fatalf("write existing mp4: %v", err)
	}
	remuxer := &fakeRemuxer{err: errors.New("invalid data found when processing input"), noWrite: true}

	artifact, err := newTestPipeline(allOn(), remuxer, &fakeSheets{}, &recordingNotifier{}).Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("conversion failure must not be returned, got %v", err)
	}
	if artifact.MediaPath != raw || artifact.Converted {
		t.Fatalf("expected raw path retained, got %+v", artifact)
	}
	data, err := os.ReadFile(mp4)
	if err != nil {
		t.Fatalf("existing mp4 removed by failed conversion: %v", err)
	}
	if string(data) != "earlier run" {
		t.Fatalf("existing mp4 modified: %q", data)
	}
	if !exists(raw) {
		t.Fatal("raw capture must survive a failed conversion")
	}
}

func TestProcessRenameMode(t *testing.T) {
	raw := writeCapture(t, "AbCdEf.ts", 4096)
	remuxer := &fakeRemuxer{}
	opts := allOn()
	opts.UseFFmpegConvert = false
	opts.GenerateContactSheet = false
	sheets := &fakeSheets{}

	artifact, err := newTestPipeline(opts, remuxer, sheets, &recordingNotifier{}).Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	mp4 := filepath.Join(filepath.Dir(raw), "AbCdEf.mp4")
	if artifact.MediaPath != mp4 || !artifact.Converted {
		t.Fatalf("unexpected artifact: %+v", artifact)
	}
	if remuxer.calls != 0 {
		t.Fatal("rename mode must not invoke ffmpeg")
	}
	if exists(raw) || !exists(mp4) {
		t.Fatal("expected .ts renamed to .mp4")
	}
	if len(sheets.media) != 0 || artifact.ContactSheetPath != "" {
		t.Fatal("contact sheet disabled but generated")
	}
}

func TestProcessWithoutConversion(t *testing.T) {
	raw := writeCapture(t, "foo.ts", 4096)
	remuxer := &fakeRemuxer{}
	opts := allOn()
	opts.ConvertToMP4 = false

	artifact, err := newTestPipeline(opts, remuxer, &fakeSheets{}, &recordingNotifier{}).Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if artifact.MediaPath != raw || artifact.Converted || remuxer.calls != 0 {
		t.Fatalf("expected raw artifact untouched, got %+v remux=%d", artifact, remuxer.calls)
	}
}

func TestProcessIsIdempotentOnConvertedFile(t *testing.T) {
	mp4 := writeCapture(t, "foo.mp4", 4096)
	remuxer := &fakeRemuxer{}
	sheets := &fakeSheets{}

	artifact, err := newTestPipeline(allOn(), remuxer, sheets, &recordingNotifier{}).Process(context.Background(), mp4)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if artifact.MediaPath != mp4 || artifact.Converted || remuxer.calls != 0 {
		t.Fatalf("already converted file should pass through, got %+v remux=%d", artifact, remuxer.calls)
	}
	if len(sheets.media) != 1 || sheets.media[0] != mp4 {
		t.Fatalf("expected contact sheet for mp4, got %v", sheets.media)
	}
}

func TestProcessContactSheetFailureIsSoft(t *testing.T) {
	raw := writeCapture(t, "foo.ts", 4096)
	sheets := &fakeSheets{err: errors.New("vcsi crashed")}

	artifact, err := newTestPipeline(allOn(), &fakeRemuxer{}, sheets, &recordingNotifier{}).Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("contact sheet failure must not be returned, got %v", err)
	}
	if artifact.ContactSheetPath != "" || !artifact.Converted {
		t.Fatalf("unexpected artifact: %+v", artifact)
	}
}

func TestProcessLogsSummaryWhenAvailable(t *testing.T) {
	raw := writeCapture(t, "foo.mp4", 4096)
	var inspected string
	p := New(Options{}, nil, config.Tools{},
		WithRemuxer(&fakeRemuxer{}),
		WithSheetGenerator(&fakeSheets{}),
		withInspector(func(_ context.Context, _ string, path string) (ffprobe.Summary, error) {
			inspected = path
			return ffprobe.Summary{VideoStreams: 1}, nil
		}),
	)
	if _, err := p.Process(context.Background(), raw); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if inspected != raw {
		t.Fatalf("expected summary for %q, got %q", raw, inspected)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.UseFFmpegConvert = false
	opts := OptionsFromConfig(&cfg)
	if !opts.ConvertToMP4 || opts.UseFFmpegConvert || !opts.GenerateContactSheet || opts.FFprobeBinary != "ffprobe" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
