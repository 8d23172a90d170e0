package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"

	"github.com/picodeck/picodeck/internal/config"
	"github.com/picodeck/picodeck/internal/hal/dirvol"
	"github.com/picodeck/picodeck/internal/hal/simhw"
	"github.com/picodeck/picodeck/internal/input"
)

func testConfig() *config.Config {
	return &config.Config{
		Media:     config.MediaConfig{Directory: "/media", MaxTracks: 10},
		Codec:     config.CodecConfig{Backend: "sim", Volume: 40},
		Recording: config.RecordingConfig{Source: "mic", Plugin: "venc44k2.plg"},
		Display:   config.DisplayConfig{Cols: 16, Rows: 2},
	}
}

func newTestService(t *testing.T, tracks int, script []input.Command) (*Service, *simhw.Codec, *simhw.Display, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/media", 0o755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < tracks; i++ {
		name := fmt.Sprintf("/media/track%03d.mp3", i+1)
		if err := afero.WriteFile(fs, name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	codec := simhw.NewCodec()
	disp := simhw.NewDisplay(16, 2)
	svc := New(testConfig(), codec, dirvol.New(fs, "/media"), &simhw.Commands{Script: script}, disp)
	svc.idle = func() {}
	return svc, codec, disp, fs
}

func TestRunInitializesAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	svc, codec, disp, _ := newTestService(t, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	svc.idle = func() { cancel() }

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("run returned %v, want context.Canceled", err)
	}
	if codec.ResetCount != 1 {
		t.Errorf("reset count = %d, want 1", codec.ResetCount)
	}
	if l, _ := codec.Volume(); l != 40 {
		t.Errorf("startup volume = %d, want 40", l)
	}
	if svc.list.Len() != 2 {
		t.Errorf("playlist has %d tracks, want 2", svc.list.Len())
	}
	if got := disp.Line(0); got != "> Play all" {
		t.Errorf("display row 0 = %q, want menu top", got)
	}
}

func TestConfirmAtTopPlaysWholePlaylist(t *testing.T) {
	t.Parallel()

	svc, codec, _, _ := newTestService(t, 3, nil)
	if err := svc.builder.Rebuild(svc.list); err != nil {
		t.Fatal(err)
	}

	svc.HandleCommand(input.CmdConfirm)
	if len(codec.Started) != 3 {
		t.Fatalf("started %v, want all 3 tracks", codec.Started)
	}
}

func TestDigitSelectRecordsAndRescans(t *testing.T) {
	t.Parallel()

	// select-2 lands on Record and fires it; the confirm that follows
	// is consumed by the recording session as its stop request.
	svc, codec, _, fs := newTestService(t, 1, []input.Command{input.CmdConfirm})
	if err := svc.builder.Rebuild(svc.list); err != nil {
		t.Fatal(err)
	}
	codec.RecStream = []uint16{0x0102, 0x0304, 0x0506}
	codec.SetVolume(40, 40)

	svc.HandleCommand(input.Digit(2))

	data, err := afero.ReadFile(fs, "/media/record00.ogg")
	if err != nil {
		t.Fatalf("record file: %v", err)
	}
	if len(data) != 6 {
		t.Fatalf("record file length = %d, want 6", len(data))
	}
	// The new recording shows up in the rescanned playlist.
	if svc.list.Len() != 2 {
		t.Errorf("playlist has %d tracks after recording, want 2", svc.list.Len())
	}
	// Arming reset plus the post-session and post-record resets.
	if codec.ResetCount < 2 {
		t.Errorf("reset count = %d, want at least 2", codec.ResetCount)
	}
	if l, _ := codec.Volume(); l != 40 {
		t.Errorf("volume after recording = %d, want reapplied 40", l)
	}
}

func TestRecordSetupFailureShowsReason(t *testing.T) {
	t.Parallel()

	svc, codec, disp, _ := newTestService(t, 0, nil)
	codec.PatchErr = errors.New("overlay not on volume")

	if err := svc.Record("record00.ogg"); err == nil {
		t.Fatal("expected setup error")
	}
	if got := disp.Line(0); got != "No plugin" {
		t.Errorf("display row 0 = %q, want %q", got, "No plugin")
	}
}

func TestNextRecordNameSkipsExisting(t *testing.T) {
	t.Parallel()

	svc, _, _, fs := newTestService(t, 0, nil)
	for i := 0; i < 2; i++ {
		name := fmt.Sprintf("/media/record%02d.ogg", i)
		if err := afero.WriteFile(fs, name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got := svc.nextRecordName(); got != "record02.ogg" {
		t.Fatalf("next record name = %q, want record02.ogg", got)
	}
}

func TestPlayFilePromptBuildsName(t *testing.T) {
	t.Parallel()

	// navigate-down onto Play file, confirm, then the prompt consumes
	// digits 1 and 2, an extension toggle and a confirm.
	script := []input.Command{
		input.Digit(1), input.Digit(2),
		input.CmdUp,
		input.CmdConfirm,
	}
	svc, codec, _, _ := newTestService(t, 0, script)

	svc.HandleCommand(input.CmdDown)
	svc.HandleCommand(input.CmdConfirm)

	if len(codec.Started) != 1 || codec.Started[0] != "track012.ogg" {
		t.Fatalf("started %v, want [track012.ogg]", codec.Started)
	}
}

func TestPlayFilePromptBackCancels(t *testing.T) {
	t.Parallel()

	script := []input.Command{input.Digit(7), input.CmdBack}
	svc, codec, _, _ := newTestService(t, 0, script)

	svc.HandleCommand(input.CmdDown)
	svc.HandleCommand(input.CmdConfirm)

	if len(codec.Started) != 0 {
		t.Fatalf("cancelled prompt must not start playback, started %v", codec.Started)
	}
}

func TestPlayFilePromptRejectsZero(t *testing.T) {
	t.Parallel()

	// Confirming on 000 is ignored; typing a real number afterwards
	// still works.
	script := []input.Command{
		input.Digit(0), input.Digit(0), input.Digit(0),
		input.CmdConfirm,
		input.CmdBack,
	}
	svc, codec, _, _ := newTestService(t, 0, script)

	svc.HandleCommand(input.CmdDown)
	svc.HandleCommand(input.CmdConfirm)

	if len(codec.Started) != 0 {
		t.Fatalf("track 000 must not play, started %v", codec.Started)
	}
}

func TestMonoAndDifferentialToggles(t *testing.T) {
	t.Parallel()

	svc, codec, _, _ := newTestService(t, 0, nil)

	svc.HandleCommand(input.Digit(3))
	if !codec.MonoMode() {
		t.Error("mono mode should be on after first toggle")
	}
	svc.HandleCommand(input.CmdConfirm)
	if codec.MonoMode() {
		t.Error("mono mode should be off after second toggle")
	}

	svc.HandleCommand(input.Digit(4))
	if !codec.Differential() {
		t.Error("differential output should be on")
	}
}

func TestSineTestHoldsUntilInput(t *testing.T) {
	t.Parallel()

	svc, codec, disp, _ := newTestService(t, 0, []input.Command{input.CmdNone, input.CmdConfirm})
	sineSeen := false
	svc.idle = func() { sineSeen = sineSeen || codec.SineOn() }

	svc.HandleCommand(input.Digit(5))

	if !sineSeen {
		t.Error("sine test never observed running during the hold")
	}
	if codec.SineOn() {
		t.Error("sine test should be off after dismissal")
	}
	if got := disp.Line(0); got != "Sine test" {
		t.Errorf("display row 0 = %q, want %q", got, "Sine test")
	}
}

func TestMemoryTestShowsResult(t *testing.T) {
	t.Parallel()

	svc, _, disp, _ := newTestService(t, 0, nil)
	svc.HandleCommand(input.Digit(6))
	if got := disp.Line(0); got != "Mem 83FF" {
		t.Errorf("display row 0 = %q, want %q", got, "Mem 83FF")
	}
}

func TestResetCodecReappliesVolume(t *testing.T) {
	t.Parallel()

	svc, codec, _, _ := newTestService(t, 0, nil)
	codec.SetVolume(100, 100)

	svc.HandleCommand(input.Digit(7))
	if codec.ResetCount != 1 {
		t.Errorf("reset count = %d, want 1", codec.ResetCount)
	}
	if l, _ := codec.Volume(); l != 40 {
		t.Errorf("volume = %d, want configured 40", l)
	}
}

func TestPowerToggle(t *testing.T) {
	t.Parallel()

	svc, codec, _, _ := newTestService(t, 0, nil)

	svc.HandleCommand(input.Digit(8))
	if codec.Powered() {
		t.Fatal("first power toggle should power off")
	}

	svc.HandleCommand(input.CmdConfirm)
	if !codec.Powered() {
		t.Fatal("second toggle should power back on")
	}
	if codec.ResetCount != 1 {
		t.Errorf("power-on should reset the codec, resets = %d", codec.ResetCount)
	}
	if l, _ := codec.Volume(); l != 40 {
		t.Errorf("power-on should reapply volume, got %d", l)
	}
}
