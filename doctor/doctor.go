package doctor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"retrowave/audio"
	"retrowave/config"
	"retrowave/encoder"
	"retrowave/player"
	"retrowave/sfx"
	"retrowave/shutdown"
)

// TestSound is the preset played by the doctor.
const TestSound = "correct"

const resumeTimeout = 3 * time.Second

// Run executes diagnostic checks against the configured backend and returns
// an exit code (0=all pass, 1=any fail).
func Run(cfg config.Config) int {
	resetTerminal()
	setupInterruptHandler()

	open, err := audio.NewOpener(cfg.Backend, cfg.Audio())
	if err != nil {
		fmt.Printf("FAIL: %v\n", err)
		return 1
	}
	var confirm io.Reader
	if term.IsTerminal(int(os.Stdin.Fd())) {
		confirm = os.Stdin
	}
	d := &doctor{
		out:     os.Stdout,
		confirm: confirm,
		backend: cfg.Backend,
		rate:    cfg.SampleRate,
		open:    open,
		sounds:  sfx.NewCatalogue(),
	}
	return d.run()
}

func setupInterruptHandler() {
	sig := make(chan os.Signal, 1)
	shutdown.Notify(sig)
	go func() {
		<-sig
		fmt.Println("\nInterrupted")
		os.Exit(1)
	}()
}

type doctor struct {
	out io.Writer
	// confirm is read for a y/n answer after the test sound; nil skips
	// the question.
	confirm io.Reader
	backend string
	rate    int
	open    audio.Opener
	sounds  *sfx.Registry
}

func (d *doctor) run() int {
	fmt.Fprintln(d.out, "retrowave doctor - audio output diagnostics")
	fmt.Fprintln(d.out, "===========================================")

	ac, ok := d.checkOpen()
	allPass := ok
	if ok {
		defer ac.Close()
		allPass = d.checkResume(ac) && d.checkPlay(ac)
	}

	fmt.Fprintln(d.out)
	if allPass {
		fmt.Fprintln(d.out, "All checks passed!")
		return 0
	}
	fmt.Fprintln(d.out, "Some checks failed. See details above.")
	return 1
}

func (d *doctor) checkOpen() (audio.Context, bool) {
	fmt.Fprintln(d.out)
	fmt.Fprintf(d.out, "[1/3] Open audio backend (%s)\n", d.backend)

	ac, err := d.open()
	if err != nil {
		fmt.Fprintf(d.out, "  FAIL: cannot open audio: %v\n", err)
		return nil, false
	}
	fmt.Fprintf(d.out, "  PASS: opened at %d Hz, state %s\n", ac.SampleRate(), ac.State())
	return ac, true
}

func (d *doctor) checkResume(ac audio.Context) bool {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, "[2/3] Resume output")

	ctx, cancel := context.WithTimeout(context.Background(), resumeTimeout)
	defer cancel()
	start := time.Now()
	if err := ac.Resume(ctx); err != nil {
		fmt.Fprintf(d.out, "  FAIL: resume: %v\n", err)
		return false
	}
	if ac.State() != audio.StateRunning {
		fmt.Fprintf(d.out, "  FAIL: context is %s after resume\n", ac.State())
		return false
	}
	fmt.Fprintf(d.out, "  PASS: running after %s\n", time.Since(start).Round(time.Millisecond))
	return true
}

func (d *doctor) checkPlay(ac audio.Context) bool {
	fmt.Fprintln(d.out)
	fmt.Fprintf(d.out, "[3/3] Play and export %q\n", TestSound)

	ctrl := player.New(func() (audio.Context, error) { return ac, nil }, d.sounds)
	if err := ctrl.Play(context.Background(), TestSound); err != nil {
		fmt.Fprintf(d.out, "  FAIL: play: %v\n", err)
		return false
	}

	def, _ := d.sounds.Get(TestSound)
	off := audio.NewOffline(d.rate)
	if err := def.Generator(off); err != nil {
		fmt.Fprintf(d.out, "  FAIL: render: %v\n", err)
		return false
	}
	samples := off.Samples()
	data, err := encoder.Export(samples, d.rate, encoder.FormatWAV)
	if err != nil {
		fmt.Fprintf(d.out, "  FAIL: export: %v\n", err)
		return false
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		fmt.Fprintln(d.out, "  FAIL: export did not produce a WAV file")
		return false
	}
	fmt.Fprintf(d.out, "  Rendered %d samples, exported %.1f KB\n", len(samples), float64(len(data))/1024)

	// Let the sound finish before the context is closed.
	time.Sleep(time.Duration(float64(len(samples)) / float64(d.rate) * float64(time.Second)))

	if d.confirm == nil {
		fmt.Fprintln(d.out, "  PASS: sound scheduled")
		return true
	}
	fmt.Fprint(d.out, "Did you hear a short rising beep? [y/n]: ")
	answer, _ := bufio.NewReader(d.confirm).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer == "y" || answer == "yes" {
		fmt.Fprintln(d.out, "  PASS: playback confirmed by user")
		return true
	}
	fmt.Fprintln(d.out, "  FAIL: playback not confirmed")
	return false
}
