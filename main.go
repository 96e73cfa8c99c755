package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"retrowave/audio"
	"retrowave/config"
	"retrowave/log"
	"retrowave/player"
	"retrowave/sfx"
	"retrowave/shutdown"
)

var version = "dev"

// app holds everything a command needs once flags and config are resolved.
type app struct {
	v       *viper.Viper
	cfgPath string
	cfg     config.Config

	sounds *sfx.Registry
	ctrl   *player.Controller

	// newOpener is replaced in tests to inject a fake backend.
	newOpener func(name string, cfg audio.Config) (audio.Opener, error)
	isTTY     func() bool

	out, errOut io.Writer

	closeOnce sync.Once
}

func newApp() *app {
	return &app{
		v:         viper.New(),
		newOpener: audio.NewOpener,
		isTTY:     func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
		out:       os.Stdout,
		errOut:    os.Stderr,
	}
}

func main() {
	a := newApp()
	cmd := a.rootCmd()

	ctx, stop := shutdown.Context(context.Background())
	err := cmd.ExecuteContext(ctx)
	stop()
	a.close()
	if err != nil {
		var exit exitCode
		if errors.As(err, &exit) {
			os.Exit(int(exit))
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// exitCode lets a command choose the process exit status without printing
// an error.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "retrowave",
		Short:         "Retro synthesized sound effects",
		Long:          "retrowave plays and exports a catalogue of procedurally synthesized retro sound effects.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.isTTY() {
				return a.runTUI(cmd.Context())
			}
			return a.runList(cmd, "", "")
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetVersionTemplate("retrowave {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default: $XDG_CONFIG_HOME/retrowave/config.yaml)")
	pf.String("backend", config.Defaults().Backend, "audio backend: auto, pulse, malgo, oto, speaker or null")
	pf.Int("sample-rate", config.Defaults().SampleRate, "output sample rate in Hz")
	pf.Float64("volume", config.Defaults().Volume, "master volume 0..1")
	pf.Int("buffer-ms", config.Defaults().BufferMs, "device buffer length in milliseconds")
	pf.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")

	for key, flag := range map[string]string{
		config.KeyBackend:    "backend",
		config.KeySampleRate: "sample-rate",
		config.KeyVolume:     "volume",
		config.KeyBufferMs:   "buffer-ms",
		config.KeyLogPath:    "logpath",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		a.listCmd(),
		a.playCmd(),
		a.exportCmd(),
		a.doctorCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads config, opens the logs and builds the registry and
// controller. It does not touch the audio device.
func (a *app) setup(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	cfg, err := config.Load(a.v, a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logPath, err := log.ResolveDir(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("resolving log directory: %w", err)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(a.errOut, "Warning: could not create log directory: %v\n", err)
	} else {
		initCrashLog()
		if err := log.Init(); err != nil {
			fmt.Fprintf(a.errOut, "Warning: could not open logs: %v\n", err)
		}
	}

	a.sounds = sfx.NewCatalogue(sfx.WithLogger(log.L()))

	open, err := a.newOpener(cfg.Backend, cfg.Audio())
	if err != nil {
		return err
	}
	a.ctrl = player.New(open, a.sounds,
		player.WithLogger(log.L()),
		player.WithPlayHook(log.Played),
	)
	log.SessionStart(cfg.Backend, cfg.SampleRate, a.sounds.Len())
	return nil
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func (a *app) close() {
	a.closeOnce.Do(func() {
		if a.ctrl == nil {
			return
		}
		a.ctrl.Wait()
		if ac := a.ctrl.Context(); ac != nil {
			ac.Close()
		}
		log.SessionEnd(a.ctrl.Played())
		log.Close()
	})
}
