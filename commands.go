package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"retrowave/audio"
	"retrowave/doctor"
	"retrowave/encoder"
	"retrowave/log"
	"retrowave/sfx"
)

// tail is added to --wait so the device can drain its buffer.
const tail = 150 * time.Millisecond

func (a *app) listCmd() *cobra.Command {
	var category, filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available sounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd, category, filter)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only show sounds in this category")
	cmd.Flags().StringVar(&filter, "filter", "", "case-insensitive match on name, description or category")
	return cmd
}

func (a *app) runList(cmd *cobra.Command, category, filter string) error {
	infos := a.sounds.Filter(filter)
	if category != "" {
		infos = filterCategory(infos, category)
	}
	w := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(w, "No sounds match.")
		return nil
	}

	width := 0
	for _, info := range infos {
		width = max(width, len(info.Name))
	}
	byCat := make(map[string][]sfx.Info)
	for _, info := range infos {
		byCat[info.Category] = append(byCat[info.Category], info)
	}
	for _, cat := range a.sounds.Categories() {
		if len(byCat[cat]) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", cat)
		for _, info := range byCat[cat] {
			fmt.Fprintf(w, "  %s %-*s  %s\n", info.Emoji, width, info.Name, info.Description)
		}
	}
	return nil
}

func filterCategory(infos []sfx.Info, category string) []sfx.Info {
	var out []sfx.Info
	for _, info := range infos {
		if strings.EqualFold(info.Category, category) {
			out = append(out, info)
		}
	}
	return out
}

func (a *app) playCmd() *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "play NAME...",
		Short: "Play one or more sounds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlay(cmd, args, wait)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", true, "wait for the sounds to finish before exiting")
	return cmd
}

func (a *app) runPlay(cmd *cobra.Command, names []string, wait bool) error {
	// Running the command is the user gesture.
	if err := a.ctrl.Initialize(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	failed := false
	var longest time.Duration
	for _, name := range names {
		if err := a.ctrl.Play(ctx, name); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
			failed = true
			continue
		}
		def, _ := a.sounds.Get(name)
		info := def.Info
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", info.Emoji, info.Name)
		longest = max(longest, soundDuration(def))
	}

	if wait && longest > 0 {
		select {
		case <-time.After(longest + tail):
		case <-ctx.Done():
		}
	}
	if failed {
		return exitCode(1)
	}
	return nil
}

const previewRate = 8000

// preview renders def offline at a low rate. It returns nil when the
// generator fails.
func preview(def sfx.Definition) []float32 {
	off := audio.NewOffline(previewRate)
	if def.Generator == nil || def.Generator(off) != nil {
		return nil
	}
	return off.Samples()
}

func soundDuration(def sfx.Definition) time.Duration {
	return samplesDuration(len(preview(def)))
}

func samplesDuration(n int) time.Duration {
	return time.Duration(float64(n) / previewRate * float64(time.Second))
}

func (a *app) exportCmd() *cobra.Command {
	var out, format string
	cmd := &cobra.Command{
		Use:   "export [NAME...]",
		Short: "Render sounds to audio files (all sounds when no name is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, args, out, format)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	cmd.Flags().StringVarP(&format, "format", "f", encoder.FormatWAV, "output format: "+strings.Join(encoder.Formats(), " or "))
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, names []string, out, format string) error {
	if _, err := encoder.New(format, a.cfg.SampleRate); err != nil {
		return err
	}
	if len(names) == 0 {
		for info := range a.sounds.All() {
			names = append(names, info.Name)
		}
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	failed := false
	for _, name := range names {
		path, err := a.exportOne(name, out, format)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
			failed = true
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	if failed {
		return exitCode(1)
	}
	return nil
}

func (a *app) exportOne(name, dir, format string) (string, error) {
	def, ok := a.sounds.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown sound %q", name)
	}

	if def.Generator == nil {
		return "", fmt.Errorf("sound %q has no generator", name)
	}

	start := time.Now()
	off := audio.NewOffline(a.cfg.SampleRate)
	if err := def.Generator(off); err != nil {
		return "", fmt.Errorf("rendering: %w", err)
	}
	samples := off.Samples()
	renderMs := float64(time.Since(start).Microseconds()) / 1000

	enc, err := encoder.New(format, a.cfg.SampleRate)
	if err != nil {
		return "", err
	}
	if err := encoder.Encode(enc, samples); err != nil {
		return "", err
	}
	data := enc.Bytes()
	log.Render(log.RenderMetrics{
		Name:      name,
		DurationS: float64(len(samples)) / float64(a.cfg.SampleRate),
		Samples:   len(samples),
		PeakAbs:   peak(samples),
		RenderMs:  renderMs,
		EncodeMs:  float64(enc.EncodeTime().Microseconds()) / 1000,
	})

	path := filepath.Join(dir, name+encoder.Extension(format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func peak(samples []float32) float64 {
	var p float64
	for _, s := range samples {
		p = max(p, math.Abs(float64(s)))
	}
	return p
}

func (a *app) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that audio output works",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if code := doctor.Run(a.cfg); code != 0 {
				return exitCode(code)
			}
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "retrowave %s\n", version)
		},
	}
}
