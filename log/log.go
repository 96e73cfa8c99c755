package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	playFile *os.File
	logMu    sync.Mutex
	logReady bool
	pid      int
	dir      string
)

// RenderMetrics describes one offline render of a preset.
type RenderMetrics struct {
	Name      string
	DurationS float64
	Samples   int
	PeakAbs   float64
	RenderMs  float64
	EncodeMs  float64
}

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: --logpath flag (or log_path from config)
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: RETROWAVE_LOG_PATH environment variable
	envPath := os.Getenv("RETROWAVE_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	playPath := filepath.Join(dir, "play_log.txt")
	playFile, err = os.OpenFile(playPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if playFile != nil {
		playFile.Close()
		playFile = nil
	}
	logReady = false
}

// L returns the diagnostics logger, or a disabled one before Init.
func L() zerolog.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	if !logReady {
		return zerolog.Nop()
	}
	return diagLog
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Render(m RenderMetrics) {
	if !logReady {
		return
	}
	diagLog.Debug().
		Str("sound", m.Name).
		Float64("duration_s", m.DurationS).
		Int("samples", m.Samples).
		Float64("peak", m.PeakAbs).
		Float64("render_ms", m.RenderMs).
		Float64("encode_ms", m.EncodeMs).
		Msg("render")
}

// Played appends a line to the play history.
func Played(name, playID string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, name, playID)
	playFile.WriteString(line)
}

func SessionStart(backend string, sampleRate int, sounds int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("backend", backend).
		Int("sample_rate", sampleRate).
		Int("sounds", sounds).
		Msg("session_start")
}

func SessionEnd(played int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("played", played).
		Msg("session_end")
}
