package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/deskroster/deskroster/internal/bridge"
	"github.com/deskroster/deskroster/internal/directory"
	"github.com/deskroster/deskroster/internal/logging"
	"github.com/deskroster/deskroster/internal/platform"
	"github.com/deskroster/deskroster/internal/ui"
)

const Version = "0.3.0"

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color profile based on terminal capabilities.
// Prefers TrueColor for best visuals, falls back to ANSI256 for compatibility.
func initColorProfile() {
	// Allow user override via environment variable
	// DESKROSTER_COLOR: truecolor, 256, 16, none
	if colorEnv := os.Getenv("DESKROSTER_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	termName := os.Getenv("TERM")
	trueColorTerms := []string{
		"xterm-256color",
		"screen-256color",
		"tmux-256color",
		"xterm-direct",
		"alacritty",
		"kitty",
		"wezterm",
	}
	for _, t := range trueColorTerms {
		if strings.Contains(termName, t) || termName == t {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	if os.Getenv("WT_SESSION") != "" ||
		os.Getenv("ITERM_SESSION_ID") != "" ||
		os.Getenv("TERMINAL_EMULATOR") != "" ||
		os.Getenv("KONSOLE_VERSION") != "" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	lipgloss.SetColorProfile(termenv.ANSI256)
}

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("deskroster v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "list", "ls":
			handleList(args[1:])
			return
		case "search":
			handleSearch(args[1:])
			return
		case "add":
			handleAdd(args[1:])
			return
		case "remove", "rm":
			handleRemove(args[1:])
			return
		case "import":
			handleImport(args[1:])
			return
		case "web":
			handleWeb(args[1:])
			return
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: deskroster needs a terminal. Try 'deskroster list' for plain output.")
		os.Exit(1)
	}

	ui.InitTheme(directory.ResolveTheme())

	initLogging()
	defer logging.Shutdown()

	cfg, cfgErr := directory.LoadUserConfig()
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", cfgErr)
	}

	db := mustOpenDB()
	defer db.Close()

	// Watch the drop folder while the TUI runs, if configured.
	if inbox := cfg.Import.InboxDir; inbox != "" {
		inbox = directory.ExpandTilde(inbox)
		if warning := platform.CheckFsnotifySupport(inbox); warning != "" {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
		iw, err := bridge.NewImportWatcher(db, inbox)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: import watcher: %v\n", err)
		} else {
			iw.Start()
			defer iw.Close()
		}
	}

	home := ui.NewHome(db, cfg)
	p := tea.NewProgram(
		home,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// initLogging sets up structured JSONL logging with rotation. When
// DESKROSTER_DEBUG is unset and debug is off in config.toml, logs are
// discarded to avoid TUI interference.
func initLogging() {
	debugMode := os.Getenv("DESKROSTER_DEBUG") != ""

	baseDir, err := directory.GetDeskrosterDir()
	if err != nil {
		return
	}

	logCfg := logging.Config{
		Debug:          debugMode,
		Level:          "info",
		Format:         "json",
		MaxSizeMB:      10,
		MaxBackups:     5,
		MaxAgeDays:     10,
		Compress:       true,
		RingBufferSize: 4 * 1024 * 1024,
	}
	if userCfg, err := directory.LoadUserConfig(); err == nil {
		ls := userCfg.Logs
		if ls.Debug {
			logCfg.Debug = true
		}
		if ls.Level != "" {
			logCfg.Level = ls.Level
		}
		if ls.Format != "" {
			logCfg.Format = ls.Format
		}
		if ls.MaxSizeMB > 0 {
			logCfg.MaxSizeMB = ls.MaxSizeMB
		}
		if ls.MaxBackups > 0 {
			logCfg.MaxBackups = ls.MaxBackups
		}
		if ls.MaxAgeDays > 0 {
			logCfg.MaxAgeDays = ls.MaxAgeDays
		}
	}
	if logCfg.Debug {
		logCfg.LogDir = baseDir
	}

	logging.Init(logCfg)

	// SIGUSR1 dumps the ring buffer for post-mortem debugging
	usr1Chan := make(chan os.Signal, 1)
	signal.Notify(usr1Chan, syscall.SIGUSR1)
	go func() {
		for range usr1Chan {
			dumpPath := filepath.Join(baseDir, fmt.Sprintf("crash-dump-%d.jsonl", time.Now().Unix()))
			if err := logging.DumpRingBuffer(dumpPath); err != nil {
				logging.ForComponent(logging.CompUI).Error("crash_dump_failed",
					slog.String("error", err.Error()))
			} else {
				logging.ForComponent(logging.CompUI).Info("crash_dump_written",
					slog.String("path", dumpPath))
			}
		}
	}()
}

func printHelp() {
	fmt.Print(`deskroster - people and server directory for the terminal

Usage:
  deskroster                      Open the TUI
  deskroster list [--json]        List contacts
  deskroster search <text>        Search contacts, servers and teams
  deskroster add <email> [flags]  Add a manual contact
  deskroster rm <email>           Remove a contact
  deskroster import <dir|file>    Import contact JSON files
  deskroster web [flags]          Serve the roster over HTTP
  deskroster version              Print version

Flags for add:
  -n, --name    Contact name
  -t, --title   Job title
  -p, --phone   Phone number

Flags for web:
  --addr        Listen address (default from config.toml)
  --token       Require this bearer token
  --read-only   Reject mutations
  --push        Enable web push notifications

Environment:
  DESKROSTER_DIR     Override the data directory (default ~/.deskroster)
  DESKROSTER_DEBUG   Write debug logs to the data directory
  DESKROSTER_COLOR   Force color profile: truecolor, 256, 16, none
`)
}
