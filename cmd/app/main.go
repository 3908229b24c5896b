package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"stack/internal/engine"
	"stack/internal/modules"
	"stack/internal/object"
	"stack/internal/repl"
	"stack/internal/runner"
	"stack/internal/util"
)

var (
	// Version is injected at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath    string
	journal       bool
	journalLength int
	watch         bool
	sandbox       bool
	enableAll     bool
	enableStr     bool
	enableFs      bool
	enableScope   bool
	enableDb      bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// machine config
	flag.StringVar(&configPath, "config", "", "Load configuration from a TOML file")
	flag.BoolVar(&journal, "journal", false, "Record a stack snapshot after every step")
	flag.IntVar(&journalLength, "journal-length", object.DefaultJournalLength, "Number of journal snapshots to retain")
	flag.BoolVar(&watch, "watch", false, "Re-run the file whenever it changes")
	// standard modules
	flag.BoolVar(&sandbox, "sandbox", false, "Refuse filesystem writes from standard modules")
	flag.BoolVar(&enableAll, "enable-all", false, "Enable every standard module")
	flag.BoolVar(&enableStr, "enable-str", false, "Enable the str module")
	flag.BoolVar(&enableFs, "enable-fs", false, "Enable the fs module")
	flag.BoolVar(&enableScope, "enable-scope", false, "Enable the scope module")
	flag.BoolVar(&enableDb, "enable-db", false, "Enable the db module")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {

	flag.Parse()

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(logLevel),
	}
	logWriter := configureLogWriter()
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config := util.Configuration{
		Version:       Version,
		BuildDate:     BuildDate,
		Commit:        Commit,
		Journal:       journal,
		JournalLength: journalLength,
		EnableAll:     enableAll,
		EnableStr:     enableStr,
		EnableFs:      enableFs,
		EnableScope:   enableScope,
		EnableDb:      enableDb,
		Sandbox:       sandbox,
	}
	if configPath != "" {
		if err := config.LoadFile(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	eng := engine.New()
	eng.SetLoader(modules.Loader(config))
	modules.Register(eng, config)

	newContext := func() *object.Context {
		ctx := object.NewContext()
		if config.Journal {
			ctx = ctx.WithJournal(config.JournalLength)
		}
		return ctx
	}

	switch target := flag.Arg(0); {
	case target == "":
		repl.Start(eng, newContext)
	case target == "-":
		if err := runner.RunStdin(newContext(), eng); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case watch:
		if err := runner.Watch(target, newContext, eng); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	default:
		if err := runner.RunFile(target, newContext(), eng); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

func configureLogWriter() *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {

	fmt.Printf("stack version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: stack [options] [filename]

Options:
  -config <path>         Load configuration from a TOML file.
  -journal               Record a stack snapshot after every step.
  -journal-length <n>    Number of journal snapshots to retain. Default is 20.
  -watch                 Re-run the file whenever it changes.
  -sandbox               Refuse filesystem writes from standard modules.
  -enable-all            Enable every standard module.
  -enable-str            Enable the str module.
  -enable-fs             Enable the fs module.
  -enable-scope          Enable the scope module.
  -enable-db             Enable the db module.
  -help                  Display this help information and exit.
  -version               Display version information and exit.
  -log-level <level>     Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>       Specify a log file to write logs. Default is stderr.

Details:
This is the Stack programming language.

Examples:
  stack                        Start the interactive session
  stack myfile.stk             Execute the provided file
  stack -watch myfile.stk      Re-run the file on every save
  stack -                      Execute a program read from stdin

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
