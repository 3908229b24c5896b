package runner

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"stack/internal/engine"
	"stack/internal/lexer"
	"stack/internal/object"
	"stack/internal/parser"
	"stack/internal/render"
	"stack/internal/vm"

	"github.com/fsnotify/fsnotify"
)

// RunSource parses and evaluates one source against a context, printing
// the final stack on success and the failure plus the last good stack on
// error.
func RunSource(src lexer.Source, ctx *object.Context, eng *engine.Engine) error {
	exprs, err := parser.Parse(src)
	if err != nil {
		return err
	}

	machine := vm.New(ctx, eng)
	machine.Compile(exprs)

	stack, err := machine.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, render.FormatStack(stack))
		return err
	}
	fmt.Println(render.FormatStack(stack))
	return nil
}

func RunFile(path string, ctx *object.Context, eng *engine.Engine) error {
	src, err := lexer.SourceFromPath(path)
	if err != nil {
		return err
	}
	ctx.AddSource(src.Name, src.Content)
	return RunSource(src, ctx, eng)
}

func RunStdin(ctx *object.Context, eng *engine.Engine) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	return RunSource(lexer.NewSource("stdin", string(data)), ctx, eng)
}

// Watch re-evaluates a file on every write, each run against a fresh
// context. Failures are reported and watching continues.
func Watch(path string, newContext func() *object.Context, eng *engine.Engine) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors that save via rename
	// replace the inode and a file watch would go stale.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	runOnce := func() {
		fmt.Print("\033[2J\033[H")
		if err := RunFile(path, newContext(), eng); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	runOnce()

	target := filepath.Clean(path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.Debug("source changed, re-running", "file", event.Name)
			runOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch error", "error", err)
		}
	}
}
