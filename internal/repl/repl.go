package repl

import (
	"fmt"
	"os"
	"stack/internal/engine"
	"stack/internal/lexer"
	"stack/internal/object"
	"stack/internal/parser"
	"stack/internal/render"
	"stack/internal/vm"
	"strings"

	"github.com/lmorg/readline"
)

const prompt = ">> "

// Start runs the interactive loop. Evaluation failures print and leave
// the session usable; only :exit and interrupts end it. Lines starting
// with ':' are in-band commands and bypass the language entirely.
func Start(eng *engine.Engine, newContext func() *object.Context) {
	rline := readline.NewInstance()
	rline.SetPrompt(prompt)

	ctx := newContext()

	for {
		line, err := rline.Readline()
		if err != nil {
			// Ctrl-C / Ctrl-D and terminal errors all end the session.
			fmt.Println("aborted")
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			switch line[1:] {
			case "exit":
				return
			case "clear":
				fmt.Print("\033[2J\033[H")
			case "reset":
				ctx = newContext()
				fmt.Println("Reset context")
			default:
				fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", line[1:])
			}
			continue
		}

		exprs, err := parser.Parse(lexer.NewSource("repl", line))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		machine := vm.New(ctx, eng)
		machine.Compile(exprs)

		stack, err := machine.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			fmt.Fprintln(os.Stderr, render.FormatStack(stack))
			continue
		}
		fmt.Println(render.FormatStack(stack))
	}
}
