package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	compute "github.com/cortex-js/compute-engine-sub005"
)

const (
	historyFile = ".compute_history"
	promptMain  = "> "
	promptCont  = ". "
)

const replHelp = `enter an expression to apply the current mode, or a command:
  :mode M       switch mode (simplify, evaluate, N, expand, factor, D, integrate)
  :wrt x        set the variable of D and integrate
  :let x = v    assign a value to a symbol
  :assume p     add a proposition to the assumptions
  :is p         ask whether a proposition holds
  :steps        toggle printing rewrite steps
  :json         toggle MathJSON output
  :quit         leave`

func (r *runner) repl() error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readExpr(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if strings.HasPrefix(src, ":") {
			quit, err := r.command(src)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			if quit {
				return nil
			}
			continue
		}
		e, err := compute.ParseString(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if err := r.run(context.Background(), os.Stdout, e); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// command runs a REPL command and reports whether the session should end.
func (r *runner) command(src string) (bool, error) {
	name, arg, _ := strings.Cut(src[1:], " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "quit", "q":
		return true, nil
	case "help", "h":
		fmt.Println(replHelp)
	case "mode":
		old := r.mode
		r.mode = arg
		if err := r.check(); err != nil {
			r.mode = old
			return false, err
		}
	case "wrt":
		if arg == "" {
			return false, errors.New("missing variable name")
		}
		r.wrt = arg
	case "steps":
		r.steps = !r.steps
	case "json":
		r.json = !r.json
	case "let":
		nm, vl, ok := strings.Cut(arg, "=")
		if !ok {
			return false, fmt.Errorf(`assignments must be "name = value", not %q`, arg)
		}
		v, err := compute.ParseString(vl)
		if err != nil {
			return false, err
		}
		return false, r.eng.Scope().Assign(strings.TrimSpace(nm), r.eng.Canonicalize(v))
	case "assume", "is":
		p, err := compute.ParseString(arg)
		if err != nil {
			return false, err
		}
		if name == "is" {
			fmt.Println(r.eng.Is(p))
			return false, nil
		}
		r.eng.Assume(p)
	default:
		return false, fmt.Errorf("unknown command %q; type :help", name)
	}
	return false, nil
}

// readExpr reads lines until they form an expression with no unclosed
// brackets.
func readExpr(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := compute.ParseString(src)
		var be *compute.BracketError
		if errors.As(perr, &be) && be.Right == "" {
			continue
		}
		return src, true
	}
}
