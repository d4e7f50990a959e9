package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	compute "github.com/cortex-js/compute-engine-sub005"
)

func main() {
	log.SetFlags(0)
	var (
		inname, mode, wrt, rules string
		with                     [][2]string
		nl, echo, asJSON, steps  bool
		repl, verbose            bool
		prec                     int
		timeout                  time.Duration
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&mode, "mode", "simplify", "one of simplify, evaluate, N, expand, factor, D, integrate")
	flag.StringVar(&wrt, "wrt", "x", "variable for D and integrate")
	flag.StringVar(&rules, "rules", "", "file of extra rewrite rules, one \"pattern -> template\" per line")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.IntVar(&prec, "p", 64, "precision of numeric evaluation in bits")
	flag.DurationVar(&timeout, "timeout", compute.DefaultBudget.Timeout, "time limit for each expression")
	flag.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	flag.BoolVar(&echo, "echo", false, "print parsed expressions")
	flag.BoolVar(&asJSON, "json", false, "print results as MathJSON")
	flag.BoolVar(&steps, "steps", false, "print the rewrite steps of simplify and evaluate")
	flag.BoolVar(&repl, "i", false, "start an interactive session")
	flag.BoolVar(&verbose, "v", false, "log each rewrite step")
	flag.Parse()
	if prec <= 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}
	if verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	b := compute.DefaultBudget
	b.Timeout = timeout
	eng := compute.NewEngine(compute.Prec(uint(prec)), compute.WithBudget(b))
	if rules != "" {
		rs, err := loadRules(rules)
		if err != nil {
			log.Fatal(err)
		}
		eng = eng.Clone(compute.WithRules(eng.Rules().With(rs...)))
	}
	for _, d := range with {
		nm, vl := d[0], d[1]
		v, err := compute.ParseString(vl)
		if err != nil {
			log.Fatalf("setting %s: %v", nm, err)
		}
		if err := eng.Scope().Assign(nm, eng.Canonicalize(v)); err != nil {
			log.Fatalf("setting %s: %v", nm, err)
		}
	}

	r := runner{eng: eng, mode: mode, wrt: wrt, json: asJSON, steps: steps, echo: echo}
	if err := r.check(); err != nil {
		log.Fatal(err)
	}
	if repl {
		if err := r.repl(); err != nil {
			log.Fatal(err)
		}
		return
	}

	var ins []io.RuneScanner
	f, err := infile(inname, flag.NArg() == 0)
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		ins = append(ins, f)
	}
	for _, arg := range flag.Args() {
		ins = append(ins, strings.NewReader(arg))
	}

	var p []*compute.Expr
	var opts []compute.ParseOption
	if nl {
		opts = append(opts, compute.StopOn('\n'))
	}
	for _, in := range ins {
		for {
			// First check whether we're done with the input.
			if _, _, err := in.ReadRune(); err != nil {
				if err == io.EOF {
					break
				}
				log.Fatal(err)
			}
			in.UnreadRune()
			a, err := compute.Parse(in, opts...)
			if err != nil {
				log.Fatal(err)
			}
			p = append(p, a)
		}
	}

	for _, a := range p {
		if err := r.run(context.Background(), os.Stdout, a); err != nil {
			fmt.Println(err)
		}
	}
}

// runner applies one mode of the engine to expressions.
type runner struct {
	eng   *compute.Engine
	mode  string
	wrt   string
	json  bool
	steps bool
	echo  bool
}

func (r *runner) check() error {
	switch r.mode {
	case "simplify", "evaluate", "N", "expand", "factor", "D", "integrate":
		return nil
	}
	return fmt.Errorf("unknown mode %q", r.mode)
}

func (r *runner) run(ctx context.Context, w io.Writer, a *compute.Expr) error {
	if r.echo {
		fmt.Fprintf(w, "%s : ", r.format(a))
	}
	var (
		v   *compute.Expr
		st  []compute.RewriteStep
		err error
	)
	switch r.mode {
	case "simplify":
		v, st, err = r.eng.RewriteSteps(ctx, a, r.eng.Rules())
	case "evaluate":
		v, err = r.eng.Evaluate(ctx, a)
	case "N":
		v, err = r.eng.N(a)
	case "expand":
		v = r.eng.Expand(a)
	case "factor":
		v = r.eng.Factor(a)
	case "D":
		v, err = r.eng.D(ctx, a, r.wrt)
	case "integrate":
		v, err = r.eng.Integrate(ctx, a, r.wrt)
	}
	if err != nil {
		return err
	}
	if r.steps {
		for _, s := range st {
			fmt.Fprintf(w, "  = %s\t(%s)\n", r.format(s.Value), s.Because)
		}
	}
	fmt.Fprintln(w, r.format(v))
	return nil
}

func (r *runner) format(e *compute.Expr) string {
	if r.json {
		return e.String()
	}
	return e.Infix()
}

func loadRules(name string) (compute.RuleSet, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "opening rules")
	}
	defer f.Close()
	rs, err := compute.ReadRules(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading rules from %s", name)
	}
	return rs, nil
}

func infile(inname string, std bool) (io.RuneScanner, error) {
	var f *os.File
	switch {
	case inname != "" && inname != "-":
		in, err := os.Open(inname)
		if err != nil {
			return nil, errors.Wrap(err, "opening input")
		}
		f = in
	case inname == "-", std:
		f = os.Stdin
	}
	if f == nil {
		return nil, nil
	}
	return bufio.NewReader(f), nil
}
