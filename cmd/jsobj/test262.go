package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"com.github.sebastianobarrera.modeledjs/objmodel"
	"com.github.sebastianobarrera.modeledjs/objmodel/interp"
	tsparser "com.github.sebastianobarrera.modeledjs/objmodel/ts-parser"
)

var ErrCaseDisabledInMetadata = errors.New("testcase disabled in metadata")

type test262Options struct {
	root       string
	single     string
	workers    int
	parseOnly  bool
	showAST    bool
	cpuProfile string
}

func newTest262Cmd(ctx context.Context, input *Input) *cobra.Command {
	opts := new(test262Options)
	cmd := &cobra.Command{
		Use:   "test262",
		Short: "Run test262 conformance cases, each in strict and sloppy mode.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := input.cfg.Test262
			flags := cmd.Flags()
			if flags.Changed("root") {
				cfg.Root = opts.root
			}
			if flags.Changed("workers") {
				cfg.Workers = opts.workers
			}
			if cfg.Root == "" {
				return errors.New("the test262 checkout is required: --root or test262.root in the config")
			}

			if opts.cpuProfile != "" {
				cpuf, err := os.Create(opts.cpuProfile)
				if err != nil {
					return errors.Wrap(err, "creating cpu profile")
				}
				defer cpuf.Close()
				if err := pprof.StartCPUProfile(cpuf); err != nil {
					return errors.Wrap(err, "starting cpu profile")
				}
				defer pprof.StopCPUProfile()
			}

			runner := &caseRunner{
				root:         cfg.Root,
				harness:      cfg.Harness,
				parseOnly:    opts.parseOnly,
				maxCallDepth: input.cfg.MaxCallDepth,
			}

			if opts.single != "" {
				if opts.showAST {
					if err := printAST(cmd.OutOrStdout(), runner.abs(opts.single)); err != nil {
						return err
					}
				}
				log.Infof("running single test case: %s", opts.single)
				errStrict, errSloppy := runner.runTestCase(ctx, opts.single)
				fmt.Fprintf(cmd.OutOrStdout(), "strict: %v\nsloppy: %v\n", errStrict, errSloppy)
				return nil
			}

			cases, err := readCaseList(cfg.CaseList)
			if err != nil {
				return err
			}
			result := runner.runMany(ctx, cases, cfg.Workers)
			result.Report(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.root, "root", "", "path to the test262 repository")
	cmd.Flags().StringVar(&opts.single, "single", "", "run this specific testcase (path relative to the test262 root)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "cases run in parallel")
	cmd.Flags().BoolVar(&opts.parseOnly, "parse-only", false, "stop at parsing; a case succeeds if it parses as expected")
	cmd.Flags().BoolVar(&opts.showAST, "show-ast", false, "print the syntax tree of the --single case")
	cmd.Flags().StringVar(&opts.cpuProfile, "cpu-profile", "", "write a CPU profile to this file")
	return cmd
}

type caseList struct {
	TestCases []string `json:"testCases"`
}

func readCaseList(filename string) ([]string, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading case list")
	}
	var list caseList
	if err := json.Unmarshal(buf, &list); err != nil {
		return nil, errors.Wrapf(err, "parsing case list %s", filename)
	}
	return list.TestCases, nil
}

type caseRunner struct {
	root         string
	harness      []string
	parseOnly    bool
	maxCallDepth int
}

func (cr *caseRunner) abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(cr.root, rel)
}

type RunManyResult struct {
	Cases []CaseOutcome
}

type CaseOutcome struct {
	Path       string
	StrictMode bool

	Success bool
	Error   error
}

func (co CaseOutcome) mode() string {
	if co.StrictMode {
		return "strict"
	}
	return "sloppy"
}

func newOutcome(path string, strict bool, err error) CaseOutcome {
	return CaseOutcome{
		Path:       path,
		StrictMode: strict,
		Success:    err == nil || errors.Is(err, ErrCaseDisabledInMetadata),
		Error:      err,
	}
}

// runMany runs the cases on a fixed number of workers. Every case gets its
// own VM, so no realm is shared between goroutines.
func (cr *caseRunner) runMany(ctx context.Context, testCases []string, workers int) (result RunManyResult) {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	sink := make(chan CaseOutcome)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for relPath := range jobs {
				errStrict, errSloppy := cr.runTestCase(ctx, relPath)
				sink <- newOutcome(relPath, true, errStrict)
				sink <- newOutcome(relPath, false, errSloppy)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, relPath := range testCases {
			select {
			case jobs <- relPath:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(sink)
	}()

	result.Cases = make([]CaseOutcome, 0, len(testCases)*2)
	for co := range sink {
		result.Cases = append(result.Cases, co)
	}
	sort.SliceStable(result.Cases, func(i, j int) bool {
		a, b := result.Cases[i], result.Cases[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.StrictMode && !b.StrictMode
	})
	return
}

func (result RunManyResult) Report(w io.Writer) {
	var successes, failures []CaseOutcome
	for _, co := range result.Cases {
		if co.Success {
			successes = append(successes, co)
		} else {
			failures = append(failures, co)
		}
	}

	fmt.Fprintf(w, "group SUCCESSES %d\n", len(successes))
	for _, co := range successes {
		fmt.Fprintf(w, "case\t%s\t%s\n", co.Path, co.mode())
	}

	fmt.Fprintf(w, "group FAILURES %d\n", len(failures))
	for _, co := range failures {
		fmt.Fprintf(w, "case\t%s\t%s\n", co.Path, co.mode())

		var errLines []string
		if co.Error != nil {
			errLines = strings.Split(co.Error.Error(), "\n")
		}
		for ndx, line := range errLines {
			if ndx == 0 {
				fmt.Fprintf(w, "error\t\t%s\n", line)
			} else {
				fmt.Fprintf(w, "ectx\t\t%s\n", line)
			}
		}
	}

	fmt.Fprintf(w, "summary\ttotal: %d; %d successes; %d failures\n", len(result.Cases), len(successes), len(failures))
}

func (cr *caseRunner) runTestCase(ctx context.Context, testCase string) (errStrict, errSloppy error) {
	textBytes, err := os.ReadFile(cr.abs(testCase))
	if err != nil {
		err = errors.Wrap(err, "reading testcase")
		return err, err
	}

	mt, err := parseMetadata(textBytes)
	if err != nil {
		err = errors.Wrap(err, "while parsing metadata")
		return err, err
	}

	if mt.NoStrict || mt.Raw {
		errStrict = ErrCaseDisabledInMetadata
	} else {
		errStrict = cr.runInMode(ctx, testCase, textBytes, mt, true)
	}
	if mt.OnlyStrict {
		errSloppy = ErrCaseDisabledInMetadata
	} else {
		errSloppy = cr.runInMode(ctx, testCase, textBytes, mt, false)
	}
	return
}

func (cr *caseRunner) runInMode(ctx context.Context, testCase string, text []byte, mt Metadata, strict bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.WithFields(log.Fields{"case": testCase, "strict": strict}).Debug("running")

	logger := log.StandardLogger().WithField("case", testCase)
	vm := interp.NewVM(
		interp.WithLogger(logger),
		interp.WithOutput(io.Discard),
		interp.WithRealmOptions(objmodel.WithMaxCallDepth(cr.maxCallDepth)),
	)

	var preamble []string
	if !mt.Raw {
		preamble = append(preamble, cr.harness...)
		for _, include := range mt.Includes {
			preamble = append(preamble, filepath.Join("harness", include))
		}
	}
	for _, rel := range preamble {
		src, err := os.ReadFile(cr.abs(rel))
		if err != nil {
			return errors.Wrap(err, "reading harness file")
		}
		if err := cr.runSource(ctx, vm, cr.abs(rel), src); err != nil {
			return errors.Wrapf(err, "harness file %s", rel)
		}
	}

	src := text
	if strict {
		src = append([]byte(`"use strict";`), text...)
	}
	err := cr.runSource(ctx, vm, cr.abs(testCase), src)
	return checkNegative(mt, err)
}

func (cr *caseRunner) runSource(ctx context.Context, vm *interp.VM, path string, src []byte) error {
	if cr.parseOnly {
		return tsparser.ParseBytes(ctx, path, src)
	}
	_, err := vm.RunScriptReader(path, bytes.NewReader(src))
	return err
}

// checkNegative turns the outcome of a case into its verdict: a case with
// negative metadata passes only when the expected error was raised in the
// expected phase.
func checkNegative(mt Metadata, err error) error {
	if mt.NegativePhase == "" {
		return err
	}
	if err == nil {
		return errors.Errorf("expected %s error in phase %s, but none were raised", mt.NegativeType, mt.NegativePhase)
	}

	var synErr *interp.SyntaxError
	var tsErr *tsparser.SyntaxError
	isEarly := errors.As(err, &synErr) || errors.As(err, &tsErr)

	switch mt.NegativePhase {
	case "parse":
		if !isEarly {
			return errors.Wrapf(err, "expected a parse-time %s", mt.NegativeType)
		}
		return nil

	case "runtime":
		thrown, isThrow := objmodel.ThrownValue(err)
		if !isThrow {
			return errors.Wrapf(err, "expected a thrown %s", mt.NegativeType)
		}
		if name := errorName(thrown); name != mt.NegativeType {
			return errors.Errorf("expected a thrown %s, got %s", mt.NegativeType, name)
		}
		return nil

	default:
		return errors.Errorf("unsupported negative phase %q", mt.NegativePhase)
	}
}

// errorName is the name of the constructor of a thrown error.
func errorName(v objmodel.Value) string {
	obj, isObj := v.(*objmodel.Object)
	if !isObj {
		return objmodel.TypeOf(v)
	}
	cons, err := obj.Get(objmodel.StringKey("constructor"), obj)
	if err != nil {
		return ""
	}
	if consObj, isObj := cons.(*objmodel.Object); isObj {
		return consObj.FunctionName()
	}
	return ""
}

type Metadata struct {
	OnlyStrict    bool
	NoStrict      bool
	Raw           bool
	Includes      []string
	NegativePhase string
	NegativeType  string
}

func parseMetadata(text []byte) (mt Metadata, err error) {
	startNdx := bytes.Index(text, []byte("/*---"))
	if startNdx == -1 {
		return
	}

	relEnd := bytes.Index(text[startNdx:], []byte("---*/"))
	if relEnd == -1 {
		err = errors.Errorf("invalid source code: unterminated metadata comment (started with /*--- at offset %d)", startNdx)
		return
	}
	metadataYaml := text[startNdx+5 : startNdx+relEnd]

	var metadataRaw struct {
		Flags    []string
		Includes []string
		Negative *struct {
			Phase string
			Type  string
		}
	}
	if err = yaml.Unmarshal(metadataYaml, &metadataRaw); err != nil {
		return
	}

	for _, flag := range metadataRaw.Flags {
		switch flag {
		case "noStrict":
			mt.NoStrict = true
		case "onlyStrict":
			mt.OnlyStrict = true
		case "raw":
			mt.Raw = true
		}
	}

	mt.Includes = metadataRaw.Includes
	if metadataRaw.Negative != nil {
		mt.NegativePhase = metadataRaw.Negative.Phase
		mt.NegativeType = metadataRaw.Negative.Type
	}
	return
}
