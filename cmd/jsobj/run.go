package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"com.github.sebastianobarrera.modeledjs/objmodel"
	"com.github.sebastianobarrera.modeledjs/objmodel/interp"
)

type runOptions struct {
	dump    []string
	format  string
	depth   int
	strict  bool
	showAST bool
}

func newRunCmd(ctx context.Context, input *Input) *cobra.Command {
	opts := new(runOptions)
	cmd := &cobra.Command{
		Use:   "run FILE...",
		Short: "Run scripts in one realm, then print snapshots of global objects.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			run := input.cfg.Run
			if flags.Changed("format") {
				run.Format = opts.format
			}
			if flags.Changed("depth") {
				run.Depth = opts.depth
			}
			if flags.Changed("strict") {
				run.Strict = opts.strict
			}
			return runScripts(ctx, cmd.OutOrStdout(), input.cfg, run, opts, args)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.dump, "dump", "d", nil, "print a snapshot of this global after the scripts ran (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "yaml", "snapshot format: yaml or json")
	cmd.Flags().IntVar(&opts.depth, "depth", objmodel.DefaultSnapshotDepth, "levels of nested objects to expand in snapshots")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "run every script as strict mode code")
	cmd.Flags().BoolVar(&opts.showAST, "show-ast", false, "print the syntax tree of each script before running it")
	return cmd
}

func runScripts(ctx context.Context, w io.Writer, cfg Config, run RunConfig, opts *runOptions, paths []string) error {
	vm := interp.NewVM(
		interp.WithLogger(log.StandardLogger()),
		interp.WithStrict(run.Strict),
		interp.WithOutput(w),
		interp.WithRealmOptions(objmodel.WithMaxCallDepth(cfg.MaxCallDepth)),
	)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.showAST {
			if err := printAST(w, path); err != nil {
				return err
			}
		}

		value, err := vm.RunScriptFile(path)
		if err != nil {
			log.WithField("file", path).Debug("script failed")
			return err
		}
		log.WithFields(log.Fields{"file": path, "type": objmodel.TypeOf(value)}).Debug("script completed")
	}

	for _, name := range opts.dump {
		snap, err := dumpGlobal(vm, name, run.Depth)
		if err != nil {
			return err
		}
		if err := writeSnapshot(w, run.Format, name, snap); err != nil {
			return err
		}
	}
	return nil
}

func printAST(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	return interp.PrintAST(w, path, f)
}

func dumpGlobal(vm *interp.VM, name string, depth int) (*objmodel.Snapshot, error) {
	global := vm.Global()
	value, err := global.Get(objmodel.StringKey(name), global)
	if err != nil {
		return nil, err
	}
	obj, isObj := value.(*objmodel.Object)
	if !isObj {
		return nil, errors.Errorf("global %s is %s, not an object", name, objmodel.TypeOf(value))
	}
	if depth == 0 {
		// zero would mean the default depth
		depth = -1
	}
	return objmodel.Materialize(obj, objmodel.MaterializeOptions{MaxDepth: depth})
}

func writeSnapshot(w io.Writer, format string, name string, snap *objmodel.Snapshot) error {
	switch format {
	case "yaml":
		fmt.Fprintf(w, "# %s\n", name)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return errors.Wrap(err, "encoding snapshot")
		}
		return enc.Close()

	case "json":
		raw, err := json.MarshalIndent(map[string]*objmodel.Snapshot{name: snap}, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding snapshot")
		}
		_, err = fmt.Fprintf(w, "%s\n", raw)
		return err

	default:
		return errors.Errorf("unknown snapshot format %q", format)
	}
}
