// Package driver enumerates Jack translation units, orchestrates one
// Compiler instance per file, and turns the result into diagnostics,
// logging, and an exit code. It is a thin layer kept deliberately separate
// from the compiler core: file-system traversal that enumerates inputs and
// dispatches one file at a time, specified only by the interfaces the core
// consumes and produces.
package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"nand2tetris.dev/jackc/internal/diag"
	"nand2tetris.dev/jackc/internal/jack"
	"nand2tetris.dev/jackc/internal/vmcode"
	"nand2tetris.dev/jackc/internal/vmverify"
)

// Options controls driver behavior, mirroring the cmd/jackc flags.
type Options struct {
	Stdlib    bool // enable the Standard Library ABI forward-reference check
	Debug     bool // dump tokens/symbol tables for every compiled file
	KeepGoing bool // continue past a failing file when compiling a directory
}

// Driver compiles a set of input paths (files or directories), one
// translation unit at a time, in filesystem enumeration order.
type Driver struct {
	opts Options
	log  *logrus.Logger
}

// New returns a Driver that logs to log (or a default stderr logger if nil).
func New(opts Options, log *logrus.Logger) *Driver {
	if log == nil {
		log = logrus.New()
	}
	return &Driver{opts: opts, log: log}
}

// Run compiles every .jack file discovered under paths. It returns the
// number of files that failed to compile and an error aggregating all
// per-file failures (nil if every file compiled). Every file is attempted
// regardless of earlier failures when KeepGoing is set; the aggregated
// error is what ultimately determines the process exit code.
func (d *Driver) Run(paths []string) (failed int, err error) {
	units, walkErr := discover(paths)
	if walkErr != nil {
		return 0, walkErr
	}
	d.log.Infof("discovered %d translation unit(s)", len(units))

	// Without Stdlib, knownClasses stays nil and every call to another class
	// is emitted as a forward reference with no existence check.
	var knownClasses map[string]bool
	if d.opts.Stdlib {
		knownClasses = make(map[string]bool, len(units))
		for _, u := range units {
			knownClasses[classNameOf(u)] = true
		}
	}

	var agg *multierror.Error
	for _, unit := range units {
		if compErr := d.compileOne(unit, knownClasses); compErr != nil {
			failed++
			fmt.Fprintln(os.Stderr, compErr.Error())
			d.log.WithError(compErr).Error(compErr.Error())
			agg = multierror.Append(agg, compErr)
			if !d.opts.KeepGoing {
				break
			}
			continue
		}
		d.log.Infof("compiled %s -> %s", unit, vmSiblingPath(unit))
	}

	d.log.Infof("completed with %d failure(s)", failed)
	if agg != nil {
		return failed, agg.ErrorOrNil()
	}
	return failed, nil
}

func (d *Driver) compileOne(path string, knownClasses map[string]bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return diag.New(path, 0, diag.IO, "unable to open input file: %s", err)
	}

	out := vmSiblingPath(path)
	em := vmcode.NewEmitter(out)

	c := jack.NewCompiler(path, src, em, knownClasses, d.opts.Stdlib)
	if d.opts.Debug {
		c.WithDebug(os.Stderr)
	}

	if err := c.Compile(); err != nil {
		return err
	}

	if err := vmverify.Lines(em.Lines()); err != nil {
		return diag.New(path, 0, diag.Verification, "%s", err)
	}

	if err := em.Close(); err != nil {
		return diag.New(path, 0, diag.IO, "unable to write output file: %s", err)
	}
	return nil
}

// discover walks paths, collecting every .jack file found. A bare file path
// ending in .jack is accepted directly, any other bare file is ignored, and a
// directory is walked recursively.
func discover(paths []string) ([]string, error) {
	var units []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, diag.New(p, 0, diag.IO, "unable to stat input path: %s", err)
		}
		if !info.IsDir() {
			if filepath.Ext(p) == ".jack" {
				units = append(units, p)
			}
			continue
		}
		walkErr := filepath.Walk(p, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || filepath.Ext(path) != ".jack" {
				return nil
			}
			units = append(units, path)
			return nil
		})
		if walkErr != nil {
			return nil, diag.New(p, 0, diag.IO, "unable to walk input directory: %s", walkErr)
		}
	}
	return units, nil
}

func vmSiblingPath(jackPath string) string {
	ext := filepath.Ext(jackPath)
	return strings.TrimSuffix(jackPath, ext) + ".vm"
}

func classNameOf(jackPath string) string {
	base := filepath.Base(jackPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
