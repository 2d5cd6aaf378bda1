package config

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/gridopt/internal/ctxlog"
	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/fsutil"
)

// fileRoot is the top level of a build file.
type fileRoot struct {
	Name             string     `hcl:"name,optional"`
	Scenarios        *int       `hcl:"scenarios,optional"`
	BorderManagement string     `hcl:"border_management,optional"`
	ProblemType      string     `hcl:"problem_type,optional"`
	OutputDir        string     `hcl:"output_dir,optional"`
	Solve            bool       `hcl:"solve,optional"`
	ExportLP         bool       `hcl:"export_lp,optional"`
	Block            *blockFile `hcl:"block,block"`
	Log              *logFile   `hcl:"log,block"`
}

type blockFile struct {
	ID        int            `hcl:"id,optional"`
	Timesteps hcl.Expression `hcl:"timesteps"`
}

type logFile struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// evalContext exposes the functions timestep expressions may call.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"range":  stdlib.RangeFunc,
			"concat": stdlib.ConcatFunc,
		},
	}
}

// Load reads every build file found at paths and returns the validated
// configuration. Directories are searched recursively for .hcl files; all
// files are merged and an attribute set twice is an error.
func Load(ctx context.Context, paths ...string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Config loader started.", "path_count", len(paths))

	files, err := findHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errs.Configuration("no build file found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var parsed []*hcl.File
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: failed to parse HCL file %s: %w", errs.ErrConfiguration, file, diags)
		}
		parsed = append(parsed, f)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hcl.MergeFiles(parsed), nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode build file: %w", errs.ErrConfiguration, diags)
	}

	raw, err := translate(&root)
	if err != nil {
		return nil, err
	}
	cfg, err := NewConfig(raw)
	if err != nil {
		return nil, err
	}
	logger.Debug("Config loaded.", "name", cfg.Name, "problem_type", cfg.ProblemType, "block_length", len(cfg.Block.Timesteps))
	return cfg, nil
}

func translate(root *fileRoot) (Raw, error) {
	raw := Raw{
		Name:             root.Name,
		Scenarios:        root.Scenarios,
		BorderManagement: root.BorderManagement,
		ProblemType:      root.ProblemType,
		OutputDir:        root.OutputDir,
		Solve:            root.Solve,
		ExportLP:         root.ExportLP,
	}
	if root.Log != nil {
		raw.LogLevel, raw.LogFormat = root.Log.Level, root.Log.Format
	}
	if root.Block == nil {
		return raw, nil
	}

	raw.HasBlock = true
	raw.BlockID = root.Block.ID
	timesteps, err := evaluateTimesteps(root.Block.Timesteps)
	if err != nil {
		return Raw{}, err
	}
	raw.Timesteps = timesteps
	return raw, nil
}

// evaluateTimesteps evaluates a list-of-numbers expression into timesteps.
func evaluateTimesteps(expr hcl.Expression) ([]int, error) {
	val, diags := expr.Value(evalContext())
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: block.timesteps: %w", errs.ErrConfiguration, diags)
	}
	if val.IsNull() || !val.IsWhollyKnown() {
		return nil, errs.Configuration("block.timesteps: value must be known and not null")
	}
	ty := val.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return nil, errs.Configuration("block.timesteps: expected a list of numbers, got %s", ty.FriendlyName())
	}

	var out []int
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		if v.Type() != cty.Number {
			return nil, errs.Configuration("block.timesteps: expected numbers, got %s", v.Type().FriendlyName())
		}
		var t int
		if err := gocty.FromCtyValue(v, &t); err != nil {
			return nil, fmt.Errorf("%w: block.timesteps: %w", errs.ErrConfiguration, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// findHCLFiles walks all given paths and returns a sorted, deduplicated
// list of .hcl files.
func findHCLFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var all []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: error accessing path %s: %w", errs.ErrConfiguration, path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("%w: error walking %s: %w", errs.ErrConfiguration, path, err)
		}
		for _, f := range files {
			add(f)
		}
	}
	sort.Strings(all)
	return all, nil
}
