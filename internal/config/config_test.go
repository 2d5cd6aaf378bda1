package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/simulation"
	"github.com/vk/gridopt/internal/testutil"
)

func TestLoad(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"build.hcl": `
name              = "weekly"
scenarios         = 2
border_management = "CYCLE"
problem_type      = "xpansion_merged"
output_dir        = "out"
solve             = true
export_lp         = true

block {
  id        = 3
  timesteps = concat(range(0, 3), [10])
}
`,
		"nested/log.hcl": `
log {
  level  = "debug"
  format = "json"
}
`,
	})

	cfg, err := Load(context.Background(), dir)
	require.NoError(t, err)

	want := &Config{
		Name:             "weekly",
		Scenarios:        2,
		BorderManagement: simulation.BorderCycle,
		ProblemType:      simulation.ProblemXpansionMerged,
		OutputDir:        "out",
		Solve:            true,
		ExportLP:         true,
		Block:            simulation.TimeBlock{ID: 3, Timesteps: []int{0, 1, 2, 10}},
		LogLevel:         "debug",
		LogFormat:        "json",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"build.hcl": "block {\n  timesteps = [0, 1]\n}\n",
	})

	cfg, err := Load(context.Background(), filepath.Join(dir, "build.hcl"))
	require.NoError(t, err)
	assert.Equal(t, simulation.DefaultProblemName, cfg.Name)
	assert.Equal(t, 1, cfg.Scenarios)
	assert.Equal(t, simulation.BorderCycle, cfg.BorderManagement)
	assert.Equal(t, simulation.ProblemSimulator, cfg.ProblemType)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.False(t, cfg.Solve)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "syntax",
			content: "block {",
			want:    []string{"failed to parse"},
		},
		{
			name:    "timesteps are not numbers",
			content: "block {\n  timesteps = [\"a\"]\n}\n",
			want:    []string{"expected numbers"},
		},
		{
			name:    "timesteps are not a list",
			content: "block {\n  timesteps = 4\n}\n",
			want:    []string{"expected a list of numbers"},
		},
		{
			name: "every validation problem is reported",
			content: `
scenarios         = 0
border_management = "WRAP"
problem_type      = "benders"
block {
  timesteps = [1, 1, -2]
}
log {
  level = "trace"
}
`,
			want: []string{
				"scenarios: must be positive",
				`border_management: unknown value "WRAP"`,
				`problem_type: unknown value "benders"`,
				"duplicate timestep 1",
				"negative timestep -2",
				`log.level: unknown value "trace"`,
			},
		},
		{
			name:    "missing block",
			content: `name = "x"`,
			want:    []string{"a block is required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.WriteFiles(t, map[string]string{"build.hcl": tt.content})
			_, err := Load(context.Background(), dir)
			require.ErrorIs(t, err, errs.ErrConfiguration)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}

	t.Run("no files", func(t *testing.T) {
		_, err := Load(context.Background(), t.TempDir())
		require.ErrorIs(t, err, errs.ErrConfiguration)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
		require.ErrorIs(t, err, errs.ErrConfiguration)
	})
}
