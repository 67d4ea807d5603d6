package patch

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileString(t *testing.T, src string) ([]RoutineSpec, error) {
	t.Helper()
	ctx := cuecontext.New()
	return Compile(ctx.CompileString(src))
}

func TestCompile_AllKinds(t *testing.T) {
	specs, err := compileString(t, `
tasks: {
	pulse: { kind: "metro", interval: 0.5 }
	fade: {
		kind:        "line"
		from:        0.0
		to:          1.0
		duration:    2.0
		step:        128
		restartable: true
	}
	intro: { kind: "sequence", delays: [0.0, 0.25, 0.5], start: false }
	arp:   { kind: "pattern", interval: 0.125, values: [0.0, 0.5, 1.0] }
}
`)
	require.NoError(t, err)
	require.Len(t, specs, 4)

	// Declaration order is scheduling order.
	assert.Equal(t, "pulse", specs[0].Name)
	assert.Equal(t, KindMetro, specs[0].Kind)
	assert.Equal(t, 0.5, specs[0].Interval)
	assert.True(t, specs[0].Start, "start defaults to immediate")

	fade := specs[1]
	assert.Equal(t, KindLine, fade.Kind)
	assert.Equal(t, 0.0, fade.From)
	assert.Equal(t, 1.0, fade.To)
	assert.Equal(t, 2.0, fade.Duration)
	assert.Equal(t, uint64(128), fade.StepSamples)
	assert.True(t, fade.Restartable)

	intro := specs[2]
	assert.Equal(t, KindSequence, intro.Kind)
	assert.Equal(t, []float64{0.0, 0.25, 0.5}, intro.Delays)
	assert.False(t, intro.Start, "start: false installs the task parked")

	arp := specs[3]
	assert.Equal(t, KindPattern, arp.Kind)
	assert.Equal(t, []float64{0.0, 0.5, 1.0}, arp.Values)
}

func TestCompile_LineStepDefault(t *testing.T) {
	specs, err := compileString(t, `
tasks: { fade: { kind: "line", from: 0.0, to: 1.0, duration: 1.0 } }
`)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), specs[0].StepSamples)
}

func TestCompile_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing tasks struct",
			src:  `routines: {}`,
			want: "tasks struct is required",
		},
		{
			name: "empty tasks struct",
			src:  `tasks: {}`,
			want: "at least one task is required",
		},
		{
			name: "missing kind",
			src:  `tasks: { pulse: { interval: 0.5 } }`,
			want: "kind is required",
		},
		{
			name: "unknown kind",
			src:  `tasks: { pulse: { kind: "drone" } }`,
			want: `unknown kind "drone"`,
		},
		{
			name: "metro missing interval",
			src:  `tasks: { pulse: { kind: "metro" } }`,
			want: "interval is required",
		},
		{
			name: "line missing duration",
			src:  `tasks: { fade: { kind: "line", from: 0.0, to: 1.0 } }`,
			want: "duration is required",
		},
		{
			name: "line step below one",
			src:  `tasks: { fade: { kind: "line", from: 0.0, to: 1.0, duration: 1.0, step: 0 } }`,
			want: "step must be at least 1",
		},
		{
			name: "sequence empty delays",
			src:  `tasks: { intro: { kind: "sequence", delays: [] } }`,
			want: "delays must not be empty",
		},
		{
			name: "pattern missing values",
			src:  `tasks: { arp: { kind: "pattern", interval: 0.1 } }`,
			want: "values is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileString(t, tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCompile_ErrorCarriesTaskName(t *testing.T) {
	_, err := compileString(t, `tasks: { pulse: { kind: "metro" } }`)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "pulse", ce.Task)
	assert.Equal(t, "interval", ce.Field)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
tasks: { pulse: { kind: "metro", interval: 0.25 } }
`), 0o644))

	specs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "pulse", specs[0].Name)
}

func TestLoadFile_MalformedCUE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.cue")
	require.NoError(t, os.WriteFile(path, []byte(`tasks: { pulse: { kind: } }`), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.cue"))
	assert.Error(t, err)
}
