package cli

import (
	"bytes"
	"errors"
	"testing"

	rterrors "github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	ui.DisableColors()
}

// executeCommand runs rootCmd with args and returns what it printed. Flag
// values are reset first since cobra keeps them between executions.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unknown command error",
			err:  errors.New(`unknown command "foo" for "rtop"`),
			want: true,
		},
		{
			name: "unknown flag error",
			err:  errors.New(`unknown flag: --foo`),
			want: true,
		},
		{
			name: "unknown shorthand",
			err:  errors.New(`unknown shorthand flag: 'z' in -z`),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("backend probe failed"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "standard cobra format",
			err:  errors.New(`unknown command "foo" for "rtop"`),
			want: "foo",
		},
		{
			name: "command with hyphen",
			err:  errors.New(`unknown command "show-config" for "rtop"`),
			want: "show-config",
		},
		{
			name: "no quotes returns empty",
			err:  errors.New("unknown command foo"),
			want: "",
		},
		{
			name: "single quote returns empty",
			err:  errors.New(`unknown command "foo`),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

func TestUnknownCommandSuggestsSimilar(t *testing.T) {
	_, err := executeCommand(t, "confg")
	require.Error(t, err)
	require.True(t, isUnknownCommandError(err))

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), `✗ unknown command "confg"`)
	assert.Contains(t, buf.String(), "Did you mean 'rtop config'?")
}

func TestPrintError(t *testing.T) {
	t.Run("structured", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, rterrors.New(rterrors.ErrConfig, "Unknown theme 'x'", "Valid themes: mono"))
		assert.Equal(t, "✗ Unknown theme 'x'\n\n  Valid themes: mono\n", buf.String())
	})

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, errors.New("boom"))
		assert.Equal(t, "✗ boom\n", buf.String())
	})
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{
		"interval", "proc-interval", "disk-interval", "retention", "max-samples", "backend",
		"sort", "reverse", "filter", "regex", "group", "theme", "no-mouse", "log-file",
	} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), "--%s", name)
	}
	for _, name := range []string{"config", "no-color"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "--%s", name)
	}
}

func TestCommandNames(t *testing.T) {
	assert.Subset(t, commandNames(), []string{"config", "version", "completion"})
}
