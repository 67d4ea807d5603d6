package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MayaFlux/MayaFlux-sub002/internal/patch"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "validate <patch.cue>",
		Short:         "Compile a patch and report its task declarations",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validatePatch(opts, args[0])
		},
	}
	return cmd
}

// validationReport is the JSON payload for a successful validation.
type validationReport struct {
	Patch string            `json:"patch"`
	Tasks []validationEntry `json:"tasks"`
}

type validationEntry struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Start bool   `json:"start"`
}

func validatePatch(opts *ValidateOptions, path string) error {
	out := &OutputFormatter{Format: opts.Format, Writer: os.Stdout, Verbose: opts.Verbose}

	specs, err := patch.LoadFile(path)
	if err != nil {
		_ = out.Error("MALFORMED_PATCH", err.Error())
		return WrapExitError(ExitFailure, "patch validation failed", err)
	}

	report := validationReport{Patch: path}
	for _, spec := range specs {
		report.Tasks = append(report.Tasks, validationEntry{
			Name:  spec.Name,
			Kind:  string(spec.Kind),
			Start: spec.Start,
		})
	}

	if opts.Format == "json" {
		return out.Success(report)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d task(s)\n", path, len(specs))
	for _, entry := range report.Tasks {
		marker := "parked"
		if entry.Start {
			marker = "immediate"
		}
		fmt.Fprintf(&b, "  %-20s %-10s %s\n", entry.Name, entry.Kind, marker)
	}
	fmt.Fprint(os.Stdout, b.String())
	return nil
}
