package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/undoable/internal/harness"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	File     string   `json:"file"`
	Name     string   `json:"name,omitempty"`
	Steps    int      `json:"steps,omitempty"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate scenario files without running them",
		Long: `Validate scenario files against the scenario schema.

Checks YAML syntax, unknown fields, the CUE schema for steps and the
rules that tie expect fields together. Nothing is executed.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, filter, cmd)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runValidate(opts *RootOptions, paths []string, filter string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	files, err := findScenarioFiles(paths, filter)
	if err != nil {
		return failLoad(formatter, err)
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		formatter.VerboseLog("validating %s", file)
		fv := validateFile(file)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeInvalid, Message: "validation failed"}
		}
		if err := formatter.encode(resp); err != nil {
			return WrapExitError(ExitCommandError, "write output", err)
		}
	} else {
		w := formatter.Writer
		for _, fv := range result.Files {
			if fv.Valid {
				fmt.Fprintf(w, "✓ %s (%s, %d steps)\n", fv.File, fv.Name, fv.Steps)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", fv.File)
			for _, p := range fv.Problems {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

// validateFile loads one scenario and flattens its problems: every schema
// violation and every cross-field rule is reported separately.
func validateFile(file string) FileValidation {
	fv := FileValidation{File: file}
	s, err := harness.LoadScenario(file)
	if err == nil {
		fv.Valid = true
		fv.Name = s.Name
		fv.Steps = len(s.Steps)
		return fv
	}

	var schemaErr *harness.SchemaError
	if errors.As(err, &schemaErr) {
		fv.Problems = schemaErr.Problems
		return fv
	}
	if joined, ok := errors.Unwrap(err).(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			fv.Problems = append(fv.Problems, e.Error())
		}
		return fv
	}
	fv.Problems = []string{err.Error()}
	return fv
}
