// Package report formats sweep plans and run reports.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/weiihann/sweeper/runner"
	"github.com/weiihann/sweeper/sweep"
)

// Supported report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WritePlan prints the parameters a sweep will iterate over. Parameters
// the base configuration already defines are marked with an asterisk.
func WritePlan(w io.Writer, plan sweep.Plan) {
	fmt.Fprintf(w, "Parameters to sweep through within section [%s]:\n", plan.Section)

	for _, s := range plan.Sections {
		if !s.Match {
			fmt.Fprintf(w, "(Ignoring section [%s])\n", s.Name)

			continue
		}

		fmt.Fprintf(w, "[%s]\n", s.Name)

		for _, p := range plan.Params {
			marker := " "
			if p.Overridden {
				marker = "*"
			}

			fmt.Fprintf(w, "  %s %s: [%s]\n", marker, p.Name, strings.Join(p.Values, ", "))
		}
	}

	fmt.Fprintln(w, "Note: parameters preceded by an asterisk also exist in the "+
		"base configuration and will be overridden by the sweep.")
	fmt.Fprintf(w, "Total number of benchmarks to run: %d\n", plan.Total)
}

// Write renders rep in the given format.
func Write(w io.Writer, format string, rep *runner.Report) error {
	switch format {
	case "", FormatText:
		return Generate(w, rep)
	case FormatJSON:
		return GenerateJSON(w, rep)
	case FormatYAML:
		return GenerateYAML(w, rep)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Generate writes a markdown table of the runs in rep.
func Generate(w io.Writer, rep *runner.Report) error {
	if rep == nil {
		return fmt.Errorf("no report to render")
	}

	fmt.Fprintln(w, "## Sweep Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sweep %s, section [%s]: %d/%d runs completed\n",
		rep.ID, rep.Section, rep.Completed, rep.Total)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Run | Parameters | Label | Elapsed | Annotated |")
	fmt.Fprintln(w, "|-----|------------|-------|---------|-----------|")

	for _, r := range rep.Runs {
		fmt.Fprintf(w, "| %d | %s | %s | %s | %s |\n",
			r.Index,
			formatCombination(r.Combination),
			r.Label,
			formatMs(r.ElapsedMs),
			formatAnnotation(r),
		)
	}

	return nil
}

// GenerateJSON writes rep as indented JSON.
func GenerateJSON(w io.Writer, rep *runner.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(rep)
}

// GenerateYAML writes rep as YAML.
func GenerateYAML(w io.Writer, rep *runner.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(rep); err != nil {
		return err
	}

	return enc.Close()
}

func formatCombination(c sweep.Combination) string {
	if len(c) == 0 {
		return "-"
	}

	return c.String()
}

func formatAnnotation(r runner.Run) string {
	switch {
	case r.Error != "":
		return "failed"
	case r.Annotated:
		return "yes"
	case r.AnnotationError != "":
		return "error"
	default:
		return "-"
	}
}

func formatMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}

	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}
