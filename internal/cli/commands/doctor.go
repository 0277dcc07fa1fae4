package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
	"github.com/forduniver/wald/internal/core/doctor"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Find drift between the workspace manifest, the bare-repo registry, and the on-disk baums",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair every fixable issue found")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	co := newCollaborators()
	ctx := context.Background()

	d := doctor.NewDoctor(co.driver, co.store)
	report, err := d.Check(ctx, root)
	if err != nil {
		return wrapExit(err)
	}

	if ui.GlobalFormatter.IsJSON() {
		out := doctorJSONReport{Issues: report.Issues}
		if doctorFix {
			for _, o := range d.Fix(ctx, root, report.Issues) {
				entry := fixOutcomeJSON{Issue: o.Issue}
				if o.Err != nil {
					entry.Error = o.Err.Error()
				}
				out.FixOutcomes = append(out.FixOutcomes, entry)
			}
		}
		return ui.GlobalFormatter.Output(out)
	}

	ui.PrintDoctorReport(report)
	if doctorFix {
		outcomes := d.Fix(ctx, root, report.Issues)
		ui.PrintFixOutcomes(outcomes)
	}
	return nil
}

// doctorJSONReport is the --format json payload for doctor.
type doctorJSONReport struct {
	Issues      []doctor.Issue   `json:"issues"`
	FixOutcomes []fixOutcomeJSON `json:"fix_outcomes,omitempty"`
}

// fixOutcomeJSON mirrors doctor.FixOutcome with its error flattened to a
// string, since error values don't marshal meaningfully on their own.
type fixOutcomeJSON struct {
	Issue doctor.Issue `json:"issue"`
	Error string       `json:"error,omitempty"`
}
