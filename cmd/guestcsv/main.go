package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ari-backend/wizard"

	"github.com/spf13/cobra"
)

var validateFlags struct {
	json bool
}

var templateFlags struct {
	output string
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "guestcsv",
	Short:        "Check guest list CSV files before importing them into an event",
	SilenceUsage: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Parse a guest list and report rows the import would reject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		ok, err := runValidate(cmd.OutOrStdout(), f, validateFlags.json)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is not ready to import", args[0])
		}
		return nil
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the example guest list",
	RunE: func(cmd *cobra.Command, args []string) error {
		if templateFlags.output == "" {
			_, err := io.WriteString(cmd.OutOrStdout(), wizard.Template())
			return err
		}
		return os.WriteFile(templateFlags.output, []byte(wizard.Template()), 0o644)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(templateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.json, "json", false, "Print the parsed guests and problems as JSON")
	templateCmd.Flags().StringVarP(&templateFlags.output, "output", "o", "", "File to write (default: stdout, e.g. "+wizard.TemplateFilename+")")
}

type rowProblem struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	Phone   string `json:"phone_number"`
	Problem string `json:"problem"`
}

type validateReport struct {
	Summary  wizard.Summary      `json:"summary"`
	Dropped  int                 `json:"dropped"`
	Problems []rowProblem        `json:"problems"`
	Guests   []wizard.GuestDraft `json:"guests"`
}

// runValidate parses r and writes a report. It returns whether every kept
// row is importable.
func runValidate(w io.Writer, r io.Reader, asJSON bool) (bool, error) {
	res, err := wizard.ParseCSV(r)
	if err != nil {
		return false, err
	}

	report := validateReport{
		Summary:  wizard.Summarize(res.Guests),
		Dropped:  res.Dropped,
		Problems: []rowProblem{},
		Guests:   res.Guests,
	}
	fields := wizard.ValidateGuests(res.Guests)
	for i, g := range res.Guests {
		if problem, ok := fields[fmt.Sprintf("guests[%d].phone_number", i)]; ok {
			report.Problems = append(report.Problems, rowProblem{
				Row:     i + 1,
				Name:    g.Name,
				Phone:   g.PhoneNumber,
				Problem: problem,
			})
		}
	}
	ready := report.Summary.Ready() && len(report.Problems) == 0

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return ready, enc.Encode(report)
	}

	fmt.Fprintf(w, "Guests: %d (valid %d, invalid %d)\n", report.Summary.Total, report.Summary.Valid, report.Summary.Invalid)
	if report.Dropped > 0 {
		fmt.Fprintf(w, "Skipped %d rows without a name or phone number\n", report.Dropped)
	}
	for _, p := range report.Problems {
		fmt.Fprintf(w, "  guest %d %q: %s (%s)\n", p.Row, p.Name, p.Problem, p.Phone)
	}
	return ready, nil
}
