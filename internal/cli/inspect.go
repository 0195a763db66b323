package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/esse/relayproxy/internal/asserter"
	"github.com/esse/relayproxy/internal/reporter"
	"github.com/esse/relayproxy/internal/snapshot"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newInspectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <snapshot-file>",
		Short: "Print a snapshot file's fingerprints and record counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := snapshot.Decode(args[0])
			if err != nil {
				return fmt.Errorf("reading snapshot: %w", err)
			}

			switch format {
			case "json":
				return printJSON(cmd, records)
			case "yaml":
				return printYAML(cmd, records)
			default:
				printSummary(cmd, records)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, yaml")
	return cmd
}

func printSummary(cmd *cobra.Command, records snapshot.Records) {
	fingerprints := make([]string, 0, len(records))
	for fp := range records {
		fingerprints = append(fingerprints, fp)
	}
	sort.Strings(fingerprints)

	cmd.Printf("%-40s %s\n", "FINGERPRINT", "RECORDS")
	for _, fp := range fingerprints {
		cmd.Printf("%-40s %d\n", fp, len(records[fp]))
	}
	cmd.Printf("\nTotal: %d fingerprint(s)\n", len(records))
}

func printJSON(cmd *cobra.Command, records snapshot.Records) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling json: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printYAML(cmd *cobra.Command, records snapshot.Records) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling yaml: %w", err)
	}
	cmd.Print(string(data))
	return nil
}

func newDiffCmd() *cobra.Command {
	var format string
	var ignoreFields []string

	cmd := &cobra.Command{
		Use:   "diff <old-snapshot> <new-snapshot>",
		Short: "Compare two snapshot files fingerprint by fingerprint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldRecords, err := snapshot.Decode(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			newRecords, err := snapshot.Decode(args[1])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[1], err)
			}

			opts := &asserter.Options{IgnoreFields: ignoreFields}
			results := diffSnapshots(oldRecords, newRecords, opts)

			output, err := reporter.Report(results, reporter.Format(format))
			if err != nil {
				return fmt.Errorf("generating report: %w", err)
			}
			cmd.Print(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, junit, tap")
	cmd.Flags().StringSliceVar(&ignoreFields, "ignore", nil, "Dotted field paths to ignore (supports *.field wildcards)")

	return cmd
}

// diffSnapshots compares every fingerprint present in oldRecords
// against its counterpart in newRecords, index by index. A fingerprint
// missing from newRecords, or an index beyond its sequence length, is
// reported as an error result rather than a diff.
func diffSnapshots(oldRecords, newRecords snapshot.Records, opts *asserter.Options) []reporter.Result {
	fingerprints := make([]string, 0, len(oldRecords))
	for fp := range oldRecords {
		fingerprints = append(fingerprints, fp)
	}
	sort.Strings(fingerprints)

	var results []reporter.Result
	for _, fp := range fingerprints {
		oldSeq := oldRecords[fp]
		newSeq, ok := newRecords[fp]
		for i, oldRec := range oldSeq {
			if !ok || i >= len(newSeq) {
				results = append(results, reporter.Result{
					Fingerprint: fp,
					Index:       i,
					Error:       "no corresponding record in new snapshot",
				})
				continue
			}
			diffs := asserter.CompareRecords(oldRec, newSeq[i], opts)
			results = append(results, reporter.Result{
				Fingerprint: fp,
				Index:       i,
				Passed:      len(diffs) == 0,
				Diffs:       diffs,
			})
		}
	}
	return results
}
