package main

import (
	"github.com/spf13/cobra"

	"github.com/photo2card/hs2card/pkg"
)

func newValidateCmd() *cobra.Command {
	var (
		deep   bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "validate CARD",
		Short: "Check the record header field by field",
		Long: `Walk the trailing record header and report every field check.
With --deep the block table, each block's bounds and the Custom block
round trip are checked too. Exits non-zero when any check fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(format)
			if err != nil {
				return err
			}
			report, verr := pkg.ValidateCardWithLogger(args[0], deep, logger)
			if report == nil {
				return verr
			}
			if ok, err := p.structured(report); ok {
				if err != nil {
					return err
				}
				return verr
			}

			for _, c := range report.Checks {
				p.printf("%s %-26s %s", p.mark(c.Passed), c.Field, c.Value)
				if !c.Passed {
					p.printf("  %s", p.dim("expected "+c.Expect))
				}
				p.printf("\n")
			}
			if report.Error != "" {
				p.printf("%s %s\n", p.bad("stopped:"), report.Error)
			}
			if report.OK {
				p.printf("%s base position %d, record length %d\n", p.ok("valid"), report.BasePosition, report.RecordLength)
			}
			return verr
		},
	}

	cmd.Flags().BoolVar(&deep, "deep", false, "Also check the block table and blocks")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	return cmd
}
