package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/photo2card/hs2card/pkg"
	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
	"github.com/photo2card/hs2card/pkg/chara/format_ais"
)

func newFaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "face",
		Short: "Read or write the 59 face sliders",
	}
	cmd.AddCommand(newFaceGetCmd(), newFaceSetCmd(), newFaceFieldsCmd())
	return cmd
}

func layoutHelp() string {
	return fmt.Sprintf("Face layout chain: auto, or names from %v joined by |", format_ais.LayoutNames())
}

// faceDocument is readable back by "face set --params".
type faceDocument struct {
	Layout     string         `json:"layout" yaml:"layout"`
	Values     map[string]int `json:"chareditor_read" yaml:"chareditor_read"`
	OutOfRange map[string]int `json:"out_of_range,omitempty" yaml:"out_of_range,omitempty"`
}

func newFaceGetCmd() *cobra.Command {
	var (
		layout string
		format string
	)

	cmd := &cobra.Command{
		Use:   "get CARD",
		Short: "Print the face sliders as game values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(format)
			if err != nil {
				return err
			}
			res, err := pkg.ReadFaceWithLogger(args[0], layout, logger)
			if err != nil {
				return err
			}
			inRange, outOfRange := res.Values.SplitByRange()
			doc := faceDocument{Layout: res.Layout, Values: res.Values.Map(), OutOfRange: outOfRange}
			if ok, err := p.structured(doc); ok {
				return err
			}

			p.field("layout", p.ok(res.Layout))
			for i, name := range format_ais.FaceFieldNames {
				v := res.Values[i]
				if _, ok := inRange[name]; ok {
					p.printf("  %2d %-20s %4d\n", i, name, v)
				} else {
					p.printf("  %2d %-20s %s\n", i, name, p.bad(fmt.Sprintf("%4d", v)))
				}
			}
			if len(outOfRange) > 0 {
				p.printf("%d sliders outside [%d, %d]\n", len(outOfRange), format_ais.MinGameValue, format_ais.MaxGameValue)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&layout, "layout", format_ais.LayoutAuto, layoutHelp())
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	return cmd
}

func newFaceSetCmd() *cobra.Command {
	var (
		assignments []string
		paramsPath  string
		layout      string
		outputPath  string
		inPlace     bool
		format      string
	)

	cmd := &cobra.Command{
		Use:   "set CARD",
		Short: "Write face sliders, keeping the record size unchanged",
		Long: `Write face sliders from a parameter file and/or NAME=VALUE assignments.
Assignments override the file. Values are clamped to [-100, 200].
The output file has exactly the size of the input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(format)
			if err != nil {
				return err
			}
			if inPlace {
				if outputPath != "" {
					return errors.New("--output and --in-place are mutually exclusive")
				}
				outputPath = args[0]
			}
			if outputPath == "" {
				return errors.New("one of --output or --in-place is required")
			}

			params := format_ais.FaceParameterSet{}
			if paramsPath != "" {
				if params, err = format_ais.LoadParameterFile(paramsPath); err != nil {
					return err
				}
			}
			for _, a := range assignments {
				name, value, err := format_ais.ParseAssignment(a)
				if err != nil {
					return err
				}
				params[name] = value
			}
			if len(params) == 0 {
				return errors.New("nothing to write: use --set or --params")
			}

			res, err := pkg.WriteFaceWithLogger(args[0], outputPath, params, layout, logger)
			if err != nil {
				var uf *cerrors.UnsupportedCardFormatError
				if errors.As(err, &uf) {
					for _, a := range uf.Attempts {
						logger.Warn("⏭️ Layout rejected", "layout", a.Layout, "error", a.Err)
					}
				}
				return err
			}
			if ok, err := p.structured(res.Writes); ok {
				return err
			}

			p.field("layout", p.ok(res.Layout))
			p.field("output", outputPath)
			for _, w := range res.Writes {
				note := ""
				if w.Requested != w.Field {
					note = p.dim(" (" + w.Requested + ")")
				}
				p.printf("  %2d %-20s %4d%s\n", w.Index, w.Field, w.GameValue, note)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&assignments, "set", "s", nil, "Slider assignment NAME=VALUE (repeatable)")
	cmd.Flags().StringVarP(&paramsPath, "params", "p", "", "YAML or JSON parameter file")
	cmd.Flags().StringVar(&layout, "layout", format_ais.LayoutAuto, layoutHelp())
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output card path")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Overwrite the input card")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	return cmd
}

func newFaceFieldsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List slider names and accepted aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(format)
			if err != nil {
				return err
			}
			aliases := format_ais.FaceAliases()
			doc := struct {
				Fields  []string         `json:"fields" yaml:"fields"`
				Aliases map[string][]int `json:"aliases" yaml:"aliases"`
			}{format_ais.FaceFieldNames[:], aliases}
			if ok, err := p.structured(doc); ok {
				return err
			}

			for i, name := range format_ais.FaceFieldNames {
				p.printf("  %2d %s\n", i, name)
			}
			names := make([]string, 0, len(aliases))
			for name := range aliases {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				targets := make([]string, 0, len(aliases[name]))
				for _, i := range aliases[name] {
					targets = append(targets, format_ais.FaceFieldNames[i])
				}
				p.printf("  %s -> %v\n", p.label(name), targets)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	return cmd
}
