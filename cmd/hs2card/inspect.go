package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photo2card/hs2card/pkg"
	"github.com/photo2card/hs2card/pkg/chara/format_ais"
)

func newInspectCmd() *cobra.Command {
	var (
		hexBytes   int
		showChunks bool
		format     string
	)

	cmd := &cobra.Command{
		Use:   "inspect CARD",
		Short: "Describe the image part and the trailing record of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(format)
			if err != nil {
				return err
			}
			logger.Debug("🔍 Inspecting card", "path", args[0])
			s, err := pkg.InspectCard(args[0], format_ais.SummaryOptions{HexPreview: hexBytes, Chunks: showChunks})
			if err != nil {
				return err
			}
			if ok, err := p.structured(s); ok {
				return err
			}
			printSummary(p, s)
			return nil
		},
	}

	cmd.Flags().IntVar(&hexBytes, "hex", 64, "Number of trailing record bytes to dump")
	cmd.Flags().BoolVar(&showChunks, "chunks", false, "List PNG chunks")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	return cmd
}

func printSummary(p *printer, s *format_ais.CardSummary) {
	p.field("file size", s.FileSize)
	p.field("trailing offset", s.TrailingOffset)
	p.field("trailing bytes", s.TrailingBytes)
	p.field("first 4 bytes", s.FirstBytesHex)
	if s.FirstUint32LE != nil {
		p.field("first uint32 (LE)", *s.FirstUint32LE)
	}
	if s.HexPreview != "" {
		p.field("hex preview", s.HexPreview)
	}

	for _, c := range s.Chunks {
		line := fmt.Sprintf("%s @%d len=%d", c.Type, c.Offset, c.Length)
		if c.Keyword != "" {
			line += " keyword=" + c.Keyword
		}
		p.printf("  %s %s\n", p.mark(c.CRCValid), line)
	}

	if s.Header != nil {
		h := s.Header
		p.field("product tag", h.ProductTag)
		p.field("marker", h.Marker)
		p.field("version", h.Version)
		p.field("language", h.Language)
		p.field("user id", h.UserID)
		p.field("data id", h.DataID)
		p.field("block table length", h.BlockTableLength)
		p.field("base position", h.BasePosition)
	} else if s.HeaderError != "" {
		p.field("header", p.bad(s.HeaderError))
	}

	if s.BlockTableError != "" {
		p.field("block table", p.bad(s.BlockTableError))
	}
	for _, b := range s.Blocks {
		p.printf("  %-12s %s pos=%d size=%d\n", b.Name, p.dim(b.Version), b.Pos, b.Size)
	}

	if s.FaceLayout != "" {
		p.field("face layout", p.ok(s.FaceLayout))
	} else {
		p.field("face layout", p.bad(s.FaceError))
	}
	if len(s.ExtensionGUIDs) > 0 {
		p.field("extensions", s.ExtensionGUIDs)
	}
}

type blockView struct {
	format_ais.BlockDescriptor `yaml:",inline"`
	// Start is the record offset of the block, reported even when out of range.
	Start   uint64 `json:"start" yaml:"start"`
	InRange bool   `json:"in_range" yaml:"in_range"`
}

func blockViews(base int, blocks []format_ais.BlockDescriptor, recordLen int) []blockView {
	views := make([]blockView, 0, len(blocks))
	for _, b := range blocks {
		_, _, err := b.Span(base, recordLen)
		views = append(views, blockView{
			BlockDescriptor: b,
			Start:           uint64(base) + b.Pos,
			InRange:         err == nil,
		})
	}
	return views
}

func newBlocksCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "blocks CARD",
		Short: "List the blocks named by the record's block table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(format)
			if err != nil {
				return err
			}
			reader := format_ais.NewReaderWithLogger(args[0], logger)
			header, table, err := reader.BlockTable()
			if err != nil {
				return err
			}
			record, err := reader.Record()
			if err != nil {
				return err
			}

			views := blockViews(header.BasePosition, table.Blocks, len(record))
			if ok, err := p.structured(views); ok {
				return err
			}

			p.field("base position", header.BasePosition)
			for _, v := range views {
				p.printf("  %s %-12s %s pos=%d size=%d start=%d\n",
					p.mark(v.InRange), v.Name, p.dim(v.Version), v.Pos, v.Size, v.Start)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	return cmd
}
