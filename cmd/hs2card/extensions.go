package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/photo2card/hs2card/pkg"
	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
	"github.com/photo2card/hs2card/pkg/chara/format_ais"
)

type extensionView struct {
	Plugins   []format_ais.PluginData    `json:"plugins" yaml:"plugins"`
	Bones     []format_ais.BoneModifier  `json:"bone_modifiers,omitempty" yaml:"bone_modifiers,omitempty"`
	Heuristic *format_ais.HeuristicMatch `json:"heuristic,omitempty" yaml:"heuristic,omitempty"`
}

func newExtensionsCmd() *cobra.Command {
	var (
		heuristic bool
		faceOnly  bool
		format    string
	)

	cmd := &cobra.Command{
		Use:   "extensions CARD",
		Short: "List plugin extension data and decode bone modifiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(format)
			if err != nil {
				return err
			}

			view := extensionView{}
			ext, err := pkg.CardExtensions(args[0])
			switch {
			case err == nil:
				view.Plugins = ext.Plugins
				if abm, ok := ext.Find(format_ais.BoneModifierGUID); ok {
					bones, err := abm.BoneModifiers()
					if err != nil {
						logger.Warn("⚠️ Bone modifier data not decodable", "error", err)
					}
					view.Bones = bones
				}
			case heuristic && (errors.Is(err, cerrors.ErrBlockNotFound) || errors.Is(err, cerrors.ErrHeaderField)):
				logger.Info("🔎 No extension block, scanning record", "path", args[0])
			default:
				return err
			}

			if heuristic && view.Bones == nil {
				m, ok, err := format_ais.NewReaderWithLogger(args[0], logger).LocateBoneModifiers()
				if err != nil {
					return err
				}
				if ok {
					view.Heuristic = m
					view.Bones = m.Modifiers
				}
			}
			if faceOnly {
				view.Bones = faceBones(view.Bones)
			}

			if ok, err := p.structured(view); ok {
				return err
			}
			for _, plugin := range view.Plugins {
				p.printf("  %s %s\n", p.label(plugin.GUID), p.dim(plugin.Data.String()))
			}
			if view.Heuristic != nil {
				p.field("heuristic match", view.Heuristic.Method)
				p.field("offset", view.Heuristic.Offset)
			}
			for _, b := range view.Bones {
				p.printf("  %-32s modifiers=%d location=%d\n", b.Name, len(b.Modifiers), b.Location)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&heuristic, "heuristic", false, "Scan the raw record for bone modifiers when the block table has none")
	cmd.Flags().BoolVar(&faceOnly, "face-only", false, "Only show head and face bones")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	return cmd
}

func faceBones(bones []format_ais.BoneModifier) []format_ais.BoneModifier {
	var out []format_ais.BoneModifier
	for _, b := range bones {
		if b.IsFaceBone() {
			out = append(out, b)
		}
	}
	return out
}
