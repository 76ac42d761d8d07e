package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type printer struct {
	w      io.Writer
	format string

	ok    func(a ...interface{}) string
	bad   func(a ...interface{}) string
	label func(a ...interface{}) string
	dim   func(a ...interface{}) string
}

func useColor(mode string, f *os.File) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		fd := f.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd), nil
	default:
		return false, fmt.Errorf("invalid --color %q (auto, always, never)", mode)
	}
}

func newPrinter(format string) (*printer, error) {
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return nil, fmt.Errorf("invalid --format %q (text, json, yaml)", format)
	}

	colored, err := useColor(colorMode, os.Stdout)
	if err != nil {
		return nil, err
	}
	p := &printer{w: os.Stdout, format: format}
	if colored && format == formatText {
		p.w = colorable.NewColorable(os.Stdout)
	}

	paint := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	p.ok = paint(color.FgHiGreen)
	p.bad = paint(color.FgHiRed, color.Bold)
	p.label = paint(color.FgHiBlue)
	p.dim = paint(color.FgWhite)
	return p, nil
}

// structured writes v as JSON or YAML and reports whether it did.
func (p *printer) structured(v interface{}) (bool, error) {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) field(name string, value interface{}) {
	p.printf("%s %v\n", p.label(fmt.Sprintf("%-22s", name+":")), value)
}

func (p *printer) mark(passed bool) string {
	if passed {
		return p.ok("✓")
	}
	return p.bad("✗")
}
