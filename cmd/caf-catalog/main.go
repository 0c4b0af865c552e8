// Command caf-catalog is an operator tool for the catalog file consumed by
// custom_init: it inspects, validates, samples, and converts catalog files,
// and offers a small REPL for exploring a catalog interactively during
// catalog-authoring sessions.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/caf/internal/catalog"
	"github.com/calvinalkan/caf/internal/generator"
	"github.com/calvinalkan/caf/internal/pool"
	"github.com/calvinalkan/caf/internal/rng"
	"github.com/calvinalkan/caf/internal/synth"
	"github.com/calvinalkan/caf/pkg/caflog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		caflog.Stderr(0).Fatal(err, "run "+strings.Join(os.Args[1:], " "))
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Println(usage())
		return nil
	}

	switch args[0] {
	case "inspect":
		return cmdInspect(args[1:])
	case "validate":
		return cmdValidate(args[1:])
	case "sample":
		return cmdSample(args[1:])
	case "convert":
		return cmdConvert(args[1:])
	case "repl":
		return cmdRepl(args[1:])
	case "help", "-h", "--help":
		fmt.Println(usage())
		return nil
	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage())
	}
}

func usage() string {
	return `caf-catalog: inspect and manipulate CAF catalog files

Commands:
  inspect <file>              Print function count and callback groups
  validate <file>             Load and validate a catalog, print OK or error
  sample <file> --n=10        Generate N sample test cases and print them
  convert <in.yaml> <out.json> Convert a YAML catalog to the wire JSON format
  repl <file>                 Interactive catalog lookup REPL`
}

func cmdInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: caf-catalog inspect <file>")
	}

	cat, err := catalog.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("functions: %d\n", cat.Len())
	fmt.Printf("callback groups: %d\n", len(cat.Callbacks))
	for _, sig := range cat.CallbackSignatures() {
		fmt.Printf("  signature %d: %d callbacks\n", sig, len(cat.CallbackGroup(sig)))
	}
	return nil
}

func cmdValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: caf-catalog validate <file>")
	}

	if _, err := catalog.Load(fs.Arg(0)); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func cmdSample(args []string) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	n := fs.IntP("n", "n", 10, "number of test cases to generate")
	seed := fs.Int64("seed", 1, "RNG seed")
	width := fs.Int("width", 100, "terminal width for call-line wrapping")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: caf-catalog sample <file> [--n=10]")
	}

	cat, err := catalog.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	p := pool.New()
	r := rng.New(*seed)
	gen := generator.New(cat, p, r, generator.DefaultOptions())
	syn := synth.New(cat, synth.TargetPlainJS)

	for i := 0; i < *n; i++ {
		p.Clear()
		tc := gen.Generate()
		fmt.Println(wrapLine(fmt.Sprintf("// test case %d: %d calls", i, tc.Len()), *width))
		for _, scriptLine := range strings.Split(strings.TrimRight(syn.Synthesize(tc), "\n"), "\n") {
			fmt.Println(wrapLine(scriptLine, *width))
		}
	}
	return nil
}

// wrapLine breaks line into chunks no wider than width display columns,
// using go-runewidth so multi-byte catalog function names (e.g. emoji or
// CJK API names pulled from a JS engine's builtin list) don't overflow a
// narrow terminal.
func wrapLine(line string, width int) string {
	if runewidth.StringWidth(line) <= width {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		rw := runewidth.RuneWidth(r)
		if col+rw > width {
			b.WriteByte('\n')
			col = 0
		}
		b.WriteRune(r)
		col += rw
	}
	return b.String()
}

// yamlCatalog mirrors the wire JSON shape for a friendlier authoring
// format: hand-written catalogs are easier to review as YAML, then
// converted to the JSON custom_init actually loads.
type yamlCatalog struct {
	APIs []struct {
		ID   uint32 `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"apis"`
	Callbacks map[string][]uint32 `yaml:"callbacks"`
}

func cmdConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: caf-catalog convert <in.yaml> <out.json>")
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read %s: %w", fs.Arg(0), err)
	}

	var yc yamlCatalog
	if err := yaml.Unmarshal(raw, &yc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	wire := struct {
		APIs []struct {
			ID   uint32 `json:"id"`
			Name string `json:"name"`
		} `json:"apis"`
		Callbacks map[string][]uint32 `json:"callbacks,omitempty"`
	}{Callbacks: yc.Callbacks}

	for _, a := range yc.APIs {
		wire.APIs = append(wire.APIs, struct {
			ID   uint32 `json:"id"`
			Name string `json:"name"`
		}{ID: a.ID, Name: a.Name})
	}

	out, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	return os.WriteFile(fs.Arg(1), out, 0o644)
}

func cmdRepl(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: caf-catalog repl <file>")
	}

	cat, err := catalog.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("caf-catalog repl: type a function name to look up its id, empty line to quit")
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return nil
		}
		line.AppendHistory(input)

		if id, ok := cat.ByName(input); ok {
			fmt.Printf("%s => id %d\n", input, id)
		} else {
			fmt.Printf("%s: not found\n", input)
		}
	}
}
