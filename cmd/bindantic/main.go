package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/melektron/bindantic"
)

var (
	flagVerbose bool
	flagJSON    bool
	flagHex     bool
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	root := &cobra.Command{
		Use:           "bindantic",
		Short:         "Inspect and decode fixed-layout binary records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				l, err := zap.NewDevelopment()
				if err == nil {
					bindantic.SetLogger(l)
				}
			}
		},
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log compile and union-trial details")

	layout := &cobra.Command{
		Use:   "layout <schema.yaml> [record]",
		Short: "Print the compiled binary layout of declared records",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runLayout,
	}
	layout.Flags().BoolVar(&flagJSON, "json", false, "emit the layout as JSON")

	unpack := &cobra.Command{
		Use:   "unpack <schema.yaml> <record> [file]",
		Short: "Unpack one record from a file or stdin and print its values",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  runUnpack,
	}
	unpack.Flags().BoolVar(&flagHex, "hex", false, "input is hex text instead of raw bytes")

	root.AddCommand(layout, unpack)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func loadSchema(path string) (*bindantic.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bindantic.LoadSchema(data)
}

func runLayout(cmd *cobra.Command, args []string) error {
	schema, err := loadSchema(args[0])
	if err != nil {
		return err
	}
	recs := schema.Records()
	if len(args) == 2 {
		r, ok := schema.Lookup(args[1])
		if !ok {
			return fmt.Errorf("record %q is not declared in %s", args[1], args[0])
		}
		recs = []*bindantic.Record{r}
	}

	if flagJSON {
		layouts := make([]bindantic.Layout, 0, len(recs))
		for _, r := range recs {
			layouts = append(layouts, r.Layout())
		}
		out, err := json.MarshalIndent(layouts, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	for _, r := range recs {
		printLayout(r.Layout())
		fmt.Println()
	}
	return nil
}

func printLayout(l bindantic.Layout) {
	fmt.Printf("%s  %s\n",
		headerStyle.Render(l.Record),
		dimStyle.Render(fmt.Sprintf("%s, %d bytes", l.Mode, l.Size)))
	fmt.Println(dimStyle.Render(fmt.Sprintf("  %-6s %-6s %-20s %s", "offset", "width", "field", "kind")))
	for _, f := range l.Fields {
		name := f.Name
		if name == "" {
			name = dimStyle.Render("(alignment)")
		} else {
			name = nameStyle.Render(name)
		}
		kind := f.Kind
		switch {
		case f.Count > 0:
			kind = fmt.Sprintf("%s[%d] of %s", f.Kind, f.Count, f.Elem)
		case f.Record != "":
			kind = fmt.Sprintf("record %s", f.Record)
		case len(f.Members) > 0:
			kind = fmt.Sprintf("union of %s", strings.Join(f.Members, ", "))
		}
		if f.Doc != "" {
			kind += dimStyle.Render("  # " + f.Doc)
		}
		fmt.Printf("  %-6d %-6d %-20s %s\n", f.Offset, f.Width, name, kind)
	}
}

func runUnpack(cmd *cobra.Command, args []string) error {
	schema, err := loadSchema(args[0])
	if err != nil {
		return err
	}
	rec, ok := schema.Lookup(args[1])
	if !ok {
		return fmt.Errorf("record %q is not declared in %s", args[1], args[0])
	}

	var in io.Reader = os.Stdin
	if len(args) == 3 && args[2] != "-" {
		f, err := os.Open(args[2])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	if flagHex {
		clean := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
				return -1
			}
			return r
		}, string(data))
		if data, err = hex.DecodeString(clean); err != nil {
			return fmt.Errorf("bad hex input: %w", err)
		}
	}

	inst, err := rec.Unpack(data)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(displayValue(inst.AsMap()), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// displayValue rewrites byte buffers as hex strings so the JSON output stays
// readable.
func displayValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = displayValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = displayValue(e)
		}
		return out
	case []byte:
		return hex.EncodeToString(t)
	}
	return v
}
