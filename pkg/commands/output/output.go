// Package output prints command results as YAML or JSON, per the --format flag.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/flags"
)

// Print writes v to the command output in the --format format. YAML output follows the JSON
// field names of v.
func Print(cmd *cobra.Command, v any) error {
	format, err := flags.GetFormat(cmd)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal output: %w", err)
	}

	if format == flags.FormatYAML {
		if b, err = toYAML(b); err != nil {
			return fmt.Errorf("unable to marshal output: %w", err)
		}
	} else {
		b = append(b, '\n')
	}

	_, err = cmd.OutOrStdout().Write(b)

	return err
}

// PrintRaw writes a JSON value returned by the node. An empty value prints as null.
func PrintRaw(cmd *cobra.Command, raw json.RawMessage) error {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	if !json.Valid(raw) {
		return fmt.Errorf("invalid response: %s", raw)
	}

	return Print(cmd, raw)
}

// toYAML converts a JSON document to YAML, keeping integers exact.
func toYAML(b []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	return yaml.Marshal(exactNumbers(v))
}

// exactNumbers replaces json.Number values, which yaml.v3 would quote, with native numbers.
// Integers beyond the int64 range, such as u128 amounts, become !!int scalars holding their exact
// decimal digits so they are not printed as floats.
func exactNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = exactNumbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = exactNumbers(e)
		}
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		s := t.String()
		if strings.ContainsAny(s, ".eE") {
			if f, err := t.Float64(); err == nil && !math.IsInf(f, 0) {
				return f
			}

			return s
		}

		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}
	}

	return v
}
