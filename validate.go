package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/fifteen/game/config"
)

var errInvalidPresets = errors.New("some presets have errors")

// runValidate checks every preset of the directory given as argument, or of
// --config-dir, and fails if any is invalid.
func runValidate(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("config-dir")
	if cmd.Args().Present() {
		dir = cmd.Args().First()
	}

	results, err := config.ValidateDir(dir)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(cmd.Root().Writer, "No presets found in %s\n", dir)
		return nil
	}
	return printValidation(cmd.Root().Writer, results)
}

func printValidation(w io.Writer, results []config.ValidationResult) error {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		fmt.Fprintln(w, "❌ Some presets have errors")
		return errInvalidPresets
	}
	fmt.Fprintln(w, "✅ All presets are valid!")
	return nil
}
