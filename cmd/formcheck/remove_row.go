package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	formcheck "github.com/goliatone/go-formcheck"
	"github.com/goliatone/go-formcheck/pkg/engine"
	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

type removeRowFlags struct {
	layouts     string
	page        string
	validations string
	data        string
	group       string
	row         int
	write       bool
}

var removeRowOpts removeRowFlags

var prompter promptDriver = surveyDriver{}

var removeRowCmd = &cobra.Command{
	Use:   "remove-row",
	Short: "Shift a stored validation tree after deleting a group row",
	Long: `Remove-row drops the messages of one repeating-group row from a stored
validation result and renumbers the rows after it, including nested groups.
The group and row are prompted for when not given.

Examples:
  formcheck remove-row --layouts ./layouts --page page1 --validations result.json --data data.yaml --group G --row 1`,
	RunE: runRemoveRow,
}

func init() {
	f := removeRowCmd.Flags()
	f.StringVar(&removeRowOpts.layouts, "layouts", "layouts", "directory of page layouts")
	f.StringVar(&removeRowOpts.page, "page", "", "page rendering the group")
	f.StringVar(&removeRowOpts.validations, "validations", "", "stored validation result (JSON or YAML)")
	f.StringVar(&removeRowOpts.data, "data", "", "form data used to derive group rows")
	f.StringVar(&removeRowOpts.group, "group", "", "group instance id")
	f.IntVar(&removeRowOpts.row, "row", -1, "row index to remove")
	f.BoolVar(&removeRowOpts.write, "write", false, "write the result back to --validations")
	_ = removeRowCmd.MarkFlagRequired("validations")
	rootCmd.AddCommand(removeRowCmd)
}

func runRemoveRow(cmd *cobra.Command, _ []string) error {
	opts := removeRowOpts
	ctx := cmd.Context()

	layouts, err := formcheck.LoadLayouts(os.DirFS(opts.layouts))
	if err != nil {
		return fmt.Errorf("load layouts %s: %w", opts.layouts, err)
	}
	var stored validation.Result
	if err := readDocument(opts.validations, &stored); err != nil {
		return err
	}
	data := map[string]any{}
	if opts.data != "" {
		if data, err = readData(opts.data); err != nil {
			return err
		}
	}

	page, err := pickPage(ctx, layouts, opts.page)
	if err != nil {
		return err
	}
	groups := layout.RepeatingGroupsFromData(page, data)
	group, row, err := pickRow(ctx, groups, opts.group, opts.row)
	if err != nil {
		return err
	}

	store := engine.NewStore()
	store.Replace(stored)
	shifted := store.RemoveRow(group, row, page, groups)
	newLogger(cmd.ErrOrStderr()).Debug("row removed", "page", page.ID, "group", group, "row", row, "rows", shifted.Rows(group))

	if !opts.write {
		return encodeResult(cmd.OutOrStdout(), store.Result())
	}
	return writeResult(opts.validations, store.Result())
}

// writeResult replaces path with result. Encode and close failures are both
// returned.
func writeResult(path string, result validation.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := encodeResult(f, result); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func encodeResult(w io.Writer, result validation.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
