package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/printer"
	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

var (
	fmtSheetRef string
	fmtKind     string
	fmtOperand1 string
	fmtOperand2 string
	fmtBg       string
	fmtFg       string
	fmtBold     bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Manage conditional formats",
	Long: `Attach conditional-format rules to a column.

Each rule pairs a condition with styling. Rules are checked in the order
they were added and the first matching rule styles the cell. Formula
cells are matched against their computed value, other cells against
their raw value.

Conditions:
  greaterThan, lessThan, equals, between, contains, isEmpty, notEmpty`,
}

var fmtAddCmd = &cobra.Command{
	Use:   "add <col>",
	Short: "Add a rule to a column",
	Long: `Add a conditional-format rule to the column with the given letters.

Examples:
  # Red background for overruns
  gridnote fmt add --sheet 3f2a61b2 C --kind greaterThan --operand1 100 --bg red

  # Bold anything containing "urgent"
  gridnote fmt add --sheet 3f2a61b2 A --kind contains --operand1 urgent --bold`,
	Args: cobra.ExactArgs(1),
	RunE: runFmtAdd,
}

var fmtLsCmd = &cobra.Command{
	Use:   "ls <col>",
	Short: "List a column's rules in match order",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmtLs,
}

var fmtRmCmd = &cobra.Command{
	Use:   "rm <col> <rule>",
	Short: "Remove one rule from a column",
	Long: `Remove a single conditional-format rule. The rule is addressed by its
1-based position in the column's rule list, as shown by "fmt ls".`,
	Args: cobra.ExactArgs(2),
	RunE: runFmtRm,
}

var fmtMvCmd = &cobra.Command{
	Use:   "mv <col> <rule> <position>",
	Short: "Move a rule to a new position",
	Long: `Move a conditional-format rule to a new 1-based position in the
column's rule list. Rules are checked in list order and the first match
wins, so moving a rule changes which one styles a cell.`,
	Args: cobra.ExactArgs(3),
	RunE: runFmtMv,
}

var fmtClearCmd = &cobra.Command{
	Use:   "clear <col>",
	Short: "Remove all rules from a column",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmtClear,
}

func init() {
	fmtCmd.PersistentFlags().StringVarP(&fmtSheetRef, "sheet", "s", "", "Sheet ID or short prefix (required)")
	fmtCmd.MarkPersistentFlagRequired("sheet")

	fmtAddCmd.Flags().StringVarP(&fmtKind, "kind", "k", "", "Condition kind (required)")
	fmtAddCmd.Flags().StringVar(&fmtOperand1, "operand1", "", "First comparison operand")
	fmtAddCmd.Flags().StringVar(&fmtOperand2, "operand2", "", "Second operand (between only)")
	fmtAddCmd.Flags().StringVar(&fmtBg, "bg", "", "Background color on match")
	fmtAddCmd.Flags().StringVar(&fmtFg, "fg", "", "Text color on match")
	fmtAddCmd.Flags().BoolVar(&fmtBold, "bold", false, "Bold text on match")
	fmtAddCmd.MarkFlagRequired("kind")

	fmtCmd.AddCommand(fmtAddCmd)
	fmtCmd.AddCommand(fmtLsCmd)
	fmtCmd.AddCommand(fmtRmCmd)
	fmtCmd.AddCommand(fmtMvCmd)
	fmtCmd.AddCommand(fmtClearCmd)
	rootCmd.AddCommand(fmtCmd)
}

func runFmtAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rule := sheet.ConditionalFormat{
		ID:       uuid.New().String(),
		Kind:     sheet.ConditionKind(fmtKind),
		Operand1: fmtOperand1,
		Operand2: fmtOperand2,
		Intent: sheet.DisplayIntent{
			BackgroundColor: fmtBg,
			TextColor:       fmtFg,
			Bold:            fmtBold,
		},
	}
	if err := rule.Validate(); err != nil {
		return printer.Error(
			"invalid conditional format",
			fmt.Sprintf("Error: %v", err),
			[]string{"Valid kinds: greaterThan, lessThan, equals, between, contains, isEmpty, notEmpty"},
		)
	}

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, fmtSheetRef)
	if err != nil {
		return err
	}

	col, err := columnByLetters(eng.Grid().Columns(), args[0])
	if err != nil {
		return err
	}

	if err := eng.Grid().AddColumnFormat(col.ID, rule); err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, nil); err != nil {
		return err
	}

	printer.Success("Rule added to column %s (%d total)\n", args[0], len(col.Formats))
	return nil
}

func runFmtLs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, fmtSheetRef)
	if err != nil {
		return err
	}

	col, err := columnByLetters(eng.Grid().Columns(), args[0])
	if err != nil {
		return err
	}

	if len(col.Formats) == 0 {
		printer.Info("No rules on column %s\n", args[0])
		return nil
	}
	for i, r := range col.Formats {
		printer.Info("%d. %s\n", i+1, describeRule(r))
	}
	return nil
}

func runFmtRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, fmtSheetRef)
	if err != nil {
		return err
	}

	col, err := columnByLetters(eng.Grid().Columns(), args[0])
	if err != nil {
		return err
	}

	rule, err := ruleByPosition(col, args[1])
	if err != nil {
		return err
	}

	if err := eng.Grid().RemoveColumnFormat(col.ID, rule.ID); err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, nil); err != nil {
		return err
	}

	printer.Success("Removed rule %s from column %s (%d left)\n", describeRule(rule), args[0], len(col.Formats))
	return nil
}

func runFmtMv(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, fmtSheetRef)
	if err != nil {
		return err
	}

	col, err := columnByLetters(eng.Grid().Columns(), args[0])
	if err != nil {
		return err
	}

	rule, err := ruleByPosition(col, args[1])
	if err != nil {
		return err
	}

	pos, err := strconv.Atoi(args[2])
	if err != nil || pos < 1 || pos > len(col.Formats) {
		return printer.Error(
			fmt.Sprintf("invalid position: %s", args[2]),
			fmt.Sprintf("Column %s has %d rules; positions run 1-%d.", args[0], len(col.Formats), len(col.Formats)),
			nil,
		)
	}

	if err := eng.Grid().ReorderColumnFormat(col.ID, rule.ID, pos-1); err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, nil); err != nil {
		return err
	}

	printer.Success("Moved rule %s to position %d on column %s\n", describeRule(rule), pos, args[0])
	return nil
}

// ruleByPosition resolves a 1-based rule position argument against a
// column's rule list. Returns a copy; the list may be mutated afterwards.
func ruleByPosition(col *sheet.Column, arg string) (sheet.ConditionalFormat, error) {
	pos, err := strconv.Atoi(arg)
	if err != nil || pos < 1 || pos > len(col.Formats) {
		return sheet.ConditionalFormat{}, printer.Error(
			fmt.Sprintf("no rule at position %s", arg),
			fmt.Sprintf("The column has %d rules.", len(col.Formats)),
			[]string{"List the rules with their positions:\n  gridnote fmt ls --sheet <id> <col>"},
		)
	}
	return col.Formats[pos-1], nil
}

// describeRule renders a rule compactly for listings and confirmations.
func describeRule(r sheet.ConditionalFormat) string {
	desc := string(r.Kind)
	switch r.Kind {
	case sheet.ConditionBetween:
		desc = fmt.Sprintf("%s %s and %s", r.Kind, r.Operand1, r.Operand2)
	case sheet.ConditionIsEmpty, sheet.ConditionNotEmpty:
	default:
		desc = fmt.Sprintf("%s %s", r.Kind, r.Operand1)
	}
	var style []string
	if r.Intent.BackgroundColor != "" {
		style = append(style, "bg:"+r.Intent.BackgroundColor)
	}
	if r.Intent.TextColor != "" {
		style = append(style, "fg:"+r.Intent.TextColor)
	}
	if r.Intent.Bold {
		style = append(style, "bold")
	}
	if len(style) > 0 {
		desc += " -> " + strings.Join(style, ",")
	}
	return desc
}

func runFmtClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, fmtSheetRef)
	if err != nil {
		return err
	}

	col, err := columnByLetters(eng.Grid().Columns(), args[0])
	if err != nil {
		return err
	}

	if err := eng.Grid().ClearColumnFormats(col.ID); err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, nil); err != nil {
		return err
	}

	printer.Success("Rules cleared from column %s\n", args[0])
	return nil
}
