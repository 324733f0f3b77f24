package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"budgetpilot/cli"
	"budgetpilot/models"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show budget, totals, warnings and sync status",
			Args:  cobra.NoArgs,
			RunE:  withApp(runShow),
		},
		&cobra.Command{
			Use:   "set <field> <amount>",
			Short: "Set one budget field (" + fieldNames() + ")",
			Args:  cobra.ExactArgs(2),
			RunE:  withApp(runSet),
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit all budget fields in a form",
			Args:  cobra.NoArgs,
			RunE:  withApp(runEdit),
		},
		&cobra.Command{
			Use:   "snapshot",
			Short: "Save the current budget to history",
			Args:  cobra.NoArgs,
			RunE:  withApp(runSnapshot),
		},
		&cobra.Command{
			Use:   "history",
			Short: "List saved snapshots, newest first",
			Args:  cobra.NoArgs,
			RunE:  withApp(runHistory),
		},
		&cobra.Command{
			Use:   "restore <snapshot-id>",
			Short: "Restore a snapshot (an unambiguous id prefix is enough)",
			Args:  cobra.ExactArgs(1),
			RunE:  withApp(runRestore),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Zero every budget field (history and login are kept)",
			Args:  cobra.NoArgs,
			RunE:  withApp(runReset),
		},
	)
}

func fieldNames() string {
	names := make([]string, 0, len(models.GetFields()))
	for _, f := range models.GetFields() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func runShow(_ context.Context, a *app, _ []string) error {
	a.printf("%s\n", cli.RenderState(a.store.State()))
	return nil
}

func runSet(_ context.Context, a *app, args []string) error {
	field, err := models.ParseField(args[0])
	if err != nil {
		return fmt.Errorf("%w %q (expected one of: %s)", err, args[0], fieldNames())
	}
	value := cli.ParseAmount(args[1])
	if err := a.store.UpdateField(field, value); err != nil {
		return err
	}
	a.printf("  %s = %s (%s)\n", field.Label(), cli.FormatAmount(value), a.store.Status())
	return nil
}

func runEdit(ctx context.Context, a *app, _ []string) error {
	fields := models.GetFields()
	budget := a.store.Budget()
	inputs := make([]string, len(fields))
	huhFields := make([]huh.Field, len(fields))
	for i, f := range fields {
		v, _ := budget.Get(f)
		inputs[i] = strconv.FormatFloat(v, 'f', -1, 64)
		huhFields[i] = huh.NewInput().
			Title(f.Label()).
			Value(&inputs[i])
	}

	form := huh.NewForm(huh.NewGroup(huhFields...))
	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	changed := 0
	for i, f := range fields {
		value := cli.ParseAmount(inputs[i])
		old, _ := budget.Get(f)
		if value == old {
			continue
		}
		if err := a.store.UpdateField(f, value); err != nil {
			return err
		}
		changed++
	}
	a.printf("  Updated %d field(s)\n\n", changed)
	return runShow(ctx, a, nil)
}

func runSnapshot(_ context.Context, a *app, _ []string) error {
	snap := a.store.AddSnapshot()
	a.printf("  Saved snapshot %s\n", snap.ID)
	return nil
}

func runHistory(_ context.Context, a *app, _ []string) error {
	a.printf("%s\n", cli.RenderHistory(a.store.State().History))
	return nil
}

func runRestore(_ context.Context, a *app, args []string) error {
	id, err := resolveSnapshotID(a.store.State().History, args[0])
	if err != nil {
		return err
	}
	if !a.store.RestoreSnapshot(id) {
		return fmt.Errorf("snapshot %s not found", id)
	}
	a.printf("  Restored snapshot %s (%s)\n", id, a.store.Status())
	return nil
}

// resolveSnapshotID 完整 ID 或唯一前缀
func resolveSnapshotID(history []models.BudgetSnapshot, ref string) (string, error) {
	var matches []string
	for _, snap := range history {
		if snap.ID == ref {
			return ref, nil
		}
		if strings.HasPrefix(snap.ID, ref) {
			matches = append(matches, snap.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("snapshot %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("snapshot prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func runReset(_ context.Context, a *app, _ []string) error {
	a.store.Reset()
	a.printf("  Budget cleared (%s)\n", a.store.Status())
	return nil
}
