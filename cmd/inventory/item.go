package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage items and their usage",
}

var (
	itemOwner    int64
	itemLocation int64
	itemQuantity string
	newItem      entity.Item
)

func init() {
	itemListCmd.Flags().Int64Var(&itemOwner, "owner", 0, "only items of this user")
	itemListCmd.Flags().Int64Var(&itemLocation, "location", 0, "only items at this location")

	f := itemAddCmd.Flags()
	f.Int64Var(&newItem.OwnerID, "owner", 0, "owning user id")
	f.Int64Var(&newItem.LocationID, "location", 0, "location id")
	f.StringVar(&newItem.Description, "description", "", "item name")
	f.StringVar(&itemQuantity, "quantity", "", "count; omit for a single item")

	itemCmd.AddCommand(itemListCmd, itemAddCmd, itemDeleteCmd, itemBeginCmd, itemEndCmd)
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var (
			items []*entity.Item
			err   error
		)
		switch {
		case itemLocation != 0:
			items, err = inv.Items.GetAllByLocation(ctx, itemLocation, entity.None)
		case itemOwner != 0:
			items, err = inv.Items.GetAllByUser(ctx, itemOwner, entity.None)
		default:
			items, err = inv.Items.GetAll(ctx, entity.Populate{Location: true})
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), items)
		}
		tw := table(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tOWNER\tLOCATION\tDESCRIPTION\tQUANTITY\tIN USE")
		for _, it := range items {
			inUse, err := inv.Items.InUse(ctx, it.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%t\n", it.ID, it.OwnerID, it.LocationID, it.Description, quantity(it.Quantity), inUse)
		}
		return tw.Flush()
	},
}

var itemAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an item",
	RunE: func(cmd *cobra.Command, args []string) error {
		it := newItem
		if cmd.Flags().Changed("quantity") {
			it.Quantity = entity.RawQuantity(itemQuantity)
		}
		if err := inv.Items.Insert(cmd.Context(), &it); err != nil {
			return explain(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "item %d created\n", it.ID)
		return nil
	},
}

// idCommand builds a command running op on a single item id.
func idCommand(use, short, done string, op func(ctx context.Context, id int64) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := op(cmd.Context(), id)
			if err != nil {
				return explain(err)
			}
			if !ok {
				return notFound("item", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "item %d %s\n", id, done)
			return nil
		},
	}
}

var (
	itemDeleteCmd = idCommand("delete", "Delete an item without usage history", "deleted",
		func(ctx context.Context, id int64) (bool, error) { return inv.Items.Delete(ctx, id) })
	itemBeginCmd = idCommand("begin", "Start using an item today", "in use",
		func(ctx context.Context, id int64) (bool, error) { return inv.Items.BeginUsage(ctx, id) })
	itemEndCmd = idCommand("end", "Stop using an item today", "returned",
		func(ctx context.Context, id int64) (bool, error) { return inv.Items.EndUsage(ctx, id) })
)
