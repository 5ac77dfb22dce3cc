package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Manage locations",
}

var (
	locationOwner int64
	newLocation   entity.Location
)

func init() {
	locationListCmd.Flags().Int64Var(&locationOwner, "owner", 0, "only locations of this user")
	locationAddCmd.Flags().Int64Var(&newLocation.OwnerID, "owner", 0, "owning user id")
	locationAddCmd.Flags().StringVar(&newLocation.Description, "description", "", "location name")

	locationCmd.AddCommand(locationListCmd, locationAddCmd, locationDeleteCmd)
}

var locationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			locs []*entity.Location
			err  error
		)
		if locationOwner != 0 {
			locs, err = inv.Locations.GetAllByUser(cmd.Context(), locationOwner, entity.None)
		} else {
			locs, err = inv.Locations.GetAll(cmd.Context(), entity.None)
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), locs)
		}
		tw := table(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tOWNER\tDESCRIPTION")
		for _, l := range locs {
			fmt.Fprintf(tw, "%d\t%d\t%s\n", l.ID, l.OwnerID, l.Description)
		}
		return tw.Flush()
	},
}

var locationAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		l := newLocation
		if err := inv.Locations.Insert(cmd.Context(), &l); err != nil {
			return explain(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "location %d created\n", l.ID)
		return nil
	},
}

var locationDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an empty location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ok, err := inv.Locations.Delete(cmd.Context(), id)
		if err != nil {
			return explain(err)
		}
		if !ok {
			return notFound("location", id)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "location %d deleted\n", id)
		return nil
	},
}
