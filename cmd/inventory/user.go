package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var newUser entity.User

func init() {
	f := userAddCmd.Flags()
	f.StringVar(&newUser.Firstname, "firstname", "", "first name")
	f.StringVar(&newUser.Lastname, "lastname", "", "last name")
	f.StringVar(&newUser.Email, "email", "", "e-mail address")
	f.StringVar(&newUser.Username, "username", "", "username")
	f.StringVar(&newUser.Password, "password", "", "password")
	f.StringVar(&newUser.Language, "language", "en", "language code")

	userCmd.AddCommand(userListCmd, userAddCmd, userDeleteCmd)
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := inv.Users.GetAll(cmd.Context(), entity.None)
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]*entity.User, len(users))
			for i, u := range users {
				out[i] = u.Public()
			}
			return printJSON(cmd.OutOrStdout(), out)
		}
		tw := table(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s %s\t%s\n", u.ID, u.Username, u.Firstname, u.Lastname, u.Email)
		}
		return tw.Flush()
	},
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a user",
	Example: `  inventory user add --firstname Carlos --lastname Pérez \
    --email c@p.com --username carlosperez --password 123456`,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUser
		if err := inv.Users.Insert(cmd.Context(), &u); err != nil {
			return explain(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d created\n", u.ID)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user that owns nothing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ok, err := inv.Users.Delete(cmd.Context(), id)
		if err != nil {
			return explain(err)
		}
		if !ok {
			return notFound("user", id)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d deleted\n", id)
		return nil
	},
}
