package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikiasgoitom/likes/internal/app"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

func usersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the host user records likers are resolved from",
	}

	var u entity.User
	add := &cobra.Command{
		Use:   "add",
		Short: "Create or update a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if u.ID <= 0 || u.Username == "" {
				return fmt.Errorf("--id and --username are required")
			}
			ctx := cmd.Context()
			res, err := app.Open(ctx, e.cfg, e.logger, nil)
			if err != nil {
				return err
			}
			defer res.Close(context.Background())

			if err := res.Store.UpsertUser(ctx, u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d saved\n", u.ID)
			return nil
		},
	}
	add.Flags().Int64Var(&u.ID, "id", 0, "User id")
	add.Flags().StringVar(&u.Username, "username", "", "Username")
	add.Flags().StringVar(&u.FullName, "full-name", "", "Full name")
	cmd.AddCommand(add)
	return cmd
}
