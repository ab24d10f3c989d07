package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikiasgoitom/likes/internal/infrastructure/jwt"
)

func tokenCmd(e *env) *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user (development)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			if userID <= 0 {
				return fmt.Errorf("--user must be positive")
			}
			token, err := jwt.NewJWTManager(e.cfg.JWTSecret).GenerateAccessToken(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id to embed in the token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
