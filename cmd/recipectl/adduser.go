package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/padraicbc/recipeapi/models"
	"github.com/padraicbc/recipeapi/store"
)

func newAddUserCmd(a *app) *cobra.Command {
	var username, password, imageURL, bio string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := models.NewUser(username, password, optional(imageURL), optional(bio))
			if err != nil {
				return err
			}

			if err := store.NewBun(a.db).CreateUser(cmd.Context(), user); err != nil {
				if errors.Is(err, store.ErrIntegrity) {
					return fmt.Errorf("user %q already exists", username)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "user %q saved with id %d\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username (required)")
	cmd.Flags().StringVar(&password, "password", "", "plain-text password (required)")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "profile image URL")
	cmd.Flags().StringVar(&bio, "bio", "", "short biography")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
