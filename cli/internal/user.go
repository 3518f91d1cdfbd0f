package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
	"github.com/devilmonastery/pixelplaylist/internal/domain/services"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage your account",
	}

	cmd.AddCommand(newUserProfileCommand())
	cmd.AddCommand(newUserUpdateCommand())
	cmd.AddCommand(newUserPasswordCommand())

	return cmd
}

func newUserProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			user, err := cliCtx.Users.Profile(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", services.UserMessage(err, "Failed to fetch user data"))
			}
			printProfile(user)
			return nil
		},
	}
}

func newUserUpdateCommand() *cobra.Command {
	var upd entities.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			user, res := cliCtx.Users.UpdateProfile(cmd.Context(), upd)
			if !res.Success {
				return resultError(res)
			}

			fmt.Printf("✓ %s\n", res.Message)
			printProfile(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&upd.FirstName, "first-name", "", "New first name")
	cmd.Flags().StringVar(&upd.Email, "email", "", "New email address")
	cmd.Flags().StringVar(&upd.Username, "username", "", "New username")

	return cmd
}

func newUserPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			var pc entities.PasswordChange
			var err error
			if pc.OldPassword, err = promptPassword("Current password: "); err != nil {
				return err
			}
			if pc.NewPassword1, err = promptPassword("New password: "); err != nil {
				return err
			}
			if pc.NewPassword2, err = promptPassword("Confirm new password: "); err != nil {
				return err
			}

			res := cliCtx.Users.ChangePassword(cmd.Context(), pc)
			if !res.Success {
				return resultError(res)
			}

			fmt.Printf("✓ %s\n", res.Message)
			return nil
		},
	}
}

func printProfile(user *entities.User) {
	if user == nil {
		return
	}
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Name:     %s\n", user.DisplayName())
	fmt.Printf("Email:    %s\n", user.Email)
	if user.Role != "" {
		fmt.Printf("Role:     %s\n", user.Role)
	}
}
