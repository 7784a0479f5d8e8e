package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/kitab-khata/internal/app"
	"github.com/dvloznov/kitab-khata/internal/identity"
)

var credential string

var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Sign in as the shopkeeper",
	Long: `Sign in with a shop name, or with a Google ID token via --credential.

Example:
  khata login "Vikas Jain"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			var err error
			if credential != "" {
				_, err = a.Sessions.LoginGoogle(ctx, credential)
			} else {
				name := ""
				if len(args) > 0 {
					name = args[0]
				}
				_, err = a.Sessions.LoginManual(ctx, name)
			}
			if err != nil {
				return err
			}
			return printUser(ctx, cmd, a)
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return printUser(ctx, cmd, a)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Sessions.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Signed out.")
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&credential, "credential", "", "Google ID token")
}

func printUser(ctx context.Context, cmd *cobra.Command, a *app.App) error {
	user, err := a.Sessions.Current(ctx)
	if errors.Is(err, identity.ErrSignedOut) {
		fmt.Fprintln(out(cmd), "Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "%s <%s>\n", user.Name, user.Email)
	return nil
}
