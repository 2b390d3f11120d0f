package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mealdash/client-go/internal/api"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.Flow.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "signed in as %s (%s)", user.Username, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCommand(opts *rootOptions) *cobra.Command {
	var req api.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Flow.Register(cmd.Context(), req); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "account created, run mealdash login to sign in")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "username")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.TypeOfUser, "type", "customer", "account type")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			app.Flow.Logout(cmd.Context())
			success(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			user := app.Session.User()
			if user == nil {
				return fmt.Errorf("not signed in")
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintf(w, "id\t%d\n", user.ID)
			fmt.Fprintf(w, "username\t%s\n", user.Username)
			fmt.Fprintf(w, "email\t%s\n", user.Email)
			if user.Name != "" {
				fmt.Fprintf(w, "name\t%s\n", user.Name)
			}
			return w.Flush()
		},
	}
}
