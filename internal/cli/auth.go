package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/services"
)

func newLoginCommand(rt *runtime) *cobra.Command {
	var params services.LoginParams

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session in local storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := rt.app.Auth.Login(cmd.Context(), params)
			if err != nil {
				return err
			}
			return rt.render(cmd, session, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged in as %s\n", session.User.Email)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&params.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&params.Password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSignupCommand(rt *runtime) *cobra.Command {
	var params services.SignupParams

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := rt.app.Auth.Signup(cmd.Context(), params)
			if err != nil {
				return err
			}
			return rt.render(cmd, session, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Signed up as %s\n", session.User.Email)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&params.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&params.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&params.Password, "password", "", "Password, at least 8 characters")
	cmd.Flags().StringVar(&params.ConfirmPassword, "confirm-password", "", "Password again")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := rt.app.Auth.Logout(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return err
		},
	}
}

func newWhoamiCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := rt.currentUser()
			if err != nil {
				return err
			}
			return rt.render(cmd, user, func(w io.Writer) error {
				return writeUser(w, user)
			})
		},
	}
}

func writeUser(w io.Writer, user *models.User) error {
	role := user.Role
	if role == "" {
		role = models.RoleMember
	}
	_, err := fmt.Fprintf(w, "%s <%s> (%s)\n", user.Name, user.Email, role)
	return err
}
