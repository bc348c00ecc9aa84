package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (rt *runtime) credentials(args []string, password string) (string, string, error) {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		u, err := rt.prompt("Username: ")
		if err != nil {
			return "", "", err
		}
		username = u
	}
	if password == "" {
		p, err := rt.prompt("Password: ")
		if err != nil {
			return "", "", err
		}
		password = p
	}
	return username, password, nil
}

func (rt *runtime) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and remember the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, pw, err := rt.credentials(args, password)
			if err != nil {
				return err
			}
			if err := rt.orchestrator().Login(cmd.Context(), username, pw); err != nil {
				return err
			}
			snap := rt.orchestrator().Snapshot()
			fmt.Fprintf(rt.out, "Signed in as %s, %d collection(s)\n", snap.Session.Username, len(snap.Collections))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func (rt *runtime) registerCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register [username]",
		Short: "Create an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, pw, err := rt.credentials(args, password)
			if err != nil {
				return err
			}
			return rt.orchestrator().Register(cmd.Context(), username, pw)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func (rt *runtime) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt.orchestrator().Logout(cmd.Context())
			return nil
		},
	}
}

func (rt *runtime) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, ok, err := rt.app.Slots.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(rt.out, "Not signed in")
				return nil
			}
			if err := rt.restore(cmd.Context()); err != nil {
				return err
			}
			snap := rt.orchestrator().Snapshot()
			fmt.Fprintf(rt.out, "Signed in as %s\n", creds.Username)
			if exp := snap.Session.ExpiresAt; exp != nil {
				fmt.Fprintf(rt.out, "Token expires %s\n", exp.Local().Format(time.RFC1123))
			}
			if snap.Session.Authenticated() {
				fmt.Fprintf(rt.out, "%d collection(s)\n", len(snap.Collections))
			}
			return nil
		},
	}
}
