package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wealthwise/wealthwise/internal/browser"
	"github.com/wealthwise/wealthwise/internal/log"
	"github.com/wealthwise/wealthwise/pkg/auth"
)

func newLoginCmd(a *app) *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the identity provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			open := a.openURL
			if noBrowser {
				open = func(string) error { return browser.ErrNoBrowser }
			}

			fmt.Fprintln(out, "Opening browser to authenticate...")
			tok, err := a.keycloak.Login(cmd.Context(), auth.LoginOptions{Open: open, Out: out})
			if err != nil {
				return err
			}
			if err := a.store.Set(tok); err != nil {
				return err
			}

			// The backend creates its user record on first contact.
			if err := a.client.RegisterUser(cmd.Context()); err != nil {
				a.logger.Warn("user registration failed", log.FieldError, err)
			}
			fmt.Fprintln(out, "You are signed in.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the sign-in URL instead of opening a browser")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	var redirect string
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			endSession, err := a.store.Logout(cmd.Context(), redirect)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "You have been logged out.")

			if endSession == "" || noBrowser {
				return nil
			}
			if err := a.openURL(endSession); err != nil {
				fmt.Fprintf(out, "To end the browser session as well, visit:\n  %s\n", endSession)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&redirect, "redirect", "", "where the identity provider sends the browser after sign-out")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the identity provider's sign-out page")
	return cmd
}
