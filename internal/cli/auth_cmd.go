package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/prappser/recruitment_client/internal/auth"
	"github.com/prappser/recruitment_client/internal/session"
	"github.com/prappser/recruitment_client/internal/validation"
	"github.com/spf13/cobra"
)

// readPassword takes the password from the flag, or the first line of
// stdin when the flag is empty.
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// authFailure turns an auth error code into a message key for display.
func authFailure(err error) error {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return fmt.Errorf("%s (%s)", authErr.Code, authErr.Code.MessageKey())
	}
	return err
}

func newLoginCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			if err := validation.Struct(auth.LoginRequest{Username: username, Password: pass}); err != nil {
				return err
			}

			profile, err := a.session.Login(cmd.Context(), username, pass)
			if err != nil {
				return authFailure(err)
			}
			if a.jsonOutput() {
				return writeJSON(out(cmd), profile)
			}
			fmt.Fprint(out(cmd), "Signed in as ")
			printProfile(out(cmd), profile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := a.session.CurrentUser()
			if a.jsonOutput() {
				return writeJSON(out(cmd), profile)
			}
			printProfile(out(cmd), profile)
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var req auth.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an applicant account",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := readPassword(cmd, req.Password)
			if err != nil {
				return err
			}
			req.Password = pass
			if err := validation.Struct(req); err != nil {
				return err
			}

			message, err := a.auth.Register(cmd.Context(), req)
			if err != nil {
				return authFailure(err)
			}
			fmt.Fprintln(out(cmd), message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password (read from stdin when empty)")
	cmd.Flags().StringVar(&req.Email, "email", "", "E-mail address (required)")
	cmd.Flags().StringVar(&req.Pnr, "pnr", "", "Personal number, YYYYMMDD-XXXX (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pnr")
	return cmd
}

func newRegisterRecruiterCmd(a *app) *cobra.Command {
	var req auth.RecruiterRegisterRequest

	cmd := &cobra.Command{
		Use:   "register-recruiter",
		Short: "Create a recruiter account using the recruiter secret code",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := readPassword(cmd, req.Password)
			if err != nil {
				return err
			}
			req.Password = pass
			if err := validation.Struct(req); err != nil {
				return err
			}

			message, err := a.auth.RegisterRecruiter(cmd.Context(), req)
			if err != nil {
				return authFailure(err)
			}
			fmt.Fprintln(out(cmd), message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password (read from stdin when empty)")
	cmd.Flags().StringVar(&req.SecretCode, "secret-code", "", "Recruiter registration code (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("secret-code")
	return cmd
}

func newResetOldUserCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-old-user",
		Short: "Request password reset instructions for an account from the old system",
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := a.auth.RequestOldUserReset(cmd.Context(), email)
			if err != nil {
				return authFailure(err)
			}
			fmt.Fprintln(out(cmd), message)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "E-mail address of the old account (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Print sign-in changes made by other processes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, ok := a.store.(*session.FileStore)
			if !ok {
				return errors.New("session watch needs a file based token store")
			}
			watcher, err := session.NewWatcher(store, a.hub)
			if err != nil {
				return err
			}
			subscriber := a.hub.Subscribe()
			if subscriber == nil {
				return errors.New("session hub stopped")
			}
			go watcher.Run(cmd.Context())

			printProfile(out(cmd), a.session.CurrentUser())
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case event, open := <-subscriber.Events():
					if !open {
						return nil
					}
					fmt.Fprintf(out(cmd), "[%s] %s: ", event.At.Format("15:04:05"), event.Type)
					printProfile(out(cmd), event.User)
				}
			}
		},
	})
	return cmd
}
