package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dori/kanbo/internal/app"
	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/ui/theme"
)

// readPassword returns the --password flag or a line read from stdin
func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newRegisterCmd(rt *runtime) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <name> <email>",
		Short: "Create a local account and log in",
		Args:  cobra.ExactArgs(2),
		RunE: rt.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			id, err := a.Auth.Register(cmd.Context(), args[0], args[1], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s <%s>\n", id.DisplayName(), id.Email)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLoginCmd(rt *runtime) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in to a local account",
		Args:  cobra.ExactArgs(1),
		RunE: rt.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			id, err := a.Auth.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", id.DisplayName())
			return nil
		}),
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Args:  cobra.NoArgs,
		RunE: rt.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			if err := a.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func newWhoamiCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who is logged in",
		Args:  cobra.NoArgs,
		RunE: rt.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			id := a.Auth.Current(cmd.Context())
			out := cmd.OutOrStdout()
			if !id.IsAuthenticated() {
				fmt.Fprintln(out, "anonymous (demo board, not saved)")
				return nil
			}
			fmt.Fprintf(out, "%s <%s>\n", id.DisplayName(), id.Email)
			return nil
		}),
	}
}

func newSettingsCmd(rt *runtime) *cobra.Command {
	var (
		themeName     string
		notifications string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change your settings",
		Args:  cobra.NoArgs,
		RunE: rt.withBoard(func(cmd *cobra.Command, args []string, s *board.Session) error {
			settings := s.Settings()
			changed := false

			if cmd.Flags().Changed("theme") {
				if _, ok := theme.ByName(themeName); !ok {
					return fmt.Errorf("unknown theme %q (want one of %s)", themeName, strings.Join(theme.Names(), ", "))
				}
				settings.Theme = themeName
				changed = true
			}
			if cmd.Flags().Changed("notifications") {
				on, err := strconv.ParseBool(notifications)
				if err != nil {
					return fmt.Errorf("invalid --notifications value %q: %w", notifications, err)
				}
				settings.Notifications = on
				changed = true
			}

			if changed {
				if !s.Persistent() {
					return errNotLoggedIn
				}
				s.SetSettings(cmd.Context(), settings)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "theme: %s\n", settings.Theme)
			fmt.Fprintf(out, "notifications: %t\n", settings.Notifications)
			return nil
		}),
	}

	cmd.Flags().StringVar(&themeName, "theme", "", "color theme ("+strings.Join(theme.Names(), ", ")+")")
	cmd.Flags().StringVar(&notifications, "notifications", "", "desktop notification on completion (true/false)")
	return cmd
}
