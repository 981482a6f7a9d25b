package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prappser/recruitment_client/internal/recruitment"
	"github.com/prappser/recruitment_client/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newApplicationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Browse and review applications (recruiters)",
	}
	cmd.AddCommand(
		newApplicationsListCmd(a),
		newApplicationsShowCmd(a),
		newApplicationsSetStatusCmd(a),
		newApplicationsReviewCmd(a),
	)
	return cmd
}

func parsePersonID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid application id %q", value)
	}
	return id, nil
}

func newApplicationsListCmd(a *app) *cobra.Command {
	var status, name string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications, optionally filtered by status and name",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := recruitment.ParseStatusFilter(status)
			if err != nil {
				return err
			}

			presenter := recruitment.NewListPresenter(a.recruitment)
			presenter.SetStatusFilter(filter)
			presenter.SetNameSearch(name)
			if err := presenter.Load(cmd.Context()); err != nil {
				return err
			}

			state := presenter.State()
			if a.jsonOutput() {
				return writeJSON(out(cmd), state)
			}
			return printSummaries(out(cmd), state)
		},
	}
	cmd.Flags().StringVar(&status, "status", string(recruitment.FilterAll), "Status filter: ALL, "+statusList())
	cmd.Flags().StringVar(&name, "name", "", "Only names containing this text")
	return cmd
}

func newApplicationsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePersonID(args[0])
			if err != nil {
				return err
			}

			presenter := recruitment.NewDetailPresenter(a.recruitment, a.recruitment)
			defer presenter.Close()
			if err := presenter.Open(cmd.Context(), id); err != nil {
				return err
			}

			state := presenter.State()
			if a.jsonOutput() {
				return writeJSON(out(cmd), state.Application)
			}
			printApplication(out(cmd), state.Application)
			return nil
		},
	}
}

func newApplicationsSetStatusCmd(a *app) *cobra.Command {
	var ifVersion int64

	cmd := &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Change the status of an application",
		Long: "Change the status of an application. With --if-version the change is only made " +
			"when the application is still at the version you last saw.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePersonID(args[0])
			if err != nil {
				return err
			}
			status, err := recruitment.ParseStatus(args[1])
			if err != nil {
				return err
			}

			presenter := recruitment.NewDetailPresenter(a.recruitment, a.recruitment)
			defer presenter.Close()
			if err := presenter.Open(cmd.Context(), id); err != nil {
				return err
			}

			loaded := presenter.State()
			if cmd.Flags().Changed("if-version") && loaded.Application.Version != ifVersion {
				log.Info().
					Int64("personId", id).
					Int64("expected", ifVersion).
					Int64("actual", loaded.Application.Version).
					Msg("Application changed since it was viewed")
				loaded.Conflict = true
				return reportDetail(a, cmd, loaded, recruitment.ErrVersionConflict)
			}

			updateErr := presenter.UpdateStatus(cmd.Context(), status)
			return reportDetail(a, cmd, presenter.State(), updateErr)
		},
	}
	cmd.Flags().Int64Var(&ifVersion, "if-version", 0, "Only update when the application is at this version")
	return cmd
}

func reportDetail(a *app, cmd *cobra.Command, state recruitment.DetailState, err error) error {
	if a.jsonOutput() {
		if encodeErr := writeJSON(out(cmd), state); encodeErr != nil {
			return encodeErr
		}
	} else {
		printDetailState(out(cmd), state)
	}
	return err
}

func newApplicationsReviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review <id>",
		Short: "Review an application interactively",
		Long: "Opens an application and reads commands from stdin: accept, reject, unhandled, " +
			"reload, dismiss, quit.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePersonID(args[0])
			if err != nil {
				return err
			}

			presenter := recruitment.NewDetailPresenter(a.recruitment, a.recruitment)
			defer presenter.Close()

			states, stop := presenter.Subscribe()
			defer stop()
			go func() {
				for state := range states {
					log.Debug().Str("phase", string(state.Phase)).Int64("personId", state.PersonID).Msg("Review state changed")
				}
			}()

			sessionEvents := a.watchSession(cmd)

			if err := presenter.Open(cmd.Context(), id); err != nil {
				printDetailState(out(cmd), presenter.State())
				return err
			}
			printDetailState(out(cmd), presenter.State())

			stopped := make(chan struct{})
			defer close(stopped)
			lines := readCommands(cmd.InOrStdin(), stopped)

			for {
				fmt.Fprint(out(cmd), "> ")
				select {
				case <-cmd.Context().Done():
					return nil
				case event, open := <-sessionEvents:
					if !open {
						sessionEvents = nil
						continue
					}
					fmt.Fprintf(out(cmd), "\nSession changed (%s): ", event.Type)
					printProfile(out(cmd), event.User)
				case line, open := <-lines:
					if !open {
						return nil
					}
					done, err := runReviewCommand(cmd, presenter, id, line)
					if err != nil {
						fmt.Fprintln(out(cmd), err)
					}
					if done {
						return nil
					}
				}
			}
		},
	}
}

// readCommands streams normalized input lines until the input ends or done
// is closed.
func readCommands(r io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- strings.ToLower(strings.TrimSpace(scanner.Text())):
			case <-done:
				return
			}
		}
	}()
	return lines
}

func runReviewCommand(cmd *cobra.Command, presenter *recruitment.DetailPresenter, id int64, line string) (bool, error) {
	var status recruitment.Status
	switch line {
	case "":
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "reload":
		err := presenter.Open(cmd.Context(), id)
		printDetailState(out(cmd), presenter.State())
		return false, err
	case "dismiss":
		presenter.DismissResult()
		printDetailState(out(cmd), presenter.State())
		return false, nil
	case "accept":
		status = recruitment.StatusAccepted
	case "reject":
		status = recruitment.StatusRejected
	case "unhandled":
		status = recruitment.StatusUnhandled
	default:
		return false, fmt.Errorf("unknown command %q", line)
	}

	err := presenter.UpdateStatus(cmd.Context(), status)
	printDetailState(out(cmd), presenter.State())
	if errors.Is(err, recruitment.ErrVersionConflict) || errors.Is(err, recruitment.ErrUpdateRejected) {
		// already shown in the state
		return false, nil
	}
	return false, err
}

// watchSession returns auth events while the command runs. The token file
// is only watched when session.watch is enabled.
func (a *app) watchSession(cmd *cobra.Command) <-chan session.AuthEvent {
	subscriber := a.hub.Subscribe()
	if subscriber == nil {
		return nil
	}

	store, ok := a.store.(*session.FileStore)
	if a.config.Session.Watch && ok {
		watcher, err := session.NewWatcher(store, a.hub)
		if err != nil {
			log.Warn().Err(err).Msg("Session changes from other processes will not be noticed")
		} else {
			go watcher.Run(cmd.Context())
		}
	}
	return subscriber.Events()
}
