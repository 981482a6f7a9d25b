package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/prappser/recruitment_client/internal/applicant"
	"github.com/prappser/recruitment_client/internal/recruitment"
	"github.com/prappser/recruitment_client/internal/session"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummaries(w io.Writer, state recruitment.ListState) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS")
	for _, summary := range state.Applications {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", summary.PersonID, summary.FullName, summary.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d applications\n", len(state.Applications), state.TotalCount)
	return err
}

func printApplication(w io.Writer, app *recruitment.ApplicationDetail) {
	fmt.Fprintf(w, "Application %d: %s\n", app.PersonID, app.FullName())
	fmt.Fprintf(w, "  Status:  %s (version %d)\n", app.Status, app.Version)
	fmt.Fprintf(w, "  Email:   %s\n", app.Email)
	fmt.Fprintf(w, "  PNR:     %s\n", app.Pnr)
	printCompetences(w, len(app.Competences), func(i int) (string, float64) {
		return app.Competences[i].Name, app.Competences[i].YearsOfExperience
	})
	printAvailabilities(w, len(app.Availabilities), func(i int) (string, string) {
		return app.Availabilities[i].FromDate, app.Availabilities[i].ToDate
	})
}

func printOwnApplication(w io.Writer, app *applicant.Application) {
	fmt.Fprintf(w, "%s %s\n", app.Name, app.Surname)
	fmt.Fprintf(w, "  Status:  %s\n", app.Status)
	printCompetences(w, len(app.Competences), func(i int) (string, float64) {
		return app.Competences[i].Name, app.Competences[i].YearsOfExperience
	})
	printAvailabilities(w, len(app.Availabilities), func(i int) (string, string) {
		return app.Availabilities[i].FromDate, app.Availabilities[i].ToDate
	})
}

func printCompetences(w io.Writer, n int, entry func(int) (string, float64)) {
	fmt.Fprintln(w, "  Competences:")
	if n == 0 {
		fmt.Fprintln(w, "    none")
	}
	for i := 0; i < n; i++ {
		name, years := entry(i)
		fmt.Fprintf(w, "    - %s, %g years\n", name, years)
	}
}

func printAvailabilities(w io.Writer, n int, period func(int) (string, string)) {
	fmt.Fprintln(w, "  Availability:")
	if n == 0 {
		fmt.Fprintln(w, "    none")
	}
	for i := 0; i < n; i++ {
		from, to := period(i)
		fmt.Fprintf(w, "    - %s to %s\n", from, to)
	}
}

func printDetailState(w io.Writer, state recruitment.DetailState) {
	switch {
	case state.LoadError != "":
		fmt.Fprintf(w, "Could not load application: %s\n", state.LoadError)
		return
	case state.Application == nil:
		fmt.Fprintln(w, "No application loaded")
		return
	}

	if state.Conflict {
		fmt.Fprintln(w, "The application was changed by someone else. Showing the current version:")
	}
	if state.UpdateError != "" {
		fmt.Fprintf(w, "Update failed: %s\n", state.UpdateError)
	}
	if state.UpdateSuccess {
		fmt.Fprintf(w, "Status set to %s\n", state.Application.Status)
	}
	printApplication(w, state.Application)
}

func printProfile(w io.Writer, profile *session.UserProfile) {
	if profile == nil {
		fmt.Fprintln(w, "Not signed in")
		return
	}
	fmt.Fprintf(w, "%s (%s)", profile.Username, profile.RoleName())
	if !profile.ExpiresAt.IsZero() {
		fmt.Fprintf(w, ", session expires %s", profile.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w)
}

func statusList() string {
	names := make([]string, len(recruitment.Statuses))
	for i, status := range recruitment.Statuses {
		names[i] = string(status)
	}
	return strings.Join(names, ", ")
}
