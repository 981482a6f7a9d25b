package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/prappser/recruitment_client/internal/applicant"
	"github.com/prappser/recruitment_client/internal/profile"
	"github.com/prappser/recruitment_client/internal/validation"
	"github.com/spf13/cobra"
)

func newCompetencesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "competences",
		Short: "List the competences an applicant can claim",
		RunE: func(cmd *cobra.Command, args []string) error {
			competences, err := a.applicant.Competences(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(out(cmd), competences)
			}
			for _, competence := range competences {
				fmt.Fprintf(out(cmd), "%d\t%s\n", competence.CompetenceID, competence.Name)
			}
			return nil
		},
	}
}

func newMyApplicationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "my-application",
		Short: "Show or save your own application (applicants)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your application",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := a.applicant.MyApplication(cmd.Context())
			if errors.Is(err, applicant.ErrApplicationNotFound) {
				fmt.Fprintln(out(cmd), "You have not applied yet")
				return nil
			}
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(out(cmd), application)
			}
			printOwnApplication(out(cmd), application)
			return nil
		},
	})

	var (
		file   string
		create bool
	)
	save := &cobra.Command{
		Use:   "save",
		Short: "Submit or replace your application from a JSON file",
		Long: "Reads {name, surname, competences[{competenceId, yearsOfExperience}], " +
			"availabilities[{fromDate, toDate}]} from --file. Saving replaces everything stored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := readForm(file)
			if err != nil {
				return err
			}
			if err := validation.Struct(form); err != nil {
				return err
			}

			if create {
				err = a.applicant.Submit(cmd.Context(), form)
			} else {
				err = a.applicant.UpdateMyApplication(cmd.Context(), form)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Application saved")
			return nil
		},
	}
	save.Flags().StringVarP(&file, "file", "f", "", "Application form JSON file (required)")
	save.Flags().BoolVar(&create, "create", false, "Submit a first application instead of replacing the existing one")
	_ = save.MarkFlagRequired("file")
	cmd.AddCommand(save)
	return cmd
}

func readForm(path string) (applicant.ApplicationForm, error) {
	var form applicant.ApplicationForm
	data, err := os.ReadFile(path)
	if err != nil {
		return form, fmt.Errorf("failed to read application form: %w", err)
	}
	if err := json.Unmarshal(data, &form); err != nil {
		return form, fmt.Errorf("failed to parse application form: %w", err)
	}
	return form, nil
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	var req profile.UpdateRequest
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your e-mail address and/or personal number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Struct(req); err != nil {
				return err
			}
			if err := a.profile.UpdateProfile(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Profile updated")
			return nil
		},
	}
	update.Flags().StringVar(&req.Email, "email", "", "New e-mail address")
	update.Flags().StringVar(&req.Pnr, "pnr", "", "New personal number, YYYYMMDD-XXXX")
	update.MarkFlagsOneRequired("email", "pnr")
	cmd.AddCommand(update)
	return cmd
}
