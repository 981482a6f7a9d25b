package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/prappser/recruitment_client/internal"
	"github.com/prappser/recruitment_client/internal/api"
	"github.com/prappser/recruitment_client/internal/applicant"
	"github.com/prappser/recruitment_client/internal/auth"
	"github.com/prappser/recruitment_client/internal/metrics"
	"github.com/prappser/recruitment_client/internal/profile"
	"github.com/prappser/recruitment_client/internal/recruitment"
	"github.com/prappser/recruitment_client/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Options lets callers replace pieces of the wiring, mainly for tests.
type Options struct {
	ConfigureAPI func(*api.Config)
	TokenStore   session.TokenStore
}

type app struct {
	config      *internal.Config
	output      string
	hub         *session.Hub
	store       session.TokenStore
	session     *session.Manager
	auth        *auth.Client
	recruitment *recruitment.Client
	applicant   *applicant.Client
	profile     *profile.Client
}

func NewRootCmd(opts Options) *cobra.Command {
	var (
		configFile      string
		metricsTextfile string
		a               = &app{}
	)

	cmd := &cobra.Command{
		Use:           "recruitment",
		Short:         "Client for the recruitment platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.output != outputText && a.output != outputJSON {
				return fmt.Errorf("invalid --output %q, want %s or %s", a.output, outputText, outputJSON)
			}
			config, err := internal.LoadConfig(configFile)
			if err != nil {
				return err
			}
			internal.SetupLogging(config.Logging)
			return a.wire(cmd.Context(), config, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if metricsTextfile == "" {
				return nil
			}
			return metrics.WriteTextfile(metricsTextfile)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: config.yaml in ./files, . or the user config dir)")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "Output format: text or json")
	cmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write request metrics to this file on exit")

	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRegisterCmd(a),
		newRegisterRecruiterCmd(a),
		newResetOldUserCmd(a),
		newSessionCmd(a),
		newApplicationsCmd(a),
		newCompetencesCmd(a),
		newMyApplicationCmd(a),
		newProfileCmd(a),
	)
	return cmd
}

func (a *app) wire(ctx context.Context, config *internal.Config, opts Options) error {
	a.config = config

	a.store = opts.TokenStore
	if a.store == nil {
		a.store = session.NewFileStore(config.Session.TokenFile)
	}

	apiConfig := api.Config{
		BaseURL:         config.API.BaseURL,
		RequestTimeout:  config.API.RequestTimeout(),
		MaxConnsPerHost: config.API.MaxConnsPerHost,
	}
	if opts.ConfigureAPI != nil {
		opts.ConfigureAPI(&apiConfig)
	}
	apiClient := api.NewClient(apiConfig, a.store)

	a.hub = session.NewHub()
	go a.hub.Run(ctx)

	a.auth = auth.NewClient(apiClient)
	a.session = session.NewManager(a.auth, a.store, a.hub)
	a.recruitment = recruitment.NewClient(apiClient)
	a.applicant = applicant.NewClient(apiClient)
	a.profile = profile.NewClient(apiClient)

	log.Debug().
		Str("baseUrl", apiConfig.BaseURL).
		Dur("timeout", apiConfig.RequestTimeout).
		Msg("Client configured")
	return nil
}

func (a *app) jsonOutput() bool {
	return a.output == outputJSON
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
