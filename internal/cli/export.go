package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
	"github.com/souvikmukherjee/util-bian-modelling/internal/infra/bianapi"
	"github.com/souvikmukherjee/util-bian-modelling/internal/infra/httpclient"
	"github.com/souvikmukherjee/util-bian-modelling/internal/infra/logger"
	"github.com/souvikmukherjee/util-bian-modelling/internal/infra/runstore"
	"github.com/souvikmukherjee/util-bian-modelling/internal/infra/xlsxtable"
	"github.com/souvikmukherjee/util-bian-modelling/internal/ports"
	"github.com/souvikmukherjee/util-bian-modelling/internal/usecase"
)

type exportFlags struct {
	config      string
	out         string
	baseURL     string
	token       string
	concurrency int
	rps         float64
	noReport    bool
	format      string
}

func exportCmd() *cobra.Command {
	var f exportFlags

	c := &cobra.Command{
		Use:   "export",
		Short: "Fetch every service domain with its characteristics and write the xlsx table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(f.format); err != nil {
				return err
			}

			p, err := loadProject(f.config)
			if err != nil {
				return err
			}
			s := applyExportFlags(cmd, p, f)

			if debugEnabled(cmd) {
				s.Log.Debug = true
			}
			cleanup, err := logger.Setup(logger.Config{Dir: s.Log.Dir, Debug: s.Log.Debug})
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()
			log := logger.L()

			if err := s.Validate(); err != nil {
				return err
			}
			if s.UsesPlaceholderToken() {
				log.Warn("No access token configured, requests will likely be rejected",
					zap.String("hint", "set BIANX_TOKEN or pass --token"))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			uc := newExportUseCase(ctx, s, log)
			res, err := uc.Execute(ctx, s)
			if err != nil {
				return err
			}

			return printSummary(cmd.OutOrStdout(), res, logger.Path(), f.format)
		},
	}

	c.Flags().StringVarP(&f.config, "config", "c", "", "Config file (optional; bianx.yaml/bianx.toml autodetected)")
	c.Flags().StringVarP(&f.out, "out", "o", "", "Output xlsx path (default "+domain.DefaultOutputPath+")")
	c.Flags().StringVar(&f.baseURL, "base-url", "", "BIAN API base URL")
	c.Flags().StringVar(&f.token, "token", "", "Bearer token (prefer the BIANX_TOKEN environment variable)")
	c.Flags().IntVar(&f.concurrency, "concurrency", 1, "Maximum detail requests in flight")
	c.Flags().Float64Var(&f.rps, "rps", 0, "Requests per second limit (0 disables pacing)")
	c.Flags().BoolVar(&f.noReport, "no-report", false, "Do not write a run report")
	c.Flags().StringVar(&f.format, "format", "pretty", "Summary format: pretty|json")
	return c
}

// applyExportFlags layers explicitly set flags over the loaded settings.
func applyExportFlags(cmd *cobra.Command, p *projectCtx, f exportFlags) domain.Settings {
	s := p.settings
	fl := cmd.Flags()

	if fl.Changed("out") && f.out != "" {
		s.Output.Path = resolveRelative(workingDir(p.root), f.out)
	}
	if fl.Changed("base-url") && f.baseURL != "" {
		s.API.BaseURL = f.baseURL
	}
	if fl.Changed("token") && f.token != "" {
		s.API.Token = f.token
	}
	if fl.Changed("concurrency") {
		s.Fetch.Concurrency = f.concurrency
	}
	if fl.Changed("rps") {
		s.Fetch.RequestsPerSecond = f.rps
	}
	if f.noReport {
		s.Output.WriteReport = false
	}
	return s
}

func newExportUseCase(ctx context.Context, s domain.Settings, log *zap.Logger) *usecase.ExportCatalog {
	client := httpclient.NewBearer(ctx, httpConfig(s), s.API.Token)
	exec := httpclient.NewExecutor(
		httpclient.WithClient(client),
		httpclient.WithTimeout(s.API.Timeout),
		httpclient.WithMaxBodyBytes(s.Fetch.MaxBodyBytes),
	)
	api := bianapi.New(exec, s.API,
		bianapi.WithLimiter(bianapi.NewLimiter(s.Fetch.RequestsPerSecond, s.Fetch.Burst)),
	)

	var store ports.ReportStore
	if s.Output.WriteReport {
		store = runstore.NewJSONStore(s.Output.ReportDir,
			runstore.WithIndex(true),
			runstore.WithSecrets(s.API.Token),
		)
	}

	return usecase.NewExportCatalog(api, api, xlsxtable.New(s.Output), store, log)
}

func httpConfig(s domain.Settings) httpclient.Config {
	return httpclient.DefaultConfig().WithRequestTimeout(s.API.Timeout)
}

// workingDir returns the working directory, falling back to root. Paths given on the
// command line are relative to where the user typed them.
func workingDir(root string) string {
	wd, err := os.Getwd()
	if err != nil {
		return root
	}
	return wd
}
