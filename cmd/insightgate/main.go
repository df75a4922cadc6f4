package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zen-systems/insightgate/pkg/config"
	"github.com/zen-systems/insightgate/pkg/content"
	"github.com/zen-systems/insightgate/pkg/engine"
	"github.com/zen-systems/insightgate/pkg/gate"
	"github.com/zen-systems/insightgate/pkg/insight"
	"github.com/zen-systems/insightgate/pkg/ledger"
	"github.com/zen-systems/insightgate/pkg/orchestrator"
	"github.com/zen-systems/insightgate/pkg/provider"
	"github.com/zen-systems/insightgate/pkg/shadow"
)

var (
	bundleFlag   string
	strategyFlag string
	personaFlag  string
	contextFlag  string
	focusFlag    int
	realmFlag    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "insightgate",
		Short: "Spiritual-insight orchestration core with fallback chains and quality gates",
		Long: `Insightgate routes insight generation requests to the best available
	content or model backend, walks a one-step fallback chain on failure,
	races providers in shadow mode, and enforces a minimum-quality
	guarantee before returning a result.`,
	}

	rootCmd.PersistentFlags().StringVar(&bundleFlag, "bundle", "", "path to the content bundle directory")
	rootCmd.PersistentFlags().StringVar(&strategyFlag, "strategy", "", "generation strategy override")
	rootCmd.PersistentFlags().StringVar(&personaFlag, "persona", "", "insight persona")
	rootCmd.PersistentFlags().StringVar(&contextFlag, "context", "daily reflection", "free-text context label")
	rootCmd.PersistentFlags().IntVar(&focusFlag, "focus", 1, "focus number")
	rootCmd.PersistentFlags().IntVar(&realmFlag, "realm", 1, "realm number")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(guaranteeCmd())
	rootCmd.AddCommand(competeCmd())
	rootCmd.AddCommand(strategiesCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(diagnosticsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime bundles the wired core for one command invocation.
type runtime struct {
	engine *engine.Engine
	shadow *shadow.Manager
	log    *zap.Logger
}

func buildRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if bundleFlag != "" {
		cfg.BundlePath = bundleFlag
	}
	if strategyFlag != "" {
		cfg.Strategy = strategyFlag
	}

	log, err := config.InitLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	tmpl := provider.NewTemplate()
	router := content.NewRouter(cfg.BundlePath,
		content.WithLogger(log),
		content.WithTemplateFallback(tmpl.FallbackText),
	)

	contentProv := provider.NewContent(router, provider.WithContentLogger(log))
	hybridProv := provider.NewHybrid(router, tmpl)
	stubProv := provider.NewStub()

	led := ledger.New(ledger.WithLogger(log))
	orch := orchestrator.New(led, tmpl,
		orchestrator.WithLogger(log),
		orchestrator.WithRouter(router),
	)
	orch.Register(orchestrator.StrategyContent, contentProv)
	orch.Register(orchestrator.StrategyHybrid, hybridProv)
	orch.Register(orchestrator.StrategyStub, stubProv)

	modelClient := buildModelClient(cfg)
	var remoteProv *provider.Remote
	if modelClient != nil {
		remoteProv = provider.NewRemote(modelClient, provider.WithRemoteLogger(log))
		orch.Register(orchestrator.StrategyRemote, remoteProv)
	}

	var scorer gate.Scorer = gate.NewHeuristic()
	if cfg.Gate.UseJudge && modelClient != nil {
		scorer = gate.NewJudge(modelClient, log)
	}

	qualityGate := gate.New(
		orch.GenerateStructured,
		[]gate.Generator{tmpl.GenerateStructured, stubProv.GenerateStructured},
		scorer,
		gate.WithThreshold(cfg.Gate.Threshold),
		gate.WithMaxAttempts(cfg.Gate.MaxAttempts),
		gate.WithLogger(log),
	)

	opts := []engine.Option{engine.WithLogger(log)}
	var shadowMgr *shadow.Manager
	if cfg.Shadow.Enabled && remoteProv != nil {
		shadowMgr = shadow.NewManager(contentProv, remoteProv, scorer,
			shadow.WithCeiling(time.Duration(cfg.Shadow.CeilingMs)*time.Millisecond),
			shadow.WithProbeWait(time.Duration(cfg.Shadow.ProbeWaitMs)*time.Millisecond),
			shadow.WithLogger(log),
		)
		opts = append(opts, engine.WithShadow(shadowMgr))
	}

	eng := engine.New(orch, qualityGate, opts...)
	if err := eng.SetStrategy(cfg.Strategy); err != nil {
		return nil, err
	}

	return &runtime{engine: eng, shadow: shadowMgr, log: log}, nil
}

func buildModelClient(cfg *config.Config) provider.ModelClient {
	switch cfg.Remote.Vendor {
	case "openai":
		c, err := provider.NewOpenAIClient(cfg.Remote.APIKey, cfg.Remote.BaseURL, cfg.Remote.Model)
		if err != nil {
			return nil
		}
		return c
	case "anthropic":
		c, err := provider.NewAnthropicClient(cfg.Remote.APIKey, cfg.Remote.Model)
		if err != nil {
			return nil
		}
		return c
	case "google":
		c, err := provider.NewGoogleClient(cfg.Remote.APIKey, cfg.Remote.Model)
		if err != nil {
			return nil
		}
		return c
	default:
		return nil
	}
}

func extras() map[string]string {
	out := map[string]string{}
	if personaFlag != "" {
		out["persona"] = personaFlag
	}
	return out
}

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate an insight for the given focus and realm numbers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			res, err := rt.engine.GenerateStructuredInsight(cmd.Context(), contextFlag, focusFlag, realmFlag, extras())
			if err != nil {
				return err
			}

			fmt.Println(res.Text)
			fmt.Printf("\n[provider=%s confidence=%.2f latency=%s]\n",
				res.Source.Provider, res.Confidence, res.Latency.Round(time.Millisecond))
			return nil
		},
	}
}

func guaranteeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guarantee",
		Short: "Generate an insight with a minimum-quality guarantee",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			text, score, err := rt.engine.GenerateGuaranteedInsight(
				cmd.Context(), focusFlag, realmFlag, insight.Persona(personaFlag), contextFlag)
			if err != nil {
				return err
			}

			fmt.Println(text)
			fmt.Printf("\n[score=%.2f]\n", score)
			return nil
		},
	}
}

func competeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compete",
		Short: "Race the content and model providers for the same request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			if rt.shadow == nil {
				return fmt.Errorf("shadow mode is not configured; set shadow.enabled and a remote vendor")
			}
			if !rt.shadow.Activate(cmd.Context()) {
				return fmt.Errorf("shadow mode activation failed: model provider not ready")
			}

			req := insight.NewRequest(contextFlag, focusFlag, realmFlag)
			if personaFlag != "" {
				req = req.WithExtra("persona", personaFlag)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			res, err := rt.shadow.Compete(ctx, req)
			if err != nil {
				return err
			}

			fmt.Printf("winner: %s (phase %s)\n\n%s\n", res.Winner, res.Phase, res.Displayed.Text)
			fmt.Printf("\ncontent side: status=%s score=%.2f latency=%s\n",
				res.ContentSide.Status, res.ContentSide.Score, res.ContentSide.Latency.Round(time.Millisecond))
			fmt.Printf("model side:   status=%s score=%.2f latency=%s\n",
				res.ModelSide.Status, res.ModelSide.Score, res.ModelSide.Latency.Round(time.Millisecond))
			return nil
		},
	}
}

func strategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List available generation strategies",
		RunE: func(_ *cobra.Command, _ []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STRATEGY")
			for _, s := range rt.engine.GetAvailableStrategies() {
				fmt.Fprintln(w, string(s))
			}
			return w.Flush()
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the provider performance report",
		RunE: func(_ *cobra.Command, _ []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			fmt.Print(rt.engine.GetPerformanceReport())
			return nil
		},
	}
}

func diagnosticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnostics",
		Short: "Print orchestration diagnostics",
		RunE: func(_ *cobra.Command, _ []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			diag := rt.engine.GetDiagnostics()
			keys := make([]string, 0, len(diag))
			for k := range diag {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\n", k, diag[k])
			}
			return w.Flush()
		},
	}
}
