package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/toyz/addendum/internal/utils"
)

type globalOptions struct {
	configPath string
	verbose    bool
	quiet      bool
	debug      bool
}

// Execute runs the root command
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

// NewRootCommand builds the addendum command tree
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "addendum",
		Short: "Inspect doc comment annotations in Go source",
		Long: `addendum scans Go packages for @Tag(...) annotations written in doc
comments, resolves them against the known annotation types and reports
what it built.

Directories accept Go-style patterns: ./... scans recursively.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default <dir>/"+ConfigFile+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only show errors")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log engine debug events")

	root.AddCommand(newInspectCommand(opts))
	root.AddCommand(newTypesCommand(opts))
	root.AddCommand(newWatchCommand(opts))
	return root
}

// session is what every command works with
type session struct {
	diag *utils.DiagnosticSystem
	ws   *Workspace
}

func (o *globalOptions) open(cmd *cobra.Command, args []string) (*session, error) {
	targets, err := ParseTargets(args)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(o.configPath, targets[0].Dir)
	if err != nil {
		return nil, err
	}

	level := utils.DiagnosticInfo
	switch {
	case o.quiet:
		level = utils.DiagnosticError
	case o.debug:
		level = utils.DiagnosticDebug
	case o.verbose || cfg.Verbose:
		level = utils.DiagnosticVerbose
	}
	diag := utils.NewDiagnosticSystem(level)
	if out := cmd.OutOrStdout(); out != os.Stdout {
		diag.SetOutput(out, cmd.ErrOrStderr())
	}

	logLevel := zerolog.WarnLevel
	if o.debug {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(logLevel).With().Timestamp().Logger()

	ws, err := NewWorkspace(cfg, targets, logger)
	if err != nil {
		return nil, err
	}

	for _, target := range targets {
		if pkg, err := PackagePath(target.Dir); err == nil {
			diag.Verbose("scanning %s (%s)", target.Dir, pkg)
		} else {
			diag.Verbose("scanning %s", target.Dir)
		}
	}
	diag.Debug("resolver %s, %d files, %d annotation types", cfg.Resolver, len(ws.Source.Files()), len(ws.Engine.DeclaredTypes()))
	return &session{diag: diag, ws: ws}, nil
}

func newInspectCommand(opts *globalOptions) *cobra.Command {
	var classes []string

	cmd := &cobra.Command{
		Use:   "inspect [directories...]",
		Short: "Build and print the annotations of scanned classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, args)
			if err != nil {
				return err
			}
			return s.inspect(classes)
		},
	}
	cmd.Flags().StringSliceVar(&classes, "class", nil, "only inspect these classes")
	return cmd
}

func (s *session) inspect(classes []string) error {
	explicit := len(classes) > 0
	if !explicit {
		classes = s.ws.Classes()
	}

	s.diag.Header("inspecting annotations")
	var failed, shown, total int
	for _, class := range classes {
		report, err := s.ws.Inspect(class)
		if err != nil {
			s.diag.Error("%s: %v", class, err)
			failed++
			continue
		}
		if !explicit && !report.Annotated() {
			continue
		}
		shown++
		total += s.printReport(report)
	}

	s.diag.Summary("Done", map[string]interface{}{
		"classes":     shown,
		"annotations": total,
		"failures":    failed,
	})
	if failed > 0 {
		return fmt.Errorf("%d of %d classes failed", failed, len(classes))
	}
	s.diag.Success("no failures, %d shown", shown)
	return nil
}

func (s *session) printReport(r *ClassReport) int {
	count := len(r.Annotations)
	s.diag.Section(r.Name)
	s.diag.Indent()
	defer s.diag.Unindent()

	for _, inst := range r.Annotations {
		s.diag.List("%s", inst)
	}
	for _, m := range r.Methods {
		s.diag.Line("%s()", m.Name)
		s.diag.Indent()
		for _, inst := range m.Annotations {
			s.diag.List("%s", inst)
		}
		s.diag.Unindent()
		count += len(m.Annotations)
	}
	for _, p := range r.Properties {
		s.diag.Line("$%s", p.Name)
		s.diag.Indent()
		for _, inst := range p.Annotations {
			s.diag.List("%s", inst)
		}
		s.diag.Unindent()
		count += len(p.Annotations)
	}
	return count
}

func newTypesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types [directories...]",
		Short: "List the annotation types known after scanning",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, args)
			if err != nil {
				return err
			}

			types := s.ws.Engine.DeclaredTypes()
			for _, t := range types {
				line := t.Name()
				if t.Extends() != "" {
					line += " extends " + t.Extends()
				}
				if props := t.Properties(); len(props) > 0 {
					line += fmt.Sprintf(" %v", props)
				}
				if s.ws.Engine.Ignores(t.Name()) {
					line += " (ignored)"
				}
				s.diag.List("%s", line)
			}
			s.diag.Summary("Done", map[string]interface{}{"types": len(types)})
			return nil
		},
	}
}

func newWatchCommand(opts *globalOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch [directories...]",
		Short: "Re-inspect classes whenever scanned files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, args)
			if err != nil {
				return err
			}
			return s.watch(cmd.Context(), metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
	return cmd
}

func (s *session) watch(ctx context.Context, metricsAddr string) error {
	if err := s.inspect(nil); err != nil {
		s.diag.Warn("%v", err)
	}

	watcher, err := NewWatcher(s.ws, func(path string, err error) {
		if err != nil {
			s.diag.Error("%s: %v", path, err)
			return
		}
		s.diag.Info("%s changed", path)
		if err := s.inspect(nil); err != nil {
			s.diag.Warn("%v", err)
		}
	})
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.ws.Metrics.Handler())
		server := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.diag.Error("metrics server: %v", err)
			}
		}()
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdown)
		}()
		s.diag.Info("metrics on %s/metrics", metricsAddr)
	}

	s.diag.Info("watching for changes, press Ctrl+C to stop")
	return watcher.Run(ctx)
}
