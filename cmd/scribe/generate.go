package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/scribe/internal/config"
	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/internal/infrastructure"
	"github.com/JaimeStill/scribe/internal/items"
	"github.com/JaimeStill/scribe/internal/pipeline"
)

type generateOptions struct {
	export bool
	output string
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate FILE...",
		Short: "Generate a report for each file",
		Long: `Generate runs one batch over the given files, one at a time in the order
given, and prints a status table. With --export it signs in through the device
flow and exports every generated report.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.export, "export", false, "export generated reports after the batch")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "directory to write reports to as markdown")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, opts *generateOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())

	out := cmd.OutOrStdout()

	registry := items.NewRegistry()
	registry.Subscribe(progress(cmd.ErrOrStderr()))

	manager := credentials.New(infra.Provider, infra.Target, infra.Logger)
	if opts.export {
		if err := manager.Start(infra.Lifecycle); err != nil {
			return err
		}
	}

	session := pipeline.New(registry, manager, infra.Extractor, infra.Generator, infra.Target, infra.Logger)

	sources, err := collectSources(args, infra.Extractor.Supports)
	if err != nil {
		return err
	}
	session.AddItems(sources...)

	summary, err := session.RunBatch(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "batch finished in %s: %d done, %d failed, %d remaining\n",
		summary.Duration.Round(time.Millisecond), summary.Done, summary.Failed, summary.Remaining)

	if opts.output != "" {
		if err := writeReports(opts.output, registry); err != nil {
			return err
		}
	}

	if opts.export && summary.Done > 0 {
		if err := exportAll(ctx, cmd.ErrOrStderr(), manager, session, registry); err != nil {
			fmt.Fprintln(out, renderItems(registry.All()))
			return err
		}
	}

	fmt.Fprintln(out, renderItems(registry.All()))

	if counts := registry.Counts(); counts.Failed > 0 {
		return fmt.Errorf("%d of %d items failed", counts.Failed, counts.Total)
	}
	return nil
}

func collectSources(paths []string, supports func(string) bool) ([]items.Source, error) {
	sources := make([]items.Source, 0, len(paths))
	for _, path := range paths {
		if !supports(path) {
			return nil, fmt.Errorf("%w: %s", pipeline.ErrUnsupportedFile, path)
		}
		src, err := items.FileSource(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func progress(w io.Writer) items.Observer {
	return func(it items.Item) {
		switch it.Generation.Phase() {
		case items.GenerationProcessing:
			fmt.Fprintf(w, "processing %s\n", it.Name)
		case items.GenerationFailed:
			reason, _ := it.Generation.Reason()
			fmt.Fprintf(w, "failed     %s: %s\n", it.Name, reason)
		case items.GenerationDone:
			if it.Export.Phase() == items.ExportNotStarted {
				fmt.Fprintf(w, "done       %s\n", it.Name)
			}
		}
	}
}

func exportAll(
	ctx context.Context,
	w io.Writer,
	manager *credentials.Manager,
	session *pipeline.Session,
	registry *items.Registry,
) error {
	if err := manager.WaitReady(ctx); err != nil {
		return fmt.Errorf("export unavailable: %w", err)
	}

	err := session.SignIn(ctx, func(c credentials.Challenge) {
		if c.Message != "" {
			fmt.Fprintln(w, c.Message)
			return
		}
		fmt.Fprintf(w, "To sign in, open %s and enter the code %s\n", c.VerificationURI, c.UserCode)
	})
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	defer session.SignOut(context.WithoutCancel(ctx))

	for it := range registry.ByGeneration(items.GenerationDone) {
		if _, err := session.ExportItem(ctx, it.ID); err != nil {
			if errors.Is(err, credentials.ErrNotSignedIn) {
				return fmt.Errorf("export of %s refused: credential was revoked", it.Name)
			}
			return fmt.Errorf("export %s: %w", it.Name, err)
		}
	}
	return nil
}

func writeReports(dir string, registry *items.Registry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	taken := make(map[string]bool)
	for it := range registry.ByGeneration(items.GenerationDone) {
		report, _ := it.Generation.Report()
		path := filepath.Join(dir, reportFileName(it.Name, taken))
		if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

// reportFileName swaps the extension for .md and suffixes repeats.
func reportFileName(name string, taken map[string]bool) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	file := base + ".md"
	for n := 2; taken[file]; n++ {
		file = fmt.Sprintf("%s-%d.md", base, n)
	}
	taken[file] = true
	return file
}
