// Command logview is an interactive terminal log analyzer: it streams
// raw lines from one or more sources through a parser, a bounded entry
// store, and a filterable viewport, rendered as a bubbletea TUI. The CLI
// surface (root command plus container/remote-shell/orchestrator/compose
// subcommands) follows the cobra-root-command shape grounded in the
// pack's other CLI repos, replacing the teacher's flat os.Args switch now
// that the spec calls for real subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/docker/docker/client"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rivermark/logview/internal/crashlog"
	"github.com/rivermark/logview/internal/ingest"
	"github.com/rivermark/logview/internal/tui"
)

var format string

func main() {
	defer func() {
		if r := recover(); r != nil {
			crashlog.Write(r, "main")
			os.Exit(1)
		}
	}()

	root := newRootCmd()
	root.AddCommand(newContainerCmd())
	root.AddCommand(newRemoteShellCmd())
	root.AddCommand(newOrchestratorCmd())
	root.AddCommand(newComposeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var completions string

	cmd := &cobra.Command{
		Use:   "logview [files...]",
		Short: "Interactive terminal log analyzer",
		Long: "logview streams one or more log sources into a filterable,\n" +
			"searchable terminal feed with automatic format detection.",
		Example: "  logview app.log\n" +
			"  tail -f app.log | logview\n" +
			"  logview --format json app.log",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if completions != "" {
				return emitCompletions(cmd, completions)
			}
			if err := validateFormat(format); err != nil {
				return err
			}
			producers, display, err := resolveFileProducers(args)
			if err != nil {
				return err
			}
			return runTUI(producers, format, display)
		},
	}
	cmd.PersistentFlags().StringVar(&format, "format", "auto", "parser format: json|laravel|django|go|nginx|plain|auto")
	cmd.Flags().StringVar(&completions, "completions", "", "emit shell completion script (bash|zsh|fish|powershell) and exit")
	return cmd
}

var validFormats = map[string]bool{
	"auto": true, "json": true, "laravel": true, "django": true,
	"go": true, "nginx": true, "plain": true,
}

func validateFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid --format %q: must be one of json, laravel, django, go, nginx, plain, auto", f)
	}
	return nil
}

func emitCompletions(cmd *cobra.Command, shell string) error {
	switch shell {
	case "bash":
		return cmd.Root().GenBashCompletion(os.Stdout)
	case "zsh":
		return cmd.Root().GenZshCompletion(os.Stdout)
	case "fish":
		return cmd.Root().GenFishCompletion(os.Stdout, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
	default:
		return fmt.Errorf("unknown shell %q for --completions", shell)
	}
}

// resolveFileProducers builds one FileProducer per path argument, unless
// stdin auto-selection applies (spec §6): no file args and stdin is not
// a terminal, or the sole argument is "-".
func resolveFileProducers(args []string) ([]ingest.Producer, string, error) {
	if len(args) == 0 {
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return nil, "", fmt.Errorf("no files given and standard input is a terminal")
		}
		return []ingest.Producer{ingest.NewStdinProducer(os.Stdin)}, "stdin", nil
	}
	if len(args) == 1 && args[0] == "-" {
		return []ingest.Producer{ingest.NewStdinProducer(os.Stdin)}, "stdin", nil
	}

	producers := make([]ingest.Producer, 0, len(args))
	for _, path := range args {
		p, err := ingest.NewFileProducer(path)
		if err != nil {
			return nil, "", fmt.Errorf("opening %s: %w", path, err)
		}
		producers = append(producers, p)
	}
	display := args[0]
	if len(args) > 1 {
		display = fmt.Sprintf("%s (+%d more)", args[0], len(args)-1)
	}
	return producers, display, nil
}

func newContainerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "container <name-or-id>",
		Short: "Stream logs from a running Docker container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
			if err != nil {
				return fmt.Errorf("creating docker client: %w", err)
			}
			defer cli.Close()

			p := ingest.NewContainerProducer(cli, args[0], args[0])
			return runTUI([]ingest.Producer{p}, format, args[0])
		},
	}
}

func newRemoteShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remote-shell <host> -- <command...>",
		Short: "Stream logs from a remote host over ssh",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			host, remoteCmd := args[0], args[1:]
			p := ingest.NewRemoteShellProducer(host, remoteCmd)
			return runTUI([]ingest.Producer{p}, format, p.DisplayName())
		},
	}
}

func newOrchestratorCmd() *cobra.Command {
	var namespace, container string
	cmd := &cobra.Command{
		Use:   "orchestrator <pod>",
		Short: "Stream logs from a Kubernetes pod via kubectl",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			p := ingest.NewOrchestratorProducer(namespace, args[0], container)
			return runTUI([]ingest.Producer{p}, format, p.DisplayName())
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "kubernetes namespace")
	cmd.Flags().StringVarP(&container, "container", "c", "", "container within the pod")
	return cmd
}

func newComposeCmd() *cobra.Command {
	var service string
	cmd := &cobra.Command{
		Use:   "compose <compose-file>",
		Short: "Stream logs from a docker-compose project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			p := ingest.NewComposeProducer(args[0], service)
			return runTUI([]ingest.Producer{p}, format, p.DisplayName())
		},
	}
	cmd.Flags().StringVarP(&service, "service", "s", "", "single service within the compose file")
	return cmd
}

// runTUI bootstraps the bubbletea program over producers and blocks
// until the user quits or a fatal error occurs (spec §6 exit codes: 0 on
// clean quit, 1 on fatal producer/program error).
func runTUI(producers []ingest.Producer, format, displayName string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	crashlog.Go("signal-handler", func() {
		<-sigChan
		cancel()
	})

	stop := make(chan struct{})
	defer close(stop)
	crashlog.WatchGoroutines(30*time.Second, stop)

	m := tui.New(producers, format, displayName, ctx)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
