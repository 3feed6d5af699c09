// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rundown-cli/internal/dispatch"
	"rundown-cli/internal/issue"
	"rundown-cli/internal/serve"
	"rundown-cli/internal/shell"
)

var (
	serveFile     string
	serveRuntime  string
	serveHost     string
	servePort     int
	serveTokenTTL time.Duration

	// serveCmd exposes recipes over SSH.
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Expose recipes over SSH",
		Long: `Start an SSH server that runs recipes on behalf of remote clients.

Clients authenticate with a token (printed at startup) passed as the
SSH password, and invoke exactly one recipe per session:

  ssh -p <port> rundown@<host> <recipe> [args...]

Each session resolves nothing anew: bindings are resolved once at
startup, but every invocation gets an independent environment snapshot.
Interactive shell access is never granted.`,
		RunE: runServe,
	}
)

func init() {
	serveCmd.Flags().StringVarP(&serveFile, "file", "f", "", "rundown file to use (default: ./rundown.cue)")
	serveCmd.Flags().StringVarP(&serveRuntime, "runtime", "r", "", "execution runtime (native, virtual)")
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "address to bind to")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 2222, "port to listen on (0 = auto-select)")
	serveCmd.Flags().DurationVar(&serveTokenTTL, "token-ttl", time.Hour, "how long issued tokens stay valid")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	file, err := loadRundownfile(serveFile)
	if err != nil {
		return err
	}

	rt, err := newRuntime(serveRuntime)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// Resolve once at startup, like a local run would.
	resolved, exports, err := resolveBindings(ctx, file, rt)
	if err != nil {
		return err
	}

	logger := newRunLogger()

	srv := serve.New(serve.Config{
		Host:     serveHost,
		Port:     servePort,
		TokenTTL: serveTokenTTL,
	}, func(sessCtx context.Context, recipe string, args []string, stdin io.Reader, stdout, stderr io.Writer) (shell.ExitCode, error) {
		d := &dispatch.Dispatcher{
			File:     file,
			Bindings: resolved,
			Exports:  exports,
			Runtime:  rt,
			Logger:   logger,
			Stdout:   stdout,
			Stderr:   stderr,
			Stdin:    stdin,
		}
		return d.Dispatch(sessCtx, recipe, args, dispatch.Options{})
	})

	if err := srv.Start(ctx); err != nil {
		renderIssue(issue.ServeStartFailedId)
		return fmt.Errorf("failed to start server: %w", err)
	}

	info, err := srv.GetConnectionInfo("serve")
	if err != nil {
		_ = srv.Stop()
		return err
	}

	fmt.Println(TitleStyle.Render("rundown serve"))
	fmt.Println()
	fmt.Printf("  %s: %s\n", RecipeStyle.Render("Address"), srv.Address())
	fmt.Printf("  %s: %s\n", RecipeStyle.Render("Token"), info.Token)
	fmt.Printf("  %s: %s\n", RecipeStyle.Render("Expires"), info.ExpireAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Printf("  %s\n", SubtitleStyle.Render(
		fmt.Sprintf("ssh -p %d %s@%s <recipe> [args...]   (token as password)", srv.Port(), info.User, srv.Host())))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		fmt.Println()
		fmt.Println(SubtitleStyle.Render("Shutting down..."))
	case err := <-srv.Err():
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Server error: ")+err.Error())
		}
	case <-ctx.Done():
	}

	return srv.Stop()
}
