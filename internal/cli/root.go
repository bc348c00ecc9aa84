// Package cli is the terminal presentation of the client. Every invocation
// restores the persisted session, runs one intent against the orchestrator
// and prints the notifications it raised.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"violet-client/internal/app"
	"violet-client/internal/bootstrap"
)

var ErrNotLoggedIn = errors.New("not logged in, run `violet login` first")

// Factory builds the application for one invocation.
type Factory func(ctx context.Context) (*bootstrap.App, error)

type runtime struct {
	factory Factory
	app     *bootstrap.App
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute(ctx context.Context) int {
	err := Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, bootstrap.New)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// Run executes args with the given streams and application factory.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer, factory Factory) error {
	rt := &runtime{factory: factory, in: bufio.NewReader(in), out: out, errOut: errOut}
	defer rt.close()

	root := rt.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

func (rt *runtime) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "violet",
		Short:         "Violet asks questions about your PDF collections",
		Long:          `Violet is a terminal client for the Violet document question-answering service.
Upload PDFs into collections, then ask questions answered from their content.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.open(cmd.Context())
		},
	}
	root.AddCommand(
		rt.loginCmd(),
		rt.registerCmd(),
		rt.logoutCmd(),
		rt.statusCmd(),
		rt.collectionsCmd(),
		rt.providersCmd(),
		rt.uploadCmd(),
		rt.askCmd(),
		rt.chatCmd(),
		rt.serveCmd(),
	)
	return root
}

func (rt *runtime) open(ctx context.Context) error {
	if rt.app != nil {
		return nil
	}
	a, err := rt.factory(ctx)
	if err != nil {
		return err
	}
	rt.app = a
	a.Notifier.Subscribe(newPrinter(rt.errOut).print)
	return nil
}

func (rt *runtime) close() {
	if rt.app != nil {
		_ = rt.app.Close()
	}
}

func (rt *runtime) orchestrator() *app.Orchestrator {
	return rt.app.Orchestrator
}

// restore brings back the persisted session and loads the catalog.
func (rt *runtime) restore(ctx context.Context) error {
	restored, err := rt.orchestrator().Restore(ctx)
	if err != nil {
		return err
	}
	if !restored {
		return ErrNotLoggedIn
	}
	return nil
}

func (rt *runtime) prompt(label string) (string, error) {
	fmt.Fprint(rt.out, label)
	line, err := rt.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirmer asks on stdin unless assumeYes is set.
func (rt *runtime) confirmer(assumeYes bool) app.Confirmer {
	return app.ConfirmFunc(func(question string) bool {
		if assumeYes {
			return true
		}
		answer, err := rt.prompt(question + " [y/N] ")
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	})
}
