package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"violet-client/internal/app"
	"violet-client/internal/model"
)

func (rt *runtime) printReply(views []model.MessageView) {
	if len(views) == 0 {
		return
	}
	last := views[len(views)-1]
	if last.Role != model.RoleAssistant {
		return
	}
	fmt.Fprintf(rt.out, "%s\n", last.Content)
	if len(last.Sources) > 0 {
		fmt.Fprintln(rt.out, "Sources:")
		for _, s := range last.Sources {
			fmt.Fprintf(rt.out, "  - %s (page %d, relevance %.2f)\n", s.Source, s.Page, s.RelevanceScore)
		}
	}
}

func (rt *runtime) selectForChat(cmd *cobra.Command, raw string) error {
	id, err := parseCollectionID(raw)
	if err != nil {
		return err
	}
	if err := rt.restore(cmd.Context()); err != nil {
		return err
	}
	return rt.orchestrator().SelectByID(cmd.Context(), id)
}

func (rt *runtime) askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <collection-id> <question>...",
		Short: "Ask one question about a collection",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.selectForChat(cmd, args[0]); err != nil {
				return err
			}
			question := strings.Join(args[1:], " ")
			if err := rt.orchestrator().Send(cmd.Context(), question); err != nil {
				return err
			}
			rt.printReply(rt.orchestrator().Snapshot().Transcript)
			return nil
		},
	}
}

func (rt *runtime) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <collection-id>",
		Short: "Converse with a collection interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.selectForChat(cmd, args[0]); err != nil {
				return err
			}
			snap := rt.orchestrator().Snapshot()
			fmt.Fprintf(rt.out, "Chatting with %s. Type /quit to leave.\n", snap.Selected.DisplayName())

			for {
				line, err := rt.prompt("> ")
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				switch strings.TrimSpace(line) {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				}

				err = rt.orchestrator().Send(cmd.Context(), line)
				switch {
				case err == nil:
					rt.printReply(rt.orchestrator().Snapshot().Transcript)
				case errors.Is(err, app.ErrNotAuthenticated), errors.Is(err, app.ErrNoSelection):
					return err
				default:
					// Already reported as a notification.
				}
			}
		},
	}
}
