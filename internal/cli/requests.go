package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"wodo.ai/wodo-connect/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	typeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Width(8)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func newRequestsCmd() *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "requests <username>",
		Short: "List a user's pending requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := store.RequestType(strings.ToLower(typ))
			if t != "" && !t.Valid() {
				return fmt.Errorf("--type must be chat or friend, got %q", typ)
			}

			svc, st, err := openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			username := strings.ToLower(args[0])
			pending, err := svc.Requests.ListPendingForReceiver(cmd.Context(), username, t)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRequests(username, pending))
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only show chat or friend requests")
	return cmd
}

func renderRequests(username string, pending []store.ChatRequest) string {
	header := headerStyle.Render(fmt.Sprintf("Pending requests for %s (%d)", username, len(pending)))
	if len(pending) == 0 {
		return boxStyle.Render(header + "\n" + dimStyle.Render("Nothing waiting."))
	}

	rows := []string{header}
	for _, r := range pending {
		line := typeStyle.Render(string(r.EffectiveType())) + r.SenderName + " " + dimStyle.Render("@"+r.SenderID)
		if r.Message != "" {
			line += "\n" + strings.Repeat(" ", 8) + r.Message
		}
		line += "\n" + strings.Repeat(" ", 8) + dimStyle.Render(time.UnixMilli(r.Timestamp).UTC().Format(time.RFC822)+"  "+r.ID)
		rows = append(rows, line)
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
