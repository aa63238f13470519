package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wodo.ai/wodo-connect/internal/core"
	"wodo.ai/wodo-connect/internal/store"
)

// UserExport is everything stored about one account.
type UserExport struct {
	Account       store.UserAccount    `json:"account" yaml:"account"`
	Thought       *store.TodaysThought `json:"thought,omitempty" yaml:"thought,omitempty"`
	Friends       []store.Friend       `json:"friends" yaml:"friends"`
	Received      []store.ChatRequest  `json:"received" yaml:"received"`
	Sent          []store.ChatRequest  `json:"sent" yaml:"sent"`
	Conversations []store.Conversation `json:"conversations" yaml:"conversations"`
}

func newExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <username>",
		Short: "Dump one account's data as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "json" && format != "yaml" {
				return fmt.Errorf("--format must be json or yaml, got %q", format)
			}

			svc, st, err := openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			exp, err := buildExport(cmd.Context(), svc, st, strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			return writeExport(cmd.OutOrStdout(), format, exp)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func buildExport(ctx context.Context, svc *core.Services, st *store.Store, username string) (*UserExport, error) {
	acct, err := svc.Profiles.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, &core.NotFoundError{Kind: "account", ID: username}
	}

	exp := &UserExport{Account: *acct}
	if exp.Thought, err = svc.Thoughts.LatestFor(ctx, username); err != nil {
		return nil, err
	}
	if exp.Friends, err = svc.Friends.List(ctx, username); err != nil {
		return nil, err
	}
	if exp.Conversations, err = svc.Chats.List(ctx, username); err != nil {
		return nil, err
	}

	all, err := st.Requests.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range all {
		switch username {
		case r.ReceiverID:
			exp.Received = append(exp.Received, r)
		case r.SenderID:
			exp.Sent = append(exp.Sent, r)
		}
	}
	return exp, nil
}

func writeExport(w io.Writer, format string, exp *UserExport) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(exp); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exp)
}
