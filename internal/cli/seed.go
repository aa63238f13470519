package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var name, username string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the sample thoughts and optionally create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, st, err := openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			seeded, err := svc.Thoughts.SeedInitialThoughts(cmd.Context())
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(out, "Seeded sample thoughts.")
			} else {
				fmt.Fprintln(out, "Thoughts already initialized.")
			}

			if username == "" {
				return nil
			}
			if name == "" {
				name = username
			}
			res, err := svc.Profiles.CreateAccount(cmd.Context(), name, username)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created account %s (%s).\n", res.Session.Account.Username, res.Session.Account.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "create an account with this username")
	cmd.Flags().StringVar(&name, "name", "", "display name for --username")
	return cmd
}
