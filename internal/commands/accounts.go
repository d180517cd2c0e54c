package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankfeed/internal/accounts"
	"github.com/cleared-dev/bankfeed/internal/model"
)

func newAccountsCommand() *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage bank accounts",
	}
	accountsCmd.AddCommand(newAccountsListCommand())
	accountsCmd.AddCommand(newAccountsAddCommand())
	return accountsCmd
}

func newAccountsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered bank accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			return runAccountsList(cmd.OutOrStdout(), p.root)
		},
	}
}

func runAccountsList(out io.Writer, repoRoot string) error {
	svc, err := accounts.Load(repoRoot)
	if err != nil {
		return err
	}
	if len(svc.All()) == 0 {
		fmt.Fprintln(out, "No accounts registered.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tINSTITUTION\tCURRENCY\tLAST FOUR")
	for _, a := range svc.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Institution, a.Currency, a.LastFour)
	}
	return tw.Flush()
}

func newAccountsAddCommand() *cobra.Command {
	var acct model.Account

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register a bank account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			acct.ID = args[0]
			return runAccountsAdd(cmd.OutOrStdout(), p.root, acct)
		},
	}

	cmd.Flags().StringVar(&acct.Name, "name", "", "display name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&acct.Institution, "institution", "", "bank or institution")
	cmd.Flags().StringVar(&acct.Currency, "currency", "AUD", "ISO currency code")
	cmd.Flags().StringVar(&acct.LastFour, "last-four", "", "last four digits of the account number")

	return cmd
}

func runAccountsAdd(out io.Writer, repoRoot string, acct model.Account) error {
	svc, err := accounts.Load(repoRoot)
	if err != nil {
		return err
	}
	if err := svc.Add(acct); err != nil {
		return err
	}
	if err := svc.Save(repoRoot); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added account %s (%s)\n", acct.ID, acct.Name)
	return nil
}
