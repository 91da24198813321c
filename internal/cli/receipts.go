package cli

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sangkips/schoolfee-receipts/pkg/client"
	"github.com/sangkips/schoolfee-receipts/pkg/format"
	"github.com/spf13/cobra"
)

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List receipts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			receipts, err := a.client().List(contextOf(cmd))
			if err != nil {
				return failure(err, "Failed to fetch receipts")
			}

			out := cmd.OutOrStdout()
			if len(receipts) == 0 {
				fmt.Fprintln(out, "No receipts found. Create your first receipt with: receiptctl create")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tSTUDENT\tCLASS\tTERM\tSESSION\tTOTAL\tDATE\tID")
			for _, r := range receipts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					format.ReceiptNumber(r.ReceiptNumber),
					r.StudentName,
					r.ClassLevel,
					r.Term,
					r.Session,
					format.Naira(r.TotalAmount),
					format.Date(r.CreatedAt, nil),
					r.ID,
				)
			}
			return tw.Flush()
		},
	}
}

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.client().Get(contextOf(cmd), args[0])
			if err != nil {
				return failure(err, "Failed to fetch receipt. It may not exist.")
			}
			printReceipt(cmd, r)
			return nil
		},
	}
}

func printReceipt(cmd *cobra.Command, r *client.Receipt) {
	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Receipt Number:\t%s\n", format.ReceiptNumber(r.ReceiptNumber))
	fmt.Fprintf(tw, "Student Name:\t%s\n", r.StudentName)
	fmt.Fprintf(tw, "Class:\t%s\n", r.ClassLevel)
	fmt.Fprintf(tw, "Term:\t%s\n", r.Term)
	fmt.Fprintf(tw, "Session:\t%s\n", r.Session)
	fmt.Fprintf(tw, "Payment Method:\t%s\n", r.PaymentMethod)
	fmt.Fprintf(tw, "Date:\t%s\n", format.Date(r.CreatedAt, nil))
	_ = tw.Flush()

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FEE ITEM\tAMOUNT\t")
	for _, item := range r.FeeItems {
		fmt.Fprintf(tw, "%s\t%s\t\n", item.Title, format.Naira(item.Amount))
	}
	fmt.Fprintf(tw, "TOTAL AMOUNT\t%s\t\n", format.Naira(r.TotalAmount))
	_ = tw.Flush()

	if r.ReceiptStyle.FooterNote != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, r.ReceiptStyle.FooterNote)
	}
}

func (a *app) deleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently delete a receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			ctx := contextOf(cmd)

			if !yes {
				r, err := c.Get(ctx, args[0])
				if err != nil {
					return failure(err, "Failed to fetch receipt. It may not exist.")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to delete receipt %s for %s? [y/N] ",
					format.ReceiptNumber(r.ReceiptNumber), r.StudentName)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if reply := strings.ToLower(strings.TrimSpace(answer)); reply != "y" && reply != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := c.Delete(ctx, args[0]); err != nil {
				return failure(err, "Failed to delete receipt")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Receipt deleted successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

func (a *app) nextNumberCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "next-number",
		Short: "Show the number the next receipt will receive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.client().NextReceiptNumber(contextOf(cmd))
			if err != nil {
				return failure(err, "Failed to load next receipt number")
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.ReceiptNumber(n))
			return nil
		},
	}
}
