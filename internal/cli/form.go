package cli

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sangkips/schoolfee-receipts/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// receiptFlags are the editable receipt fields as command-line flags
type receiptFlags struct {
	file          string
	studentName   string
	classLevel    string
	term          string
	session       string
	paymentMethod string
	items         []string
	logoURL       string
	primaryColor  string
	footerNote    string
}

func (f *receiptFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.file, "file", "", "read the receipt from a JSON file (- for stdin)")
	fs.StringVar(&f.studentName, "student", "", "student name")
	fs.StringVar(&f.classLevel, "class", "", `class level, e.g. "Primary 3", "JSS2", "SS1"`)
	fs.StringVar(&f.term, "term", "", `"First Term", "Second Term" or "Third Term"`)
	fs.StringVar(&f.session, "session", "", "academic session, e.g. 2024/2025")
	fs.StringVar(&f.paymentMethod, "payment", "", "payment method, e.g. Bank Transfer")
	fs.StringArrayVar(&f.items, "item", nil, `fee item as "Title=Amount"; repeat for more items`)
	fs.StringVar(&f.logoURL, "logo", "", "logo image URL")
	fs.StringVar(&f.primaryColor, "color", "", "accent color, e.g. #1a73e8")
	fs.StringVar(&f.footerNote, "footer", "", "note printed at the bottom of the receipt")
}

// apply overlays the flags the user set onto in
func (f *receiptFlags) apply(cmd *cobra.Command, in *client.ReceiptInput) error {
	if f.file != "" {
		if err := readInput(cmd, f.file, in); err != nil {
			return err
		}
	}

	changed := cmd.Flags().Changed
	if changed("student") {
		in.StudentName = f.studentName
	}
	if changed("class") {
		in.ClassLevel = f.classLevel
	}
	if changed("term") {
		in.Term = f.term
	}
	if changed("session") {
		in.Session = f.session
	}
	if changed("payment") {
		in.PaymentMethod = f.paymentMethod
	}
	if changed("item") {
		items, err := parseItems(f.items)
		if err != nil {
			return err
		}
		in.FeeItems = items
	}
	if changed("logo") || changed("color") || changed("footer") {
		if in.ReceiptStyle == nil {
			in.ReceiptStyle = &client.ReceiptStyle{}
		}
		if changed("logo") {
			in.ReceiptStyle.LogoURL = f.logoURL
		}
		if changed("color") {
			in.ReceiptStyle.PrimaryColor = f.primaryColor
		}
		if changed("footer") {
			in.ReceiptStyle.FooterNote = f.footerNote
		}
	}
	return nil
}

func readInput(cmd *cobra.Command, path string, in *client.ReceiptInput) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		err = json.NewDecoder(cmd.InOrStdin()).Decode(in)
		return errors.Wrap(err, "read receipt from stdin")
	}
	if data, err = os.ReadFile(path); err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	return errors.Wrapf(json.Unmarshal(data, in), "parse %s", path)
}

// parseItems reads "Title=Amount" pairs. The last "=" splits, so titles may
// contain one.
func parseItems(raw []string) ([]client.FeeItem, error) {
	items := make([]client.FeeItem, 0, len(raw))
	for _, r := range raw {
		i := strings.LastIndex(r, "=")
		if i < 0 {
			return nil, errors.Newf("fee item %q must look like Title=Amount", r)
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(r[i+1:]), ",", ""), 64)
		if err != nil {
			return nil, errors.Newf("fee item %q has an invalid amount", r)
		}
		items = append(items, client.FeeItem{Title: strings.TrimSpace(r[:i]), Amount: amount})
	}
	return items, nil
}

// checkInput catches the obvious mistakes before a request is sent
func checkInput(in *client.ReceiptInput) error {
	var problems []string
	if strings.TrimSpace(in.StudentName) == "" {
		problems = append(problems, "Student name is required")
	}
	if in.ClassLevel == "" {
		problems = append(problems, "Class level is required")
	}
	if in.Term == "" {
		problems = append(problems, "Term is required")
	}
	if strings.TrimSpace(in.Session) == "" {
		problems = append(problems, "Session is required")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		problems = append(problems, "Payment method is required")
	}
	if len(in.FeeItems) == 0 {
		problems = append(problems, "At least one fee item is required")
	}
	for _, item := range in.FeeItems {
		if strings.TrimSpace(item.Title) == "" {
			problems = append(problems, "Fee item title is required")
		}
		if item.Amount <= 0 {
			problems = append(problems, "Fee item amount must be greater than 0")
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, ", "))
	}
	return nil
}

func (a *app) createCommand() *cobra.Command {
	var flags receiptFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new receipt",
		Example: `  receiptctl create --student "Ada Obi" --class JSS2 --term "First Term" \
    --session 2024/2025 --payment "Bank Transfer" \
    --item "Tuition=50000" --item "Books=15000"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := &client.ReceiptInput{}
			if err := flags.apply(cmd, in); err != nil {
				return err
			}
			if err := checkInput(in); err != nil {
				return err
			}

			r, err := a.client().Create(contextOf(cmd), in)
			if err != nil {
				return failure(err, "Failed to save receipt")
			}
			printReceipt(cmd, r)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func (a *app) updateCommand() *cobra.Command {
	var flags receiptFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a receipt; fields not given keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			ctx := contextOf(cmd)

			current, err := c.Get(ctx, args[0])
			if err != nil {
				return failure(err, "Failed to fetch receipt. It may not exist.")
			}

			style := current.ReceiptStyle
			in := &client.ReceiptInput{
				StudentName:   current.StudentName,
				ClassLevel:    current.ClassLevel,
				Term:          current.Term,
				Session:       current.Session,
				PaymentMethod: current.PaymentMethod,
				FeeItems:      current.FeeItems,
				ReceiptStyle:  &style,
			}
			if err := flags.apply(cmd, in); err != nil {
				return err
			}
			if err := checkInput(in); err != nil {
				return err
			}

			r, err := c.Update(ctx, args[0], in)
			if err != nil {
				return failure(err, "Failed to save receipt")
			}
			printReceipt(cmd, r)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
