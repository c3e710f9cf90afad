package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-netvisor/pkg/resource"
	"github.com/sirosfoundation/go-netvisor/pkg/xmlcodec"
)

var (
	keyword   string
	beginDate string
	endDate   string
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List customers",
	Long: `List customers, optionally filtered by a keyword matched against name,
code and business id.

Examples:
  netvisor customers
  netvisor customers --keyword acme`,
	Args: cobra.NoArgs,
	RunE: runCustomers,
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE:  runProducts,
}

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "List sales invoices",
	Long: `List sales invoices by invoice date.

Examples:
  netvisor invoices --begin 2024-01-01 --end 2024-01-31`,
	Args: cobra.NoArgs,
	RunE: runInvoices,
}

var vouchersCmd = &cobra.Command{
	Use:   "vouchers",
	Short: "List accounting vouchers",
	Long: `List accounting vouchers by voucher date. Both dates are required.

Examples:
  netvisor vouchers --begin 2024-01-01 --end 2024-01-31`,
	Args: cobra.NoArgs,
	RunE: runVouchers,
}

func init() {
	customersCmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Search keyword")
	for _, c := range []*cobra.Command{invoicesCmd, vouchersCmd} {
		c.Flags().StringVar(&beginDate, "begin", "", "First date, YYYY-MM-DD")
		c.Flags().StringVar(&endDate, "end", "", "Last date, YYYY-MM-DD")
	}
	_ = vouchersCmd.MarkFlagRequired("begin")
	_ = vouchersCmd.MarkFlagRequired("end")

	rootCmd.AddCommand(customersCmd, productsCmd, invoicesCmd, vouchersCmd)
}

func runCustomers(cmd *cobra.Command, _ []string) error {
	customers, err := current.service.ListCustomers(commandContext(cmd), keyword)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(current.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tCODE\tNAME\tBUSINESS ID")
	for _, c := range customers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.NetvisorKey, c.Code, c.Name, c.OrganisationIdentifier)
	}
	return tw.Flush()
}

func runProducts(cmd *cobra.Command, _ []string) error {
	products, err := current.service.ListProducts(commandContext(cmd))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(current.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tCODE\tNAME\tUNIT PRICE")
	for _, p := range products {
		price := "-"
		if p.UnitPrice.Valid {
			price = xmlcodec.FormatAmount(p.UnitPrice.Decimal, 2)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.NetvisorKey, p.Code, p.Name, price)
	}
	return tw.Flush()
}

func runInvoices(cmd *cobra.Command, _ []string) error {
	begin, end, err := dateRange(false)
	if err != nil {
		return err
	}

	invoices, err := current.service.ListSalesInvoices(commandContext(cmd), resource.SalesInvoiceFilter{Begin: begin, End: end})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(current.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNUMBER\tDATE\tSTATUS\tCUSTOMER\tSUM")
	for _, inv := range invoices {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", inv.NetvisorKey, inv.Number,
			xmlcodec.FormatDate(inv.Date), inv.Status, inv.CustomerName, xmlcodec.FormatAmount(inv.Sum, 2))
	}
	return tw.Flush()
}

func runVouchers(cmd *cobra.Command, _ []string) error {
	begin, end, err := dateRange(true)
	if err != nil {
		return err
	}

	vouchers, err := current.service.ListVouchers(commandContext(cmd), begin, end)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(current.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tDATE\tCLASS\tDESCRIPTION\tLINES")
	for _, v := range vouchers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", v.NetvisorKey, xmlcodec.FormatDate(v.Date), v.Class, v.Description, len(v.Lines))
	}
	return tw.Flush()
}

func dateRange(required bool) (time.Time, time.Time, error) {
	var begin, end time.Time
	var err error
	if beginDate != "" || required {
		if begin, err = xmlcodec.ParseDate(beginDate); err != nil {
			return begin, end, fmt.Errorf("--begin: %w", err)
		}
	}
	if endDate != "" || required {
		if end, err = xmlcodec.ParseDate(endDate); err != nil {
			return begin, end, fmt.Errorf("--end: %w", err)
		}
	}
	return begin, end, nil
}
