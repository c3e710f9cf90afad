package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sirosfoundation/go-netvisor/pkg/netvisor"
	"github.com/sirosfoundation/go-netvisor/pkg/xmlcodec"
)

// Accounting resources
const (
	ResourceAccountingLedger = "accountingledger.nv"
	ResourceAccounting       = "accounting.nv"
)

var (
	// ErrUnbalancedVoucher is returned when voucher lines do not sum to zero
	ErrUnbalancedVoucher = errors.New("voucher lines do not balance")

	// ErrNoVoucherLines is returned when adding a voucher without lines
	ErrNoVoucherLines = errors.New("voucher has no lines")

	// ErrSumPrecision is returned when a line sum has fractions of a cent
	ErrSumPrecision = errors.New("voucher line sum has more than 2 decimal places")
)

// Voucher is an accounting voucher
type Voucher struct {
	NetvisorKey int64
	Status      string
	Date        time.Time
	Number      *int64
	Description string
	Class       string

	// CalculationMode is PriceNet or PriceGross; net when empty
	CalculationMode string

	Lines []VoucherLine
}

// VoucherLine is one posting of a voucher. Debit sums are positive,
// credit sums negative.
type VoucherLine struct {
	NetvisorKey   int64
	Sum           decimal.Decimal
	Description   string
	AccountNumber string
	VATPercent    decimal.NullDecimal
	VATCode       string
}

// Balance returns the sum of all line sums; zero for a valid voucher
func (v *Voucher) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, l := range v.Lines {
		total = total.Add(l.Sum)
	}
	return total
}

// ListVouchers returns the vouchers dated between start and end inclusive
func (s *Service) ListVouchers(ctx context.Context, start, end time.Time) ([]Voucher, error) {
	params := netvisor.Params{}.
		Add("startdate", xmlcodec.FormatDate(start)).
		Add("enddate", xmlcodec.FormatDate(end))
	payload, err := s.caller.GetNode(ctx, ResourceAccountingLedger, params)
	if err != nil {
		return nil, err
	}
	return list(payload, "vouchers", "voucher", voucherFromNode)
}

// AddVoucher creates a voucher and returns its Netvisor key. The lines
// must balance and be whole cents.
func (s *Service) AddVoucher(ctx context.Context, v *Voucher) (int64, error) {
	if len(v.Lines) == 0 {
		return 0, ErrNoVoucherLines
	}
	for i, l := range v.Lines {
		if !l.Sum.Equal(l.Sum.Round(2)) {
			return 0, fmt.Errorf("%w: line %d sum %s", ErrSumPrecision, i, l.Sum.String())
		}
	}
	if b := v.Balance(); !b.IsZero() {
		return 0, fmt.Errorf("%w: difference %s", ErrUnbalancedVoucher, b.String())
	}
	body := xmlcodec.NewNode().Set("voucher", voucherToNode(v))
	return s.insert(ctx, ResourceAccounting, nil, body)
}

func voucherFromNode(n *xmlcodec.Node) (Voucher, error) {
	key, err := n.Int("netvisorkey")
	if err != nil {
		return Voucher{}, err
	}
	date, err := n.Date("voucherdate")
	if err != nil {
		return Voucher{}, err
	}
	number, err := n.OptionalInt("vouchernumber")
	if err != nil {
		return Voucher{}, err
	}

	v := Voucher{
		NetvisorKey: key,
		Status:      text(n, "status"),
		Date:        date,
		Number:      number,
		Description: text(n, "voucherdescription"),
		Class:       text(n, "voucherclass"),
	}

	for i, item := range n.Sequence("voucherline") {
		ln, ok := xmlcodec.NodeOf(item)
		if !ok {
			return Voucher{}, &xmlcodec.FieldError{Field: fmt.Sprintf("voucherline[%d]", i), Err: fmt.Errorf("not an element")}
		}
		line, err := voucherLineFromNode(ln)
		if err != nil {
			return Voucher{}, fieldPath(fmt.Sprintf("voucherline[%d]", i), err)
		}
		v.Lines = append(v.Lines, line)
	}
	return v, nil
}

func voucherLineFromNode(n *xmlcodec.Node) (VoucherLine, error) {
	sum, err := n.Decimal("linesum")
	if err != nil {
		return VoucherLine{}, err
	}
	vat, err := n.OptionalDecimal("vatpercent")
	if err != nil {
		return VoucherLine{}, err
	}
	key, err := n.OptionalInt("netvisorkey")
	if err != nil {
		return VoucherLine{}, err
	}

	l := VoucherLine{
		Sum:           sum,
		Description:   text(n, "description"),
		AccountNumber: text(n, "accountnumber"),
		VATPercent:    vat,
		VATCode:       text(n, "vatcode"),
	}
	if key != nil {
		l.NetvisorKey = *key
	}
	return l, nil
}

func voucherToNode(v *Voucher) *xmlcodec.Node {
	mode := v.CalculationMode
	if mode == "" {
		mode = PriceNet
	}

	n := xmlcodec.NewNode().
		Set("calculationmode", xmlcodec.Text(mode)).
		Set("voucherdate", ansiDate(xmlcodec.FormatDate(v.Date)))
	if v.Number != nil {
		n.Set("number", xmlcodec.Text(formatInt(*v.Number)))
	}
	n.Set("description", xmlcodec.Text(v.Description)).
		Set("voucherclass", xmlcodec.Text(v.Class))

	for _, l := range v.Lines {
		line := xmlcodec.NewNode().
			Set("linesum", xmlcodec.NewTagged(
				xmlcodec.Text(xmlcodec.FormatDecimal(l.Sum, 2)),
				xmlcodec.Attr{Name: "type", Value: mode})).
			Set("description", xmlcodec.Text(l.Description)).
			Set("accountnumber", xmlcodec.Text(l.AccountNumber))
		if l.VATPercent.Valid {
			line.Set("vatpercent", xmlcodec.NewTagged(
				xmlcodec.Text(formatRate(l.VATPercent.Decimal)),
				xmlcodec.Attr{Name: "vatcode", Value: vatCode(l.VATCode)}))
		}
		n.Append("voucherline", line)
	}
	return n
}
