package resource

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListVouchers(t *testing.T) {
	fc := &fakeCaller{response: envelope(`<Vouchers>` +
		`<Voucher><Status>valid</Status><VoucherDate>2024-03-15</VoucherDate><VoucherNumber>12</VoucherNumber>` +
		`<VoucherDescription>Sale</VoucherDescription><VoucherClass>MK</VoucherClass><NetvisorKey>88</NetvisorKey>` +
		`<VoucherLine><NetvisorKey>1</NetvisorKey><LineSum>124,00</LineSum><AccountNumber>1701</AccountNumber></VoucherLine>` +
		`<VoucherLine><NetvisorKey>2</NetvisorKey><LineSum>-100,00</LineSum><AccountNumber>3000</AccountNumber>` +
		`<VatPercent>24</VatPercent><VatCode>KOMY</VatCode></VoucherLine>` +
		`<VoucherLine><NetvisorKey>3</NetvisorKey><LineSum>-24,00</LineSum><AccountNumber>2939</AccountNumber></VoucherLine>` +
		`</Voucher></Vouchers>`)}
	svc := NewService(fc)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	vouchers, err := svc.ListVouchers(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, vouchers, 1)

	v := vouchers[0]
	assert.Equal(t, int64(88), v.NetvisorKey)
	assert.Equal(t, "valid", v.Status)
	require.NotNil(t, v.Number)
	assert.Equal(t, int64(12), *v.Number)
	require.Len(t, v.Lines, 3)
	assert.Equal(t, "3000", v.Lines[1].AccountNumber)
	require.True(t, v.Lines[1].VATPercent.Valid)
	assert.Equal(t, "KOMY", v.Lines[1].VATCode)
	assert.False(t, v.Lines[0].VATPercent.Valid)
	assert.True(t, v.Balance().IsZero())

	c := fc.last(t)
	assert.Equal(t, ResourceAccountingLedger, c.resource)
	assert.Equal(t, "startdate=2024-03-01&enddate=2024-03-31", c.params.Encode())
}

func TestAddVoucher(t *testing.T) {
	fc := &fakeCaller{response: envelope(insertReply)}
	svc := NewService(fc)

	key, err := svc.AddVoucher(context.Background(), &Voucher{
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "Sale",
		Class:       "MK",
		Lines: []VoucherLine{
			{Sum: decimal.NewFromInt(124), AccountNumber: "1701"},
			{Sum: decimal.NewFromInt(-124), AccountNumber: "3000", VATPercent: decimal.NewNullDecimal(decimal.NewFromInt(24))},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1234), key)

	c := fc.last(t)
	assert.Equal(t, ResourceAccounting, c.resource)
	assert.Empty(t, c.params)
	assert.Contains(t, string(c.body), `<root><voucher><calculationmode>net</calculationmode>`+
		`<voucherdate format="ansi">2024-03-15</voucherdate><description>Sale</description><voucherclass>MK</voucherclass>`+
		`<voucherline><linesum type="net">124,00</linesum><accountnumber>1701</accountnumber></voucherline>`+
		`<voucherline><linesum type="net">-124,00</linesum><accountnumber>3000</accountnumber>`+
		`<vatpercent vatcode="KOMY">24</vatpercent></voucherline></voucher></root>`)
}

func TestAddVoucherValidation(t *testing.T) {
	fc := &fakeCaller{response: envelope(insertReply)}
	svc := NewService(fc)

	_, err := svc.AddVoucher(context.Background(), &Voucher{})
	assert.ErrorIs(t, err, ErrNoVoucherLines)

	_, err = svc.AddVoucher(context.Background(), &Voucher{Lines: []VoucherLine{
		{Sum: decimal.NewFromInt(100), AccountNumber: "1701"},
		{Sum: decimal.NewFromInt(-99), AccountNumber: "3000"},
	}})
	assert.ErrorIs(t, err, ErrUnbalancedVoucher)
	assert.Empty(t, fc.calls)
}

func TestAddVoucherRejectsFractionalCents(t *testing.T) {
	fc := &fakeCaller{response: envelope(insertReply)}
	svc := NewService(fc)

	// balances exactly but would not balance once sent as cents
	_, err := svc.AddVoucher(context.Background(), &Voucher{Lines: []VoucherLine{
		{Sum: decimal.RequireFromString("0.005"), AccountNumber: "1701"},
		{Sum: decimal.RequireFromString("0.005"), AccountNumber: "1701"},
		{Sum: decimal.RequireFromString("-0.01"), AccountNumber: "3000"},
	}})
	assert.ErrorIs(t, err, ErrSumPrecision)
	assert.Empty(t, fc.calls)
}
