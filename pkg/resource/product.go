package resource

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sirosfoundation/go-netvisor/pkg/netvisor"
	"github.com/sirosfoundation/go-netvisor/pkg/xmlcodec"
)

// Product resources
const (
	ResourceProductList = "productlist.nv"
	ResourceGetProduct  = "getproduct.nv"
	ResourceProduct     = "product.nv"
)

// Price types of a product unit price
const (
	PriceNet   = "net"
	PriceGross = "gross"
)

// ProductSummary is one entry of the product list
type ProductSummary struct {
	NetvisorKey int64
	Code        string
	Name        string
	UnitPrice   decimal.NullDecimal
	URI         string
}

// Product is the base information of a product
type Product struct {
	NetvisorKey int64
	Code        string
	Group       string
	Name        string
	Description string
	UnitPrice   decimal.Decimal

	// PriceType is PriceNet or PriceGross; PriceNet when empty
	PriceType string

	Unit           string
	PurchasePrice  decimal.NullDecimal

	// Flags are omitted from requests when nil
	IsActive       *bool
	IsSalesProduct *bool
}

// ListProducts returns all products
func (s *Service) ListProducts(ctx context.Context) ([]ProductSummary, error) {
	payload, err := s.caller.GetNode(ctx, ResourceProductList, nil)
	if err != nil {
		return nil, err
	}
	return list(payload, "productlist", "product", productSummaryFromNode)
}

// GetProduct returns the product with the given Netvisor key
func (s *Service) GetProduct(ctx context.Context, key int64) (*Product, error) {
	payload, err := s.caller.GetNode(ctx, ResourceGetProduct, netvisor.Params{}.Add("id", formatInt(key)))
	if err != nil {
		return nil, err
	}

	// newer interface versions wrap the product in <Products>
	if products, ok := payload.Child("products"); ok {
		payload = products
	}
	p, ok := payload.Child("product")
	if !ok {
		return nil, &xmlcodec.FieldError{Field: "product", Err: xmlcodec.ErrMissingField}
	}
	base, ok := p.Child("productbaseinformation")
	if !ok {
		return nil, &xmlcodec.FieldError{Field: "product/productbaseinformation", Err: xmlcodec.ErrMissingField}
	}

	product, err := productFromNode(base)
	if err != nil {
		return nil, fieldPath("product/productbaseinformation", err)
	}
	if product.NetvisorKey == 0 {
		product.NetvisorKey = key
	}
	return product, nil
}

// AddProduct creates a product and returns its Netvisor key
func (s *Service) AddProduct(ctx context.Context, p *Product) (int64, error) {
	body := xmlcodec.NewNode().Set("product", xmlcodec.NewNode().
		Set("productbaseinformation", productToNode(p)))
	return s.insert(ctx, ResourceProduct, netvisor.Params{}.Add("method", "add"), body)
}

func productSummaryFromNode(n *xmlcodec.Node) (ProductSummary, error) {
	key, err := n.Int("netvisorkey")
	if err != nil {
		return ProductSummary{}, err
	}
	price, err := n.OptionalDecimal("unitprice")
	if err != nil {
		return ProductSummary{}, err
	}
	return ProductSummary{
		NetvisorKey: key,
		Code:        text(n, "productcode"),
		Name:        text(n, "name"),
		UnitPrice:   price,
		URI:         text(n, "uri"),
	}, nil
}

func productFromNode(n *xmlcodec.Node) (*Product, error) {
	name, err := n.RequiredText("name")
	if err != nil {
		return nil, err
	}
	key, err := n.OptionalInt("netvisorkey")
	if err != nil {
		return nil, err
	}
	price, err := n.Decimal("unitprice")
	if err != nil {
		return nil, err
	}
	purchase, err := n.OptionalDecimal("purchaseprice")
	if err != nil {
		return nil, err
	}

	priceType, ok := n.Attr("unitprice", "type")
	if !ok {
		priceType = PriceNet
	}

	p := &Product{
		Code:           text(n, "productcode"),
		Group:          text(n, "productgroup"),
		Name:           name,
		Description:    text(n, "description"),
		UnitPrice:      price,
		PriceType:      priceType,
		Unit:           text(n, "unit"),
		PurchasePrice:  purchase,
		IsActive:       parseBool(n, "isactive"),
		IsSalesProduct: parseBool(n, "issalesproduct"),
	}
	if key != nil {
		p.NetvisorKey = *key
	}
	return p, nil
}

func productToNode(p *Product) *xmlcodec.Node {
	priceType := p.PriceType
	if priceType == "" {
		priceType = PriceNet
	}

	n := xmlcodec.NewNode().
		Set("productcode", xmlcodec.Text(p.Code)).
		Set("productgroup", xmlcodec.Text(p.Group)).
		Set("name", xmlcodec.Text(p.Name)).
		Set("description", xmlcodec.Text(p.Description)).
		Set("unitprice", xmlcodec.NewTagged(
			xmlcodec.Text(xmlcodec.FormatAmount(p.UnitPrice, 2)),
			xmlcodec.Attr{Name: "type", Value: priceType})).
		Set("unit", xmlcodec.Text(p.Unit))
	if p.PurchasePrice.Valid {
		n.Set("purchaseprice", xmlcodec.Text(xmlcodec.FormatAmount(p.PurchasePrice.Decimal, 2)))
	}
	return n.
		Set("isactive", formatBool(p.IsActive)).
		Set("issalesproduct", formatBool(p.IsSalesProduct))
}
