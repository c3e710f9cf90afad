package resource

import (
	"context"

	"github.com/sirosfoundation/go-netvisor/pkg/netvisor"
	"github.com/sirosfoundation/go-netvisor/pkg/xmlcodec"
)

// Customer resources
const (
	ResourceCustomerList = "customerlist.nv"
	ResourceGetCustomer  = "getcustomer.nv"
	ResourceCustomer     = "customer.nv"
)

// CustomerSummary is one entry of the customer list
type CustomerSummary struct {
	NetvisorKey            int64
	Name                   string
	Code                   string
	OrganisationIdentifier string
	GroupID                *int64
	GroupName              string
	URI                    string
}

// Customer is the base information of a customer
type Customer struct {
	NetvisorKey int64

	// Code is the customer number, InternalIdentifier on the wire
	Code string

	// BusinessID is the organisation identifier, ExternalIdentifier on the wire
	BusinessID string

	Name          string
	NameExtension string
	StreetAddress string
	City          string
	PostNumber    string

	// Country is an ISO-3166 alpha-2 code
	Country string

	PhoneNumber string
	Email       string
	HomePageURI string

	// IsActive is omitted from requests when nil
	IsActive *bool
}

// ListCustomers returns the customers matching keyword, all when empty
func (s *Service) ListCustomers(ctx context.Context, keyword string) ([]CustomerSummary, error) {
	payload, err := s.caller.GetNode(ctx, ResourceCustomerList, netvisor.Params{}.AddIf("keyword", keyword))
	if err != nil {
		return nil, err
	}
	return list(payload, "customerlist", "customer", customerSummaryFromNode)
}

// GetCustomer returns the customer with the given Netvisor key
func (s *Service) GetCustomer(ctx context.Context, key int64) (*Customer, error) {
	payload, err := s.caller.GetNode(ctx, ResourceGetCustomer, netvisor.Params{}.Add("id", formatInt(key)))
	if err != nil {
		return nil, err
	}

	c, ok := payload.Child("customer")
	if !ok {
		return nil, &xmlcodec.FieldError{Field: "customer", Err: xmlcodec.ErrMissingField}
	}
	base, ok := c.Child("customerbaseinformation")
	if !ok {
		return nil, &xmlcodec.FieldError{Field: "customer/customerbaseinformation", Err: xmlcodec.ErrMissingField}
	}

	customer, err := customerFromNode(base)
	if err != nil {
		return nil, fieldPath("customer/customerbaseinformation", err)
	}
	if customer.NetvisorKey == 0 {
		customer.NetvisorKey = key
	}
	return customer, nil
}

// AddCustomer creates a customer and returns its Netvisor key
func (s *Service) AddCustomer(ctx context.Context, c *Customer) (int64, error) {
	body := xmlcodec.NewNode().Set("customer", xmlcodec.NewNode().
		Set("customerbaseinformation", customerToNode(c)))
	return s.insert(ctx, ResourceCustomer, netvisor.Params{}.Add("method", "add"), body)
}

func customerSummaryFromNode(n *xmlcodec.Node) (CustomerSummary, error) {
	key, err := n.Int("netvisorkey")
	if err != nil {
		return CustomerSummary{}, err
	}
	group, err := n.OptionalInt("customergroupid")
	if err != nil {
		return CustomerSummary{}, err
	}
	return CustomerSummary{
		NetvisorKey:            key,
		Name:                   text(n, "name"),
		Code:                   text(n, "code"),
		OrganisationIdentifier: text(n, "organisationidentifier"),
		GroupID:                group,
		GroupName:              text(n, "customergroupname"),
		URI:                    text(n, "uri"),
	}, nil
}

func customerFromNode(n *xmlcodec.Node) (*Customer, error) {
	name, err := n.RequiredText("name")
	if err != nil {
		return nil, err
	}
	key, err := n.OptionalInt("netvisorkey")
	if err != nil {
		return nil, err
	}

	c := &Customer{
		Code:          text(n, "internalidentifier"),
		BusinessID:    text(n, "externalidentifier"),
		Name:          name,
		NameExtension: text(n, "nameextension"),
		StreetAddress: text(n, "streetaddress"),
		City:          text(n, "city"),
		PostNumber:    text(n, "postnumber"),
		Country:       text(n, "country"),
		PhoneNumber:   text(n, "phonenumber"),
		Email:         text(n, "email"),
		HomePageURI:   text(n, "homepageuri"),
		IsActive:      parseBool(n, "isactive"),
	}
	if key != nil {
		c.NetvisorKey = *key
	}
	return c, nil
}

func customerToNode(c *Customer) *xmlcodec.Node {
	n := xmlcodec.NewNode().
		Set("internalidentifier", xmlcodec.Text(c.Code)).
		Set("externalidentifier", xmlcodec.Text(c.BusinessID)).
		Set("name", xmlcodec.Text(c.Name)).
		Set("nameextension", xmlcodec.Text(c.NameExtension)).
		Set("streetaddress", xmlcodec.Text(c.StreetAddress)).
		Set("city", xmlcodec.Text(c.City)).
		Set("postnumber", xmlcodec.Text(c.PostNumber))
	if c.Country != "" {
		n.Set("country", xmlcodec.NewTagged(xmlcodec.Text(c.Country), xmlcodec.Attr{Name: "type", Value: "ISO-3166"}))
	}
	return n.
		Set("phonenumber", xmlcodec.Text(c.PhoneNumber)).
		Set("email", xmlcodec.Text(c.Email)).
		Set("homepageuri", xmlcodec.Text(c.HomePageURI)).
		Set("isactive", formatBool(c.IsActive))
}
