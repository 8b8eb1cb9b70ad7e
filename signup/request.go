package signup

// Request is the body of a POST to /subscriptions.json.
type Request struct {
	Subscription Subscription `json:"subscription"`
}

// Subscription holds what a signup submitted. Optional fields are nil when
// the form did not carry them and are then left out of the JSON entirely.
type Subscription struct {
	ProductHandle           string  `json:"product_handle"`
	ProductID               *string `json:"product_id,omitempty"`
	ProductPricePointHandle *string `json:"product_price_point_handle,omitempty"`
	ProductPricePointID     *string `json:"product_price_point_id,omitempty"`
	CouponCode              *string `json:"coupon_code,omitempty"`

	CustomerAttributes   CustomerAttributes    `json:"customer_attributes"`
	CreditCardAttributes *CreditCardAttributes `json:"credit_card_attributes,omitempty"`
	Components           *Components           `json:"components,omitempty"`

	Metafields any `json:"metafields,omitempty"`
}

type CustomerAttributes struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	CCEmails     *string `json:"cc_emails,omitempty"`
	Organization *string `json:"organization,omitempty"`
	Reference    string  `json:"reference"`
	Address      *string `json:"address,omitempty"`
	Address2     *string `json:"address_2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Zip          *string `json:"zip,omitempty"`
	Country      *string `json:"country,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Verified     bool    `json:"verified"`
	TaxExempt    bool    `json:"tax_exempt"`
	VATNumber    *string `json:"vat_number,omitempty"`
}

type CreditCardAttributes struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	FullNumber      *string `json:"full_number,omitempty"`
	ExpirationMonth *string `json:"expiration_month,omitempty"`
	ExpirationYear  *string `json:"expiration_year,omitempty"`
	BillingAddress  *string `json:"billing_address,omitempty"`
	BillingAddress2 *string `json:"billing_address_2,omitempty"`
	BillingCity     *string `json:"billing_city,omitempty"`
	BillingState    *string `json:"billing_state,omitempty"`
	BillingZip      *string `json:"billing_zip,omitempty"`
	BillingCountry  *string `json:"billing_country,omitempty"`
}

func (c *CreditCardAttributes) isZero() bool {
	return *c == CreditCardAttributes{}
}

// Components is the single component a signup subscribes to.
type Components struct {
	ComponentID               string  `json:"component_id"`
	PricePointID              *string `json:"price_point_id,omitempty"`
	ComponentPricePointHandle *string `json:"component_price_point_handle,omitempty"`
	AllocatedQuantity         *string `json:"allocated_quantity,omitempty"`
}

// Credentials are the username and password the signup chose for their
// site account.
type Credentials struct {
	Username string
	Password string
}

// A Submission is a built Request and the Credentials that came with it.
type Submission struct {
	Request     Request
	Credentials Credentials
}
