package form

// Type determines how a field is rendered and sanitized.
type Type int

const (
	Text Type = iota
	Email
	EmailList // comma separated
	Checkbox
	Password
	Hidden
	Display // rendered for information only; never submitted
)

type Field struct {
	Key   string
	Label string
	Type  Type
}

// Field keys.
const (
	ProductHandle             = "chargify_product_handle"
	ProductID                 = "chargify_product_id"
	ProductName               = "chargify_product_name"
	ProductDescription        = "chargify_product_description"
	ProductPriceInCents       = "chargify_product_price_in_cents"
	ProductFamilyID           = "chargify_product_family_id"
	ProductPricePointID       = "chargify_product_price_point_id"
	ProductPricePointHandle   = "chargify_product_price_point_handle"
	ProductPricePointName     = "chargify_product_price_point_name"
	CouponCode                = "chargify_coupon_code"
	ComponentID               = "chargify_component_id"
	ComponentHandle           = "chargify_component_handle"
	ComponentName             = "chargify_component_name"
	ComponentUnitName         = "chargify_component_unit_name"
	ComponentPricePointID     = "chargify_component_price_point_id"
	ComponentPricePointHandle = "chargify_component_price_point_handle"
	ComponentPricePointName   = "chargify_component_price_point_name"
	ComponentQuantity         = "chargify_component_allocated_quantity"

	FirstName        = "chargify_first_name"
	LastName         = "chargify_last_name"
	EmailAddress     = "chargify_email_address"
	CCEmails         = "chargify_cc_emails"
	Organisation     = "chargify_organisation"
	BillingReference = "chargify_billing_reference"
	Address1         = "chargify_address_1"
	Address2         = "chargify_address_2"
	City             = "chargify_city"
	State            = "chargify_state"
	Zip              = "chargify_zip"
	Country          = "chargify_country"
	Phone            = "chargify_phone"
	Verified         = "chargify_verified"
	TaxExempt        = "chargify_tax_exempt"
	VATNumber        = "chargify_vat_number"

	BillingFirstName = "chargify_billing_first_name"
	BillingLastName  = "chargify_billing_last_name"
	CardNumber       = "chargify_payment_card_number"
	ExpiryMonth      = "chargify_payment_expiry_month"
	ExpiryYear       = "chargify_payment_expiry_year"
	BillingAddress1  = "chargify_billing_address_1"
	BillingAddress2  = "chargify_billing_address_2"
	BillingCity      = "chargify_billing_city"
	BillingState     = "chargify_billing_state"
	BillingZip       = "chargify_billing_zip"
	BillingCountry   = "chargify_billing_country"

	Username = "wordpress_username"
	UserPass = "wordpress_password"
)

// Keys every submission must carry alongside the nonce.
const (
	SubmitKey   = "submit-cmb"
	ObjectIDKey = "object_id"
)

// Signup is the signup form in render order.
var Signup = []Field{
	{ProductName, "Plan", Display},
	{ProductDescription, "", Display},
	{ProductPriceInCents, "Price (cents)", Display},
	{ProductHandle, "", Hidden},
	{ProductID, "", Hidden},
	{ProductPricePointID, "", Hidden},
	{ProductPricePointHandle, "", Hidden},
	{ComponentID, "", Hidden},
	{ComponentHandle, "", Hidden},
	{ComponentName, "Add-on", Display},
	{ComponentPricePointID, "", Hidden},
	{ComponentPricePointHandle, "", Hidden},
	{ComponentQuantity, "Quantity", Text},
	{CouponCode, "Coupon code", Text},

	{FirstName, "First name", Text},
	{LastName, "Last name", Text},
	{EmailAddress, "Email", Email},
	{CCEmails, "CC emails", EmailList},
	{Organisation, "Organisation", Text},
	{BillingReference, "", Hidden},
	{Address1, "Address", Text},
	{Address2, "Address line 2", Text},
	{City, "City", Text},
	{State, "State", Text},
	{Zip, "Postcode", Text},
	{Country, "Country", Text},
	{Phone, "Phone", Text},
	{Verified, "Verified", Checkbox},
	{TaxExempt, "Tax exempt", Checkbox},
	{VATNumber, "VAT number", Text},

	{BillingFirstName, "Cardholder first name", Text},
	{BillingLastName, "Cardholder last name", Text},
	{CardNumber, "Card number", Text},
	{ExpiryMonth, "Expiry month", Text},
	{ExpiryYear, "Expiry year", Text},
	{BillingAddress1, "Billing address", Text},
	{BillingAddress2, "Billing address line 2", Text},
	{BillingCity, "Billing city", Text},
	{BillingState, "Billing state", Text},
	{BillingZip, "Billing postcode", Text},
	{BillingCountry, "Billing country", Text},

	{Username, "Username", Text},
	{UserPass, "Password", Password},
}
