package models

// GatewayNotification is the payment gateway's asynchronous webhook payload.
// OrderID carries this system's order_number; SignatureKey is the gateway's
// sha512(order_id + status_code + gross_amount + server_key) digest.
type GatewayNotification struct {
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id" validate:"required"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	SignatureKey      string `json:"signature_key"`
}

// CheckoutPayment is returned with a freshly created order so the storefront
// can hand the customer over to the gateway's payment page.
type CheckoutPayment struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}
