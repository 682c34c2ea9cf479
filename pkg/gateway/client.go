package gateway

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// SnapSession is the gateway-hosted payment page handle returned at checkout.
type SnapSession struct {
	Token       string
	RedirectURL string
}

// Client is the payment gateway surface this system depends on. The gateway
// pushes the rest of the payment lifecycle back through webhooks.
type Client interface {
	CreateTransaction(orderNumber string, grossAmount int64, customerName, customerEmail string) (*SnapSession, error)
	VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool
}

type midtransClient struct {
	snap      snap.Client
	serverKey string
}

func NewMidtransClient(serverKey, clientKey string, production bool) Client {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	var s snap.Client

	s.New(serverKey, env)

	return &midtransClient{snap: s, serverKey: serverKey}
}

func (c *midtransClient) CreateTransaction(orderNumber string, grossAmount int64, customerName, customerEmail string) (*SnapSession, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderNumber,
			GrossAmt: grossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customerName,
			Email: customerEmail,
		},
	}

	resp, err := c.snap.CreateTransaction(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create snap transaction: %w", err)
	}

	return &SnapSession{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// VerifySignature checks the gateway's webhook digest:
// sha512(order_id + status_code + gross_amount + server_key).
func (c *midtransClient) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + c.serverKey))

	return hex.EncodeToString(sum[:]) == signatureKey
}
