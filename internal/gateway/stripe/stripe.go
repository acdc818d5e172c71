// Package stripe creates card payment intents with Stripe.
package stripe

import (
	"context"
	"fmt"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type Gateway struct {
	api *client.API
}

// New returns a gateway using the given secret key. Passing nil backends
// uses Stripe's defaults.
func New(secretKey string, backends *stripego.Backends) *Gateway {
	return &Gateway{api: client.New(secretKey, backends)}
}

// CreateIntent creates a card-only payment intent for amount minor units and
// returns its client secret.
func (g *Gateway) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripego.PaymentIntentParams{
		Params:             stripego.Params{Context: ctx},
		Amount:             stripego.Int64(amount),
		Currency:           stripego.String(currency),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}
