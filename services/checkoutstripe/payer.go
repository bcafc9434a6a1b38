package checkoutstripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

//go:generate mockgen -source=payer.go -package checkoutstripe -destination payer_mock.go Payer
type Payer interface {
	RetrievePaymentIntent(c context.Context, clientSecret string) (*stripe.PaymentIntent, error)
}

type realPayer struct{}

func NewPayer() Payer {
	return realPayer{}
}

func (p realPayer) RetrievePaymentIntent(c context.Context, clientSecret string) (*stripe.PaymentIntent, error) {
	intentID, err := intentIDFromClientSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	return paymentintent.Get(intentID, &stripe.PaymentIntentParams{
		ClientSecret: stripe.String(clientSecret),
	})
}

// intentIDFromClientSecret extracts the "pi_..." part of "pi_..._secret_...".
func intentIDFromClientSecret(clientSecret string) (string, error) {
	intentID, _, found := strings.Cut(clientSecret, "_secret_")
	if !found || intentID == "" {
		return "", fmt.Errorf("malformed payment intent client secret")
	}

	return intentID, nil
}
