// Package payment builds UPI payment-intent deep links.
//
// The output is a pure function of its input: no network access, no clock.
package payment

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	scheme   = "upi"
	host     = "pay"
	currency = "INR"
)

var ErrInvalidPaymentIntent = errors.New("invalid payment intent")

// Intent carries everything a UPI app needs to start a payment.
type Intent struct {
	PayeeAddress string
	PayeeName    string
	Amount       decimal.Decimal
	Note         string
	Reference    string
}

// BuildURL renders intent as upi://pay?pa=..&pn=..&am=..&cu=INR&tn=..&tr=..
//
// Every value is query-escaped, so '&', '=' and '+' inside free text can never
// introduce extra parameters. Spaces are written as %20 because several UPI
// apps do not decode '+'.
func BuildURL(in Intent) (string, error) {
	if strings.TrimSpace(in.PayeeAddress) == "" {
		return "", fmt.Errorf("%w: payee address is required", ErrInvalidPaymentIntent)
	}
	if in.Amount.IsNegative() {
		return "", fmt.Errorf("%w: amount must not be negative", ErrInvalidPaymentIntent)
	}

	params := [][2]string{
		{"pa", in.PayeeAddress},
		{"pn", in.PayeeName},
		{"am", in.Amount.StringFixed(2)},
		{"cu", currency},
		{"tn", in.Note},
		{"tr", in.Reference},
	}

	var b strings.Builder
	b.WriteString(scheme + "://" + host + "?")
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(escape(p[1]))
	}
	return b.String(), nil
}

// Parse decodes a URL produced by BuildURL.
func Parse(raw string) (Intent, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrInvalidPaymentIntent, err)
	}
	if u.Scheme != scheme || u.Host != host {
		return Intent{}, fmt.Errorf("%w: not a upi://pay link", ErrInvalidPaymentIntent)
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrInvalidPaymentIntent, err)
	}
	amount, err := decimal.NewFromString(q.Get("am"))
	if err != nil {
		return Intent{}, fmt.Errorf("%w: amount: %v", ErrInvalidPaymentIntent, err)
	}
	return Intent{
		PayeeAddress: q.Get("pa"),
		PayeeName:    q.Get("pn"),
		Amount:       amount,
		Note:         q.Get("tn"),
		Reference:    q.Get("tr"),
	}, nil
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
