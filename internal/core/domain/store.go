package domain

import (
	"regexp"
	"strings"
	"time"
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9-]`)

// Store is a tenant storefront addressed by its slug.
type Store struct {
	Slug         string    `json:"store_id"`
	Name         string    `json:"name"`
	OwnerEmail   string    `json:"owner_email,omitempty"`
	OwnerPhone   string    `json:"owner_phone,omitempty"`
	VPA          string    `json:"vpa"`
	MerchantName string    `json:"merchant_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoreSettings are the fields an owner may change. The slug is immutable.
type StoreSettings struct {
	Name         *string
	OwnerEmail   *string
	OwnerPhone   *string
	VPA          *string
	MerchantName *string
}

// NormalizeSlug lower-cases s and strips everything outside [a-z0-9-].
func NormalizeSlug(s string) (string, error) {
	slug := slugUnsafe.ReplaceAllString(strings.ToLower(s), "")
	if slug == "" {
		return "", ErrInvalidSlug
	}
	return slug, nil
}

// NormalizePhone keeps only the digits of p.
func NormalizePhone(p string) string {
	var b strings.Builder
	for _, r := range p {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
