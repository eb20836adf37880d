package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

const defaultMinPasswordLength = 6

// IdentityProvider is the built-in password provider. Accounts are keyed by
// email or by digits-only phone number; failures are *domain.AuthError.
type IdentityProvider struct {
	col       *mongo.Collection
	minLength int
	now       func() time.Time
}

func NewIdentityProvider(db *mongo.Database, minPasswordLength int) *IdentityProvider {
	if minPasswordLength <= 0 {
		minPasswordLength = defaultMinPasswordLength
	}
	return &IdentityProvider{
		col:       db.Collection(collectionIdentities),
		minLength: minPasswordLength,
		now:       time.Now,
	}
}

type identityDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email,omitempty"`
	Phone        string    `bson:"phone,omitempty"`
	DisplayName  string    `bson:"displayName"`
	Avatar       string    `bson:"avatar,omitempty"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d identityDoc) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:          d.ID,
		DisplayName: d.DisplayName,
		Email:       d.Email,
		Phone:       d.Phone,
		Avatar:      d.Avatar,
	}
}

func (p *IdentityProvider) Register(ctx context.Context, creds ports.Credentials, displayName string) (*domain.Identity, error) {
	email, phone := normalizeCredentials(creds)
	if email == "" && phone == "" {
		return nil, domain.NewAuthError(domain.AuthCodeMissingIdentityData)
	}
	if len(creds.Password) < p.minLength {
		return nil, domain.NewAuthError(domain.AuthCodeWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &domain.AuthError{Code: domain.AuthCodeWeakPassword, Err: err}
	}

	doc := identityDoc{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phone,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := p.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewAuthError(domain.AuthCodeEmailAlreadyInUse)
		}
		return nil, &domain.AuthError{Code: domain.AuthCodeNetworkRequest, Err: err}
	}
	return doc.toDomain(), nil
}

// Authenticate reports unknown accounts and wrong passwords with the same
// code so callers cannot probe for registered identities.
func (p *IdentityProvider) Authenticate(ctx context.Context, creds ports.Credentials) (*domain.Identity, error) {
	email, phone := normalizeCredentials(creds)
	if (email == "" && phone == "") || creds.Password == "" {
		return nil, domain.NewAuthError(domain.AuthCodeMissingIdentityData)
	}

	filter := bson.M{"email": email}
	if email == "" {
		filter = bson.M{"phone": phone}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc identityDoc
	if err := p.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewAuthError(domain.AuthCodeInvalidCredential)
		}
		return nil, &domain.AuthError{Code: domain.AuthCodeNetworkRequest, Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(doc.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, domain.NewAuthError(domain.AuthCodeInvalidCredential)
	}
	return doc.toDomain(), nil
}

func normalizeCredentials(c ports.Credentials) (email, phone string) {
	return strings.ToLower(strings.TrimSpace(c.Email)), domain.NormalizePhone(c.Phone)
}
