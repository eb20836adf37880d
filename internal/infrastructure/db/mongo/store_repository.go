package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quickorder/storefront/internal/core/domain"
)

type StoreRepository struct {
	col *mongo.Collection
}

func NewStoreRepository(db *mongo.Database) *StoreRepository {
	return &StoreRepository{col: db.Collection(collectionStores)}
}

type storeDoc struct {
	Slug         string    `bson:"_id"`
	Name         string    `bson:"name"`
	OwnerEmail   string    `bson:"ownerEmail,omitempty"`
	OwnerPhone   string    `bson:"ownerPhone,omitempty"`
	VPA          string    `bson:"vpa"`
	MerchantName string    `bson:"merchantName"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func toStoreDoc(s *domain.Store) storeDoc {
	return storeDoc{
		Slug:         s.Slug,
		Name:         s.Name,
		OwnerEmail:   s.OwnerEmail,
		OwnerPhone:   s.OwnerPhone,
		VPA:          s.VPA,
		MerchantName: s.MerchantName,
		CreatedAt:    s.CreatedAt.UTC(),
	}
}

func (d storeDoc) toDomain() *domain.Store {
	return &domain.Store{
		Slug:         d.Slug,
		Name:         d.Name,
		OwnerEmail:   d.OwnerEmail,
		OwnerPhone:   d.OwnerPhone,
		VPA:          d.VPA,
		MerchantName: d.MerchantName,
		CreatedAt:    d.CreatedAt,
	}
}

// Upsert replaces the whole document stored under the slug.
func (r *StoreRepository) Upsert(ctx context.Context, s *domain.Store) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": s.Slug}, toStoreDoc(s), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert store: %w", err)
	}
	return nil
}

func (r *StoreRepository) FindBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	return r.findOne(ctx, bson.M{"_id": slug})
}

func (r *StoreRepository) List(ctx context.Context) ([]*domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	var docs []storeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stores: %w", err)
	}

	stores := make([]*domain.Store, 0, len(docs))
	for _, d := range docs {
		stores = append(stores, d.toDomain())
	}
	return stores, nil
}

// UpdateSettings sets only the fields present in settings.
func (r *StoreRepository) UpdateSettings(ctx context.Context, slug string, settings domain.StoreSettings) (*domain.Store, error) {
	set := bson.M{}
	for field, v := range map[string]*string{
		"name":         settings.Name,
		"ownerEmail":   settings.OwnerEmail,
		"ownerPhone":   settings.OwnerPhone,
		"vpa":          settings.VPA,
		"merchantName": settings.MerchantName,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	if len(set) == 0 {
		return r.FindBySlug(ctx, slug)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc storeDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": slug}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("update store settings: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *StoreRepository) Delete(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": slug})
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) FindByOwnerEmail(ctx context.Context, email string) (*domain.Store, error) {
	return r.findOne(ctx, bson.M{"ownerEmail": email})
}

func (r *StoreRepository) FindByOwnerPhone(ctx context.Context, phone string) (*domain.Store, error) {
	return r.findOne(ctx, bson.M{"ownerPhone": phone})
}

// findOne returns the oldest matching store.
func (r *StoreRepository) findOne(ctx context.Context, filter bson.M) (*domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc storeDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := r.col.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("find store: %w", err)
	}
	return doc.toDomain(), nil
}
