package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quickorder/storefront/internal/core/domain"
)

type ProductRepository struct {
	col *mongo.Collection
	log zerolog.Logger
}

func NewProductRepository(db *mongo.Database, log zerolog.Logger) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts), log: log}
}

type productDoc struct {
	ID          string               `bson:"_id"`
	StoreID     string               `bson:"storeId"`
	Name        string               `bson:"name"`
	Price       primitive.Decimal128 `bson:"price"`
	Unit        string               `bson:"unit"`
	Description string               `bson:"description"`
	ImageURL    string               `bson:"imageUrl"`
	SortKey     int64                `bson:"sortKey"`
	CreatedAt   time.Time            `bson:"createdAt"`
}

func toProductDoc(p *domain.Product) (productDoc, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDoc{}, err
	}
	return productDoc{
		ID:          p.ID,
		StoreID:     p.StoreSlug,
		Name:        p.Name,
		Price:       price,
		Unit:        p.Unit,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		SortKey:     p.SortKey,
		CreatedAt:   p.CreatedAt.UTC(),
	}, nil
}

func (d productDoc) toDomain() (*domain.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}
	return &domain.Product{
		ID:          d.ID,
		StoreSlug:   d.StoreID,
		Name:        d.Name,
		Price:       price,
		Unit:        d.Unit,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		SortKey:     d.SortKey,
		CreatedAt:   d.CreatedAt,
	}, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	doc, err := toProductDoc(p)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain()
}

func (r *ProductRepository) ListByStore(ctx context.Context, storeSlug string) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"storeId": storeSlug})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Update rewrites the editable fields; id, store and sort key are kept.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":        p.Name,
		"price":       price,
		"unit":        p.Unit,
		"description": p.Description,
		"imageUrl":    p.ImageURL,
	}})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Watch(ctx context.Context, storeSlug string) (<-chan []*domain.Product, error) {
	return watchStore(ctx, r.col, storeSlug, func(ctx context.Context) ([]*domain.Product, error) {
		return r.ListByStore(ctx, storeSlug)
	}, r.log)
}
