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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

type OrderRepository struct {
	col *mongo.Collection
	log zerolog.Logger
}

func NewOrderRepository(db *mongo.Database, log zerolog.Logger) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders), log: log}
}

type customerDoc struct {
	Name    string `bson:"name"`
	Address string `bson:"address"`
	Contact string `bson:"contact"`
}

type lineItemDoc struct {
	Product  productDoc `bson:"product"`
	Quantity int        `bson:"quantity"`
}

type historyDoc struct {
	Status    string    `bson:"status"`
	Timestamp time.Time `bson:"timestamp"`
	ActorID   string    `bson:"actorId,omitempty"`
}

type orderDoc struct {
	ID             string               `bson:"_id"`
	StoreID        string               `bson:"storeId"`
	Reference      string               `bson:"orderId"`
	UserID         string               `bson:"userId,omitempty"`
	Customer       customerDoc          `bson:"customer"`
	Items          []lineItemDoc        `bson:"products"`
	TotalAmount    primitive.Decimal128 `bson:"totalAmount"`
	Status         string               `bson:"status"`
	TrackingNumber string               `bson:"trackingNumber,omitempty"`
	IdempotencyKey string               `bson:"idempotencyKey,omitempty"`
	StatusHistory  []historyDoc         `bson:"statusHistory"`
	CreatedAt      time.Time            `bson:"createdAt,omitempty"`
	UpdatedAt      time.Time            `bson:"updatedAt,omitempty"`
}

func toOrderDoc(o *domain.Order) (orderDoc, error) {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return orderDoc{}, err
	}
	items := make([]lineItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		p, err := toProductDoc(&it.Product)
		if err != nil {
			return orderDoc{}, err
		}
		items = append(items, lineItemDoc{Product: p, Quantity: it.Quantity})
	}
	history := make([]historyDoc, 0, len(o.StatusHistory))
	for _, h := range o.StatusHistory {
		history = append(history, historyDoc{Status: string(h.Status), Timestamp: h.Timestamp.UTC(), ActorID: h.ActorID})
	}

	return orderDoc{
		ID:             o.ID,
		StoreID:        o.StoreSlug,
		Reference:      o.Reference,
		UserID:         o.UserID,
		Customer:       customerDoc(o.Customer),
		Items:          items,
		TotalAmount:    total,
		Status:         string(o.Status),
		TrackingNumber: o.TrackingNumber,
		IdempotencyKey: o.IdempotencyKey,
		StatusHistory:  history,
		CreatedAt:      o.CreatedAt.UTC(),
		UpdatedAt:      o.UpdatedAt.UTC(),
	}, nil
}

func (d orderDoc) toDomain() (*domain.Order, error) {
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return nil, err
	}
	items := make([]domain.LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		p, err := it.Product.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, domain.LineItem{Product: *p, Quantity: it.Quantity})
	}
	history := make([]domain.StatusHistoryEntry, 0, len(d.StatusHistory))
	for _, h := range d.StatusHistory {
		history = append(history, domain.StatusHistoryEntry{Status: domain.OrderStatus(h.Status), Timestamp: h.Timestamp, ActorID: h.ActorID})
	}

	return &domain.Order{
		ID:             d.ID,
		StoreSlug:      d.StoreID,
		Reference:      d.Reference,
		UserID:         d.UserID,
		Customer:       domain.Customer(d.Customer),
		Items:          items,
		TotalAmount:    total,
		Status:         domain.OrderStatus(d.Status),
		TrackingNumber: d.TrackingNumber,
		IdempotencyKey: d.IdempotencyKey,
		StatusHistory:  history,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	doc, err := toOrderDoc(o)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByIdempotencyKey retrieves the first order created with the given key.
func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"idempotencyKey": key})
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc orderDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := r.col.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain()
}

func (r *OrderRepository) ListByStore(ctx context.Context, storeSlug string) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"storeId": storeSlug})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// UpdateStatus sets the status and appends a history entry in one write,
// conditioned on the stored status still being u.From.
func (r *OrderRepository) UpdateStatus(ctx context.Context, u ports.StatusUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"status":    string(u.To),
		"updatedAt": u.Entry.Timestamp.UTC(),
	}
	if u.TrackingNumber != "" {
		set["trackingNumber"] = u.TrackingNumber
	}
	entry := historyDoc{Status: string(u.Entry.Status), Timestamp: u.Entry.Timestamp.UTC(), ActorID: u.Entry.ActorID}

	filter := bson.M{"_id": u.OrderID, "status": string(u.From)}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$set":  set,
		"$push": bson.M{"statusHistory": entry},
	})
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": u.OrderID})
	if err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	if n == 0 {
		return domain.ErrOrderNotFound
	}
	return domain.ErrConcurrentUpdate
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Watch(ctx context.Context, storeSlug string) (<-chan []*domain.Order, error) {
	return watchStore(ctx, r.col, storeSlug, func(ctx context.Context) ([]*domain.Order, error) {
		return r.ListByStore(ctx, storeSlug)
	}, r.log)
}
