package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// ShippingCostDocument stores a shipping formula with zone keys as strings.
type ShippingCostDocument struct {
	BaseCost            decimal.Decimal            `bson:"base_cost"`
	WeightFactor        decimal.Decimal            `bson:"weight_factor"`
	VolumeFactor        decimal.Decimal            `bson:"volume_factor"`
	DistanceMultipliers map[string]decimal.Decimal `bson:"distance_multipliers"`
}

// PricingTablesDocument is one stored version of the pricing tables.
type PricingTablesDocument struct {
	ID        primitive.ObjectID                        `bson:"_id,omitempty"`
	Version   int                                       `bson:"version"`
	Active    bool                                      `bson:"active"`
	Materials map[model.MaterialType]model.MaterialCost `bson:"materials"`
	Processes map[model.ProcessType]model.ProcessCost   `bson:"processes"`
	Tiers     map[model.Tier]model.PricingConfiguration `bson:"tiers"`
	Shipping  map[model.Tier]ShippingCostDocument       `bson:"shipping"`
	CreatedAt time.Time                                 `bson:"created_at"`
	UpdatedAt time.Time                                 `bson:"updated_at"`
	CreatedBy string                                    `bson:"created_by,omitempty"`
}

// NewPricingTablesDocument converts domain tables into a document.
func NewPricingTablesDocument(tables model.PricingTables) *PricingTablesDocument {
	shipping := make(map[model.Tier]ShippingCostDocument, len(tables.Shipping))
	for tier, s := range tables.Shipping {
		zones := make(map[string]decimal.Decimal, len(s.DistanceMultipliers))
		for zone, m := range s.DistanceMultipliers {
			zones[strconv.Itoa(int(zone))] = m
		}
		shipping[tier] = ShippingCostDocument{
			BaseCost:            s.BaseCost,
			WeightFactor:        s.WeightFactor,
			VolumeFactor:        s.VolumeFactor,
			DistanceMultipliers: zones,
		}
	}
	return &PricingTablesDocument{
		Version:   tables.Version,
		Materials: tables.Materials,
		Processes: tables.Processes,
		Tiers:     tables.Tiers,
		Shipping:  shipping,
	}
}

// ToModel converts the document back into domain tables. Unknown zone keys are skipped.
func (d *PricingTablesDocument) ToModel() model.PricingTables {
	shipping := make(map[model.Tier]model.ShippingCost, len(d.Shipping))
	for tier, s := range d.Shipping {
		zones := make(map[model.ShippingZone]decimal.Decimal, len(s.DistanceMultipliers))
		for key, m := range s.DistanceMultipliers {
			n, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			zones[model.ShippingZone(n)] = m
		}
		shipping[tier] = model.ShippingCost{
			BaseCost:            s.BaseCost,
			WeightFactor:        s.WeightFactor,
			VolumeFactor:        s.VolumeFactor,
			DistanceMultipliers: zones,
		}
	}
	return model.PricingTables{
		Version:   d.Version,
		Materials: d.Materials,
		Processes: d.Processes,
		Tiers:     d.Tiers,
		Shipping:  shipping,
	}
}

// PricingTablesRepository stores versioned pricing tables. Exactly one version is active.
type PricingTablesRepository struct {
	collection *mongo.Collection
}

// NewPricingTablesRepository creates a new pricing tables repository.
func NewPricingTablesRepository(db *MongoDB) *PricingTablesRepository {
	return &PricingTablesRepository{
		collection: db.PricingTables,
	}
}

// GetActive returns the active tables, or nil when none were ever stored.
func (r *PricingTablesRepository) GetActive(ctx context.Context) (*PricingTablesDocument, error) {
	var doc PricingTablesDocument
	err := r.collection.FindOne(ctx, bson.M{"active": true}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create stores tables as the next version and deactivates the previous one.
func (r *PricingTablesRepository) Create(ctx context.Context, tables model.PricingTables, createdBy string) (*PricingTablesDocument, error) {
	version, err := r.latestVersion(ctx)
	if err != nil {
		return nil, err
	}

	_, err = r.collection.UpdateMany(
		ctx,
		bson.M{"active": true},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := NewPricingTablesDocument(tables)
	doc.ID = primitive.NewObjectID()
	doc.Version = version + 1
	doc.Active = true
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.CreatedBy = createdBy

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns stored versions, newest first.
func (r *PricingTablesRepository) List(ctx context.Context, limit int) ([]PricingTablesDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []PricingTablesDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *PricingTablesRepository) latestVersion(ctx context.Context) (int, error) {
	var doc struct {
		Version int `bson:"version"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "version", Value: -1}}).
		SetProjection(bson.M{"version": 1})
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}
