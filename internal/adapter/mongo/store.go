package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Report lifecycle states stored in the status field. Only completed reports
// are excluded from hotspot detection.
const (
	StatusPending   = "Pending"
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
)

// ReportStore implements domain.ReportSource over a MongoDB collection of
// citizen reports.
type ReportStore struct {
	client     *mongodriver.Client
	collection *mongodriver.Collection
	logger     *slog.Logger
}

// Connect opens a client, verifies it with a ping, and ensures the report indexes exist.
func Connect(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*ReportStore, error) {
	client, err := mongodriver.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := &ReportStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger,
	}
	s.ensureIndexes(ctx)
	return s, nil
}

func (s *ReportStore) ensureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.collection.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		s.logger.Warn("create report indexes failed", "error", err)
	}
}

// ListActiveReports returns every report not yet completed, oldest first with
// ties broken by id, so repeated calls yield the same order.
func (s *ReportStore) ListActiveReports(ctx context.Context) ([]domain.ReportPoint, error) {
	cursor, err := s.collection.Find(ctx, activeFilter(), options.Find().SetSort(activeSort()))
	if err != nil {
		return nil, fmt.Errorf("find active reports: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	points := make([]domain.ReportPoint, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.toReportPoint()
		if err != nil {
			s.logger.Warn("skipping report", "id", doc.ID.Hex(), "error", err)
			continue
		}
		points = append(points, p)
	}
	return points, nil
}

// InsertReports stores new pending reports with GeoJSON locations and returns how many were written.
func (s *ReportStore) InsertReports(ctx context.Context, reports []domain.ReportPoint) (int, error) {
	if len(reports) == 0 {
		return 0, nil
	}
	docs := make([]any, len(reports))
	for i, r := range reports {
		docs[i] = newReportDocument(r)
	}

	res, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("insert reports: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// CheckReadiness pings the primary.
func (s *ReportStore) CheckReadiness(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb not reachable: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *ReportStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func activeFilter() bson.D {
	return bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: StatusCompleted}}}}
}

func activeSort() bson.D {
	return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
}

// reportDocument is the stored report shape. Location is GeoJSON
// {type: Point, coordinates: [lon, lat]}; older documents carry {lat, lon}.
type reportDocument struct {
	ID          bson.ObjectID    `bson:"_id,omitempty"`
	Location    locationDocument `bson:"location"`
	Severity    string           `bson:"severity"`
	ReportType  string           `bson:"reportType,omitempty"`
	Description string           `bson:"description,omitempty"`
	Status      string           `bson:"status,omitempty"`
	CreatedAt   time.Time        `bson:"createdAt"`
}

type locationDocument struct {
	Type        string    `bson:"type,omitempty"`
	Coordinates []float64 `bson:"coordinates,omitempty"`
	Lat         *float64  `bson:"lat,omitempty"`
	Lon         *float64  `bson:"lon,omitempty"`
}

var errNoLocation = errors.New("report has no usable location")

func (l locationDocument) coordinates() (domain.Coordinates, error) {
	var c domain.Coordinates
	switch {
	case len(l.Coordinates) == 2:
		c = domain.Coordinates{Lat: l.Coordinates[1], Lon: l.Coordinates[0]}
	case l.Lat != nil && l.Lon != nil:
		c = domain.Coordinates{Lat: *l.Lat, Lon: *l.Lon}
	default:
		return c, errNoLocation
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return c, fmt.Errorf("coordinates out of range: %v,%v", c.Lat, c.Lon)
	}
	return c, nil
}

func (d reportDocument) toReportPoint() (domain.ReportPoint, error) {
	loc, err := d.Location.coordinates()
	if err != nil {
		return domain.ReportPoint{}, err
	}
	return domain.ReportPoint{
		ID:         d.ID.Hex(),
		Location:   loc,
		Severity:   domain.Severity(d.Severity),
		ReportType: domain.ReportType(d.ReportType),
		CreatedAt:  d.CreatedAt,
	}, nil
}

func newReportDocument(r domain.ReportPoint) reportDocument {
	id, err := bson.ObjectIDFromHex(r.ID)
	if err != nil {
		id = bson.NewObjectID()
	}
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return reportDocument{
		ID: id,
		Location: locationDocument{
			Type:        "Point",
			Coordinates: []float64{r.Location.Lon, r.Location.Lat},
		},
		Severity:   string(r.Severity),
		ReportType: string(r.ReportType),
		Status:     StatusPending,
		CreatedAt:  createdAt,
	}
}
