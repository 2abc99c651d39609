package mongo

import (
	"testing"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func ptr(v float64) *float64 { return &v }

func TestReportDocument_GeoJSONLocation(t *testing.T) {
	id := bson.NewObjectID()
	created := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	doc := reportDocument{
		ID:         id,
		Location:   locationDocument{Type: "Point", Coordinates: []float64{77.62, 12.93}},
		Severity:   "High",
		ReportType: "Water Log",
		Status:     StatusOngoing,
		CreatedAt:  created,
	}

	p, err := doc.toReportPoint()
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), p.ID)
	assert.Equal(t, domain.Coordinates{Lat: 12.93, Lon: 77.62}, p.Location)
	assert.Equal(t, domain.SeverityHigh, p.Severity)
	assert.Equal(t, domain.ReportTypeWaterLog, p.ReportType)
	assert.Equal(t, created, p.CreatedAt)
}

func TestReportDocument_LegacyLatLon(t *testing.T) {
	doc := reportDocument{
		ID:       bson.NewObjectID(),
		Location: locationDocument{Lat: ptr(12.95), Lon: ptr(77.65)},
		Severity: "Low",
	}

	p, err := doc.toReportPoint()
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 12.95, Lon: 77.65}, p.Location)
}

func TestReportDocument_MissingLocation(t *testing.T) {
	_, err := reportDocument{ID: bson.NewObjectID()}.toReportPoint()
	require.ErrorIs(t, err, errNoLocation)
}

func TestReportDocument_OutOfRange(t *testing.T) {
	doc := reportDocument{Location: locationDocument{Coordinates: []float64{12.93, 977.62}}}
	_, err := doc.toReportPoint()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReportDocument_BSONRoundTripKeepsLegacyShape(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: bson.NewObjectID()},
		{Key: "location", Value: bson.D{{Key: "lat", Value: 12.97}, {Key: "lon", Value: 77.60}}},
		{Key: "severity", Value: "Medium"},
		{Key: "createdAt", Value: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	var doc reportDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	p, err := doc.toReportPoint()
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 12.97, Lon: 77.60}, p.Location)
	assert.Equal(t, domain.SeverityMedium, p.Severity)
}

func TestNewReportDocument(t *testing.T) {
	id := bson.NewObjectID()
	doc := newReportDocument(domain.ReportPoint{
		ID:         id.Hex(),
		Location:   domain.Coordinates{Lat: 12.93, Lon: 77.62},
		Severity:   domain.SeverityLow,
		ReportType: domain.ReportTypeDrainageBlock,
	})

	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Point", doc.Location.Type)
	assert.Equal(t, []float64{77.62, 12.93}, doc.Location.Coordinates)
	assert.Equal(t, StatusPending, doc.Status)
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestNewReportDocument_GeneratesIDForNonHex(t *testing.T) {
	doc := newReportDocument(domain.ReportPoint{ID: "Low-1"})
	assert.False(t, doc.ID.IsZero())
}

func TestActiveFilterExcludesCompleted(t *testing.T) {
	assert.Equal(t,
		bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: "Completed"}}}},
		activeFilter())
	assert.Equal(t,
		bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		activeSort())
}
