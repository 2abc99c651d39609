// Command seed inserts synthetic flood reports around Bangalore so the
// hotspot endpoints have something to show in local demos. It writes one
// Low (5 reports), one Medium (20) and one High (45) cluster.
//
// Usage:
//
//	go run ./cmd/seed            # insert into MONGO_URI / MONGO_DATABASE
//	go run ./cmd/seed -dry-run   # print the resulting hotspots instead
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	mongoadapter "github.com/couchcryptid/flood-hotspot-service/internal/adapter/mongo"
	"github.com/couchcryptid/flood-hotspot-service/internal/config"
	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/couchcryptid/flood-hotspot-service/internal/observability"
	"github.com/joho/godotenv"
)

type clusterDef struct {
	name   string
	center domain.Coordinates
	count  int
}

var clusters = []clusterDef{
	{name: "Low", center: domain.Coordinates{Lat: 12.93, Lon: 77.62}, count: 5},
	{name: "Med", center: domain.Coordinates{Lat: 12.95, Lon: 77.65}, count: 20},
	{name: "High", center: domain.Coordinates{Lat: 12.97, Lon: 77.60}, count: 45},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dryRun := flag.Bool("dry-run", false, "print the hotspots the seed data produces instead of inserting")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for coordinate jitter")
	jitter := flag.Float64("jitter", 0.001, "maximum coordinate jitter in degrees (kept well under the cluster radius)")
	flag.Parse()

	reports := generate(rand.New(rand.NewPCG(*seed, *seed)), *jitter, time.Now().UTC())

	if *dryRun {
		hotspots := domain.DetectHotspots(reports, domain.NewAnchorClusterer())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(domain.NewHotspotCollection(hotspots))
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := mongoadapter.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoReportsCollection, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	n, err := store.InsertReports(ctx, reports)
	if err != nil {
		return err
	}

	logger.Info("seeding complete", "inserted", n)
	for _, c := range clusters {
		fmt.Printf("%-5s %2d reports  lat %.2f lon %.2f\n", c.name, c.count, c.center.Lat, c.center.Lon)
	}
	return nil
}

// generate jitters each cluster's reports around its center. Reports are
// timestamped a second apart so the store's createdAt order is stable.
func generate(rng *rand.Rand, jitter float64, now time.Time) []domain.ReportPoint {
	var reports []domain.ReportPoint
	for _, c := range clusters {
		for i := range c.count {
			reports = append(reports, domain.ReportPoint{
				ID: fmt.Sprintf("%s-%d", c.name, i),
				Location: domain.Coordinates{
					Lat: c.center.Lat + (rng.Float64()-0.5)*jitter,
					Lon: c.center.Lon + (rng.Float64()-0.5)*jitter,
				},
				Severity:   domain.SeverityLow,
				ReportType: domain.ReportTypeWaterLog,
				CreatedAt:  now.Add(time.Duration(len(reports)) * time.Second),
			})
		}
	}
	return reports
}
