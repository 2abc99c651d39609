package domain

const (
	// ClusterRadiusMeters bounds the distance from a cluster's anchor to any member.
	ClusterRadiusMeters = 500.0

	// MinHotspotReports is the smallest cluster emitted as a hotspot.
	MinHotspotReports = 5

	mediumClusterThreshold = 15
	highClusterThreshold   = 40
)

// Cluster is the ordered set of reports grouped into one hotspot.
// Points[0] is the anchor.
type Cluster struct {
	Points []ReportPoint
}

// Anchor returns the first report assigned to the cluster.
func (c Cluster) Anchor() ReportPoint {
	return c.Points[0]
}

// Centroid returns the arithmetic mean of member coordinates. No spherical
// correction is applied; hotspots span a single metro area.
func (c Cluster) Centroid() Coordinates {
	var sumLat, sumLon float64
	for _, p := range c.Points {
		sumLat += p.Location.Lat
		sumLon += p.Location.Lon
	}
	n := float64(len(c.Points))
	return Coordinates{Lat: sumLat / n, Lon: sumLon / n}
}

// Clusterer partitions report points into clusters. Every input point must
// appear in exactly one returned cluster.
type Clusterer interface {
	Group(points []ReportPoint) []Cluster
	RadiusMeters() float64
}

// AnchorClusterer is a greedy single-pass clusterer. A point joins the first
// cluster (in creation order) whose anchor lies within the radius, otherwise it
// opens a new cluster. Two members of one cluster may be up to twice the radius
// apart; only the anchor distance is bounded.
type AnchorClusterer struct {
	Radius float64
}

// NewAnchorClusterer returns an AnchorClusterer using ClusterRadiusMeters.
func NewAnchorClusterer() *AnchorClusterer {
	return &AnchorClusterer{Radius: ClusterRadiusMeters}
}

func (a *AnchorClusterer) RadiusMeters() float64 {
	return a.Radius
}

// Group runs in O(N*K) for N points and K clusters.
func (a *AnchorClusterer) Group(points []ReportPoint) []Cluster {
	var clusters []Cluster
	for _, p := range points {
		joined := false
		for i := range clusters {
			if HaversineMeters(clusters[i].Anchor().Location, p.Location) <= a.Radius {
				clusters[i].Points = append(clusters[i].Points, p)
				joined = true
				break
			}
		}
		if !joined {
			clusters = append(clusters, Cluster{Points: []ReportPoint{p}})
		}
	}
	return clusters
}

// ClassifyClusterSeverity grades a cluster by size alone. Member severities
// are deliberately ignored.
func ClassifyClusterSeverity(count int) Severity {
	switch {
	case count > highClusterThreshold:
		return SeverityHigh
	case count > mediumClusterThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DetectHotspots clusters the points and finalizes every cluster with at least
// MinHotspotReports members into a Hotspot, preserving cluster creation order.
func DetectHotspots(points []ReportPoint, clusterer Clusterer) []Hotspot {
	clusters := clusterer.Group(points)
	hotspots := make([]Hotspot, 0, len(clusters))
	for _, c := range clusters {
		if len(c.Points) < MinHotspotReports {
			continue
		}
		hotspots = append(hotspots, Hotspot{
			Centroid:     c.Centroid(),
			ReportCount:  len(c.Points),
			SeverityTier: ClassifyClusterSeverity(len(c.Points)),
			RadiusMeters: clusterer.RadiusMeters(),
		})
	}
	return hotspots
}
