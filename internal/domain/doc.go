// Package domain models citizen flood reports and the hotspots derived from them.
//
// # Reports
//
// Citizens file point-located reports of two kinds, "Water Log" and
// "Drainage Block", each with a self-assessed severity (Low, Medium, High).
// A report stays active until it is completed and archived; only active
// reports take part in hotspot detection. Reports are owned by the report
// store and read through [ReportSource].
//
// # Clustering
//
// Hotspots are found with a greedy, single-pass, anchor-based clusterer
// ([AnchorClusterer]):
//
//	for each report, in input order:
//	    join the first cluster whose anchor (first member) is within 500 m
//	    otherwise open a new cluster anchored at this report
//
// Distances are great-circle (Haversine). Only the anchor distance is bounded;
// two members on opposite sides of the anchor may be up to 1 km apart. Results
// depend on input order, which is why report sources return a stable order.
// The [Clusterer] interface allows a different algorithm to be dropped in.
//
// Finalization:
//
//	centroid:  arithmetic mean of member lat and lon (no spherical correction)
//	severity:  count > 40 High | count > 15 Medium | otherwise Low
//	filter:    clusters with fewer than 5 reports are dropped as noise
//
// Member severities do not escalate the cluster tier; the grade is a function
// of report count only.
//
// # Forecast risk
//
// Each hotspot can be enriched with a one-day hourly rain forecast. The series
// is reduced to its peak intensity and total accumulation ([ClassifyRainfall]):
//
//	High:    peak >= 7.6 mm/hr  or  total >= 50 mm
//	Medium:  peak >= 2.5 mm/hr
//	Low:     anything else
//
// When the provider cannot be reached the result is [RiskUnavailable] with no
// numeric fields; see [UnavailableForecast].
//
// # Output
//
// Hotspots are served as GeoJSON FeatureCollections with point geometry in
// [lon, lat] order. See [NewHotspotCollection] and [NewFutureHotspotCollection].
package domain
