package domain

import "github.com/paulmach/orb"

// ClusterStats summarizes the score distribution of a cluster's member
// sites.
type ClusterStats struct {
	// Mean is the arithmetic mean of member scores.
	Mean float64 `json:"mean"`

	// Q25 and Q75 are the 25th and 75th percentile member scores,
	// computed with linear interpolation.
	Q25 float64 `json:"q25"`
	Q75 float64 `json:"q75"`

	// IQR is the interquartile range (Q75 - Q25).
	IQR float64 `json:"iqr"`

	// Min and Max are the extreme member scores.
	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// Count is the number of member sites.
	Count int `json:"n_pts"`
}

// Cluster is a spatially dense group of high-scoring sites. Membership
// is disjoint across clusters within a run: density clustering
// partitions the non-noise points, so a site belongs to at most one
// cluster.
type Cluster struct {
	// ID is assigned by the clustering pass in ascending label order and
	// is unique within a run.
	ID int

	// SiteIDs lists the member site identifiers.
	SiteIDs []string

	// Polygon is the convex hull of member locations buffered outward,
	// expressed in geographic (lon, lat) coordinates.
	Polygon orb.Polygon

	// Stats summarizes the member score distribution.
	Stats ClusterStats
}
