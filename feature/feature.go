// Package feature turns a quarterly series into a supervised learning table of lag, trend,
// volatility, quarter and time index features.
package feature

// FeatureType groups the columns of a feature row by how they are derived
type FeatureType int

const (
	FeatureTypeLag FeatureType = iota
	FeatureTypeTrend
	FeatureTypeVolatility
	FeatureTypeQuarter
	FeatureTypeTime
	FeatureTypeExtra
)

func (f FeatureType) String() string {
	switch f {
	case FeatureTypeLag:
		return "lag"
	case FeatureTypeTrend:
		return "trend"
	case FeatureTypeVolatility:
		return "volatility"
	case FeatureTypeQuarter:
		return "quarter"
	case FeatureTypeTime:
		return "time"
	case FeatureTypeExtra:
		return "extra"
	default:
		return "unknown"
	}
}

// Feature names a single column of a feature row
type Feature struct {
	Name string      `json:"name"`
	Type FeatureType `json:"type"`
}

func (f Feature) String() string {
	return f.Name
}

const (
	LabelLag1       = "lag1"
	LabelLag2       = "lag2"
	LabelLag3       = "lag3"
	LabelTrend      = "trend"
	LabelVolatility = "volatility"
	LabelQ1         = "q1"
	LabelQ2         = "q2"
	LabelQ3         = "q3"
	LabelQ4         = "q4"
	LabelTimeIndex  = "time_index"
)

// column positions of the fixed portion of every feature row
const (
	IdxLag1 = iota
	IdxLag2
	IdxLag3
	IdxTrend
	IdxVolatility
	IdxQ1
	IdxQ2
	IdxQ3
	IdxQ4
	IdxTimeIndex

	// BaseWidth is the number of columns before any extra features
	BaseWidth
)

// BaseFeatures returns the fixed leading columns of a feature row in order
func BaseFeatures() []Feature {
	return []Feature{
		{LabelLag1, FeatureTypeLag},
		{LabelLag2, FeatureTypeLag},
		{LabelLag3, FeatureTypeLag},
		{LabelTrend, FeatureTypeTrend},
		{LabelVolatility, FeatureTypeVolatility},
		{LabelQ1, FeatureTypeQuarter},
		{LabelQ2, FeatureTypeQuarter},
		{LabelQ3, FeatureTypeQuarter},
		{LabelQ4, FeatureTypeQuarter},
		{LabelTimeIndex, FeatureTypeTime},
	}
}
