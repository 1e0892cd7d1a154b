package model

// Descriptor is the qualitative band derived from final_score.
type Descriptor string

const (
	DescriptorExcellent Descriptor = "EXCELLENT"
	DescriptorGood      Descriptor = "GOOD"
	DescriptorWarn      Descriptor = "WARN"
	DescriptorConcern   Descriptor = "CONCERN"
	DescriptorCritical  Descriptor = "CRITICAL"
)

// DescriptorFor maps a final score to its qualitative band.
func DescriptorFor(score float64) Descriptor {
	switch {
	case score >= 8:
		return DescriptorExcellent
	case score >= 6:
		return DescriptorGood
	case score >= 4:
		return DescriptorWarn
	case score >= 2:
		return DescriptorConcern
	}
	return DescriptorCritical
}

// IsCritical reports whether the band counts as a critical issue.
func (d Descriptor) IsCritical() bool {
	return d == DescriptorCritical || d == DescriptorConcern
}

// HealthDescriptor is the coarse page-health label carried on a record.
type HealthDescriptor string

const (
	HealthExcellent HealthDescriptor = "Excellent"
	HealthGood      HealthDescriptor = "Good"
	HealthCritical  HealthDescriptor = "Critical"
	HealthUnknown   HealthDescriptor = "Unknown"
)

// HealthFor maps a final score to the coarse health label.
func HealthFor(score *float64) HealthDescriptor {
	if score == nil {
		return HealthUnknown
	}
	switch {
	case *score >= 8:
		return HealthExcellent
	case *score >= 6:
		return HealthGood
	}
	return HealthCritical
}
