package model

// FallbackIndustry is used whenever the synthesized industry is missing or
// empty; BusinessInsight.Industry is never blank.
const FallbackIndustry = "Business Services"

// BusinessInsight is the structured analysis of one website homepage.
// Optional fields serialize as null when the analysis could not infer them.
type BusinessInsight struct {
	Industry       string             `json:"industry"`
	CompanySize    *string            `json:"company_size"`
	Location       *string            `json:"location"`
	USP            *string            `json:"USP"`
	Products       []string           `json:"products"`
	TargetAudience *string            `json:"target_audience"`
	ContactInfo    InsightContactInfo `json:"contact_info"`
	CustomAnswers  map[string]string  `json:"custom_answers,omitempty"`
}

// InsightContactInfo is the contact section of a BusinessInsight. All slices
// are non-nil after normalization.
type InsightContactInfo struct {
	Emails      []string `json:"emails"`
	Phones      []string `json:"phones"`
	SocialMedia []string `json:"social_media"`
}

// FallbackInsight returns the well-typed insight used when synthesis fails.
func FallbackInsight() *BusinessInsight {
	return &BusinessInsight{
		Industry: FallbackIndustry,
		Products: []string{},
		ContactInfo: InsightContactInfo{
			Emails:      []string{},
			Phones:      []string{},
			SocialMedia: []string{},
		},
	}
}
