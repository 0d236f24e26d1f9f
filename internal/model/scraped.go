// Package model provides data models for the webinsight service.
package model

// ScrapedContent is an immutable snapshot of one homepage fetch after
// extraction. A failed fetch produces a zero-valued ScrapedContent, not an
// error, so downstream analysis can run degraded.
type ScrapedContent struct {
	Title           string      `json:"title,omitempty"`
	MetaDescription string      `json:"meta_description,omitempty"`
	Headings        []string    `json:"headings,omitempty"`
	MainContent     string      `json:"main_content,omitempty"`
	HeroSection     string      `json:"hero_section,omitempty"`
	Products        []string    `json:"products,omitempty"`
	NavLinks        []NavLink   `json:"nav_links,omitempty"`
	ContactInfo     ContactInfo `json:"contact_info"`

	// RawText is the bounded, labeled concatenation of the sections above,
	// used as the retrieval source. Never exceeds the extractor's cap.
	RawText string `json:"raw_text"`
}

// IsEmpty reports whether extraction produced no usable content.
func (s *ScrapedContent) IsEmpty() bool {
	return s.RawText == ""
}

// NavLink is one business-relevant navigation link with its href resolved
// against the page URL.
type NavLink struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// ContactInfo holds contact details extracted from the page's visible text.
type ContactInfo struct {
	Emails      []string `json:"emails,omitempty"`
	Phones      []string `json:"phones,omitempty"`
	Addresses   []string `json:"addresses,omitempty"`
	SocialLinks []string `json:"social_links,omitempty"`
}
