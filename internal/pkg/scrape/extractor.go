// Package scrape turns raw homepage HTML into a bounded, business-relevant
// content record. Extraction is heuristic and never fails: adversarial or
// empty markup yields an empty record, not an error.
package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/internal/pkg/textutil"
)

// Output bounds. RawTextMaxLen is a hard cap including the ellipsis marker.
const (
	RawTextMaxLen = 5000

	MaxHeadings    = 15
	MaxProducts    = 10
	MaxNavLinks    = 10
	MaxSocialLinks = 5

	minHeroLen    = 50
	minMainLen    = 200
	minProductLen = 10
	maxProductLen = 200

	rawTextHeadings      = 10
	rawTextContentLen    = 2000
	rawTextHeroLen       = 1000
	rawTextProducts      = 5
	rawTextNavLinks      = 5
	rawTextStructuredLen = 500
)

// noiseSelectors are removed wholesale before any content extraction.
var noiseSelectors = []string{"script", "style", "iframe", "embed", "noscript", "footer"}

// noiseClassTokens mark ad/cookie/popup containers by class or id substring.
var noiseClassTokens = []string{"cookie", "popup", "overlay", "modal", "advert"}

var (
	heroKeywords    = []string{"hero", "banner", "jumbotron", "intro"}
	mainKeywords    = []string{"content", "main-content", "page-content"}
	productKeywords = []string{"product", "service", "feature", "offering"}

	businessLinkKeywords = []string{
		"about", "contact", "service", "product", "pricing", "team",
		"company", "solution", "feature", "portfolio", "career", "support",
	}
)

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var wsRegex = regexp.MustCompile(`\s+`)

// contentBucket names the destination of a classified element.
type contentBucket int

const (
	bucketHero contentBucket = iota
	bucketMain
	bucketProduct
)

// classifyRule maps an element predicate to a bucket. Rules are evaluated in
// order during the single traversal; an element can feed multiple buckets.
type classifyRule struct {
	bucket contentBucket
	match  func(tag, classID string) bool
}

var classifyRules = []classifyRule{
	{
		bucket: bucketHero,
		match: func(_, classID string) bool {
			return containsAny(classID, heroKeywords)
		},
	},
	{
		bucket: bucketMain,
		match: func(tag, classID string) bool {
			if tag == "main" || tag == "article" {
				return true
			}
			return containsAny(classID, mainKeywords)
		},
	},
	{
		bucket: bucketProduct,
		match: func(_, classID string) bool {
			return containsAny(classID, productKeywords)
		},
	},
}

// Extractor parses homepage HTML into a ScrapedContent record.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract produces a ScrapedContent from raw HTML. pageURL anchors relative
// navigation links. Malformed input degrades to an empty record.
func (e *Extractor) Extract(rawHTML, pageURL string) *model.ScrapedContent {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return &model.ScrapedContent{}
	}

	base, _ := url.Parse(pageURL)

	// JSON-LD lives in script tags, so grab it before noise removal.
	structuredData := extractStructuredData(doc)

	removeNoise(doc)

	content := &model.ScrapedContent{
		Title:           textutil.CleanText(doc.Find("title").First().Text()),
		MetaDescription: extractMetaDescription(doc),
	}

	e.classifyElements(doc, content)

	content.Headings = textutil.Dedupe(content.Headings, MaxHeadings)
	content.Products = textutil.Dedupe(content.Products, MaxProducts)

	content.NavLinks = extractBusinessLinks(doc, base)

	visibleText := textutil.CleanText(doc.Find("body").Text())
	content.ContactInfo = model.ContactInfo{
		Emails:      ExtractEmails(visibleText),
		Phones:      ExtractPhones(visibleText),
		Addresses:   ExtractAddresses(visibleText),
		SocialLinks: extractSocialLinks(doc, base),
	}

	content.RawText = buildRawText(content, structuredData)

	return content
}

// classifyElements walks every remaining element once, routing each to its
// buckets via the rule table. First sufficiently long match wins for hero
// and main content.
func (e *Extractor) classifyElements(doc *goquery.Document, content *model.ScrapedContent) {
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)

		if headingTags[tag] {
			if text := textutil.CleanText(sel.Text()); text != "" {
				content.Headings = append(content.Headings, text)
			}
			return
		}

		classID := strings.ToLower(sel.AttrOr("class", "") + " " + sel.AttrOr("id", ""))

		for _, rule := range classifyRules {
			if !rule.match(tag, classID) {
				continue
			}
			switch rule.bucket {
			case bucketHero:
				if content.HeroSection == "" {
					if text := textutil.CleanText(sel.Text()); len([]rune(text)) >= minHeroLen {
						content.HeroSection = text
					}
				}
			case bucketMain:
				if content.MainContent == "" {
					if text := textutil.CleanText(sel.Text()); len([]rune(text)) >= minMainLen {
						content.MainContent = text
					}
				}
			case bucketProduct:
				text := textutil.CleanText(sel.Text())
				if n := len([]rune(text)); n >= minProductLen && n <= maxProductLen {
					content.Products = append(content.Products, text)
				}
			}
		}
	})
}

func removeNoise(doc *goquery.Document) {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	doc.Find("div, section, aside").Each(func(_ int, sel *goquery.Selection) {
		classID := strings.ToLower(sel.AttrOr("class", "") + " " + sel.AttrOr("id", ""))
		if containsAny(classID, noiseClassTokens) {
			sel.Remove()
		}
	})
}

func extractMetaDescription(doc *goquery.Document) string {
	desc := doc.Find(`meta[name="description"]`).AttrOr("content", "")
	if desc == "" {
		desc = doc.Find(`meta[property="og:description"]`).AttrOr("content", "")
	}
	return textutil.CleanText(desc)
}

func extractStructuredData(doc *goquery.Document) string {
	raw := doc.Find(`script[type="application/ld+json"]`).First().Text()
	raw = wsRegex.ReplaceAllString(strings.TrimSpace(raw), " ")
	return textutil.TruncateString(raw, rawTextStructuredLen)
}

// extractBusinessLinks collects anchors whose text or href matches a
// business-page keyword, with relative hrefs resolved against base.
func extractBusinessLinks(doc *goquery.Document, base *url.URL) []model.NavLink {
	var links []model.NavLink
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href := sel.AttrOr("href", "")
		text := textutil.CleanText(sel.Text())
		if href == "" || skipHref(href) {
			return true
		}

		lowerText := strings.ToLower(text)
		lowerHref := strings.ToLower(href)
		if !containsAny(lowerText, businessLinkKeywords) && !containsAny(lowerHref, businessLinkKeywords) {
			return true
		}

		resolved := resolveHref(base, href)
		if resolved == "" || seen[resolved] {
			return true
		}
		seen[resolved] = true

		links = append(links, model.NavLink{Text: text, URL: resolved})
		return len(links) < MaxNavLinks
	})

	return links
}

func extractSocialLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href := sel.AttrOr("href", "")
		if href == "" || skipHref(href) || !IsSocialLink(href) {
			return true
		}

		resolved := resolveHref(base, href)
		if resolved == "" || seen[resolved] {
			return true
		}
		seen[resolved] = true

		links = append(links, resolved)
		return len(links) < MaxSocialLinks
	})

	return links
}

func skipHref(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "#")
}

func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// buildRawText concatenates labeled, size-capped sections in a fixed order
// and hard-truncates the result to RawTextMaxLen, marking truncation with an
// ellipsis.
func buildRawText(content *model.ScrapedContent, structuredData string) string {
	var sections []string

	if content.Title != "" {
		sections = append(sections, "TITLE: "+content.Title)
	}
	if content.MetaDescription != "" {
		sections = append(sections, "DESCRIPTION: "+content.MetaDescription)
	}
	if len(content.Headings) > 0 {
		sections = append(sections, "HEADINGS: "+strings.Join(head(content.Headings, rawTextHeadings), " | "))
	}
	if content.MainContent != "" {
		sections = append(sections, "CONTENT: "+textutil.TruncateString(content.MainContent, rawTextContentLen))
	}
	if content.HeroSection != "" {
		sections = append(sections, "HERO: "+textutil.TruncateString(content.HeroSection, rawTextHeroLen))
	}
	if len(content.Products) > 0 {
		sections = append(sections, "PRODUCTS: "+strings.Join(head(content.Products, rawTextProducts), " | "))
	}
	if len(content.NavLinks) > 0 {
		var texts []string
		for _, link := range content.NavLinks {
			texts = append(texts, link.Text)
			if len(texts) == rawTextNavLinks {
				break
			}
		}
		sections = append(sections, "NAVIGATION: "+strings.Join(texts, " | "))
	}
	if structuredData != "" {
		sections = append(sections, "STRUCTURED_DATA: "+structuredData)
	}

	raw := strings.Join(sections, "\n\n")
	if len([]rune(raw)) > RawTextMaxLen {
		raw = textutil.TruncateString(raw, RawTextMaxLen-3) + "..."
	}
	return raw
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
