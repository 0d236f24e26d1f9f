package scrape

import (
	"regexp"
	"strings"

	"github.com/kart-io/webinsight/internal/pkg/textutil"
)

var (
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Phone patterns: US-style grouped digits, loose international runs with
	// a + prefix, and grouped triples.
	phoneRegexes = []*regexp.Regexp{
		regexp.MustCompile(`\+?1?[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\+\d{1,3}[-.\s]?\d[\d\-.\s()]{7,}\d`),
		regexp.MustCompile(`\d{3}[-.\s]\d{3}[-.\s]\d{3,4}`),
	}

	addressRegex = regexp.MustCompile(`\d+\s+(?:[A-Z][A-Za-z]*\s+){1,5}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Place|Pl|Court|Ct)\b`)

	phoneSeparators = regexp.MustCompile(`[-.\s()]`)
	nonDigits       = regexp.MustCompile(`\D`)
)

// placeholderDomains are filtered out of extracted emails.
var placeholderDomains = []string{"example.com", "test.com"}

// socialDomains identify social-platform links.
var socialDomains = []string{
	"facebook.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"instagram.com",
	"youtube.com",
	"tiktok.com",
}

const minPhoneDigits = 10

// ExtractEmails finds email addresses in text, dropping obvious placeholders.
func ExtractEmails(text string) []string {
	var emails []string
	for _, match := range emailRegex.FindAllString(text, -1) {
		lower := strings.ToLower(match)
		placeholder := false
		for _, domain := range placeholderDomains {
			if strings.HasSuffix(lower, "@"+domain) {
				placeholder = true
				break
			}
		}
		if !placeholder {
			emails = append(emails, match)
		}
	}
	return textutil.Dedupe(emails, 0)
}

// ExtractPhones finds phone numbers in text. Matches are normalized by
// stripping separators and must carry at least 10 digits to be accepted.
func ExtractPhones(text string) []string {
	var phones []string
	for _, re := range phoneRegexes {
		for _, match := range re.FindAllString(text, -1) {
			normalized := phoneSeparators.ReplaceAllString(match, "")
			digits := nonDigits.ReplaceAllString(normalized, "")
			if len(digits) >= minPhoneDigits {
				phones = append(phones, normalized)
			}
		}
	}
	return textutil.Dedupe(phones, 0)
}

// ExtractAddresses finds postal-style street addresses: a leading number
// followed by capitalized words and a street-suffix token.
func ExtractAddresses(text string) []string {
	matches := addressRegex.FindAllString(text, -1)
	for i, m := range matches {
		matches[i] = strings.TrimSpace(m)
	}
	return textutil.Dedupe(matches, 0)
}

// IsSocialLink reports whether href points at a known social platform.
func IsSocialLink(href string) bool {
	lower := strings.ToLower(href)
	for _, domain := range socialDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}
