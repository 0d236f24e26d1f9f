package scrape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/webinsight/internal/pkg/scrape"
)

func TestExtractEmails(t *testing.T) {
	text := "Reach us at info@acme.com, sales@acme.io or demo@example.com, qa@test.com"

	emails := scrape.ExtractEmails(text)

	assert.Contains(t, emails, "info@acme.com")
	assert.Contains(t, emails, "sales@acme.io")
	assert.NotContains(t, emails, "demo@example.com")
	assert.NotContains(t, emails, "qa@test.com")
}

func TestExtractEmailsDeduplicates(t *testing.T) {
	emails := scrape.ExtractEmails("info@acme.com and again info@acme.com")
	assert.Equal(t, []string{"info@acme.com"}, emails)
}

func TestExtractPhones(t *testing.T) {
	text := "Call (555) 123-4567 or +61 2 9876 5432 today"

	phones := scrape.ExtractPhones(text)

	assert.NotEmpty(t, phones)
	for _, p := range phones {
		digits := 0
		for _, r := range p {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		assert.GreaterOrEqual(t, digits, 10)
	}
}

func TestExtractPhonesRejectsShortRuns(t *testing.T) {
	phones := scrape.ExtractPhones("Our suite number is 123-4567 and we opened in 1985")
	assert.Empty(t, phones)
}

func TestExtractAddresses(t *testing.T) {
	text := "Visit us at 123 Main Street or 456 Ocean Drive for a demo"

	addresses := scrape.ExtractAddresses(text)

	assert.Contains(t, addresses, "123 Main Street")
	assert.Contains(t, addresses, "456 Ocean Drive")
}

func TestIsSocialLink(t *testing.T) {
	assert.True(t, scrape.IsSocialLink("https://www.linkedin.com/company/acme"))
	assert.True(t, scrape.IsSocialLink("https://facebook.com/acme"))
	assert.True(t, scrape.IsSocialLink("HTTPS://TWITTER.COM/acme"))
	assert.False(t, scrape.IsSocialLink("https://acme.com/about"))
}
