package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/pkg/llm"
	jsonutil "github.com/kart-io/webinsight/pkg/utils/json"
)

const insightSystemPrompt = "You are a business analyst that extracts structured insights from website content. Always respond with valid JSON only."

// Synthesis is the outcome of insight generation. When the LLM call or the
// response parsing fails, Insight holds the fallback document and Degraded
// is set with the reason.
type Synthesis struct {
	Insight  *model.BusinessInsight
	Degraded bool
	Reason   string
}

// Synthesizer turns extracted homepage content into a structured business
// insight document via the chat provider.
type Synthesizer struct {
	chat llm.ChatProvider
}

// NewSynthesizer creates a synthesizer backed by the chat provider.
func NewSynthesizer(chat llm.ChatProvider) *Synthesizer {
	return &Synthesizer{chat: chat}
}

// Synthesize generates insights for the scraped content, answering the
// optional custom questions. It never returns an error for LLM or parse
// failures; those degrade to the fallback insight.
func (s *Synthesizer) Synthesize(ctx context.Context, content *model.ScrapedContent, questions []string) *Synthesis {
	prompt := buildInsightPrompt(content, questions)

	resp, err := s.chat.Generate(ctx, prompt, insightSystemPrompt)
	if err != nil {
		logger.Warnw("insight generation failed", "error", err.Error())
		return &Synthesis{
			Insight:  model.FallbackInsight(),
			Degraded: true,
			Reason:   fmt.Sprintf("llm request failed: %v", err),
		}
	}

	insight, err := parseInsightResponse(resp.Content, questions)
	if err != nil {
		logger.Warnw("insight response unparseable", "error", err.Error(), "response_length", len(resp.Content))
		return &Synthesis{
			Insight:  model.FallbackInsight(),
			Degraded: true,
			Reason:   err.Error(),
		}
	}

	return &Synthesis{Insight: insight}
}

// locationHints derives geographic hints from the raw page text.
func locationHints(content *model.ScrapedContent) []string {
	raw := strings.ToLower(content.RawText)

	var hints []string
	if strings.Contains(raw, "australia") || strings.Contains(raw, "australian") || strings.Contains(raw, "& nz") {
		hints = append(hints, "Geographic focus: Australia/New Zealand")
	}
	if strings.Contains(raw, "uk") || strings.Contains(raw, "united kingdom") || strings.Contains(raw, "british") {
		hints = append(hints, "Geographic focus: United Kingdom")
	}
	if strings.Contains(raw, "usa") || strings.Contains(raw, "united states") || strings.Contains(raw, "american") {
		hints = append(hints, "Geographic focus: United States")
	}
	if strings.Contains(raw, "canada") || strings.Contains(raw, "canadian") {
		hints = append(hints, "Geographic focus: Canada")
	}
	return hints
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// buildInsightPrompt assembles the analysis prompt from the scraped content
// and optional custom questions.
func buildInsightPrompt(content *model.ScrapedContent, questions []string) string {
	var hintText string
	if hints := locationHints(content); len(hints) > 0 {
		hintText = "\nLocation Clues: " + strings.Join(hints, "; ")
	}

	contactText := fmt.Sprintf("emails=%v phones=%v social=%v",
		content.ContactInfo.Emails, content.ContactInfo.Phones, content.ContactInfo.SocialLinks)

	contentText := fmt.Sprintf(`Title: %s
Meta Description: %s
Headings: %s
Main Content: %s
Hero Section: %s
Products: %s
Contact Info: %s%s`,
		orNA(content.Title),
		orNA(content.MetaDescription),
		strings.Join(content.Headings, ", "),
		orNA(content.MainContent),
		orNA(content.HeroSection),
		strings.Join(content.Products, ", "),
		contactText,
		hintText,
	)

	var questionsText, questionsJSONFormat string
	if len(questions) > 0 {
		var b strings.Builder
		b.WriteString("\n\nCUSTOM QUESTIONS TO ANSWER:\n")
		for i, q := range questions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
		questionsText = b.String()

		pairs := make([]string, len(questions))
		for i, q := range questions {
			pairs[i] = fmt.Sprintf("%q: \"answer to this question\"", q)
		}
		questionsJSONFormat = ",\n  \"custom_answers\": {" + strings.Join(pairs, ", ") + "}"
	}

	return fmt.Sprintf(`You are an expert business analyst specializing in company profiling. Analyze the following homepage content and extract comprehensive business insights.

Homepage Content: %s

ANALYSIS REQUIREMENTS:

**Industry**: Determine the primary industry/sector. Use inference and context clues if not explicitly stated. Consider business model, products, services, and terminology used.

**Company Size**: Infer company size from indicators like:
- Employee count mentions, team size, office locations
- Scale of operations, client base, market presence
- Use categories: "Startup (1-10)", "Small (11-50)", "Medium (51-200)", "Large (201-1000)", "Enterprise (1000+)"

**Location**: Extract headquarters or primary business location. Look for:
- Physical addresses, "based in", "located in", office locations, contact addresses
- Market focus indicators like "serving Australia", "Australian market", "UK-based"
- Domain extensions (.com.au = Australia, .co.uk = UK, .ca = Canada)
- Geographic terms in title/description (e.g., "Australia & NZ", "European", "US market")
- IMPORTANT: If content mentions "Australia", "New Zealand", "UK", "Canada", "USA" as primary markets, extract that as location

**USP (Unique Selling Proposition)**: Summarize what makes this company unique. Look for:
- Key differentiators, competitive advantages
- Unique features, proprietary technology, special approaches
- Value propositions, mission statements, "why choose us" content

**Products/Services**: List main offerings as simple product/service names. Focus on core business offerings, not features.

**Target Audience**: Infer primary customer demographic from:
- Language tone, imagery descriptions, use cases mentioned
- Pricing tiers, client testimonials, case studies
- Industry focus, problem statements addressed

**Contact Info**: Extract visible contact details (emails, phones, social media handles).
%s
OUTPUT FORMAT - Return ONLY valid JSON:
{
  "industry": "specific industry name (required, never null)",
  "company_size": "size category or null if unclear",
  "location": "city, state/country or null if not found (e.g., 'Australia', 'New Zealand', 'United Kingdom', 'United States')",
  "USP": "concise unique value proposition summary or null",
  "products": ["product1", "service1", "offering1"],
  "target_audience": "primary customer demographic description or null",
  "contact_info": {"emails": [], "phones": [], "social_media": []}%s
}

Be thorough in your analysis and use business intelligence to infer details that may not be explicitly stated. For custom questions, provide specific answers based on the website content.`,
		contentText, questionsText, questionsJSONFormat)
}

// stripCodeFence removes a surrounding markdown code fence from an LLM
// response, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	}
	if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}

type rawInsight struct {
	Industry       string              `json:"industry"`
	CompanySize    *string             `json:"company_size"`
	Location       *string             `json:"location"`
	USP            *string             `json:"USP"`
	Products       []any               `json:"products"`
	TargetAudience *string             `json:"target_audience"`
	ContactInfo    jsonutil.RawMessage `json:"contact_info"`
	CustomAnswers  map[string]string   `json:"custom_answers"`
}

// parseInsightResponse decodes and normalizes the LLM response into a
// BusinessInsight. Custom answers only appear when questions were asked;
// anything the model volunteers without them is dropped.
func parseInsightResponse(response string, questions []string) (*model.BusinessInsight, error) {
	cleaned := stripCodeFence(response)

	var raw rawInsight
	if err := jsonutil.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, &ParseError{Raw: cleaned, Err: err}
	}

	insight := &model.BusinessInsight{
		Industry:       strings.TrimSpace(raw.Industry),
		CompanySize:    raw.CompanySize,
		Location:       raw.Location,
		USP:            raw.USP,
		Products:       normalizeProducts(raw.Products),
		TargetAudience: raw.TargetAudience,
		ContactInfo:    normalizeContactInfo(raw.ContactInfo),
	}
	if len(questions) > 0 {
		insight.CustomAnswers = raw.CustomAnswers
	}
	if insight.Industry == "" {
		insight.Industry = model.FallbackIndustry
	}
	return insight, nil
}

// normalizeProducts flattens product entries to plain names. Models
// sometimes return objects like {"name": "...", "description": "..."}.
func normalizeProducts(items []any) []string {
	products := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			products = append(products, v)
		case map[string]any:
			if name, ok := v["name"].(string); ok {
				products = append(products, name)
			} else {
				products = append(products, fmt.Sprintf("%v", v))
			}
		default:
			products = append(products, fmt.Sprintf("%v", v))
		}
	}
	return products
}

// normalizeContactInfo decodes the contact block leniently. A malformed
// block degrades to empty lists instead of failing the whole parse.
func normalizeContactInfo(raw jsonutil.RawMessage) model.InsightContactInfo {
	info := model.InsightContactInfo{
		Emails:      []string{},
		Phones:      []string{},
		SocialMedia: []string{},
	}
	if len(raw) == 0 {
		return info
	}

	var decoded model.InsightContactInfo
	if err := jsonutil.Unmarshal(raw, &decoded); err != nil {
		return info
	}
	if decoded.Emails != nil {
		info.Emails = decoded.Emails
	}
	if decoded.Phones != nil {
		info.Phones = decoded.Phones
	}
	if decoded.SocialMedia != nil {
		info.SocialMedia = decoded.SocialMedia
	}
	return info
}
