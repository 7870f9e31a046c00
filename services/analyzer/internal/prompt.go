package internal

import (
	"fmt"
	"strings"
)

const (
	AnalyzeTemperature = 0.3
	MultiTemperature   = 0.4

	insightsFree = 3
	insightsPro  = 10
)

const analyzePrompt = "Determine if this is a real ad or winning product. Return product name and confidence score:\n\n"

// BuildAnalyzePrompt embeds text verbatim after the fixed instruction.
func BuildAnalyzePrompt(text string) string {
	return analyzePrompt + text
}

func insightLimit(pro bool) int {
	if pro {
		return insightsPro
	}
	return insightsFree
}

// BuildMultiPrompt asks for a bare JSON array of ProductInsight objects.
func BuildMultiPrompt(content string, pro bool) string {
	var sb strings.Builder

	sb.WriteString("You are a strict JSON generator.\n\n")
	sb.WriteString("Given the following content:\n")
	sb.WriteString(`"""` + content + `"""` + "\n\n")
	sb.WriteString(fmt.Sprintf("Extract up to %d products or ad insights in pure JSON array format ONLY.\n", insightLimit(pro)))
	sb.WriteString("Each object should have:\n")
	for _, f := range []string{
		"name", "url", "category", "confidence (0.0-1.0)", "adPlatform", "adAngle",
		"targetAudience", "adScript", "summary", "verdict", "advice",
	} {
		sb.WriteString("- " + f + "\n")
	}
	sb.WriteString(`
Respond ONLY with the array like this:
[
  {
    "name": "Wireless Earbuds",
    "url": "https://example.com",
    "category": "Tech",
    "confidence": 0.92,
    "adPlatform": "TikTok",
    "adAngle": "Problem-solving",
    "targetAudience": "Students, 18-25",
    "adScript": "Tired of your old earbuds? This one will change your sound forever.",
    "summary": "Strong pain-point targeting with a fast hook. Great for TikTok.",
    "verdict": "Run this ad, it has high potential for viral growth.",
    "advice": "Use quick before/after visuals and target mobile users 18-30 with urgency-based copy."
  }
]

Return only the array. No commentary. No wrapping.
`)
	return sb.String()
}
