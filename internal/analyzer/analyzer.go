// Package analyzer produces heuristic code-quality feedback for a submission.
// It never executes the submitted code; every rule is a textual pattern.
package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/terra-clan/coding-tracker/internal/models"
)

// Complexity labels
const (
	ComplexityLow      = "low"
	ComplexityModerate = "moderate"
	ComplexityHigh     = "high"
)

// Readability labels
const (
	ReadabilityExcellent        = "excellent"
	ReadabilityGood             = "good"
	ReadabilityNeedsImprovement = "needs improvement"
)

const (
	baseScore     = 50
	maxScore      = 100
	longLineLimit = 100
)

var (
	commentPattern          = regexp.MustCompile(`#.*|//.*|""".*"""`)
	readableCommentPattern  = regexp.MustCompile(`#.*|//.*|/\*.*\*/|""".*"""`)
	branchPattern           = regexp.MustCompile(`\b(for|while|if|elif|else)\b`)
	namedFunctionPattern    = regexp.MustCompile(`\bdef\s+\w+\(|function\s+\w+\(`)
	returnPattern           = regexp.MustCompile(`\breturn\b`)
	indentPattern           = regexp.MustCompile(`(?m)^\s{4}`)
	tryExceptPattern        = regexp.MustCompile(`(?s)\btry\b.*\bexcept\b`)
	snakeCasePattern        = regexp.MustCompile(`(?m)^[a-z_][a-z0-9_]*\s*=`)
	docstringPattern        = regexp.MustCompile(`(?ms)^\s*""".*?"""`)
	modernDeclPattern       = regexp.MustCompile(`\bconst\b|\blet\b`)
	arrowPattern            = regexp.MustCompile(`=>`)
	conditionalPattern      = regexp.MustCompile(`\bif\s+\w+\s*(==|!=|>|<|>=|<=)`)
	iterationKeywordPattern = regexp.MustCompile(`\b(for|while)\b`)
)

// Analyzer scores submissions with static heuristics
type Analyzer struct{}

// New creates an Analyzer
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze evaluates code written in language. The challenge title is accepted
// for context but does not currently influence the result.
func (a *Analyzer) Analyze(code string, language models.Language, challengeTitle string) models.Feedback {
	lines := strings.Split(strings.TrimSpace(code), "\n")
	totalLines := len(lines)

	nonEmpty := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}

	lang := models.Language(strings.ToLower(string(language)))

	return models.Feedback{
		QualityScore:  qualityScore(code, lang, totalLines),
		Complexity:    assessComplexity(code),
		Readability:   assessReadability(code, nonEmpty),
		Strengths:     identifyStrengths(code, lang),
		Suggestions:   generateSuggestions(code, lang, totalLines),
		BestPractices: checkBestPractices(code, lang),
	}
}

func qualityScore(code string, lang models.Language, totalLines int) int {
	score := baseScore

	if totalLines > 5 {
		score += 10
	}
	if totalLines > 10 {
		score += 10
	}

	if lang == models.LanguagePython || lang == models.LanguageJavaScript {
		if strings.Contains(code, "def ") || strings.Contains(code, "function ") {
			score += 15
		}
		if strings.Contains(code, "for") || strings.Contains(code, "while") {
			score += 10
		}
		if strings.Contains(code, "return") {
			score += 5
		}
	}

	if commentPattern.MatchString(code) {
		score += 10
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

func assessComplexity(code string) string {
	indicators := len(branchPattern.FindAllStringIndex(code, -1))

	switch {
	case indicators == 0:
		return ComplexityLow
	case indicators <= 3:
		return ComplexityModerate
	default:
		return ComplexityHigh
	}
}

func assessReadability(code string, nonEmptyLines int) string {
	hasComments := readableCommentPattern.MatchString(code)
	avgLineLength := float64(utf8.RuneCountInString(code)) / float64(max(nonEmptyLines, 1))

	switch {
	case hasComments && avgLineLength < 80:
		return ReadabilityExcellent
	case avgLineLength < 100:
		return ReadabilityGood
	default:
		return ReadabilityNeedsImprovement
	}
}

func identifyStrengths(code string, lang models.Language) []string {
	var strengths []string

	if commentPattern.MatchString(code) {
		strengths = append(strengths, "Code includes helpful comments")
	}
	if namedFunctionPattern.MatchString(code) {
		strengths = append(strengths, "Uses functions for code organization")
	}
	if returnPattern.MatchString(code) {
		strengths = append(strengths, "Properly returns values")
	}
	if lang == models.LanguagePython && indentPattern.MatchString(code) {
		strengths = append(strengths, "Follows proper Python indentation")
	}

	if len(strengths) == 0 {
		strengths = append(strengths, "Code is concise")
	}
	return strengths
}

func generateSuggestions(code string, lang models.Language, totalLines int) []string {
	var suggestions []string

	if !commentPattern.MatchString(code) {
		suggestions = append(suggestions, "Add comments to explain your logic")
	}
	if totalLines < 5 {
		suggestions = append(suggestions, "Consider adding more detailed implementation")
	}
	if !namedFunctionPattern.MatchString(code) {
		suggestions = append(suggestions, "Consider breaking code into reusable functions")
	}
	if lang == models.LanguagePython && !indentPattern.MatchString(code) {
		suggestions = append(suggestions, "Ensure consistent indentation (4 spaces recommended)")
	}

	for _, line := range strings.Split(code, "\n") {
		if utf8.RuneCountInString(line) > longLineLimit {
			suggestions = append(suggestions, "Consider breaking long lines for better readability")
			break
		}
	}

	if !tryExceptPattern.MatchString(code) {
		suggestions = append(suggestions, "Consider adding error handling for edge cases")
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Great work! Code looks solid.")
	}
	return suggestions
}

func checkBestPractices(code string, lang models.Language) []string {
	practices := []string{}

	switch lang {
	case models.LanguagePython:
		if snakeCasePattern.MatchString(code) {
			practices = append(practices, "Uses snake_case variable naming")
		}
		if docstringPattern.MatchString(code) {
			practices = append(practices, "Includes docstrings")
		}
	case models.LanguageJavaScript:
		if modernDeclPattern.MatchString(code) {
			practices = append(practices, "Uses modern ES6+ syntax")
		}
		if arrowPattern.MatchString(code) {
			practices = append(practices, "Uses arrow functions")
		}
	}

	if conditionalPattern.MatchString(code) {
		practices = append(practices, "Uses conditional logic")
	}
	if iterationKeywordPattern.MatchString(code) {
		practices = append(practices, "Implements iterative solutions")
	}

	return practices
}
