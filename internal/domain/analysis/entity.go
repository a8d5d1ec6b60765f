package analysis

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Batas panjang field sebelum disimpan (ukuran dokumen di storage terbatas)
const (
	MaxErrorMessageLen = 10000
	MaxLanguageLen     = 50
	MaxExplanationLen  = 5000
	MaxCauseLen        = 500
	MaxSolutionLen     = 2000
	MaxExampleCodeLen  = 5000

	// MaxItems caps causes and solutions; the prompt asks for 3 to 5.
	MaxItems = 5
)

// Category enum
type Category string

const (
	CategorySyntax        Category = "Syntax Error"
	CategoryRuntime       Category = "Runtime Error"
	CategoryLogic         Category = "Logic Error"
	CategoryConfiguration Category = "Configuration Error"
	CategoryNetwork       Category = "Network Error"
	CategoryDatabase      Category = "Database Error"
	CategoryUnknown       Category = "Unknown Error"
)

// Categories lists the values a completion may choose from.
var Categories = []Category{
	CategorySyntax,
	CategoryRuntime,
	CategoryLogic,
	CategoryConfiguration,
	CategoryNetwork,
	CategoryDatabase,
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	if strings.EqualFold(s, string(CategoryUnknown)) {
		return CategoryUnknown, true
	}
	return "", false
}

// Severity enum
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities in ascending order.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityHigh:
		return SeverityHigh, true
	case SeverityCritical:
		return SeverityCritical, true
	}
	return "", false
}

// Fields is the structured diagnosis produced by the extraction engine.
type Fields struct {
	Explanation string   `json:"explanation"`
	Causes      []string `json:"causes"`
	Solutions   []string `json:"solutions"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	ExampleCode string   `json:"exampleCode"`
}

// Bounded returns a copy with every length limit applied and enum defaults filled.
func (f Fields) Bounded() Fields {
	out := Fields{
		Explanation: Truncate(f.Explanation, MaxExplanationLen),
		Causes:      truncateAll(f.Causes, MaxCauseLen),
		Solutions:   truncateAll(f.Solutions, MaxSolutionLen),
		Category:    f.Category,
		Severity:    f.Severity,
		ExampleCode: Truncate(f.ExampleCode, MaxExampleCodeLen),
	}
	if c, ok := ParseCategory(string(out.Category)); ok {
		out.Category = c
	} else {
		out.Category = CategoryRuntime
	}
	if sev, ok := ParseSeverity(string(out.Severity)); ok {
		out.Severity = sev
	} else {
		out.Severity = SeverityMedium
	}
	return out
}

// SubmissionID identifier type
type SubmissionID string

// Submission is one analysed error, owned by a pseudonymous client.
type Submission struct {
	ID           SubmissionID `json:"id"`
	ClientID     string       `json:"clientId"`
	ErrorMessage string       `json:"errorMessage"`
	Language     string       `json:"language"`
	Fields
	IsShared  bool       `json:"isShared"`
	IsPrivate bool       `json:"isPrivate"`
	ShareID   string     `json:"shareId"`
	SharedAt  *time.Time `json:"sharedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Normalize applies the storage limits to every text field.
func (s *Submission) Normalize() {
	s.ErrorMessage = Truncate(s.ErrorMessage, MaxErrorMessageLen)
	s.Language = Truncate(s.Language, MaxLanguageLen)
	s.Fields = s.Fields.Bounded()
}

// OwnedBy reports whether clientID owns the submission.
func (s *Submission) OwnedBy(clientID string) bool {
	return s.ClientID == clientID
}

// PubliclyVisible is true only for shared, non-private submissions.
func (s *Submission) PubliclyVisible() bool {
	return s.IsShared && !s.IsPrivate
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func truncateAll(items []string, n int) []string {
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, Truncate(it, n))
	}
	return out
}
