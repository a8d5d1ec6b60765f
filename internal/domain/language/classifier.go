// Package language guesses the source language of free-form error text.
// The result is advisory: it only drives a mismatch warning, never a rejection.
package language

import (
	"fmt"
	"regexp"
)

// Label is a selectable language or environment name.
type Label string

const Other Label = "Other"

type indicatorSet struct {
	label    Label
	patterns []*regexp.Regexp
}

func set(label Label, exprs ...string) indicatorSet {
	s := indicatorSet{label: label}
	for _, e := range exprs {
		s.patterns = append(s.patterns, regexp.MustCompile("(?i)"+e))
	}
	return s
}

var indicators = []indicatorSet{
	set("Appwrite",
		`appwriteexception`,
		`document.*not.*found`,
		`collection.*not.*found`,
		`function.*execution.*failed`,
		`users\.get\(\)`,
		`database\.getcollection\(\)`,
	),
	set("C#",
		`\.cs\(\d+,\d+\)`,
		`\bCS\d{4}\b`,
		`system\.\w+exception`,
		`program\.cs.*line`,
		`string\.isnullorempty`,
		`argumentnullexception`,
	),
	set("Ruby",
		`\.rb:\d+`,
		`nomethoderror.*undefined method`,
		`nameerror.*undefined local variable`,
		`loaderror.*cannot load such file`,
		`from.*\.rb:\d+.*in`,
	),
	set("Go",
		`\.go:\d+`,
		`panic:.*runtime error`,
		`goroutine \d+.*running`,
		`undefined:.*fmt\.`,
		`cannot use.*as type.*in assignment`,
	),
	set("Swift",
		`\.swift:\d+`,
		`thread.*fatal error.*index out of range`,
		`exc_bad_access`,
		`viewcontroller\.swift`,
		`appdelegate\.swift`,
	),
	set("SQL",
		`ERROR \d{4}.*\(\w+\)`,
		`table.*doesn.*exist`,
		`syntax error.*near.*from`,
		`duplicate entry.*for key`,
		`select.*from.*where`,
	),
	set("Docker",
		`failed to solve.*executor failed`,
		`dockerfile:\d+`,
		`docker:.*error response from daemon`,
		`container exited with code`,
		`pull access denied`,
	),
	set("Git",
		`fatal:.*not a git repository`,
		`error:.*local changes would be overwritten`,
		`conflict.*content.*merge conflict`,
		`automatic merge failed`,
		`git pull.*git status`,
	),
	set("Linux",
		`bash:.*command not found`,
		`usr/bin/env.*no such file`,
		`permission denied.*cannot create directory`,
		`segmentation fault.*core dumped`,
		`mkdir:.*permission denied`,
	),
	set("Python",
		`\.py[\s:"]`,
		`traceback.*most recent call last`,
		`(?m)^\s*(file\s+|  File\s+)`,
		`\b(nameerror|keyerror|valueerror|indentationerror|importerror|attributeerror|indexerror|zerodivisionerror)\b`,
		`(?m)\^\s*$`,
	),
	set("Java",
		`\.java:\d+`,
		`exception in thread`,
		`\b(nullpointerexception|classnotfoundexception|arrayindexoutofboundsexception|illegalargumentexception)\b`,
		`\bat\s+[\w.$]+\(`,
		`caused by:`,
	),
	set("TypeScript",
		`\.ts:\d+`,
		`\bts\d{4}:`,
		`property.*does not exist on type`,
		`type.*is not assignable to type`,
		`\.tsx:\d+`,
	),
	set("React",
		`warning.*each child.*unique.*key`,
		`hooks can only be called`,
		`cannot update.*component.*while rendering`,
		`react.*error`,
		`\.jsx:\d+`,
	),
	set("Next.js",
		`next.*error`,
		`getStaticProps|getServerSideProps`,
		`_app\.js|_document\.js`,
		`next/\w+`,
	),
	set("Node.js",
		`\benoent\b`,
		`cannot find module`,
		`error.*node_modules`,
		`\bnode:\w+`,
	),
	set("JavaScript",
		`\.js:\d+`,
		`\b(typeerror|referenceerror|syntaxerror)\b.*\b(cannot read|is not defined|unexpected token)`,
		`\bat\s+.*\.js:`,
	),
	set("PHP",
		`\.php.*line\s+\d+`,
		`fatal error.*php`,
		`parse error.*php`,
		`\$\w+.*undefined`,
		`call to undefined function`,
	),
	set("C++",
		`\.cpp:\d+`,
		`\.h:\d+`,
		`\berror.*expected.*before`,
		`segmentation fault`,
		`core dumped`,
	),
	set("Rust",
		`\.rs:\d+`,
		`\berror\[E\d+\]`,
		`thread.*panicked`,
		`cargo.*error`,
		`borrow of moved value`,
		`mismatched types`,
		`expected.*found`,
	),
	set("Kotlin",
		`\.kt:\d+`,
		`kotlinnullpointerexception`,
		`kotlin.*error`,
		`mainactivity\.kt`,
		`unresolved reference.*println`,
	),
	set("HTML/CSS",
		`\.html:\d+`,
		`\.css:\d+`,
		`css.*error`,
		`html.*validation.*error`,
	),
}

// Scores returns, per label, how many distinct indicators match text.
func Scores(text string) map[Label]int {
	scores := make(map[Label]int, len(indicators))
	for _, s := range indicators {
		scores[s.label] = s.score(text)
	}
	return scores
}

func (s indicatorSet) score(text string) int {
	n := 0
	for _, re := range s.patterns {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

// Classify returns the label with the strictly highest score.
// No match or a tie at the top yields ok=false: no guess beats a wrong guess.
func Classify(text string) (Label, bool) {
	var (
		best  Label
		top   int
		count int
	)
	for _, s := range indicators {
		n := s.score(text)
		switch {
		case n > top:
			best, top, count = s.label, n, 1
		case n == top && n > 0:
			count++
		}
	}
	if top == 0 || count > 1 {
		return "", false
	}
	return best, true
}

var families = map[Label][]Label{
	"JavaScript": {"TypeScript", "React", "Next.js"},
	"TypeScript": {"JavaScript", "React", "Next.js"},
	"React":      {"JavaScript", "TypeScript", "Next.js"},
	"Next.js":    {"JavaScript", "TypeScript", "React"},
	"Node.js":    {"JavaScript", "TypeScript"},
	"HTML/CSS":   {"JavaScript", "React", "Next.js"},
}

// Compatible reports whether declaring a while b was detected deserves no warning.
func Compatible(a, b Label) bool {
	if a == b || a == Other {
		return true
	}
	return contains(families[a], b) || contains(families[b], a)
}

func contains(list []Label, l Label) bool {
	for _, x := range list {
		if x == l {
			return true
		}
	}
	return false
}

// Advice is the result of checking declared against detected language.
type Advice struct {
	Detected Label  `json:"detected,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// Check classifies text and warns when declared is incompatible with the guess.
func Check(text string, declared Label) Advice {
	detected, ok := Classify(text)
	if !ok {
		return Advice{}
	}
	adv := Advice{Detected: detected}
	if declared != "" && !Compatible(declared, detected) {
		adv.Warning = fmt.Sprintf("This looks like a %s error, but you've selected %s. Consider switching languages for better analysis.", detected, declared)
	}
	return adv
}
