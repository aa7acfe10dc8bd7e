package lectern

import (
	"regexp"
	"strings"
)

// Expansion pairs a trigger phrase with the terms appended when the trigger
// is found in a query. Triggers are matched case-insensitively as
// substrings; WordBoundary switches to whole-word matching, which is what
// keeps an abbreviation like "fp" from firing inside "helpful".
type Expansion struct {
	Trigger      string
	Terms        string
	WordBoundary bool
}

// DefaultExpansions is the built-in trigger table for programming-languages
// course material. Order matters: triggers are evaluated top to bottom and
// each appends its terms at most once.
var DefaultExpansions = []Expansion{
	{Trigger: "functional programming", Terms: "functional programming FP paradigm lambda calculus pure functions immutable first-class functions higher-order"},
	{Trigger: "fp", Terms: "functional programming FP paradigm lambda calculus pure functions immutable", WordBoundary: true},
	{Trigger: "lambda calculus", Terms: "lambda calculus anonymous function closure abstraction application"},
	{Trigger: "anonymous function", Terms: "anonymous function lambda function closure"},
	{Trigger: "pure function", Terms: "pure function side effect deterministic referential transparency"},
	{Trigger: "immutability", Terms: "immutability immutable persistent data structure"},
	{Trigger: "higher-order", Terms: "higher-order function map reduce filter fold"},
	{Trigger: "type system", Terms: "type system type checking static typing dynamic typing type inference"},
	{Trigger: "type checking", Terms: "type checking type inference static analysis type safety"},
	{Trigger: "type inference", Terms: "type inference Hindley-Milner algorithm W unification"},
	{Trigger: "scala", Terms: "scala JVM functional object-oriented"},
	{Trigger: "miniscala", Terms: "miniscala scala subset interpreter semantics"},
	{Trigger: "syntax", Terms: "syntax grammar abstract syntax tree AST parser"},
	{Trigger: "semantics", Terms: "semantics operational denotational evaluation"},
	{Trigger: "evaluation", Terms: "evaluation reduction substitution beta reduction"},
	{Trigger: "interpreter", Terms: "interpreter evaluation execution abstract machine"},
	{Trigger: "abstract machine", Terms: "abstract machine operational semantics small-step big-step"},
	{Trigger: "lecture", Terms: "lecture video transcript course material"},
	{Trigger: "assignment", Terms: "assignment homework exercise problem set"},
	{Trigger: "grading", Terms: "grading policy rubric evaluation criteria"},
}

// QueryExpander rewrites queries for retrieval by appending domain synonyms
// when a known topic phrase is present. The rewritten string is used for
// embedding only; callers keep the original for display and for the final
// prompt.
type QueryExpander struct {
	expansions []Expansion
	boundaryRe map[string]*regexp.Regexp
}

// NewQueryExpander creates an expander over the given trigger table.
// Passing nil uses DefaultExpansions.
func NewQueryExpander(expansions []Expansion) *QueryExpander {
	if expansions == nil {
		expansions = DefaultExpansions
	}
	res := make(map[string]*regexp.Regexp)
	for _, e := range expansions {
		if e.WordBoundary {
			res[e.Trigger] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(e.Trigger) + `\b`)
		}
	}
	return &QueryExpander{expansions: expansions, boundaryRe: res}
}

// Expand returns the query with matching expansion terms appended, or the
// query unchanged when no trigger fires. Triggers are matched against the
// caller's text only: any trailing term groups from a previous Expand call
// are stripped before matching, so appended terms never activate further
// triggers and Expand(Expand(q)) == Expand(q).
func (x *QueryExpander) Expand(query string) string {
	lower := strings.ToLower(x.stripAppended(query))
	out := query

	for _, e := range x.expansions {
		matched := false
		if re, ok := x.boundaryRe[e.Trigger]; ok {
			matched = re.MatchString(lower)
		} else {
			matched = strings.Contains(lower, strings.ToLower(e.Trigger))
		}
		if !matched {
			continue
		}
		if strings.Contains(out, e.Terms) {
			continue
		}
		out += " " + e.Terms
	}
	return out
}

// stripAppended removes trailing " "+Terms groups that a previous Expand
// call appended, leaving the text the caller originally supplied.
func (x *QueryExpander) stripAppended(query string) string {
	for {
		stripped := query
		for _, e := range x.expansions {
			stripped = strings.TrimSuffix(stripped, " "+e.Terms)
		}
		if stripped == query {
			return query
		}
		query = stripped
	}
}
