// Package rules resolves one logical field from markup by trying an ordered
// list of selector rules until one yields a value that passes its predicate.
package rules

import (
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
)

// Reader turns a matched element into a candidate value.
type Reader func(*goquery.Selection) string

// Transform post-processes a candidate value before validation.
type Transform func(string) string

// Predicate accepts or rejects a candidate value.
type Predicate func(string) bool

// Rule is one way of locating a field. Read defaults to Text and Valid to
// NonEmpty.
type Rule struct {
	Selector string
	Read     Reader
	Post     Transform
	Valid    Predicate
}

// Outcome classifies a resolution.
type Outcome int

const (
	// NotFound means no rule's selector matched anything.
	NotFound Outcome = iota
	// Malformed means something matched but every candidate was rejected.
	Malformed
	// Found means a candidate passed its predicate.
	Found
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Malformed:
		return "malformed"
	}
	return "not_found"
}

// Result is the outcome of Resolve. Rule is the index of the winning rule,
// or -1 when nothing was found.
type Result struct {
	Value   string
	Outcome Outcome
	Rule    int
}

// Ok reports whether a value was found.
func (r Result) Ok() bool { return r.Outcome == Found }

// Err maps the outcome to the shared sentinels; nil when found.
func (r Result) Err(field string) error {
	switch r.Outcome {
	case Found:
		return nil
	case Malformed:
		return fmt.Errorf("%s: %w", field, profile.ErrMalformed)
	}
	return fmt.Errorf("%s: %w", field, profile.ErrNotFound)
}

// Resolve tries rules strictly in declared order and, within one rule, the
// matched elements in document order. The first candidate accepted by the
// rule's predicate wins.
func Resolve(scope *goquery.Selection, rules []Rule) Result {
	res := Result{Outcome: NotFound, Rule: -1}
	if scope == nil || scope.Length() == 0 {
		return res
	}
	for i, r := range rules {
		matched := Select(scope, r.Selector)
		if matched.Length() == 0 {
			continue
		}
		res.Outcome = Malformed
		read, valid := r.Read, r.Valid
		if read == nil {
			read = Text
		}
		if valid == nil {
			valid = NonEmpty
		}
		for j := range matched.Length() {
			v := read(matched.Eq(j))
			if r.Post != nil {
				v = r.Post(v)
			}
			if valid(v) {
				return Result{Value: v, Outcome: Found, Rule: i}
			}
		}
	}
	return res
}

// First is Resolve returning only the value ("" unless found).
func First(scope *goquery.Selection, rules []Rule) string {
	return Resolve(scope, rules).Value
}

// Chain is a convenience for rules sharing a reader, transform and predicate.
func Chain(read Reader, post Transform, valid Predicate, selectors ...string) []Rule {
	out := make([]Rule, len(selectors))
	for i, sel := range selectors {
		out[i] = Rule{Selector: sel, Read: read, Post: post, Valid: valid}
	}
	return out
}

var compiled sync.Map // selector → cascadia.Selector, nil when invalid

// Select returns the descendants of scope matching selector. An invalid
// selector matches nothing.
func Select(scope *goquery.Selection, selector string) *goquery.Selection {
	m := compile(selector)
	if m == nil {
		return scope.FindNodes()
	}
	return scope.FindMatcher(m)
}

// Is reports whether s itself matches selector.
func Is(s *goquery.Selection, selector string) bool {
	m := compile(selector)
	if m == nil {
		return false
	}
	return s.IsMatcher(m)
}

func compile(selector string) goquery.Matcher {
	if v, ok := compiled.Load(selector); ok {
		m, _ := v.(cascadia.Selector)
		if m == nil {
			return nil
		}
		return m
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		compiled.Store(selector, cascadia.Selector(nil))
		return nil
	}
	compiled.Store(selector, sel)
	return sel
}
