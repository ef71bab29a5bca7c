package graph

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"sort"
	"sync"
)

// Interner is a two-way mapping between byte strings and 32-bit IDs.
//
// Insertion is idempotent: Add on a string already known returns its
// existing ID. ID 0 is never assigned and always means "any"/empty wherever
// it surfaces in an Annotation.
//
// Interner is safe for concurrent use; writers take an exclusive lock,
// readers a shared one.
type Interner struct {
	mu      sync.RWMutex
	byValue map[string]StringID // string -> id
	byID    []string            // id -> string, index 0 unused (reserved)
}

// NewInterner returns an empty Interner with the reserved zero id already
// accounted for.
func NewInterner() *Interner {
	return &Interner{
		byValue: make(map[string]StringID),
		byID:    []string{""}, // index 0 reserved, never looked up
	}
}

// Add interns s, returning its StringID. Repeated calls with the same s
// return the same id. Add never returns 0 for a non-empty string.
func (in *Interner) Add(s string) StringID {
	in.mu.RLock()
	if id, ok := in.byValue[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	// Re-check under the write lock in case another writer won the race.
	if id, ok := in.byValue[s]; ok {
		return id
	}
	id := StringID(len(in.byID))
	in.byID = append(in.byID, s)
	in.byValue[s] = id
	return id
}

// Len returns the number of distinct strings interned so far, usable by
// callers estimating the interner's resident memory footprint.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.byID) - 1
}

// All returns every interned string in ID order (ID 1 first), for callers
// snapshotting the full table to a checkpoint.
func (in *Interner) All() []string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]string, len(in.byID)-1)
	copy(out, in.byID[1:])
	return out
}

// FindID returns the StringID for s if it has already been interned.
func (in *Interner) FindID(s string) (StringID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.byValue[s]
	return id, ok
}

// Lookup returns the string for id, or ErrUnknownString if id was never
// interned (or is the reserved zero id).
func (in *Interner) Lookup(id StringID) (string, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == AnyString || int(id) >= len(in.byID) {
		return "", fmt.Errorf("%w: %d", ErrUnknownString, id)
	}
	return in.byID[id], nil
}

// MustLookup is like Lookup but panics on error; reserved for call sites
// that have already established the id is valid (e.g. rendering a Match
// whose Annotation was produced by this same Interner).
func (in *Interner) MustLookup(id StringID) string {
	s, err := in.Lookup(id)
	if err != nil {
		panic(err)
	}
	return s
}

// FindRegex compiles pattern and returns the set of interned StringIDs
// whose string fully matches it.
//
// The search derives a minimum/maximum byte-string bound from the regex's
// required literal prefix (via regexp/syntax) and scans the interner's
// sorted values between those bounds, running a full match against each
// candidate. A pattern with no useful prefix degenerates to a full scan.
func (in *Interner) FindRegex(pattern string) (map[StringID]struct{}, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegex, err)
	}

	lower, upper := prefixRange(pattern)

	in.mu.RLock()
	defer in.mu.RUnlock()

	sorted := in.sortedValuesLocked()
	start := sort.Search(len(sorted), func(i int) bool { return sorted[i].value >= lower })

	result := make(map[StringID]struct{})
	for i := start; i < len(sorted); i++ {
		if upper != "" && sorted[i].value >= upper {
			break
		}
		if re.MatchString(sorted[i].value) {
			result[sorted[i].id] = struct{}{}
		}
	}
	return result, nil
}

type idValue struct {
	value string
	id    StringID
}

// sortedValuesLocked returns all interned (value, id) pairs in value order.
// Callers must hold at least the read lock.
func (in *Interner) sortedValuesLocked() []idValue {
	out := make([]idValue, 0, len(in.byValue))
	for v, id := range in.byValue {
		out = append(out, idValue{value: v, id: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].value < out[j].value })
	return out
}

// prefixRange derives a [lower, upper) scan bound from a regex's required
// literal prefix, so a range scan over sorted strings can skip values that
// could not possibly match. An empty upper bound means "no upper bound".
func prefixRange(pattern string) (lower, upper string) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return "", ""
	}
	prefix, complete := literalPrefix(re.Simplify())
	if prefix == "" {
		return "", ""
	}
	if complete {
		return prefix, prefix + "\xff"
	}
	return prefix, incrementPrefix(prefix)
}

// literalPrefix walks re's concatenation spine and returns the longest
// run of required literal runes at the start of the match, plus whether
// that run is the entire expression (no trailing alternation/repetition).
func literalPrefix(re *syntax.Regexp) (prefix string, complete bool) {
	switch re.Op {
	case syntax.OpLiteral:
		return string(re.Rune), true
	case syntax.OpConcat:
		var b []rune
		for i, sub := range re.Sub {
			if sub.Op != syntax.OpLiteral {
				return string(b), false
			}
			b = append(b, sub.Rune...)
			if i == len(re.Sub)-1 {
				return string(b), true
			}
		}
		return string(b), len(re.Sub) == 0
	case syntax.OpBeginText, syntax.OpBeginLine:
		if len(re.Sub) == 1 {
			return literalPrefix(re.Sub[0])
		}
		return "", false
	default:
		return "", false
	}
}

// incrementPrefix returns the lexicographically smallest string strictly
// greater than every string with the given prefix, used as an exclusive
// upper scan bound.
func incrementPrefix(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	// All 0xff bytes: no finite upper bound.
	return ""
}

