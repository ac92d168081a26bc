package common

import (
	"slices"
	"strconv"
	"strings"
)

// Label is a normalized entity or alias name. Labels are only ever used as
// join keys between the source and target knowledge bases.
type Label string

// SourceID is the integer identifier of an entity or relation in the source
// (information extraction) knowledge base.
type SourceID int64

// TargetID is a canonical identifier of the target knowledge graph, e.g. a
// Freebase MID such as "/m/02mjmr".
type TargetID string

// TargetTuple holds every target identifier carried by a single target
// record. A tuple may be empty, and a tuple with more than one element means
// one target entity is known under several identifiers.
type TargetTuple []TargetID

// Key returns the set key of the tuple. Two tuples share a key exactly when
// they hold the same elements in the same order. Every element is prefixed
// with its length, so no element content can imitate a tuple boundary.
func (t TargetTuple) Key() string {
	var b strings.Builder
	for _, id := range t {
		b.WriteString(strconv.Itoa(len(id)))
		b.WriteByte(':')
		b.WriteString(string(id))
	}
	return b.String()
}

// TargetSet is the set of target tuples observed for one label. A set with
// more than one tuple means several distinct target entities share the label.
type TargetSet map[string]TargetTuple

// Add inserts the tuple into the set. Adding an equal tuple twice is a no-op.
func (s TargetSet) Add(t TargetTuple) {
	cp := make(TargetTuple, len(t))
	copy(cp, t)
	s[t.Key()] = cp
}

// Len returns the number of distinct tuples in the set.
func (s TargetSet) Len() int {
	return len(s)
}

// Tuples returns the tuples ordered by their set key.
func (s TargetSet) Tuples() []TargetTuple {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]TargetTuple, 0, len(keys))
	for _, k := range keys {
		out = append(out, s[k])
	}
	return out
}

// NewTargetSet builds a set from the given tuples.
func NewTargetSet(tuples ...TargetTuple) TargetSet {
	s := make(TargetSet, len(tuples))
	for _, t := range tuples {
		s.Add(t)
	}
	return s
}

// Correspondence maps a source identifier to the target tuples whose labels
// matched the source label.
type Correspondence map[SourceID]TargetSet

// Unambiguous is the subset of a Correspondence that maps a source
// identifier to exactly one target identifier.
type Unambiguous map[SourceID]TargetID

// Pair is an ordered (entity1, entity2) pair of source identifiers.
type Pair struct {
	E1 SourceID
	E2 SourceID
}

// Less orders pairs by E1, then E2.
func (p Pair) Less(o Pair) bool {
	if p.E1 != o.E1 {
		return p.E1 < o.E1
	}
	return p.E2 < o.E2
}

// PairTable maps a relation identifier to the set of entity pairs observed
// for it.
type PairTable map[SourceID]map[Pair]struct{}

// Add records the pair under the relation.
func (t PairTable) Add(relation SourceID, p Pair) {
	pairs, ok := t[relation]
	if !ok {
		pairs = make(map[Pair]struct{})
		t[relation] = pairs
	}
	pairs[p] = struct{}{}
}

// Relations returns the relation identifiers in ascending order.
func (t PairTable) Relations() []SourceID {
	rels := make([]SourceID, 0, len(t))
	for r := range t {
		rels = append(rels, r)
	}
	slices.Sort(rels)
	return rels
}

// Pairs returns the pairs of a relation ordered by (E1, E2).
func (t PairTable) Pairs(relation SourceID) []Pair {
	set := t[relation]
	pairs := make([]Pair, 0, len(set))
	for p := range set {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b Pair) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return pairs
}

// Size returns the total number of pairs over all relations.
func (t PairTable) Size() int {
	n := 0
	for _, pairs := range t {
		n += len(pairs)
	}
	return n
}

// RelationVectors holds the average difference vector of every relation.
type RelationVectors map[SourceID][]float64

// ScoredPair is one line of the scored-pairs output.
type ScoredPair struct {
	E1       SourceID
	E2       SourceID
	Relation SourceID
	Score    float64
}
