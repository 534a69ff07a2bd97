package fintrack

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Snapshot is a point-in-time copy of the ledger, in listing order.
//
// Snapshots are values: mutating the ledger does not change a snapshot taken
// before, and mutating a snapshot does not change the ledger.
type Snapshot []Account

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for i, a := range s {
		out[i] = a.clone()
	}
	return out
}

// Account returns the account with the given id.
func (s Snapshot) Account(id string) (Account, bool) {
	i := slices.IndexFunc(s, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return Account{}, false
	}
	return s[i], true
}

// ByName returns the account whose name matches, ignoring case and
// surrounding spaces.
func (s Snapshot) ByName(name string) (Account, bool) {
	name = normalizeName(name)
	i := slices.IndexFunc(s, func(a Account) bool { return normalizeName(a.Name) == name })
	if i < 0 {
		return Account{}, false
	}
	return s[i], true
}

// Name returns the name of the account, or the id itself when unknown.
func (s Snapshot) Name(id string) string {
	if a, ok := s.Account(id); ok {
		return a.Name
	}
	return id
}

// Closest returns all accounts ordered by how closely their name or id
// resembles ref. Ties keep listing order.
func (s Snapshot) Closest(ref string) []Account {
	out := slices.Clone([]Account(s))
	ref = normalizeName(ref)
	if ref == "" {
		return out
	}
	distance := func(a Account) int {
		return min(levenshtein.ComputeDistance(ref, normalizeName(a.Name)), levenshtein.ComputeDistance(ref, strings.ToLower(a.ID)))
	}
	slices.SortStableFunc(out, func(a, b Account) int { return distance(a) - distance(b) })
	return out
}

// Listing describes the accounts as "Name (ID: id), ...", closest to ref first.
func (s Snapshot) Listing(ref string) string {
	if len(s) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(s))
	for _, a := range s.Closest(ref) {
		parts = append(parts, fmt.Sprintf("%s (ID: %s)", a.Name, a.ID))
	}
	return strings.Join(parts, ", ")
}

func normalizeName(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
