// Package tickets extracts tracker ticket IDs from commit messages and
// reconciles them between two commit ranges.
//
// Everything here is a pure function of its inputs: no I/O, no errors.
package tickets

import (
	"regexp"
	"slices"
	"strings"
)

// ticketRegex matches JIRA-style ticket IDs such as AFE-1234
var ticketRegex = regexp.MustCompile(`\b[A-Z]+-\d+\b`)

// DefaultPrefixes are the project tags recognised when none are configured
var DefaultPrefixes = []string{"AFE-", "RSB-", "SPB-", "TABT-"}

// Extract returns the unique ticket IDs found in messages, in first-seen order.
// A message may reference several tickets; messages without any contribute nothing.
func Extract(messages []string) []string {
	tickets := []string{}
	seen := make(map[string]bool)

	for _, message := range messages {
		for _, match := range ticketRegex.FindAllString(message, -1) {
			if seen[match] {
				continue
			}
			seen[match] = true
			tickets = append(tickets, match)
		}
	}

	return tickets
}

// Reconcile returns the tickets referenced in fullRange but not in filtered,
// restricted to allowedPrefixes and sorted lexically (AFE-100 sorts before AFE-99).
//
// fullRange is every commit in the target..source range; filtered is the
// cherry-pick query whose tickets are treated as already released.
func Reconcile(fullRange, filtered, allowedPrefixes []string) []string {
	all := Extract(fullRange)
	released := make(map[string]bool)
	for _, t := range Extract(filtered) {
		released[t] = true
	}

	valid := []string{}
	for _, t := range all {
		if released[t] {
			continue
		}
		if HasAllowedPrefix(t, allowedPrefixes) {
			valid = append(valid, t)
		}
	}

	slices.Sort(valid)
	return valid
}

// HasAllowedPrefix reports whether ticket starts with any of prefixes
func HasAllowedPrefix(ticket string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(ticket, p) {
			return true
		}
	}
	return false
}

// Aggregate merges per-repository results in input order, keeping the first
// occurrence of each ticket. The merged list is deliberately not re-sorted:
// each input is already sorted, the concatenation keeps repository order.
func Aggregate(results [][]string) []string {
	merged := []string{}
	seen := make(map[string]bool)

	for _, result := range results {
		for _, t := range result {
			if seen[t] {
				continue
			}
			seen[t] = true
			merged = append(merged, t)
		}
	}

	return merged
}

// Sorted returns a lexically sorted copy of ids
func Sorted(ids []string) []string {
	out := slices.Clone(ids)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return out
}
