package mint

import "strings"

// Rule maps raw failure substrings to a Kind.
type Rule struct {
	Kind     Kind
	Patterns []string
}

// Rules is the classification table. Order matters: the first rule with a
// matching pattern wins, so specific program errors precede the generic
// "Authority"/"Collection"/"Tree" catch-alls. Matching is case-sensitive.
var Rules = []Rule{
	{KindDuplicateInstruction, []string{"duplicate instruction"}},
	{KindCollectionAuthorityMismatch, []string{"InvalidCollectionAuthority", "6028", "0x178c"}},
	{KindTreeAuthorityMismatch, []string{"TreeAuthorityIncorrect", "6016", "0x1780"}},
	{KindGenericAuthorityMismatch, []string{"Authority"}},
	{KindGenericCollectionError, []string{"Collection"}},
	{KindGenericTreeError, []string{"Tree"}},
	{KindUserRejected, []string{"User rejected"}},
}

// Classify returns the Kind of the first rule matching raw, or
// KindUnclassified.
func Classify(raw string) Kind {
	return ClassifyWith(Rules, raw)
}

// ClassifyWith is Classify over a caller-supplied table.
func ClassifyWith(rules []Rule, raw string) Kind {
	for _, r := range rules {
		for _, p := range r.Patterns {
			if strings.Contains(raw, p) {
				return r.Kind
			}
		}
	}
	return KindUnclassified
}

// ShouldRetry reports whether a primary-shape failure of kind earns the single
// retry with the no-collection shape. Only collection and collection-authority
// failures do: dropping the collection cannot fix a tree that is not public.
func ShouldRetry(kind Kind) bool {
	switch kind {
	case KindCollectionAuthorityMismatch, KindGenericAuthorityMismatch, KindGenericCollectionError:
		return true
	default:
		return false
	}
}
