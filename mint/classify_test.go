package mint

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		raw  string
		want Kind
	}{
		{"Transaction contains a duplicate instruction (3)", KindDuplicateInstruction},
		{"Error processing Instruction 0: custom program error: InvalidCollectionAuthority", KindCollectionAuthorityMismatch},
		{"custom program error: 0x178c", KindCollectionAuthorityMismatch},
		{"Program failed: error 6028", KindCollectionAuthorityMismatch},
		{"TreeAuthorityIncorrect", KindTreeAuthorityMismatch},
		{"custom program error: 0x1780", KindTreeAuthorityMismatch},
		{"failed with 6016", KindTreeAuthorityMismatch},
		{"Invalid Authority for leaf", KindGenericAuthorityMismatch},
		{"Collection not found", KindGenericCollectionError},
		{"Tree account missing", KindGenericTreeError},
		{"User rejected the request.", KindUserRejected},
		{"blockhash not found", KindUnclassified},
		{"", KindUnclassified},
		{"user rejected", KindUnclassified},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.raw))
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Mentions both a collection authority code and the word Tree.
	assert.Equal(t, KindCollectionAuthorityMismatch, Classify("Tree op failed: InvalidCollectionAuthority"))
	// Generic Authority precedes generic Collection.
	assert.Equal(t, KindGenericAuthorityMismatch, Classify("Collection Authority mismatch"))

	custom := []Rule{{KindUserRejected, []string{"nope"}}}
	assert.Equal(t, KindUserRejected, ClassifyWith(custom, "nope"))
	assert.Equal(t, KindUnclassified, ClassifyWith(custom, "InvalidCollectionAuthority"))
}

func TestShouldRetry(t *testing.T) {
	retry := map[Kind]bool{
		KindCollectionAuthorityMismatch: true,
		KindGenericAuthorityMismatch:    true,
		KindGenericCollectionError:      true,
	}
	for _, k := range []Kind{
		KindConnectionRequired, KindDebounceRejected, KindResolutionUnavailable, KindMissingSignature,
		KindDuplicateInstruction, KindCollectionAuthorityMismatch, KindTreeAuthorityMismatch,
		KindGenericAuthorityMismatch, KindGenericCollectionError, KindGenericTreeError,
		KindUserRejected, KindUnclassified,
	} {
		assert.Equal(t, retry[k], ShouldRetry(k), string(k))
	}
}

func TestError_Messages(t *testing.T) {
	e := newError(KindUnclassified, "blockhash not found", nil)
	assert.Equal(t, "mint failed: blockhash not found", e.Error())

	e = newError(KindUserRejected, "User rejected the request.", nil)
	assert.Equal(t, "mint cancelled: user rejected signature", e.Error())

	cause := errors.New("boom")
	wrapped := fmt.Errorf("outer: %w", newError(KindGenericTreeError, "Tree", cause))
	assert.True(t, IsKind(wrapped, KindGenericTreeError))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, Kind(""), KindOf(cause))
}
