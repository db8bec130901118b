package mint

import "errors"

// Kind is a stable category for programmatic handling of mint and preview
// failures. Branch on Kind, not on Error() text.
type Kind string

const (
	KindConnectionRequired          Kind = "ConnectionRequired"
	KindDebounceRejected            Kind = "DebounceRejected"
	KindResolutionUnavailable       Kind = "ResolutionUnavailable"
	KindMissingSignature            Kind = "MissingSignature"
	KindDuplicateInstruction        Kind = "DuplicateInstruction"
	KindCollectionAuthorityMismatch Kind = "CollectionAuthorityMismatch"
	KindTreeAuthorityMismatch       Kind = "TreeAuthorityMismatch"
	KindGenericAuthorityMismatch    Kind = "GenericAuthorityMismatch"
	KindGenericCollectionError      Kind = "GenericCollectionError"
	KindGenericTreeError            Kind = "GenericTreeError"
	KindUserRejected                Kind = "UserRejected"
	KindUnclassified                Kind = "Unclassified"
)

var messages = map[Kind]string{
	KindConnectionRequired:          "wallet not connected: connect a wallet first",
	KindDebounceRejected:            "please wait a few seconds before minting again",
	KindResolutionUnavailable:       "image unavailable",
	KindMissingSignature:            "missing transaction signature from send/confirm result",
	KindDuplicateInstruction:        "duplicate instructions: remove manual priority fees",
	KindCollectionAuthorityMismatch: "collection authority issue: use verified=false for public minting",
	KindTreeAuthorityMismatch:       "tree not public: recreate it with public=true",
	KindGenericAuthorityMismatch:    "authority mismatch: use verified=false",
	KindGenericCollectionError:      "invalid collection mint: double-check the collection address",
	KindGenericTreeError:            "invalid merkle tree: double-check the tree address",
	KindUserRejected:                "mint cancelled: user rejected signature",
}

// Error is a classified failure. Raw is the sender's original message.
type Error struct {
	Kind  Kind
	Raw   string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message()
}

// Message is the human-readable text bound to Kind.
// Unclassified failures read "mint failed: <raw>".
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	if m, ok := messages[e.Kind]; ok {
		return m
	}
	return "mint failed: " + e.Raw
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, raw string, cause error) *Error {
	return &Error{Kind: kind, Raw: raw, Cause: cause}
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
