package model

import "errors"

var (
	// ErrTaggingFailure means the tagger failed on a paragraph. The paragraph is skipped.
	ErrTaggingFailure = errors.New("tagging failure")
	// ErrOracleFailure means the relation scorer failed on a candidate pair.
	// The whole paragraph fails; no default score is substituted.
	ErrOracleFailure = errors.New("oracle failure")
	// ErrInvalidTermType means a term type matches no hierarchy prefix.
	// It points at a vocabulary or configuration mismatch and is never retried.
	ErrInvalidTermType = errors.New("invalid term type")
	// ErrDuplicateTrieInsertion is returned after a labelled trie path was relabelled.
	// The new label is kept.
	ErrDuplicateTrieInsertion = errors.New("duplicate trie insertion")
)
