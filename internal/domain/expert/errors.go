package expert

import "errors"

// Sentinel errors for the expert corpus.
var (
	ErrInvalidCorpus = errors.New("invalid expert corpus")
	ErrNotFound      = errors.New("expert not found")
	// ErrUnknownSkill means no expert pattern exists at all for a skill type.
	ErrUnknownSkill = errors.New("no expert patterns for skill type")
)
