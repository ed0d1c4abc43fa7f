package chat

import "errors"

// Failure taxonomy for the question pipeline. The orchestrator wraps every
// collaborator error in exactly one of these so callers can branch with
// errors.Is without inspecting provider-specific details.
var (
	// ErrEmptyQuestion is the caller's fault and is never retried.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmbedding marks a failure while embedding the question.
	ErrEmbedding = errors.New("embedding provider failed")

	// ErrRetrieval marks an unreachable or erroring vector index. An empty
	// retrieval result is not this error.
	ErrRetrieval = errors.New("retrieval engine unavailable")

	// ErrCompletion marks a completion provider failure. Nothing is
	// persisted when this is returned.
	ErrCompletion = errors.New("completion provider failed")

	// ErrPersistence marks a failed history write after an answer was
	// produced. The answer is still delivered; history has diverged.
	ErrPersistence = errors.New("failed to persist exchange")

	// ErrNotFound covers both an absent session and a session owned by
	// someone else, so existence is not leaked across owners.
	ErrNotFound = errors.New("chat not found")

	// ErrNotOwner is returned by the store when an append targets a session
	// that exists under a different owner.
	ErrNotOwner = errors.New("chat belongs to a different owner")
)
