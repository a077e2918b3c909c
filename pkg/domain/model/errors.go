package model

import "errors"

// Sentinel errors shared by pipelines and their capability providers
var (
	// ErrEmbedding is wrapped by every failure to turn text into a vector
	ErrEmbedding = errors.New("embedding failed")

	// ErrPersistence is wrapped by every failure to write insights to the vector store
	ErrPersistence = errors.New("persistence failed")
)
