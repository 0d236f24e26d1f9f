// Package store provides the persistence layer for website records and
// chunk embeddings, with interchangeable vector store backends.
package store
