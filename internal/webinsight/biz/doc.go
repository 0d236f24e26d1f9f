// Package biz implements the website analysis pipeline: fetching and
// extracting homepage content, synthesizing business insights, chunking and
// embedding text, and answering questions over the stored chunks.
package biz
