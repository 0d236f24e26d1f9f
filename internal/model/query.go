package model

// Message is one turn of a RAG conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryResult is the outcome of one RAG query turn. A successful turn
// appends exactly one user and one assistant message to the history.
type QueryResult struct {
	Answer              string    `json:"answer"`
	SourceChunks        []string  `json:"source_chunks"`
	ConversationHistory []Message `json:"conversation_history"`
}
