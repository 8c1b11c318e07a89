package store

type ChatMessageRole string

const (
	ChatMessageRoleUser      ChatMessageRole = "USER"
	ChatMessageRoleAssistant ChatMessageRole = "ASSISTANT"
)

type ChatMessage struct {
	ID     int32
	UID    string
	UserID int32
	Role   ChatMessageRole
	Content string
	// QueryType records how the message was classified
	// (MENU_QUERY, RESTAURANT_QUERY, GENERAL, ...).
	QueryType string
	// RecommendedItems is a JSON array of {id, name} item references
	// attached to assistant messages. Empty when none.
	RecommendedItems string
	CreatedTs        int64
}

type FindChatMessage struct {
	ID     *int32
	UID    *string
	UserID *int32
	Limit  *int
}

type DeleteChatMessage struct {
	ID     *int32
	UserID *int32
}
