package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/feastline/feastline/plugin/ai/chat"
	"github.com/feastline/feastline/store"
)

// retryReply is what the user sees when the recommendation flow fails.
// Raw errors never reach the client.
const retryReply = "Sorry, something went wrong on my end. Please try again in a moment."

// historyWindow is how many stored messages are loaded to rebuild
// conversation context. The context builder narrows this further to
// the last 5 user turns.
const historyWindow = 20

type chatQueryRequest struct {
	Query              string `json:"query"`
	UserID             int32  `json:"userId"`
	ActiveRestaurantID int32  `json:"activeRestaurantId"`
	ImageDescription   string `json:"imageDescription"`
	VegetarianOnly     bool   `json:"vegetarianOnly"`
	PortionFor         int    `json:"portionFor"`
}

type chatQueryResponse struct {
	MessageUID       string                 `json:"messageUid"`
	Text             string                 `json:"text"`
	QueryType        string                 `json:"queryType"`
	Kind             string                 `json:"kind"`
	RestaurantIDs    []int32                `json:"restaurantIds,omitempty"`
	RecommendedItems []chat.RecommendedItem `json:"recommendedItems,omitempty"`
	Items2           []chat.RecommendedItem `json:"items2,omitempty"`
}

// HandleChatQuery runs one turn of the conversation: classify the
// query, orchestrate recommendations, persist both sides of the
// exchange, and return the structured result.
func (s *APIV1Service) HandleChatQuery(c echo.Context) error {
	if s.Orchestrator == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Chat is not available on this instance.")
	}

	request := &chatQueryRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body.")
	}
	if request.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query must not be empty.")
	}

	ctx := c.Request().Context()
	history := s.loadHistory(c, request.UserID)

	if _, err := s.Store.CreateChatMessage(ctx, &store.ChatMessage{
		UID:       shortuuid.New(),
		UserID:    request.UserID,
		Role:      store.ChatMessageRoleUser,
		Content:   request.Query,
		CreatedTs: time.Now().Unix(),
	}); err != nil {
		slog.Error("failed to persist user message", "error", err)
	}

	result, err := s.Orchestrator.HandleQuery(ctx, request.Query, chat.QueryOptions{
		UserID:             request.UserID,
		ActiveRestaurantID: request.ActiveRestaurantID,
		History:            history,
		ImageDescription:   request.ImageDescription,
		VegetarianOnly:     request.VegetarianOnly,
		PortionFor:         request.PortionFor,
	})
	if err != nil {
		slog.Error("chat query failed", "error", err, "user_id", request.UserID)
		result = &chat.Result{
			Kind:      chat.ResultGeneral,
			QueryType: chat.QueryTypeGeneral,
			Text:      retryReply,
		}
	}

	recommendedJSON := ""
	if len(result.Items1) > 0 {
		if encoded, err := json.Marshal(result.Items1); err == nil {
			recommendedJSON = string(encoded)
		}
	}
	botMessage, err := s.Store.CreateChatMessage(ctx, &store.ChatMessage{
		UID:              shortuuid.New(),
		UserID:           request.UserID,
		Role:             store.ChatMessageRoleAssistant,
		Content:          result.Text,
		QueryType:        string(result.QueryType),
		RecommendedItems: recommendedJSON,
		CreatedTs:        time.Now().Unix(),
	})
	if err != nil {
		slog.Error("failed to persist assistant message", "error", err)
	}

	response := &chatQueryResponse{
		Text:             result.Text,
		QueryType:        string(result.QueryType),
		Kind:             string(result.Kind),
		RestaurantIDs:    result.RestaurantIDs,
		RecommendedItems: result.Items1,
		Items2:           result.Items2,
	}
	if botMessage != nil {
		response.MessageUID = botMessage.UID
	}
	return c.JSON(http.StatusOK, response)
}

type chatMessageResponse struct {
	UID              string                 `json:"uid"`
	Role             string                 `json:"role"`
	Content          string                 `json:"content"`
	QueryType        string                 `json:"queryType,omitempty"`
	RecommendedItems []chat.RecommendedItem `json:"recommendedItems,omitempty"`
	CreatedTs        int64                  `json:"createdTs"`
}

// ListChatMessages returns a user's conversation in chronological order.
func (s *APIV1Service) ListChatMessages(c echo.Context) error {
	userID, err := queryParamID(c, "userId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required.")
	}

	limit := historyWindow
	messages, err := s.Store.ListChatMessages(c.Request().Context(), &store.FindChatMessage{
		UserID: &userID,
		Limit:  &limit,
	})
	if err != nil {
		slog.Error("failed to list chat messages", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load messages.")
	}

	response := make([]*chatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, &chatMessageResponse{
			UID:              msg.UID,
			Role:             string(msg.Role),
			Content:          msg.Content,
			QueryType:        msg.QueryType,
			RecommendedItems: decodeRecommendedItems(msg.RecommendedItems),
			CreatedTs:        msg.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// ClearChatMessages deletes a user's conversation history.
func (s *APIV1Service) ClearChatMessages(c echo.Context) error {
	userID, err := queryParamID(c, "userId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required.")
	}
	if err := s.Store.DeleteChatMessage(c.Request().Context(), &store.DeleteChatMessage{UserID: &userID}); err != nil {
		slog.Error("failed to clear chat messages", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to clear messages.")
	}
	return c.NoContent(http.StatusNoContent)
}

// loadHistory rebuilds the conversation window for the context builder.
// Failures degrade to an empty history rather than blocking the query.
func (s *APIV1Service) loadHistory(c echo.Context, userID int32) []chat.Message {
	if userID <= 0 {
		return nil
	}
	limit := historyWindow
	messages, err := s.Store.ListChatMessages(c.Request().Context(), &store.FindChatMessage{
		UserID: &userID,
		Limit:  &limit,
	})
	if err != nil {
		slog.Warn("failed to load chat history", "error", err, "user_id", userID)
		return nil
	}

	history := make([]chat.Message, 0, len(messages))
	for _, msg := range messages {
		history = append(history, chat.Message{
			Text:             msg.Content,
			IsBot:            msg.Role == store.ChatMessageRoleAssistant,
			RecommendedItems: decodeRecommendedItems(msg.RecommendedItems),
		})
	}
	return history
}

func decodeRecommendedItems(raw string) []chat.RecommendedItem {
	if raw == "" {
		return nil
	}
	var items []chat.RecommendedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}
