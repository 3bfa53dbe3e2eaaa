package assistant

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/planweek/planweek-backend/pkg/auth"
	"github.com/planweek/planweek-backend/pkg/communication"
	"github.com/planweek/planweek-backend/pkg/logger"
	"github.com/planweek/planweek-backend/pkg/tasks"
)

// Handler handles the assistant API calls
type Handler struct {
	Dispatcher             *Dispatcher
	ConversationRepository ConversationRepositoryInterface
	Logger                 logger.Interface
	ResponseManager        *communication.ResponseManager
}

// Query takes one free-text utterance and responds with the assistant reply
// and the tasks_updated flag. Faults never escape as opaque transport
// failures; they always render as a structured error body.
func (handler *Handler) Query(writer http.ResponseWriter, request *http.Request) {
	userID := auth.UserID(request.Context())

	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	reply, err := handler.Dispatcher.Dispatch(request.Context(), userID, body.Query)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingQuery):
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
				"Missing \"query\" in request body", err)
		case errors.Is(err, tasks.ErrUnauthenticated):
			handler.ResponseManager.RespondWithError(writer, http.StatusUnauthorized,
				"No authorization", err)
		default:
			handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
				"The assistant could not answer", err)
		}
		return
	}

	handler.ResponseManager.Respond(writer, reply)
}

// History returns the user's recent conversation turns expanded into chat
// messages, newest first
func (handler *Handler) History(writer http.ResponseWriter, request *http.Request) {
	userID := auth.UserID(request.Context())

	limit := 10
	if limitQuery := request.URL.Query().Get("limit"); limitQuery != "" {
		parsed, err := strconv.Atoi(limitQuery)
		if err != nil || parsed <= 0 {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
				"Bad query parameter limit", err)
			return
		}
		limit = parsed
	}

	turns, err := handler.ConversationRepository.FindHistory(request.Context(), userID, limit)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Problem in query", err)
		return
	}

	messages := []AIMessage{}
	for _, turn := range turns {
		messages = append(messages, turn.Messages()...)
	}

	handler.ResponseManager.Respond(writer, messages)
}
