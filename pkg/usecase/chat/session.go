package chat

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trek/pkg/adapter"
	"github.com/m-mizutani/trek/pkg/model"
	"github.com/m-mizutani/trek/pkg/repository"
)

// Session manages one user's conversation with the assistant
type Session struct {
	repo repository.Repository
	llm  adapter.LLM

	user       string
	transcript []model.ChatTurn
}

// NewInput contains parameters for creating a new chat session
type NewInput struct {
	Repo repository.Repository
	LLM  adapter.LLM

	// User is the acting account's email. When empty the session is
	// ephemeral: nothing is replayed and nothing is persisted.
	User string
}

// New creates a chat session. For a known user the persisted chat history
// is replayed into the transcript, each stored record expanding to a user
// turn and an assistant turn.
func New(ctx context.Context, input NewInput) (*Session, error) {
	if input.LLM == nil {
		return nil, goerr.New("llm is required")
	}

	s := &Session{
		repo: input.Repo,
		llm:  input.LLM,
		user: input.User,
	}

	if input.Repo != nil && input.User != "" {
		records, err := input.Repo.ListRecordsAsc(ctx, input.User)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load chat history", goerr.V("user", input.User))
		}
		s.transcript = expandTranscript(records)
	}

	return s, nil
}

// expandTranscript rebuilds the conversation from persisted chat records,
// oldest first. Non-chat records are skipped.
func expandTranscript(records []*model.HistoryRecord) []model.ChatTurn {
	var transcript []model.ChatTurn
	for _, record := range records {
		if record.Type != model.RecordTypeChat {
			continue
		}

		transcript = append(transcript,
			model.ChatTurn{
				Role:      model.RoleUser,
				Content:   recordPrompt(record),
				Timestamp: record.Timestamp,
			},
			model.ChatTurn{
				Role:      model.RoleAssistant,
				Content:   record.Response,
				Timestamp: record.Timestamp,
			},
		)
	}
	return transcript
}

// recordPrompt extracts the user message from a stored request payload.
// Firestore decodes the request field as a map.
func recordPrompt(record *model.HistoryRecord) string {
	switch req := record.Request.(type) {
	case model.ChatRequest:
		return req.Prompt
	case map[string]any:
		if prompt, ok := req["prompt"].(string); ok {
			return prompt
		}
	}
	return ""
}

// Send appends the user message to the transcript, generates a reply with
// the full conversational context, and persists the exchange.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	now := time.Now()
	s.transcript = append(s.transcript, model.ChatTurn{
		Role:      model.RoleUser,
		Content:   message,
		Timestamp: now,
	})

	reply, err := s.llm.Generate(ctx, BuildPrompt(s.transcript))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate chat reply")
	}

	s.transcript = append(s.transcript, model.ChatTurn{
		Role:      model.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	})

	if s.repo != nil && s.user != "" {
		record := &model.HistoryRecord{
			ID:        model.NewRecordID(),
			Type:      model.RecordTypeChat,
			Timestamp: now,
			Request:   model.ChatRequest{Prompt: message},
			Response:  reply,
		}
		if err := s.repo.PutRecord(ctx, s.user, record); err != nil {
			return "", goerr.Wrap(err, "failed to save chat record", goerr.V("user", s.user))
		}
	}

	return reply, nil
}

// Transcript returns the current conversation in chronological order
func (s *Session) Transcript() []model.ChatTurn {
	return s.transcript
}
