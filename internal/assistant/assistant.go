// Package assistant writes listing descriptions and answers questions about
// a room. Every call succeeds: failures degrade to fixed placeholder text.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// Placeholder replies.
const (
	DescribeUnavailable = "API Key missing. Please provide a description manually."
	DescribeEmpty       = "Could not generate description."
	DescribeFailed      = "Error connecting to AI service. Please try again."

	AnswerUnavailable = "AI service is currently unavailable (Missing API Key)."
	AnswerEmpty       = "I'm sorry, I couldn't understand that."
	AnswerFailed      = "I'm having trouble connecting right now. Please try again later."
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Assistant turns room data into prompts and prompts into clean replies.
type Assistant struct {
	gen    Generator
	logger *slog.Logger
}

// New creates an Assistant. A nil generator means no API key is configured.
func New(gen Generator, logger *slog.Logger) *Assistant {
	return &Assistant{gen: gen, logger: logger}
}

// Available reports whether a generator is configured.
func (a *Assistant) Available() bool { return a.gen != nil }

// Describe drafts a listing description from the post-room form fields.
func (a *Assistant) Describe(ctx context.Context, title, location, features string) string {
	if a.gen == nil {
		a.logger.Warn("assistant API key not configured, returning placeholder")
		return DescribeUnavailable
	}
	return a.run(ctx, "describe", describePrompt(title, location, features), DescribeEmpty, DescribeFailed)
}

// Answer replies to a question about room using only its listing details.
func (a *Assistant) Answer(ctx context.Context, room *domain.Room, question string) string {
	if a.gen == nil {
		return AnswerUnavailable
	}
	return a.run(ctx, "answer", answerPrompt(room, question), AnswerEmpty, AnswerFailed)
}

func (a *Assistant) run(ctx context.Context, op, prompt, empty, failed string) string {
	reply, err := a.gen.Generate(ctx, prompt)
	if errors.Is(err, ErrEmptyReply) {
		return empty
	}
	if err != nil {
		a.logger.Warn("assistant request failed", slog.String("op", op), slog.String("error", err.Error()))
		return failed
	}
	if cleaned := CleanReply(reply); cleaned != "" {
		return cleaned
	}
	return empty
}

func describePrompt(title, location, features string) string {
	return fmt.Sprintf(`You are a professional real estate copywriter. Write a catchy, inviting, and professional description (max 100 words) for a room rental listing with the following details:
Title: %s
Location: %s
Key Features: %s

Do not include markdown formatting like **bold** or *italic* in the output, just plain text suitable for a mobile app description.`,
		title, location, features)
}

func answerPrompt(room *domain.Room, question string) string {
	return fmt.Sprintf(`Context: You are a helpful and polite real estate assistant for the "Mera Room" app.
Here are the specific details of the room the user is looking at:
Title: %s
Location: %s
Price: ₹%d/month
Amenities: %s
Description: %s
Owner Number: %s

User Question: %s

Instructions:
1. Answer the user's question accurately based strictly on the provided Room Details.
2. If the answer is not in the details, politely say you don't have that information and suggest contacting the owner.
3. Keep the answer concise (under 50 words) and friendly.`,
		room.Title, room.Location, room.Price, strings.Join(room.Amenities, ", "),
		room.Description, room.OwnerNumber, question)
}
