package assistant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vorexhq/fleet-assistant/pkg/logger"
	"go.uber.org/zap"
)

// Mode is the generator's operating mode, fixed at construction.
type Mode string

const (
	// ModeMock answers from the keyword engine only.
	ModeMock Mode = "mock"
	// ModeRemote answers from the remote model, with mock as fallback.
	ModeRemote Mode = "remote"
)

const promptTemplate = `You are a helpful vehicle assistant for Vorex drivers.

You have access to the following vehicle information:

%s

Use this information to provide helpful, accurate responses about the vehicle.
If the user asks about something not related to their vehicle, politely redirect them.
If you're asked about maintenance schedules, insurance, registration deadlines, or vehicle status, use the provided data to give specific, personalized answers.

Current date: %s

User question: %s`

// Generator produces answers for one conversation session. The mode is
// decided once: a nil remote client means permanent mock mode, never
// re-probed. History is append-only and grows for the session's lifetime.
type Generator struct {
	mode   Mode
	remote RemoteClient
	now    func() time.Time

	mu         sync.Mutex
	history    []ConversationTurn
	lastActive time.Time
}

// NewGenerator creates a session generator. Passing a nil remote client
// selects mock mode for the instance's lifetime.
func NewGenerator(remote RemoteClient) *Generator {
	mode := ModeRemote
	if remote == nil {
		mode = ModeMock
	}
	now := time.Now
	return &Generator{
		mode:       mode,
		remote:     remote,
		now:        now,
		lastActive: now(),
	}
}

// Mode returns the operating mode fixed at construction.
func (g *Generator) Mode() Mode {
	return g.mode
}

// WithNow overrides the time source (useful for tests).
func (g *Generator) WithNow(now func() time.Time) {
	g.now = now
}

// Respond answers the message using the bundle as context. It always returns
// usable text: every remote or formatting failure silently degrades to the
// mock engine's answer. Exactly one user turn and one assistant turn are
// appended per call, on every path.
func (g *Generator) Respond(ctx context.Context, message string, bundle *DataBundle) string {
	reply := g.generate(ctx, message, bundle)

	g.mu.Lock()
	g.history = append(g.history,
		ConversationTurn{Role: RoleUser, Content: message},
		ConversationTurn{Role: RoleAssistant, Content: reply},
	)
	g.lastActive = g.now()
	g.mu.Unlock()

	return reply
}

func (g *Generator) generate(ctx context.Context, message string, bundle *DataBundle) string {
	if g.mode == ModeMock {
		return MockRespond(message, bundle)
	}

	formatted, err := formatBundle(bundle)
	if err != nil {
		logger.WarnContext(ctx, "bundle formatting failed, answering from mock engine",
			zap.Error(err),
		)
		return MockRespond(message, bundle)
	}

	prompt := buildPrompt(formatted, g.now().Format("2006-01-02"), message)

	reply, err := g.remote.Generate(ctx, prompt)
	if err != nil {
		// One attempt only; the caller never sees the remote failure
		logger.WarnContext(ctx, "remote generation failed, answering from mock engine",
			zap.Error(err),
		)
		return MockRespond(message, bundle)
	}

	return reply
}

func buildPrompt(formattedData, currentDate, message string) string {
	return fmt.Sprintf(promptTemplate, formattedData, currentDate, message)
}

// History returns a copy of the conversation so far.
func (g *Generator) History() []ConversationTurn {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ConversationTurn, len(g.history))
	copy(out, g.history)
	return out
}

// HistoryLen returns the number of recorded turns.
func (g *Generator) HistoryLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history)
}

// LastActive returns the time of the most recent Respond call.
func (g *Generator) LastActive() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}
