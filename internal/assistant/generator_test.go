package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stubRemote lets each test script the remote model's behaviour.
type stubRemote struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubRemote) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestGeneratorMode(t *testing.T) {
	assert.Equal(t, ModeMock, NewGenerator(nil).Mode())
	assert.Equal(t, ModeRemote, NewGenerator(&stubRemote{}).Mode())
}

func TestGeneratorRemoteSuccess(t *testing.T) {
	remote := &stubRemote{reply: "Your registration expires soon."}
	gen := NewGenerator(remote)

	got := gen.Respond(context.Background(), "registration?", fleetBundleFixture())

	assert.Equal(t, "Your registration expires soon.", got)
	assert.Equal(t, 1, remote.calls)
}

func TestGeneratorRemoteFailureFallsBackToMock(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "unavailable", err: ErrRemoteUnavailable},
		{name: "malformed", err: ErrRemoteMalformed},
		{name: "empty reply", err: ErrRemoteEmptyReply},
	}

	bundle := detailBundleFixture()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &stubRemote{err: tt.err}
			gen := NewGenerator(remote)

			got := gen.Respond(context.Background(), "status", bundle)

			// The fallback answer is indistinguishable from pure mock mode
			assert.Equal(t, MockRespond("status", bundle), got)
			// Exactly one attempt, no retry
			assert.Equal(t, 1, remote.calls)
		})
	}
}

func TestGeneratorMockMode(t *testing.T) {
	gen := NewGenerator(nil)
	bundle := fleetBundleFixture()

	got := gen.Respond(context.Background(), "insurance", bundle)

	assert.Equal(t, MockRespond("insurance", bundle), got)
}

func TestGeneratorMalformedBundleSkipsRemote(t *testing.T) {
	remote := &stubRemote{reply: "should not be used"}
	gen := NewGenerator(remote)
	bundle := &DataBundle{Shape: BundleShape("graph")}

	got := gen.Respond(context.Background(), "hello", bundle)

	assert.Equal(t, MockRespond("hello", bundle), got)
	assert.Equal(t, 0, remote.calls)
}

func TestGeneratorPromptContents(t *testing.T) {
	remote := &stubRemote{reply: "ok"}
	gen := NewGenerator(remote)
	gen.WithNow(func() time.Time {
		return time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)
	})

	gen.Respond(context.Background(), "when is my next service?", detailBundleFixture())

	prompt := remote.lastPrompt
	assert.Contains(t, prompt, "You are a helpful vehicle assistant for Vorex drivers.")
	assert.Contains(t, prompt, "Vehicle: 2021 Mercedes Sprinter")
	assert.Contains(t, prompt, "Current date: 2025-07-04")
	assert.Contains(t, prompt, "User question: when is my next service?")
}

func TestGeneratorPromptWithoutData(t *testing.T) {
	remote := &stubRemote{reply: "ok"}
	gen := NewGenerator(remote)

	gen.Respond(context.Background(), "hi", nil)

	assert.Contains(t, remote.lastPrompt, "No vehicle data available.")
}

func TestGeneratorHistoryGrowsByTwoPerCall(t *testing.T) {
	tests := []struct {
		name   string
		remote RemoteClient
	}{
		{name: "mock mode", remote: nil},
		{name: "remote success", remote: &stubRemote{reply: "fine"}},
		{name: "remote failure", remote: &stubRemote{err: ErrRemoteUnavailable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(tt.remote)

			gen.Respond(context.Background(), "first", fleetBundleFixture())
			gen.Respond(context.Background(), "second", fleetBundleFixture())

			history := gen.History()
			assert.Len(t, history, 4)
			assert.Equal(t, ConversationTurn{Role: RoleUser, Content: "first"}, history[0])
			assert.Equal(t, RoleAssistant, history[1].Role)
			assert.NotEmpty(t, history[1].Content)
			assert.Equal(t, ConversationTurn{Role: RoleUser, Content: "second"}, history[2])
		})
	}
}

func TestGeneratorLastActive(t *testing.T) {
	gen := NewGenerator(nil)
	fixed := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	gen.WithNow(func() time.Time { return fixed })

	gen.Respond(context.Background(), "hello", nil)

	assert.Equal(t, fixed, gen.LastActive())
}
