package assistant

import (
	"context"

	"github.com/vorexhq/fleet-assistant/pkg/logger"
	"go.uber.org/zap"
)

// Service runs the response-generation pipeline: fetch the driver's data
// bundle, resolve their session and produce an answer. It always answers;
// data-provider failures degrade to an empty bundle rather than surfacing.
type Service struct {
	provider FleetProvider
	sessions *SessionRegistry
	mode     Mode
}

// NewService creates the assistant service. A nil remote client puts every
// session in permanent mock mode.
func NewService(provider FleetProvider, remote RemoteClient) *Service {
	mode := ModeRemote
	if remote == nil {
		mode = ModeMock
	}

	return &Service{
		provider: provider,
		sessions: NewSessionRegistry(func() *Generator {
			return NewGenerator(remote)
		}),
		mode: mode,
	}
}

// Chat answers a driver's message. The response text is always usable; the
// one surfaced failure is a request context that is already dead, since
// nobody is left to read the answer.
func (s *Service) Chat(ctx context.Context, driverID, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	bundle := s.fetchBundle(ctx, driverID)
	gen := s.sessions.Session(driverID)
	return gen.Respond(ctx, message, bundle), nil
}

// fetchBundle loads vehicle data for the driver. Not-found and transport
// failures both collapse to "no data": the pipeline still answers.
func (s *Service) fetchBundle(ctx context.Context, driverID string) *DataBundle {
	if s.provider == nil {
		return nil
	}

	bundle, err := s.provider.VehicleBundle(ctx, driverID)
	if err != nil {
		logger.WarnContext(ctx, "vehicle data unavailable, answering without it",
			zap.String("driver_id", driverID),
			zap.Error(err),
		)
		return nil
	}
	return bundle
}

// UsingMock reports whether the service runs without a remote credential.
func (s *Service) UsingMock() bool {
	return s.mode == ModeMock
}

// Sessions exposes the registry so the binaries can start the eviction janitor.
func (s *Service) Sessions() *SessionRegistry {
	return s.sessions
}
