package event

import (
	"context"
	"log/slog"

	"github.com/checkin-tools/checkin-manager/internal/errdef"
	"github.com/checkin-tools/checkin-manager/pkg/marketo"
	"github.com/checkin-tools/checkin-manager/pkg/model"
	"golang.org/x/sync/errgroup"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(logger *slog.Logger, repository Repository, fetcher Fetcher, sessions sessionService) *service {
	return &service{
		logger:     logger,
		repository: repository,
		fetcher:    fetcher,
		sessions:   sessions,
	}
}

type service struct {
	logger     *slog.Logger
	repository Repository
	fetcher    Fetcher
	sessions   sessionService
}

type Repository interface {
	SaveSnapshot(ctx context.Context, event model.Event, attendees []model.Attendee) error
	FindAll(ctx context.Context) ([]model.Event, error)
	FindByID(ctx context.Context, id uint) (*model.Event, error)
	DeleteAll(ctx context.Context) error
}

type Fetcher interface {
	FetchEvent(ctx context.Context, token string, eventID uint) (*marketo.ProgramPayload, error)
	FetchRoster(ctx context.Context, token string, eventID uint) ([]marketo.LeadPayload, error)
}

type sessionService interface {
	IsValid(ctx context.Context) bool
	Session(ctx context.Context) (model.Session, error)
}

// Sync fetches one remote event and its roster and merges the snapshot into
// the mirror. Both reads run concurrently and either failure aborts the sync
// before anything is written, a partial merge is never visible. The merged
// read model is returned.
func (s service) Sync(ctx context.Context, eventID uint) (*model.Event, error) {
	if !s.sessions.IsValid(ctx) {
		return nil, errdef.NewUnauthorized("no valid session, sign in before syncing")
	}

	session, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var program *marketo.ProgramPayload
	var roster []marketo.LeadPayload

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		program, err = s.fetcher.FetchEvent(gctx, session.Token, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		roster, err = s.fetcher.FetchRoster(gctx, session.Token, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Sync aborted, nothing merged", "error", err, "eventId", eventID)
		return nil, err
	}

	event := newEvent(eventID, *program)
	attendees := newAttendees(eventID, roster)

	if err := s.repository.SaveSnapshot(ctx, event, attendees); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Merged event snapshot", "eventId", event.ID, "attendees", len(attendees))

	return s.repository.FindByID(ctx, event.ID)
}

// List returns the nested read model for every mirrored event.
func (s service) List(ctx context.Context) ([]model.Event, error) {
	return s.repository.FindAll(ctx)
}

func (s service) Find(ctx context.Context, id uint) (*model.Event, error) {
	return s.repository.FindByID(ctx, id)
}

// Reset wipes the mirror.
func (s service) Reset(ctx context.Context) error {
	return s.repository.DeleteAll(ctx)
}

// newEvent normalizes a remote program into an event row. The remote id wins
// when present, the requested id covers payloads that omit it. Absent string
// attributes are already the empty string after decoding.
func newEvent(eventID uint, program marketo.ProgramPayload) model.Event {
	id := program.ID
	if id == 0 {
		id = eventID
	}

	return model.Event{
		ID:          id,
		Name:        program.Name,
		Description: program.Description,
		CreatedAt:   program.CreatedAt,
		UpdatedAt:   program.UpdatedAt,
		URL:         program.URL,
		Type:        program.Type,
		Channel:     program.Channel,
		Workspace:   program.Workspace,
		StartDate:   program.StartDate,
		EndDate:     program.EndDate,
	}
}

func newAttendees(eventID uint, roster []marketo.LeadPayload) []model.Attendee {
	attendees := make([]model.Attendee, 0, len(roster))
	for _, lead := range roster {
		attendee := model.Attendee{
			EventID:   eventID,
			UserID:    lead.ID,
			FirstName: lead.FirstName,
			LastName:  lead.LastName,
			Email:     lead.Email,
			Company:   lead.Company,
			Phone:     lead.Phone,
			CreatedAt: lead.CreatedAt,
			UpdatedAt: lead.UpdatedAt,
		}
		if lead.Unsubscribed {
			attendee.Unsubscribed = 1
		}
		// a missing membership payload normalizes to empty strings
		if lead.Membership != nil {
			attendee.ProgressionStatus = lead.Membership.ProgressionStatus
			attendee.MembershipDate = lead.Membership.MembershipDate
		}
		attendees = append(attendees, attendee)
	}
	return attendees
}
