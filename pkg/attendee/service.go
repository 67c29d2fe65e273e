package attendee

import (
	"context"
	"log/slog"

	"github.com/checkin-tools/checkin-manager/internal/errdef"
	"github.com/checkin-tools/checkin-manager/pkg/marketo"
	"github.com/checkin-tools/checkin-manager/pkg/model"
)

// StatusRegistered is the progression status a newly created attendee is
// pushed into.
const StatusRegistered = "Registered"

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(logger *slog.Logger, repository Repository, events eventFinder, pusher Pusher, sessions sessionService) *service {
	return &service{
		logger:     logger,
		repository: repository,
		events:     events,
		pusher:     pusher,
		sessions:   sessions,
	}
}

type service struct {
	logger     *slog.Logger
	repository Repository
	events     eventFinder
	pusher     Pusher
	sessions   sessionService
}

type Repository interface {
	Create(ctx context.Context, attendee *model.Attendee) (bool, error)
	Update(ctx context.Context, attendee model.Attendee) (int64, error)
	UpdateStatus(ctx context.Context, eventID, userID uint, status string) (int64, error)
}

type eventFinder interface {
	Find(ctx context.Context, id uint) (*model.Event, error)
}

type Pusher interface {
	PushLead(ctx context.Context, token, workspace string, lead marketo.Lead) (uint, error)
	ChangeStatus(ctx context.Context, token string, eventID, leadID uint, status string) (bool, error)
}

type sessionService interface {
	IsValid(ctx context.Context) bool
	Session(ctx context.Context) (model.Session, error)
}

// Input carries the editable attendee fields as the UI submits them.
type Input struct {
	FirstName    string
	LastName     string
	Email        string
	Company      string
	Phone        string
	Unsubscribed bool
}

// Create pushes a new lead upstream, registers it for the event and then
// mirrors it locally. The remote calls come first so the mirror never claims
// a success the remote service rejected. The workspace scoping the push is
// the one mirrored with the event.
func (s service) Create(ctx context.Context, eventID uint, input Input) (*model.Attendee, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}

	event, err := s.events.Find(ctx, eventID)
	if err != nil {
		return nil, err
	}

	leadID, err := s.pusher.PushLead(ctx, token, event.Workspace, newLead(input))
	if err != nil {
		return nil, err
	}

	ok, err := s.pusher.ChangeStatus(ctx, token, eventID, leadID, StatusRegistered)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errdef.NewConflict("remote service did not register lead %d for event %d", leadID, eventID)
	}

	attendee := &model.Attendee{
		EventID:           eventID,
		UserID:            leadID,
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Email:             input.Email,
		Company:           input.Company,
		Phone:             input.Phone,
		Unsubscribed:      unsubscribedFlag(input.Unsubscribed),
		ProgressionStatus: StatusRegistered,
	}

	created, err := s.repository.Create(ctx, attendee)
	if err != nil {
		return nil, err
	}
	if !created {
		// the remote write went through, only the mirror refused
		return nil, errdef.NewDuplicated("attendee %d is already mirrored for event %d", leadID, eventID)
	}

	return attendee, nil
}

// Update pushes the edited lead upstream and then patches the local rows
// matching the attendee's user id. The returned count is how many local rows
// changed, zero when the attendee was never mirrored.
func (s service) Update(ctx context.Context, eventID, userID uint, input Input) (int64, error) {
	token, err := s.token(ctx)
	if err != nil {
		return 0, err
	}

	event, err := s.events.Find(ctx, eventID)
	if err != nil {
		return 0, err
	}

	if _, err := s.pusher.PushLead(ctx, token, event.Workspace, newLead(input)); err != nil {
		return 0, err
	}

	return s.repository.Update(ctx, model.Attendee{
		UserID:       userID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Company:      input.Company,
		Phone:        input.Phone,
		Unsubscribed: unsubscribedFlag(input.Unsubscribed),
	})
}

// CheckIn pushes a progression status change upstream and patches the mirror
// on success.
func (s service) CheckIn(ctx context.Context, eventID, userID uint, status string) (int64, error) {
	token, err := s.token(ctx)
	if err != nil {
		return 0, err
	}

	ok, err := s.pusher.ChangeStatus(ctx, token, eventID, userID, status)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errdef.NewConflict("remote service rejected status %q for attendee %d in event %d", status, userID, eventID)
	}

	return s.repository.UpdateStatus(ctx, eventID, userID, status)
}

func (s service) token(ctx context.Context) (string, error) {
	if !s.sessions.IsValid(ctx) {
		return "", errdef.NewUnauthorized("no valid session, sign in first")
	}

	session, err := s.sessions.Session(ctx)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

func newLead(input Input) marketo.Lead {
	return marketo.Lead{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Company:      input.Company,
		Phone:        input.Phone,
		Unsubscribed: input.Unsubscribed,
	}
}

func unsubscribedFlag(unsubscribed bool) int {
	if unsubscribed {
		return 1
	}
	return 0
}
