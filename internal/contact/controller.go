package contact

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/catalog"
)

const (
	// SubmitLabel is the idle label of the submit control.
	SubmitLabel = "Send Message"
	// BusyLabel replaces the label while a submission is in flight.
	BusyLabel = "Sending..."

	msgGenericFailure = "An error occurred. Please try again later."
)

// Submitter posts a contact form to the backend.
type Submitter interface {
	SubmitContact(ctx context.Context, form url.Values) (catalog.ContactReply, error)
}

// StatusKind colours the status line.
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the inline message below the form.
type Status struct {
	Kind    StatusKind
	Message string
}

// View receives the renders of one contact form.
type View interface {
	ClearStatus()
	ShowStatus(s Status)
	SetBusy(busy bool, label string)
	SetFields(values url.Values)
}

// Controller handles contact form submissions.
type Controller struct {
	submitter Submitter
	view      View
	logger    *zap.Logger
}

// NewController wires a controller. A nil logger disables logging.
func NewController(submitter Submitter, view View, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{submitter: submitter, view: view, logger: logger}
}

// Submit validates and posts the form. Every field in values is forwarded.
// The returned error is informational; the outcome is already rendered on the view.
func (c *Controller) Submit(ctx context.Context, values url.Values) error {
	c.view.ClearStatus()
	c.view.SetFields(values)

	if err := FormFromValues(values).Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.view.ShowStatus(Status{Kind: StatusError, Message: verr.Message})
		} else {
			c.view.ShowStatus(Status{Kind: StatusError, Message: msgGenericFailure})
		}
		return err
	}

	c.view.SetBusy(true, BusyLabel)
	defer c.view.SetBusy(false, SubmitLabel)

	reply, err := c.submitter.SubmitContact(ctx, values)
	if err != nil {
		c.logger.Error("contact: submit failed", zap.Error(err))
		c.view.ShowStatus(Status{Kind: StatusError, Message: msgGenericFailure})
		return err
	}
	if !reply.Success {
		c.logger.Warn("contact: submission rejected", zap.String("message", reply.Message))
		c.view.ShowStatus(Status{Kind: StatusError, Message: reply.Message})
		return nil
	}
	c.view.ShowStatus(Status{Kind: StatusSuccess, Message: reply.Message})
	c.view.SetFields(nil)
	return nil
}

// FormState records the latest render of the form.
type FormState struct {
	mu       sync.Mutex
	status   *Status
	busy     bool
	label    string
	values   url.Values
	busySeen bool
}

// NewFormState returns an idle, empty form.
func NewFormState() *FormState {
	return &FormState{label: SubmitLabel}
}

func (s *FormState) ClearStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = nil
}

func (s *FormState) ShowStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = &st
}

func (s *FormState) SetBusy(busy bool, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy, s.label = busy, label
	if busy {
		s.busySeen = true
	}
}

func (s *FormState) SetFields(values url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = cloneValues(values)
}

// FormSnapshot is a copy of the form for rendering.
type FormSnapshot struct {
	Status *Status
	Busy   bool
	Label  string
	Values url.Values
	// WentBusy reports whether the last submission reached the backend.
	WentBusy bool
}

// Field returns a posted value, empty after a successful submission.
func (s FormSnapshot) Field(name string) string {
	return s.Values.Get(name)
}

// Take copies the form and resets the busy marker.
func (s *FormState) Take() FormSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := FormSnapshot{
		Busy:     s.busy,
		Label:    s.label,
		Values:   cloneValues(s.values),
		WentBusy: s.busySeen,
	}
	if s.status != nil {
		st := *s.status
		snap.Status = &st
	}
	s.busySeen = false
	return snap
}

func cloneValues(values url.Values) url.Values {
	if values == nil {
		return nil
	}
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}
