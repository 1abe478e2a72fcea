// Package enquiry implements the lifecycle of one enquiry popup: a small
// state machine coordinating form state, local validation, order creation
// and the payment widget callbacks.
package enquiry

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/stem-for-society/enquiry-api/internal/models"
	apperrors "github.com/stem-for-society/enquiry-api/pkg/errors"
)

// State is the lifecycle phase of an enquiry flow.
type State string

const (
	StateClosed     State = "closed"
	StateOpen       State = "open"
	StateSubmitting State = "submitting"
)

// legalTransitions defines the allowed state transitions. Once submitting,
// the flow only leaves through the submission result or a payment callback.
var legalTransitions = map[State]map[State]bool{
	StateClosed: {
		StateOpen: true,
	},
	StateOpen: {
		StateOpen:       true, // reopen resets the draft
		StateSubmitting: true,
		StateClosed:     true,
	},
	StateSubmitting: {
		StateOpen:   true, // order creation or payment failed, data preserved
		StateClosed: true, // payment succeeded, or popup went away mid-flight
	},
}

var (
	// ErrNotOpen is returned when submit is attempted outside the open
	// state. Repeated submit clicks while a submission is in flight land
	// here and cause no second network call.
	ErrNotOpen = errors.New("enquiry is not open for submission")

	// ErrSubmissionInFlight is returned when close is attempted while a
	// submission is outstanding.
	ErrSubmissionInFlight = errors.New("submission in flight")

	// ErrClosed is returned for updates against a closed flow.
	ErrClosed = errors.New("enquiry is closed")
)

// ValidationError describes a single failed field check.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the local validation failure set. It is surfaced to the
// user and never reaches the network.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, e.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// OrderCreator creates a payment order for a fully validated payload and
// returns the checkout configuration for the payment widget.
type OrderCreator interface {
	CreateOrder(ctx context.Context, payload *models.EnquiryPayload) (*models.CheckoutConfig, error)
}

// AmountFunc prices a service in the smallest currency unit.
type AmountFunc func(mode models.EnquiryMode, service models.ServiceType) int64

// defaultSubmitTimeout bounds order creation; expiry is treated as a server
// failure and returns the flow to open with data preserved.
const defaultSubmitTimeout = 20 * time.Second

// Flow is the state machine behind one enquiry popup. All methods are safe
// for concurrent use; the interleaving model is UI events and network
// callbacks racing on shared state.
type Flow struct {
	mu       sync.Mutex
	state    State
	draft    *models.EnquiryDraft
	checkout *models.CheckoutConfig

	// attempt identifies the active submission; any reset bumps it so a
	// late order-creation result is recognized as stale and discarded.
	attempt uint64

	orders    OrderCreator
	amountFor AmountFunc
	timeout   time.Duration
}

// Option configures a Flow.
type Option func(*Flow)

// WithTimeout overrides the order-creation deadline.
func WithTimeout(d time.Duration) Option {
	return func(f *Flow) { f.timeout = d }
}

// WithPricing overrides the service pricing function.
func WithPricing(fn AmountFunc) Option {
	return func(f *Flow) { f.amountFor = fn }
}

// NewFlow creates a closed flow backed by the given order creator.
func NewFlow(orders OrderCreator, opts ...Option) *Flow {
	f := &Flow{
		state:     StateClosed,
		orders:    orders,
		amountFor: func(models.EnquiryMode, models.ServiceType) int64 { return 0 },
		timeout:   defaultSubmitTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current lifecycle phase.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns a copy of the current form data, or nil when closed.
func (f *Flow) Draft() *models.EnquiryDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyDraft(f.draft)
}

// Checkout returns the widget configuration produced by a successful
// submission, or nil if none is pending.
func (f *Flow) Checkout() *models.CheckoutConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkout == nil {
		return nil
	}
	cfg := *f.checkout
	return &cfg
}

func (f *Flow) transitionLocked(to State) error {
	if !legalTransitions[f.state][to] {
		return fmt.Errorf("illegal transition %s -> %s", f.state, to)
	}
	f.state = to
	return nil
}

// Open starts a fresh draft for the given mode, discarding any previous
// data. A preselected service is applied only when it belongs to the mode's
// taxonomy. Open is rejected while a submission is in flight.
func (f *Flow) Open(id string, mode models.EnquiryMode, preselected models.ServiceType) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	if err := f.transitionLocked(StateOpen); err != nil {
		return err
	}

	f.draft = models.NewEnquiryDraft(id, mode)
	if preselected != "" && mode.HasService(preselected) {
		f.draft.ServiceInterest = preselected
	}
	f.checkout = nil
	f.attempt++
	return nil
}

// SwitchMode changes the audience of an open draft. Common fields are kept;
// the detail extension is swapped for the new mode's shape and the service
// interest is cleared when it does not belong to the new mode's set.
func (f *Flow) SwitchMode(mode models.EnquiryMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateOpen {
		return ErrClosed
	}
	if f.draft.Mode == mode {
		return nil
	}

	f.draft.Mode = mode
	if mode == models.ModeInstitutional {
		f.draft.Individual = nil
		f.draft.Institutional = &models.InstitutionalDetails{}
	} else {
		f.draft.Institutional = nil
		f.draft.Individual = &models.IndividualDetails{}
	}
	if f.draft.ServiceInterest != "" && !mode.HasService(f.draft.ServiceInterest) {
		f.draft.ServiceInterest = ""
	}
	return nil
}

// Apply mutates exactly the fields carried by the update. No cross-field
// validation happens here; full validation runs at submit time. A service
// interest outside the draft's mode is the one update rejected eagerly.
func (f *Flow) Apply(u models.EnquiryUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateOpen {
		return ErrClosed
	}

	d := f.draft
	if u.FullName != nil {
		d.FullName = *u.FullName
	}
	if u.ContactNumber != nil {
		d.ContactNumber = *u.ContactNumber
	}
	if u.Email != nil {
		d.Email = *u.Email
	}
	if u.Address != nil {
		d.Address = *u.Address
	}
	if u.City != nil {
		d.City = *u.City
	}
	if u.State != nil {
		d.State = *u.State
	}
	if u.ServiceInterest != nil {
		svc := models.ServiceType(*u.ServiceInterest)
		if svc != "" && !d.Mode.HasService(svc) {
			return ValidationErrors{{
				Field:   "serviceInterest",
				Message: fmt.Sprintf("%q is not offered for %s enquiries", svc, d.Mode),
			}}
		}
		d.ServiceInterest = svc
	}
	if u.PreferredDate != nil {
		if *u.PreferredDate == "" {
			d.PreferredDate = nil
		} else {
			parsed, err := time.Parse("2006-01-02", *u.PreferredDate)
			if err != nil {
				return ValidationErrors{{Field: "preferredDate", Message: "must be an ISO date (YYYY-MM-DD)"}}
			}
			d.PreferredDate = &parsed
		}
	}
	if u.PreferredTime != nil {
		d.PreferredTime = *u.PreferredTime
	}

	if d.Individual != nil {
		if u.Gender != nil {
			d.Individual.Gender = *u.Gender
		}
		if u.Profession != nil {
			d.Individual.Profession = *u.Profession
		}
		if u.Institution != nil {
			d.Individual.Institution = *u.Institution
		}
		if u.Concern != nil {
			d.Individual.Concern = *u.Concern
		}
	}
	if d.Institutional != nil {
		if u.Designation != nil {
			d.Institutional.Designation = *u.Designation
		}
		if u.Department != nil {
			d.Institutional.Department = *u.Department
		}
		if u.Institution != nil {
			d.Institutional.Institution = *u.Institution
		}
		if u.Requirements != nil {
			d.Institutional.Requirements = *u.Requirements
		}
	}
	return nil
}

// Submit validates the draft locally and, only if every check passes,
// constructs the payload and creates a payment order. It is a no-op in any
// state other than open, which collapses rapid repeated submits into a
// single order-creation call. On order-creation failure the flow returns to
// open with all entered data preserved.
func (f *Flow) Submit(ctx context.Context) (*models.CheckoutConfig, error) {
	f.mu.Lock()

	if f.state != StateOpen {
		f.mu.Unlock()
		return nil, ErrNotOpen
	}

	if verrs := validate(f.draft); len(verrs) > 0 {
		f.mu.Unlock()
		return nil, verrs
	}

	// The payload is only ever constructed after full local validation
	payload := f.draft.BuildPayload(f.amountFor(f.draft.Mode, f.draft.ServiceInterest))

	if err := f.transitionLocked(StateSubmitting); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.attempt++
	token := f.attempt
	timeout := f.timeout
	f.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg, err := f.orders.CreateOrder(ctx, payload)

	f.mu.Lock()
	defer f.mu.Unlock()

	// Stale-response guard: the popup may have gone away while the request
	// was outstanding. The result must not touch state that has since been
	// reset, and is not surfaced to the user.
	if f.attempt != token || f.state != StateSubmitting {
		return nil, apperrors.ErrStale
	}

	if err != nil {
		f.state = StateOpen
		return nil, err
	}

	f.checkout = cfg
	return cfg, nil
}

// OnPaymentSuccess closes the flow after the widget reports a captured
// payment. Valid only while a submission is pending.
func (f *Flow) OnPaymentSuccess() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateSubmitting {
		return apperrors.ErrStale
	}
	f.state = StateClosed
	f.draft = nil
	f.checkout = nil
	f.attempt++
	return nil
}

// OnPaymentFailure returns the flow to open after a gateway failure or user
// dismissal, preserving entered data so the user can retry.
func (f *Flow) OnPaymentFailure() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateSubmitting {
		return apperrors.ErrStale
	}
	f.state = StateOpen
	f.checkout = nil
	f.attempt++
	return nil
}

// Close discards all entered data. It is valid from any state except
// submitting; use Abandon when the popup disappears mid-flight.
func (f *Flow) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	f.reset()
	return nil
}

// Abandon force-closes the flow regardless of state, e.g. when the popup is
// unmounted while a submission is outstanding. Any in-flight result is then
// recognized as stale and silently discarded.
func (f *Flow) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Flow) reset() {
	f.state = StateClosed
	f.draft = nil
	f.checkout = nil
	f.attempt++
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validate runs the required-field checks. The caller holds the lock.
func validate(d *models.EnquiryDraft) ValidationErrors {
	var verrs ValidationErrors

	if strings.TrimSpace(d.FullName) == "" {
		verrs = append(verrs, ValidationError{Field: "fullName", Message: "full name is required"})
	}
	if !models.ValidMobile(d.ContactNumber) {
		verrs = append(verrs, ValidationError{Field: "contactNumber", Message: "must be a 10-digit mobile number starting with 6-9"})
	}
	if !emailPattern.MatchString(d.Email) {
		verrs = append(verrs, ValidationError{Field: "email", Message: "must be a valid email address"})
	}
	if d.ServiceInterest == "" {
		verrs = append(verrs, ValidationError{Field: "serviceInterest", Message: "service interest is required"})
	} else if !d.Mode.HasService(d.ServiceInterest) {
		verrs = append(verrs, ValidationError{Field: "serviceInterest", Message: "service does not belong to the selected mode"})
	}

	return verrs
}

func copyDraft(d *models.EnquiryDraft) *models.EnquiryDraft {
	if d == nil {
		return nil
	}
	cp := *d
	if d.Individual != nil {
		ind := *d.Individual
		cp.Individual = &ind
	}
	if d.Institutional != nil {
		inst := *d.Institutional
		cp.Institutional = &inst
	}
	if d.PreferredDate != nil {
		t := *d.PreferredDate
		cp.PreferredDate = &t
	}
	return &cp
}
