package enquiry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stem-for-society/enquiry-api/internal/enquiry"
	"github.com/stem-for-society/enquiry-api/internal/models"
	apperrors "github.com/stem-for-society/enquiry-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingOrderCreator counts calls and can hold requests until released.
type blockingOrderCreator struct {
	mu      sync.Mutex
	calls   int
	err     error
	release chan struct{}
}

func (c *blockingOrderCreator) CreateOrder(ctx context.Context, payload *models.EnquiryPayload) (*models.CheckoutConfig, error) {
	c.mu.Lock()
	c.calls++
	release := c.release
	err := c.err
	c.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &models.CheckoutConfig{
		KeyID:       "rzp_test_key",
		OrderID:     "order_123",
		AmountPaise: payload.AmountPaise,
		Currency:    "INR",
	}, nil
}

func (c *blockingOrderCreator) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func openValidFlow(t *testing.T, orders enquiry.OrderCreator) *enquiry.Flow {
	t.Helper()
	f := enquiry.NewFlow(orders)
	require.NoError(t, f.Open("draft-1", models.ModeIndividual, models.ServiceCareerCounselling))
	fill := func(s string) *string { return &s }
	require.NoError(t, f.Apply(models.EnquiryUpdate{
		FullName:      fill("Priya Sharma"),
		ContactNumber: fill("9876543210"),
		Email:         fill("priya@example.com"),
		City:          fill("Pune"),
	}))
	return f
}

func TestFlow_OpenResetsDraft(t *testing.T) {
	f := enquiry.NewFlow(&blockingOrderCreator{})

	require.NoError(t, f.Open("d1", models.ModeIndividual, models.ServiceCareerCounselling))
	assert.Equal(t, enquiry.StateOpen, f.State())

	d := f.Draft()
	require.NotNil(t, d)
	assert.Equal(t, models.ModeIndividual, d.Mode)
	assert.Equal(t, models.ServiceCareerCounselling, d.ServiceInterest)
	assert.NotNil(t, d.Individual)
	assert.Nil(t, d.Institutional)

	// Reopen with a service from the wrong taxonomy: not pre-populated
	require.NoError(t, f.Open("d2", models.ModeIndividual, models.ServiceCampusWorkshops))
	assert.Empty(t, f.Draft().ServiceInterest)
}

func TestFlow_SubmitValidationFailureMakesNoNetworkCall(t *testing.T) {
	orders := &blockingOrderCreator{}
	f := enquiry.NewFlow(orders)
	require.NoError(t, f.Open("d1", models.ModeIndividual, ""))

	cfg, err := f.Submit(context.Background())

	assert.Nil(t, cfg)
	var verrs enquiry.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.NotEmpty(t, verrs)
	assert.Equal(t, 0, orders.callCount(), "no partial submission may reach the network")
	assert.Equal(t, enquiry.StateOpen, f.State())
}

func TestFlow_SubmitPhoneValidation(t *testing.T) {
	tests := []struct {
		number string
		valid  bool
	}{
		{"9876543210", true},
		{"5876543210", false},  // leading digit 5
		{"98765432", false},    // 8 digits
		{"98765432100", false}, // 11 digits
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, models.ValidMobile(tt.number), tt.number)
	}
}

func TestFlow_SubmitSuccess(t *testing.T) {
	orders := &blockingOrderCreator{}
	f := openValidFlow(t, orders)

	cfg, err := f.Submit(context.Background())

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "order_123", cfg.OrderID)
	assert.Equal(t, 1, orders.callCount())
	// Remains submitting until the payment widget reports back
	assert.Equal(t, enquiry.StateSubmitting, f.State())
}

func TestFlow_DoubleSubmitCreatesOneOrder(t *testing.T) {
	orders := &blockingOrderCreator{release: make(chan struct{})}
	f := openValidFlow(t, orders)

	results := make(chan error, 2)
	go func() {
		_, err := f.Submit(context.Background())
		results <- err
	}()

	// Wait until the first submit is in flight
	require.Eventually(t, func() bool {
		return f.State() == enquiry.StateSubmitting
	}, time.Second, time.Millisecond)

	// Second click while in flight: no-op, no second order
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, enquiry.ErrNotOpen)

	close(orders.release)
	require.NoError(t, <-results)
	assert.Equal(t, 1, orders.callCount())
}

func TestFlow_OrderCreationFailurePreservesData(t *testing.T) {
	orders := &blockingOrderCreator{err: errors.New("gateway unavailable")}
	f := openValidFlow(t, orders)

	cfg, err := f.Submit(context.Background())

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Equal(t, enquiry.StateOpen, f.State())

	d := f.Draft()
	require.NotNil(t, d, "entered data must survive a server failure")
	assert.Equal(t, "Priya Sharma", d.FullName)
	assert.Equal(t, "9876543210", d.ContactNumber)
}

func TestFlow_StaleResponseDiscardedAfterAbandon(t *testing.T) {
	orders := &blockingOrderCreator{release: make(chan struct{})}
	f := openValidFlow(t, orders)

	type result struct {
		cfg *models.CheckoutConfig
		err error
	}
	results := make(chan result, 1)
	go func() {
		cfg, err := f.Submit(context.Background())
		results <- result{cfg, err}
	}()

	require.Eventually(t, func() bool {
		return f.State() == enquiry.StateSubmitting
	}, time.Second, time.Millisecond)

	// Popup unmounts while the request is outstanding
	f.Abandon()
	assert.Equal(t, enquiry.StateClosed, f.State())

	// The response completes afterwards and must not mutate the flow
	close(orders.release)
	res := <-results
	assert.Nil(t, res.cfg)
	assert.ErrorIs(t, res.err, apperrors.ErrStale)
	assert.Equal(t, enquiry.StateClosed, f.State())
	assert.Nil(t, f.Draft())
}

func TestFlow_CloseRejectedWhileSubmitting(t *testing.T) {
	orders := &blockingOrderCreator{release: make(chan struct{})}
	f := openValidFlow(t, orders)

	done := make(chan struct{})
	go func() {
		_, _ = f.Submit(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return f.State() == enquiry.StateSubmitting
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, f.Close(), enquiry.ErrSubmissionInFlight)

	close(orders.release)
	<-done
}

func TestFlow_SubmitTimeoutIsServerFailure(t *testing.T) {
	orders := &blockingOrderCreator{release: make(chan struct{})} // never released
	f := enquiry.NewFlow(orders, enquiry.WithTimeout(20*time.Millisecond))
	require.NoError(t, f.Open("d1", models.ModeIndividual, models.ServiceCareerCounselling))
	fill := func(s string) *string { return &s }
	require.NoError(t, f.Apply(models.EnquiryUpdate{
		FullName:      fill("Priya Sharma"),
		ContactNumber: fill("9876543210"),
		Email:         fill("priya@example.com"),
	}))

	cfg, err := f.Submit(context.Background())

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, enquiry.StateOpen, f.State())
	assert.NotNil(t, f.Draft())
}

func TestFlow_SwitchModeResetsForeignService(t *testing.T) {
	f := enquiry.NewFlow(&blockingOrderCreator{})
	require.NoError(t, f.Open("d1", models.ModeIndividual, models.ServiceCareerCounselling))

	require.NoError(t, f.SwitchMode(models.ModeInstitutional))

	d := f.Draft()
	assert.Equal(t, models.ModeInstitutional, d.Mode)
	assert.Empty(t, d.ServiceInterest, "individual service does not survive mode switch")
	assert.Nil(t, d.Individual)
	assert.NotNil(t, d.Institutional)
}

func TestFlow_SwitchModeKeepsCommonFields(t *testing.T) {
	f := enquiry.NewFlow(&blockingOrderCreator{})
	require.NoError(t, f.Open("d1", models.ModeInstitutional, ""))
	fill := func(s string) *string { return &s }
	require.NoError(t, f.Apply(models.EnquiryUpdate{
		FullName: fill("Dr. Rao"),
		Email:    fill("rao@college.edu"),
	}))

	require.NoError(t, f.SwitchMode(models.ModeIndividual))

	d := f.Draft()
	assert.Equal(t, "Dr. Rao", d.FullName)
	assert.Equal(t, "rao@college.edu", d.Email)
}

func TestFlow_ApplyRejectsForeignService(t *testing.T) {
	f := enquiry.NewFlow(&blockingOrderCreator{})
	require.NoError(t, f.Open("d1", models.ModeIndividual, ""))

	svc := string(models.ServiceCampusWorkshops)
	err := f.Apply(models.EnquiryUpdate{ServiceInterest: &svc})

	var verrs enquiry.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "serviceInterest", verrs[0].Field)
}

func TestFlow_PaymentCallbacks(t *testing.T) {
	orders := &blockingOrderCreator{}
	f := openValidFlow(t, orders)
	_, err := f.Submit(context.Background())
	require.NoError(t, err)

	// Failure returns to open with data preserved
	require.NoError(t, f.OnPaymentFailure())
	assert.Equal(t, enquiry.StateOpen, f.State())
	require.NotNil(t, f.Draft())

	// Retry and succeed
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.OnPaymentSuccess())
	assert.Equal(t, enquiry.StateClosed, f.State())
	assert.Nil(t, f.Draft())
	assert.Equal(t, 2, orders.callCount())
}

func TestFlow_PaymentCallbackAfterCloseIsStale(t *testing.T) {
	f := enquiry.NewFlow(&blockingOrderCreator{})
	require.NoError(t, f.Open("d1", models.ModeIndividual, ""))
	require.NoError(t, f.Close())

	assert.ErrorIs(t, f.OnPaymentSuccess(), apperrors.ErrStale)
	assert.ErrorIs(t, f.OnPaymentFailure(), apperrors.ErrStale)
}

func TestFlow_BuildPayloadCombinesModeFields(t *testing.T) {
	d := models.NewEnquiryDraft("d1", models.ModeInstitutional)
	d.FullName = "Dr. Rao"
	d.ContactNumber = "9876543210"
	d.Email = "rao@college.edu"
	d.ServiceInterest = models.ServiceCampusWorkshops
	d.Institutional.Institution = "MIT Pune"
	d.Institutional.Designation = "Dean"
	d.Institutional.Requirements = "Two-day robotics workshop"

	p := d.BuildPayload(250000)

	assert.Equal(t, models.ModeInstitutional, p.Mode)
	assert.Equal(t, "MIT Pune / Dean", p.Organization)
	assert.Equal(t, "Two-day robotics workshop", p.Requirements)
	assert.Equal(t, int64(250000), p.AmountPaise)
	assert.Nil(t, p.SelectedDate)
	assert.Nil(t, p.SelectedTime)
}

func TestStore_PutGetDelete(t *testing.T) {
	store := enquiry.NewStore(1)
	f := enquiry.NewFlow(&blockingOrderCreator{})

	store.Put("d1", f)
	got, ok := store.Get("d1")
	require.True(t, ok)
	assert.Same(t, f, got)

	store.Delete("d1")
	_, ok = store.Get("d1")
	assert.False(t, ok)
}
