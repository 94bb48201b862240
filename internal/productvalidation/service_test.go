package productvalidation_test

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/cassiomorais/order-saga/internal/domain/errors"
	"github.com/cassiomorais/order-saga/internal/productvalidation"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/cassiomorais/order-saga/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(repo *testutil.MockValidationRepository, products *testutil.MockProductRepository) *productvalidation.Service {
	return productvalidation.NewService(repo, products, "PRODUCT_VALIDATION_SERVICE", zerolog.Nop())
}

func TestForward_ValidatesKnownProducts(t *testing.T) {
	repo := testutil.NewMockValidationRepository()
	svc := newService(repo, testutil.NewMockProductRepository("COMIC_BOOKS", "BOOKS"))

	ev := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusPending)
	msg, err := svc.Forward(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, "Products are validated successfully", msg)

	v := repo.Get(ev.Payload.ID, ev.TransactionID)
	require.NotNil(t, v)
	assert.True(t, v.Success)
}

func TestForward_UnknownProductFails(t *testing.T) {
	repo := testutil.NewMockValidationRepository()
	svc := newService(repo, testutil.NewMockProductRepository("BOOKS"))

	ev := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusPending) // line is COMIC_BOOKS
	_, err := svc.Forward(context.Background(), ev)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrProductNotFound))
}

func TestForward_RejectsMalformedOrders(t *testing.T) {
	repo := testutil.NewMockValidationRepository()
	svc := newService(repo, testutil.NewMockProductRepository("COMIC_BOOKS"))

	noProducts := testutil.NewTestEventWithProducts("ORCHESTRATOR", saga.StatusPending, nil)
	_, err := svc.Forward(context.Background(), noProducts)
	require.Error(t, err)
	assert.True(t, domainErrors.IsValidation(err))

	emptyCode := testutil.NewTestEventWithProducts("ORCHESTRATOR", saga.StatusPending, []saga.OrderProduct{
		{Product: saga.Product{Code: ""}, Quantity: 1},
	})
	_, err = svc.Forward(context.Background(), emptyCode)
	require.Error(t, err)
	assert.True(t, domainErrors.IsValidation(err))

	badQuantity := testutil.NewTestEventWithProducts("ORCHESTRATOR", saga.StatusPending, []saga.OrderProduct{
		{Product: saga.Product{Code: "COMIC_BOOKS", UnitValue: 100}, Quantity: 0},
	})
	_, err = svc.Forward(context.Background(), badQuantity)
	require.Error(t, err)
	assert.True(t, domainErrors.IsValidation(err))

	noIDs := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusPending)
	noIDs.Payload.ID = ""
	_, err = svc.Forward(context.Background(), noIDs)
	require.Error(t, err)
	assert.True(t, domainErrors.IsValidation(err))
}

func TestForward_DuplicateDeliveryRejected(t *testing.T) {
	repo := testutil.NewMockValidationRepository()
	svc := newService(repo, testutil.NewMockProductRepository("COMIC_BOOKS"))

	ev := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusPending)
	_, err := svc.Forward(context.Background(), ev)
	require.NoError(t, err)

	_, err = svc.Forward(context.Background(), ev)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrAlreadyProcessed))
}

func TestCompensate_FlipsValidationToFailed(t *testing.T) {
	repo := testutil.NewMockValidationRepository()
	svc := newService(repo, testutil.NewMockProductRepository("COMIC_BOOKS"))

	ev := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusPending)
	_, err := svc.Forward(context.Background(), ev)
	require.NoError(t, err)

	msg, err := svc.Compensate(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, "Validation marked as failed", msg)

	v := repo.Get(ev.Payload.ID, ev.TransactionID)
	require.NotNil(t, v)
	assert.False(t, v.Success)
}

func TestCompensate_NoValidationIsRecordedNoOp(t *testing.T) {
	repo := testutil.NewMockValidationRepository()
	svc := newService(repo, testutil.NewMockProductRepository())

	ev := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusFail)
	msg, err := svc.Compensate(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, "No validation found for this transaction, nothing to roll back", msg)
}
