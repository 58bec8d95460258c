package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReturn(t *testing.T, typ ReturnType) *ReturnRequest {
	t.Helper()
	ret, err := NewReturnRequest(uuid.New(), uuid.New(), "RET-202609-0001", typ, uuid.New(), "SO-202609-0042", 3, uuid.New())
	require.NoError(t, err)
	return ret
}

func addTestItem(t *testing.T, ret *ReturnRequest, restockable bool) *ReturnItem {
	t.Helper()
	item, err := ret.AddItem(uuid.New(), "Widget", "W-1", decimal.NewFromInt(2),
		ReturnReasonDefective, ItemConditionDamaged, restockable, "")
	require.NoError(t, err)
	return item
}

func TestNewReturnRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ret := newTestReturn(t, ReturnTypeCustomer)
		assert.Equal(t, ReturnStatusRequested, ret.Status)
		assert.Equal(t, 3, ret.SourceVersion)
		assert.Len(t, ret.GetDomainEvents(), 1)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := NewReturnRequest(uuid.New(), uuid.New(), "RET-1", ReturnType("VENDOR"), uuid.New(), "X", 1, uuid.New())
		assert.Equal(t, "INVALID_RETURN_TYPE", domainCode(t, err))
	})

	t.Run("nil source", func(t *testing.T) {
		_, err := NewReturnRequest(uuid.New(), uuid.New(), "RET-1", ReturnTypeCustomer, uuid.Nil, "X", 1, uuid.New())
		assert.Equal(t, "INVALID_SOURCE", domainCode(t, err))
	})
}

func TestReturnAddItem(t *testing.T) {
	ret := newTestReturn(t, ReturnTypeCustomer)
	productID := uuid.New()

	_, err := ret.AddItem(productID, "Widget", "W-1", decimal.NewFromInt(1),
		ReturnReasonQuality, ItemConditionLikeNew, true, "box opened")
	require.NoError(t, err)

	t.Run("same product twice rejected", func(t *testing.T) {
		_, err := ret.AddItem(productID, "Widget", "W-1", decimal.NewFromInt(1),
			ReturnReasonOther, ItemConditionNew, false, "")
		assert.Equal(t, "DUPLICATE_PRODUCT", domainCode(t, err))
	})

	t.Run("unknown reason rejected", func(t *testing.T) {
		_, err := ret.AddItem(uuid.New(), "Bolt", "B-1", decimal.NewFromInt(1),
			ReturnReason("CHANGED_MIND"), ItemConditionNew, false, "")
		assert.Equal(t, "INVALID_REASON", domainCode(t, err))
	})

	t.Run("unknown condition rejected", func(t *testing.T) {
		_, err := ret.AddItem(uuid.New(), "Bolt", "B-1", decimal.NewFromInt(1),
			ReturnReasonOther, ItemCondition("MINT"), false, "")
		assert.Equal(t, "INVALID_CONDITION", domainCode(t, err))
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		_, err := ret.AddItem(uuid.New(), "Bolt", "B-1", decimal.Zero,
			ReturnReasonOther, ItemConditionNew, false, "")
		assert.Equal(t, "INVALID_QUANTITY", domainCode(t, err))
	})

	t.Run("not allowed after approval", func(t *testing.T) {
		require.NoError(t, ret.Approve())
		_, err := ret.AddItem(uuid.New(), "Bolt", "B-1", decimal.NewFromInt(1),
			ReturnReasonOther, ItemConditionNew, false, "")
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})
}

func TestCustomerReturnLifecycle(t *testing.T) {
	ret := newTestReturn(t, ReturnTypeCustomer)
	addTestItem(t, ret, true)

	require.NoError(t, ret.Approve())
	assert.Equal(t, ReturnStatusApproved, ret.Status)

	t.Run("customer return cannot be shipped", func(t *testing.T) {
		assert.Equal(t, "INVALID_STATE", domainCode(t, ret.MarkShipped()))
	})

	require.NoError(t, ret.MarkReceived())
	assert.Equal(t, ReturnStatusReceived, ret.Status)

	require.NoError(t, ret.Complete())
	assert.Equal(t, ReturnStatusCompleted, ret.Status)

	t.Run("completed is terminal", func(t *testing.T) {
		assert.Error(t, ret.Cancel("x"))
		assert.Error(t, ret.Approve())
		assert.Error(t, ret.Complete())
	})
}

func TestSupplierReturnLifecycle(t *testing.T) {
	ret := newTestReturn(t, ReturnTypeSupplier)
	addTestItem(t, ret, false)

	require.NoError(t, ret.Approve())

	t.Run("supplier return cannot be received", func(t *testing.T) {
		assert.Equal(t, "INVALID_STATE", domainCode(t, ret.MarkReceived()))
	})

	require.NoError(t, ret.MarkShipped())
	assert.Equal(t, ReturnStatusShipped, ret.Status)
	require.NoError(t, ret.Complete())
}

func TestReturnReject(t *testing.T) {
	ret := newTestReturn(t, ReturnTypeCustomer)
	addTestItem(t, ret, false)

	require.NoError(t, ret.Reject("outside return window"))
	assert.Equal(t, ReturnStatusRejected, ret.Status)
	assert.False(t, ret.Status.IsOpen())

	t.Run("approved cannot be rejected", func(t *testing.T) {
		other := newTestReturn(t, ReturnTypeCustomer)
		addTestItem(t, other, false)
		require.NoError(t, other.Approve())
		assert.Equal(t, "INVALID_STATE", domainCode(t, other.Reject("x")))
	})

	t.Run("reason required", func(t *testing.T) {
		other := newTestReturn(t, ReturnTypeCustomer)
		assert.Equal(t, "INVALID_REASON", domainCode(t, other.Reject("")))
	})
}

func TestReturnCancel(t *testing.T) {
	t.Run("requested can be cancelled", func(t *testing.T) {
		ret := newTestReturn(t, ReturnTypeCustomer)
		require.NoError(t, ret.Cancel("filed in error"))
		assert.Equal(t, ReturnStatusCancelled, ret.Status)
		assert.False(t, ret.Status.IsOpen())
	})

	t.Run("approved can be cancelled", func(t *testing.T) {
		ret := newTestReturn(t, ReturnTypeCustomer)
		addTestItem(t, ret, false)
		require.NoError(t, ret.Approve())
		require.NoError(t, ret.Cancel("customer kept the item"))
	})

	t.Run("received cannot be cancelled", func(t *testing.T) {
		ret := newTestReturn(t, ReturnTypeCustomer)
		addTestItem(t, ret, false)
		require.NoError(t, ret.Approve())
		require.NoError(t, ret.MarkReceived())
		assert.Equal(t, "INVALID_STATE", domainCode(t, ret.Cancel("x")))
	})
}

func TestReturnApproveRequiresItems(t *testing.T) {
	ret := newTestReturn(t, ReturnTypeCustomer)
	assert.Equal(t, "NO_ITEMS", domainCode(t, ret.Approve()))
}

func TestReturnCompletedEventCarriesRestockableLinesOnly(t *testing.T) {
	ret := newTestReturn(t, ReturnTypeCustomer)
	restockable := addTestItem(t, ret, true)
	addTestItem(t, ret, false)

	require.NoError(t, ret.Approve())
	require.NoError(t, ret.MarkReceived())
	ret.ClearDomainEvents()
	require.NoError(t, ret.Complete())

	events := ret.GetDomainEvents()
	require.Len(t, events, 1)
	done, ok := events[0].(*ReturnCompletedEvent)
	require.True(t, ok)
	require.Len(t, done.RestockLines, 1)
	assert.Equal(t, restockable.ProductID, done.RestockLines[0].ProductID)
	assert.Equal(t, ReturnTypeCustomer, done.ReturnType)
}

func TestReturnStatusIsOpen(t *testing.T) {
	open := []ReturnStatus{ReturnStatusRequested, ReturnStatusApproved, ReturnStatusReceived, ReturnStatusShipped, ReturnStatusCompleted}
	for _, s := range open {
		assert.True(t, s.IsOpen(), string(s))
	}
	assert.False(t, ReturnStatusCancelled.IsOpen())
	assert.False(t, ReturnStatusRejected.IsOpen())
}
