package production

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomline/backend/internal/domain/order"
)

func TestNewUpdate(t *testing.T) {
	orderID := uuid.New()
	supplierID := uuid.New()

	t.Run("creates update with valid inputs", func(t *testing.T) {
		u, err := NewUpdate(orderID, order.StageKnitting, "body panels 60% done", 60,
			[]string{"orders/x/photo1.jpg"}, supplierID)
		require.NoError(t, err)

		assert.Equal(t, orderID, u.OrderID)
		assert.Equal(t, order.StageKnitting, u.Stage)
		assert.Equal(t, 60, u.CompletionPercentage)
		assert.Equal(t, supplierID, u.CreatedBy)
		assert.Nil(t, u.Corrects)
		assert.False(t, u.IsCorrection())
		assert.Zero(t, u.Sequence)
	})

	t.Run("rejects invalid stage", func(t *testing.T) {
		_, err := NewUpdate(orderID, order.Stage("dyeing"), "", 10, nil, supplierID)
		require.Error(t, err)
	})

	t.Run("rejects percentage out of range", func(t *testing.T) {
		_, err := NewUpdate(orderID, order.StageKnitting, "", -1, nil, supplierID)
		require.Error(t, err)
		_, err = NewUpdate(orderID, order.StageKnitting, "", 101, nil, supplierID)
		require.Error(t, err)
	})

	t.Run("rejects oversized message", func(t *testing.T) {
		_, err := NewUpdate(orderID, order.StageKnitting, strings.Repeat("x", 2001), 10, nil, supplierID)
		require.Error(t, err)
	})

	t.Run("rejects too many photos", func(t *testing.T) {
		photos := make([]string, 11)
		_, err := NewUpdate(orderID, order.StageKnitting, "", 10, photos, supplierID)
		require.Error(t, err)
	})

	t.Run("rejects nil order or author", func(t *testing.T) {
		_, err := NewUpdate(uuid.Nil, order.StageKnitting, "", 10, nil, supplierID)
		require.Error(t, err)
		_, err = NewUpdate(orderID, order.StageKnitting, "", 10, nil, uuid.Nil)
		require.Error(t, err)
	})
}

func TestUpdate_MarkCorrects(t *testing.T) {
	orderID := uuid.New()
	supplierID := uuid.New()

	t.Run("links correction target", func(t *testing.T) {
		u, err := NewUpdate(orderID, order.StageKnitting, "actually 45%, not 60%", 45, nil, supplierID)
		require.NoError(t, err)

		target := uuid.New()
		require.NoError(t, u.MarkCorrects(target))

		assert.True(t, u.IsCorrection())
		assert.Equal(t, target, *u.Corrects)
	})

	t.Run("cannot correct itself", func(t *testing.T) {
		u, err := NewUpdate(orderID, order.StageKnitting, "", 45, nil, supplierID)
		require.NoError(t, err)
		require.Error(t, u.MarkCorrects(u.ID))
	})

	t.Run("rejects nil target", func(t *testing.T) {
		u, err := NewUpdate(orderID, order.StageKnitting, "", 45, nil, supplierID)
		require.NoError(t, err)
		require.Error(t, u.MarkCorrects(uuid.Nil))
	})
}

func TestNewUpdatePostedEvent(t *testing.T) {
	u, err := NewUpdate(uuid.New(), order.StageLinking, "sleeves linked", 80, nil, uuid.New())
	require.NoError(t, err)
	u.Sequence = 7

	e := NewUpdatePostedEvent(u)

	assert.Equal(t, EventTypeUpdatePosted, e.EventType())
	assert.Equal(t, u.ID, e.AggregateID())
	assert.Equal(t, u.OrderID, e.OrderID)
	assert.Equal(t, order.StageLinking, e.Stage)
	assert.Equal(t, int64(7), e.Sequence)
}
