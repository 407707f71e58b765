package models_test

import (
	"encoding/json"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartMergeOverwritesQuantity(t *testing.T) {
	cart := &models.Cart{}
	cart.Merge([]models.CartItem{{ProductID: "p1", Quantity: 3}})
	cart.Merge([]models.CartItem{{ProductID: "p1", Quantity: 5}})

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Quantity("p1"))
}

func TestCartMergeIsIdempotent(t *testing.T) {
	items := []models.CartItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}

	once := &models.Cart{Items: models.CartItems{{ProductID: "p0", Quantity: 4}}}
	once.Merge(items)

	twice := &models.Cart{Items: models.CartItems{{ProductID: "p0", Quantity: 4}}}
	twice.Merge(items)
	twice.Merge(items)

	assert.Equal(t, once.Items, twice.Items)
}

func TestCartMergeKeepsOrderAndAppends(t *testing.T) {
	cart := &models.Cart{Items: models.CartItems{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 1}}}
	cart.Merge([]models.CartItem{{ProductID: "c", Quantity: 2}, {ProductID: "a", Quantity: 7}, {ProductID: "c", Quantity: 9}})

	assert.Equal(t, models.CartItems{
		{ProductID: "a", Quantity: 7},
		{ProductID: "b", Quantity: 1},
		{ProductID: "c", Quantity: 9},
	}, cart.Items)
}

func TestCartRemove(t *testing.T) {
	original := models.CartItems{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 2}}
	cart := &models.Cart{Items: original}

	assert.False(t, cart.Remove("missing"))
	assert.Len(t, cart.Items, 2)

	assert.True(t, cart.Remove("a"))
	assert.Equal(t, models.CartItems{{ProductID: "b", Quantity: 2}}, cart.Items)
	assert.Equal(t, "a", original[0].ProductID, "removal must not mutate the previous slice")
}

func TestCartSetQuantity(t *testing.T) {
	cart := &models.Cart{Items: models.CartItems{{ProductID: "a", Quantity: 1}}}

	assert.True(t, cart.SetQuantity("a", 4))
	assert.Equal(t, 4, cart.Quantity("a"))
	assert.False(t, cart.SetQuantity("b", 4))
}

func TestCartItemsDecodeLegacyShapes(t *testing.T) {
	var items models.CartItems
	err := json.Unmarshal([]byte(`["p1", null, {"productId":"p2","productQty":3}, {"productId":"p3","quantity":2}, {"productId":"p4"}]`), &items)
	require.NoError(t, err)

	assert.Equal(t, models.CartItems{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 3},
		{ProductID: "p3", Quantity: 2},
		{ProductID: "p4", Quantity: 1},
	}, items)
}

func TestCartItemDecodesStrictly(t *testing.T) {
	var item models.CartItem
	require.NoError(t, json.Unmarshal([]byte(`{"productId":"p1"}`), &item))
	assert.Equal(t, models.CartItem{ProductID: "p1"}, item, "a missing quantity stays zero for validation to reject")

	require.NoError(t, json.Unmarshal([]byte(`{"productId":"p1","productQty":3}`), &item))
	assert.Zero(t, item.Quantity)

	assert.Error(t, json.Unmarshal([]byte(`"p1"`), &item))
}

func TestCartItemsValueAndScan(t *testing.T) {
	items := models.CartItems{{ProductID: "p1", Quantity: 2}}
	v, err := items.Value()
	require.NoError(t, err)
	assert.Equal(t, `[{"productId":"p1","quantity":2}]`, v)

	var nilItems models.CartItems
	v, err = nilItems.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var scanned models.CartItems
	require.NoError(t, scanned.Scan([]byte(`["legacy"]`)))
	assert.Equal(t, models.CartItems{{ProductID: "legacy", Quantity: 1}}, scanned)
	assert.Error(t, scanned.Scan(42))
}
