package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceJSON(t *testing.T) {
	var item MenuItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"taco","price":"12.346"}`), &item))
	assert.Equal(t, Price(1235), item.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"taco","price":5}`), &item))
	assert.Equal(t, "5.00", item.Price.String())

	assert.Error(t, json.Unmarshal([]byte(`{"price":-1}`), &item))
	assert.Error(t, json.Unmarshal([]byte(`{"price":"abc"}`), &item))

	data, err := json.Marshal(Price(1750))
	require.NoError(t, err)
	assert.Equal(t, "17.50", string(data))
	assert.Equal(t, Price(4500), Price(1500).Times(3))
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2025-03-12", "2025-03-12T23:30:00Z", "2025-03-12T00:00:00.000000Z", "2025-03-12 10:00:00"} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 12}, d)
	}
	_, err := ParseDate("next tuesday")
	assert.Error(t, err)
}

func TestDateArithmetic(t *testing.T) {
	d := Date{Year: 2024, Month: time.February, Day: 28}
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, 2, d.AddDays(2).DaysSince(d))
	assert.Equal(t, -2, d.DaysSince(d.AddDays(2)))
	assert.True(t, Date{}.IsZero())
}

func TestCategoryAcceptsSnakeCaseItems(t *testing.T) {
	var r Restaurant
	require.NoError(t, json.Unmarshal([]byte(`{
		"slug": "taco-place",
		"settings": {"isGrid": true, "isOrder": false},
		"categories": [{"id": "c1", "menu_items": [{"id": "taco", "price": 5}]}]
	}`), &r))

	item, ok := r.FindItem("taco")
	require.True(t, ok)
	assert.Equal(t, Price(500), item.Price)
	assert.True(t, r.GridLayout())
	assert.False(t, r.OrderingEnabled())

	_, ok = r.FindItem("burrito")
	assert.False(t, ok)
}
