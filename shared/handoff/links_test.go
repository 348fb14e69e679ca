package handoff

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavitra93/menulink/shared/cart"
	"github.com/pavitra93/menulink/shared/models"
)

func strPtr(s string) *string {
	return &s
}

func tacoPlace() *models.Restaurant {
	return &models.Restaurant{
		ID:        "r1",
		Slug:      "taco-place",
		Name:      "Taco Place",
		Phone:     strPtr("+91 98765 43210"),
		WhatsApp:  strPtr("+91 98765-43210"),
		Instagram: strPtr("@tacoplace"),
	}
}

func filledCart() cart.Snapshot {
	c := cart.New("taco-place")
	c.AddItemWithQuantity(cart.Item{ID: "i1", Name: "Taco", Price: models.PriceFromFloat(5)}, 3)
	c.AddItem(cart.Item{ID: "i2", Name: "Horchata", Price: models.PriceFromFloat(2.5)})
	return c.Snapshot()
}

func TestOrderMessage(t *testing.T) {
	msg := OrderMessage("Taco Place", filledCart(), "₹")
	assert.Equal(t, "Hello Taco Place, I would like to order:\n"+
		"1. Taco x 3 = ₹15.00\n"+
		"2. Horchata x 1 = ₹2.50\n"+
		"Total: ₹17.50", msg)
}

func TestOrderLink(t *testing.T) {
	link, err := OrderLink(tacoPlace(), filledCart(), "₹")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://wa.me/919876543210?text="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Contains(t, parsed.Query().Get("text"), "Total: ₹17.50")
}

func TestOrderLinkRequiresNumberAndLines(t *testing.T) {
	r := tacoPlace()
	_, err := OrderLink(r, cart.New("taco-place").Snapshot(), "₹")
	assert.Error(t, err)

	r.WhatsApp = nil
	_, err = OrderLink(r, filledCart(), "₹")
	assert.Error(t, err)
}

func TestContactLinks(t *testing.T) {
	links := ContactLinks(tacoPlace())
	require.Len(t, links, 3)
	assert.Equal(t, "tel:+91 98765 43210", links[0].URL)
	assert.Equal(t, "https://wa.me/919876543210", links[1].URL)
	assert.Equal(t, "https://instagram.com/tacoplace", links[2].URL)
	assert.Equal(t, "@tacoplace", links[2].Label)

	assert.Empty(t, ContactLinks(&models.Restaurant{Slug: "bare"}))
}

func TestNewOrderEvent(t *testing.T) {
	snapshot := filledCart()
	event := NewOrderEvent(tacoPlace(), "visitor-1", snapshot, "https://wa.me/1")
	assert.Equal(t, models.HandoffOrder, event.Kind)
	assert.Equal(t, 4, event.ItemCount)
	assert.Equal(t, models.PriceFromFloat(17.5), event.Total)
	require.Len(t, event.Lines, 2)
	assert.Equal(t, "i1", event.Lines[0].ItemID)
	assert.Equal(t, 3, event.Lines[0].Quantity)
}
