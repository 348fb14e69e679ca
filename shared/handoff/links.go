// Package handoff builds the deep links that pass a visitor from the menu
// to the restaurant: a pre-filled chat message for orders and direct
// contact links.
package handoff

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pavitra93/menulink/shared/cart"
	"github.com/pavitra93/menulink/shared/models"
)

const chatBase = "https://wa.me/"

// Contact is one way to reach a restaurant
type Contact struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ContactLinks lists the restaurant's phone, chat and Instagram links, in
// that order, skipping the ones it has not set
func ContactLinks(r *models.Restaurant) []Contact {
	links := []Contact{}
	if v := value(r.Phone); v != "" {
		links = append(links, Contact{Kind: "phone", Label: v, URL: "tel:" + v})
	}
	if v := value(r.WhatsApp); v != "" {
		links = append(links, Contact{Kind: "whatsapp", Label: v, URL: ChatLink(v, "")})
	}
	if v := strings.TrimPrefix(value(r.Instagram), "@"); v != "" {
		links = append(links, Contact{Kind: "instagram", Label: "@" + v, URL: "https://instagram.com/" + url.PathEscape(v)})
	}
	if r.Settings != nil {
		if v := value(r.Settings.Facebook); v != "" {
			links = append(links, Contact{Kind: "facebook", Label: v, URL: v})
		}
	}
	return links
}

// ChatLink returns a chat deep link for phone with an optional pre-filled
// message. Non-digits are stripped from the number.
func ChatLink(phone, text string) string {
	link := chatBase + digits(phone)
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}

// OrderMessage renders the cart as the text of an order message
func OrderMessage(restaurantName string, snapshot cart.Snapshot, currency string) string {
	var b strings.Builder
	if restaurantName != "" {
		fmt.Fprintf(&b, "Hello %s, I would like to order:\n", restaurantName)
	} else {
		b.WriteString("Hello, I would like to order:\n")
	}
	for i, line := range snapshot.Lines {
		fmt.Fprintf(&b, "%d. %s x %d = %s%s\n", i+1, line.Name, line.Quantity, currency, line.Subtotal)
	}
	fmt.Fprintf(&b, "Total: %s%s", currency, snapshot.Total)
	return b.String()
}

// OrderLink is the chat deep link carrying the order message
func OrderLink(r *models.Restaurant, snapshot cart.Snapshot, currency string) (string, error) {
	phone := digits(value(r.WhatsApp))
	if phone == "" {
		return "", fmt.Errorf("restaurant %s has no chat number", r.Slug)
	}
	if snapshot.Empty() {
		return "", fmt.Errorf("cart is empty")
	}
	return ChatLink(phone, OrderMessage(r.Name, snapshot, currency)), nil
}

// Lines converts cart lines to event lines
func Lines(snapshot cart.Snapshot) []models.HandoffLine {
	lines := make([]models.HandoffLine, 0, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		lines = append(lines, models.HandoffLine{
			ItemID:   l.ID,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
		})
	}
	return lines
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
