package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/cart"
	"github.com/pavitra93/menulink/shared/entitlement"
	"github.com/pavitra93/menulink/shared/handoff"
	"github.com/pavitra93/menulink/shared/middleware"
	"github.com/pavitra93/menulink/shared/models"
	"github.com/pavitra93/menulink/shared/resolve"
	"github.com/pavitra93/menulink/shared/utils"
	"github.com/pavitra93/menulink/shared/validation"
)

const (
	reasonSuperseded      = "superseded"
	reasonMenuNotLoaded   = "menu_not_loaded"
	reasonOrderingOff     = "ordering_disabled"
	reasonRequestCanceled = "request_canceled"
)

type menuView struct {
	Restaurant      *models.Restaurant `json:"restaurant"`
	Layout          string             `json:"layout"`
	OrderingEnabled bool               `json:"ordering_enabled"`
	Contacts        []handoff.Contact  `json:"contacts"`
	Cart            *cart.Snapshot     `json:"cart,omitempty"`
}

// handleMenu navigates the visitor's menu view to a slug and answers with
// whatever state the lookup ends in
func handleMenu(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := g.visitors.get(middleware.VisitorID(c))
		slug := c.Param("slug")

		st, err := v.menu.Navigate(v.ctx, slug).Wait(c.Request.Context())
		if !lookupFinished(c, err) {
			return
		}

		logrus.WithFields(logrus.Fields{
			"slug":    slug,
			"visitor": v.id,
			"status":  st.Status,
		}).Info("Menu resolved")

		if !servable(c, st.Slug, st.Status, st.Message) {
			return
		}

		restaurant := st.Payload
		view := menuView{
			Restaurant:      restaurant,
			Layout:          "list",
			OrderingEnabled: restaurant.OrderingEnabled(),
			Contacts:        handoff.ContactLinks(restaurant),
		}
		if restaurant.GridLayout() {
			view.Layout = "grid"
		}
		if view.OrderingEnabled {
			if p, err := g.visitors.cart(c.Request.Context(), v, slug); err == nil {
				snapshot := p.Cart().Snapshot()
				view.Cart = &snapshot
			}
		}
		utils.OKResponse(c, "Restaurant loaded", view)
	}
}

// handleMenuState reports what the visitor's menu view currently shows
// without issuing a lookup
func handleMenuState(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := g.visitors.get(middleware.VisitorID(c))
		st := v.menu.State()
		verdict := entitlement.PublicPage(st.Status)
		utils.OKResponse(c, "Current view", gin.H{
			"slug":     st.Slug,
			"status":   st.Status,
			"message":  st.Message,
			"servable": verdict.Servable,
			"reason":   verdict.Reason,
		})
	}
}

// handleDocument navigates the visitor's document view to a slug
func handleDocument(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := g.visitors.get(middleware.VisitorID(c))
		slug := c.Param("slug")

		st, err := v.doc.Navigate(v.ctx, slug).Wait(c.Request.Context())
		if !lookupFinished(c, err) {
			return
		}

		logrus.WithFields(logrus.Fields{
			"slug":    slug,
			"visitor": v.id,
			"status":  st.Status,
		}).Info("Document resolved")

		if !servable(c, st.Slug, st.Status, st.Message) {
			return
		}
		utils.OKResponse(c, "PDF loaded", gin.H{
			"name":       st.Payload.DisplayName(),
			"slug":       st.Payload.Slug,
			"url":        st.Payload.URL,
			"viewer_url": st.Payload.ViewerURL,
		})
	}
}

func lookupFinished(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, resolve.ErrSuperseded):
		utils.ReasonResponse(c, http.StatusConflict, reasonSuperseded, "A newer page was requested", nil)
	default:
		utils.ReasonResponse(c, http.StatusServiceUnavailable, reasonRequestCanceled, "Request canceled", nil)
	}
	return false
}

func servable(c *gin.Context, slug string, status resolve.Status, message string) bool {
	verdict := entitlement.PublicPage(status)
	if verdict.Servable {
		return true
	}
	utils.ReasonResponse(c, verdict.StatusCode, verdict.Reason, message, gin.H{
		"slug":   slug,
		"status": status,
	})
	return false
}

// readyRestaurant returns the restaurant the visitor's menu view shows for
// slug. Cart operations are only allowed against a loaded menu.
func readyRestaurant(c *gin.Context, v *visitor, slug string) (*models.Restaurant, bool) {
	st := v.menu.State()
	if st.Status != resolve.StatusReady || st.Slug != slug || st.Payload == nil {
		utils.ReasonResponse(c, http.StatusConflict, reasonMenuNotLoaded, "Open the menu before ordering", gin.H{"slug": slug})
		return nil, false
	}
	if !st.Payload.OrderingEnabled() {
		utils.ReasonResponse(c, http.StatusForbidden, reasonOrderingOff, "This restaurant does not take orders online", nil)
		return nil, false
	}
	return st.Payload, true
}

func openCart(g *Gateway, c *gin.Context, v *visitor, slug string) (*cart.Persisted, bool) {
	p, err := g.visitors.cart(c.Request.Context(), v, slug)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to open cart")
		return nil, false
	}
	return p, true
}

func applyCart(c *gin.Context, p *cart.Persisted, fn func(*cart.Cart)) cart.Snapshot {
	snapshot, err := p.Apply(c.Request.Context(), fn)
	if err != nil {
		logrus.WithError(err).WithField("slug", snapshot.Slug).Warn("Failed to persist cart")
	}
	return snapshot
}

// loadedMenu returns the restaurant the visitor's menu view shows for slug,
// or nil when another page or nothing is loaded
func loadedMenu(v *visitor, slug string) *models.Restaurant {
	st := v.menu.State()
	if st.Status != resolve.StatusReady || st.Slug != slug {
		return nil
	}
	return st.Payload
}

func handleGetCart(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := g.visitors.get(middleware.VisitorID(c))
		slug := c.Param("slug")
		p, ok := openCart(g, c, v, slug)
		if !ok {
			return
		}
		if restaurant := loadedMenu(v, slug); restaurant != nil {
			snapshot := applyCart(c, p, func(ct *cart.Cart) {
				ct.Refresh(cart.MenuLookup(restaurant))
			})
			utils.OKResponse(c, "Cart retrieved", snapshot)
			return
		}
		utils.OKResponse(c, "Cart retrieved", p.Cart().Snapshot())
	}
}

func quantityError(qty, lowest int) validation.Errors {
	var errs validation.Errors
	if qty < lowest || qty > cart.MaxQuantity {
		errs.Add("quantity", fmt.Sprintf("Quantity must be between %d and %d", lowest, cart.MaxQuantity))
	}
	return errs
}

type addItemRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity *int   `json:"quantity"`
}

func handleAddCartItem(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
			return
		}

		v := g.visitors.get(middleware.VisitorID(c))
		slug := c.Param("slug")
		restaurant, ok := readyRestaurant(c, v, slug)
		if !ok {
			return
		}
		item, found := restaurant.FindItem(req.ItemID)
		if !found {
			utils.NotFoundResponse(c, "Menu item not found")
			return
		}

		qty := 1
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		if errs := quantityError(qty, 1); errs.Any() {
			utils.ValidationErrorResponse(c, "Invalid quantity", errs.Fields())
			return
		}

		p, ok := openCart(g, c, v, slug)
		if !ok {
			return
		}
		var added bool
		snapshot := applyCart(c, p, func(ct *cart.Cart) {
			ct.Refresh(cart.MenuLookup(restaurant))
			added = ct.AddItemWithQuantity(cart.ItemFrom(*item), qty)
		})

		message := "Item added to cart"
		if !added {
			message = "Item already in cart"
		}
		utils.OKResponse(c, message, snapshot)
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func handleUpdateCartItem(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
			return
		}

		if errs := quantityError(*req.Quantity, 0); errs.Any() {
			utils.ValidationErrorResponse(c, "Invalid quantity", errs.Fields())
			return
		}

		v := g.visitors.get(middleware.VisitorID(c))
		slug := c.Param("slug")
		restaurant, ok := readyRestaurant(c, v, slug)
		if !ok {
			return
		}
		p, ok := openCart(g, c, v, slug)
		if !ok {
			return
		}
		snapshot := applyCart(c, p, func(ct *cart.Cart) {
			ct.Refresh(cart.MenuLookup(restaurant))
			ct.UpdateQuantity(c.Param("item_id"), *req.Quantity)
		})
		utils.OKResponse(c, "Cart updated", snapshot)
	}
}

func handleClearCart(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := g.visitors.get(middleware.VisitorID(c))
		p, ok := openCart(g, c, v, c.Param("slug"))
		if !ok {
			return
		}
		snapshot := applyCart(c, p, func(ct *cart.Cart) { ct.Clear() })
		utils.OKResponse(c, "Cart cleared", snapshot)
	}
}

// handleCheckout hands the cart off to the restaurant as a pre-filled chat
// message and empties it
func handleCheckout(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := g.visitors.get(middleware.VisitorID(c))
		slug := c.Param("slug")
		restaurant, ok := readyRestaurant(c, v, slug)
		if !ok {
			return
		}
		p, ok := openCart(g, c, v, slug)
		if !ok {
			return
		}

		var (
			snapshot cart.Snapshot
			errs     validation.Errors
			link     string
			event    models.HandoffEvent
		)
		_, err := p.Drain(c.Request.Context(), func(ct *cart.Cart) bool {
			ct.Refresh(cart.MenuLookup(restaurant))
			snapshot = ct.Snapshot()
			if snapshot.Empty() {
				errs.Add("cart", "Your cart is empty")
			}
			if restaurant.WhatsApp == nil || *restaurant.WhatsApp == "" {
				errs.Add("restaurant", "This restaurant has no WhatsApp number")
			}
			if errs.Any() {
				return false
			}

			var linkErr error
			if link, linkErr = handoff.OrderLink(restaurant, snapshot, g.cfg.CurrencySymbol); linkErr != nil {
				errs.Add("order", linkErr.Error())
				return false
			}
			event = handoff.NewOrderEvent(restaurant, v.id, snapshot, link)
			if err := g.publisher.Publish(event); err != nil {
				logrus.WithError(err).WithField("slug", slug).Warn("Failed to queue order handoff event")
			}
			return true
		})
		if err != nil {
			logrus.WithError(err).WithField("slug", slug).Warn("Failed to persist cart")
		}
		if errs.Any() {
			utils.ValidationErrorResponse(c, "Cannot place order", errs.Fields())
			return
		}

		logrus.WithFields(logrus.Fields{
			"slug":     slug,
			"visitor":  v.id,
			"event_id": event.ID,
			"items":    snapshot.TotalCount,
		}).Info("Order handed off")

		utils.OKResponse(c, "Order ready to send", gin.H{
			"link":     link,
			"order":    snapshot,
			"event_id": event.ID,
		})
	}
}

// handleContact returns one contact link and records the handoff
func handleContact(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := g.visitors.get(middleware.VisitorID(c))
		slug := c.Param("slug")
		st := v.menu.State()
		if st.Status != resolve.StatusReady || st.Slug != slug || st.Payload == nil {
			utils.ReasonResponse(c, http.StatusConflict, reasonMenuNotLoaded, "Open the menu first", gin.H{"slug": slug})
			return
		}

		kind := c.Param("kind")
		for _, contact := range handoff.ContactLinks(st.Payload) {
			if contact.Kind != kind {
				continue
			}
			if err := g.publisher.Publish(handoff.NewContactEvent(st.Payload, v.id, contact)); err != nil {
				logrus.WithError(err).Warn("Failed to queue contact handoff event")
			}
			utils.OKResponse(c, "Contact link", contact)
			return
		}
		utils.NotFoundResponse(c, "Contact not available")
	}
}
