// Package handlers serves a small storefront that renders the same DOM as the
// Advantage Online Shopping pages the verifier drives. It backs the e2e tests
// and the storefront command.
package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/themizzi/cartverify/internal/models"
	"github.com/themizzi/cartverify/internal/ui"
)

// CartCookieName holds the cart session ID
const CartCookieName = "cartverify_cart"

//go:embed templates/*.html
var templateFS embed.FS

// Options tune how the storefront renders
type Options struct {
	// TruncateNamesAt shortens cart line names longer than this, as the live
	// cart does. Zero renders full names.
	TruncateNamesAt int
}

// DemoProducts is the Advantage Online Shopping subset the verifier targets
func DemoProducts() []Product {
	return []Product{
		{ID: 7, Name: "HP ZBook 17 G2 Mobile Workstation", Category: "laptopsImg", Price: 1799.00, Colors: []string{"GRAY", "BLACK"}},
		{ID: 31, Name: "HP Z8000 Bluetooth Mouse", Category: "miceImg", Price: 50.99, Colors: []string{"BLACK", "WHITE", "RED"}},
		{ID: 16, Name: "HP Elite x2 1011 G1 Tablet", Category: "tabletsImg", Price: 1279.00, Colors: []string{"BLACK"}},
		{ID: 20, Name: "HP Roar Mini Wireless Speaker", Category: "speakersImg", Price: 44.99, Colors: []string{"BLUE", "TURQUOISE"}},
	}
}

// Storefront serves the home, category, product and cart pages
type Storefront struct {
	templates *template.Template
	store     *Store
	products  map[int]Product
	opts      Options
	mux       *http.ServeMux
}

// NewStorefront creates a storefront selling products, keeping carts in store
func NewStorefront(products []Product, store *Store, opts Options) (*Storefront, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	h := &Storefront{
		templates: tmpl,
		store:     store,
		products:  make(map[int]Product, len(products)),
		opts:      opts,
		mux:       http.NewServeMux(),
	}
	for _, p := range products {
		h.products[p.ID] = p
	}

	h.mux.HandleFunc("GET /{$}", h.home)
	h.mux.HandleFunc("GET /category/{key}", h.category)
	h.mux.HandleFunc("GET /product/{id}", h.product)
	h.mux.HandleFunc("GET /cart", h.cart)
	h.mux.HandleFunc("POST /cart", h.addToCart)
	h.mux.HandleFunc("GET /cart/remove/{line}", h.removeFromCart)
	return h, nil
}

// ServeHTTP routes storefront requests
func (h *Storefront) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type pageHeader struct {
	CartCount int
}

type homePage struct {
	pageHeader
	Categories []string
}

type categoryPage struct {
	pageHeader
	Category string
	Products []Product
}

type productPage struct {
	pageHeader
	Product  Product
	Color    string
	Quantity int
}

type cartLineView struct {
	ID       string
	Name     string
	Color    string
	Quantity int
	Amount   string
}

type cartPage struct {
	pageHeader
	Lines     []cartLineView
	Total     string
	EmptyText string
}

func (h *Storefront) home(w http.ResponseWriter, r *http.Request) {
	seen := make(map[string]bool)
	var categories []string
	for _, p := range h.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)

	h.render(w, "home.html", homePage{pageHeader: h.header(h.cartID(w, r)), Categories: categories})
}

func (h *Storefront) category(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var products []Product
	for _, p := range h.products {
		if p.Category == key {
			products = append(products, p)
		}
	}
	if len(products) == 0 {
		http.NotFound(w, r)
		return
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })

	h.render(w, "category.html", categoryPage{pageHeader: h.header(h.cartID(w, r)), Category: key, Products: products})
}

func (h *Storefront) product(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	page := productPage{pageHeader: h.header(h.cartID(w, r)), Product: p, Quantity: 1}
	if len(p.Colors) > 0 {
		page.Color = p.Colors[0]
	}
	h.render(w, "product.html", page)
}

func (h *Storefront) addToCart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	p, ok := h.lookup(r.PostForm.Get("product"))
	if !ok {
		http.Error(w, "Unknown product", http.StatusBadRequest)
		return
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("quantity")))
	if err != nil {
		http.Error(w, "Invalid quantity", http.StatusBadRequest)
		return
	}

	line, err := h.store.Add(h.cartID(w, r), p, r.PostForm.Get("color"), quantity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("product", p.Name).Str("color", line.Color).Int("quantity", line.Quantity).Msg("storefront cart line updated")
	http.Redirect(w, r, "/product/"+strconv.Itoa(p.ID), http.StatusSeeOther)
}

func (h *Storefront) removeFromCart(w http.ResponseWriter, r *http.Request) {
	if !h.store.Remove(h.cartID(w, r), r.PathValue("line")) {
		log.Warn().Str("line", r.PathValue("line")).Msg("storefront remove of unknown cart line")
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Storefront) cart(w http.ResponseWriter, r *http.Request) {
	lines := h.store.Lines(h.cartID(w, r))
	count, total := Totals(lines)

	page := cartPage{
		pageHeader: pageHeader{CartCount: count},
		Total:      models.FormatUSD(total),
		EmptyText:  ui.EmptyCartText,
	}
	for _, l := range lines {
		page.Lines = append(page.Lines, cartLineView{
			ID:       l.ID,
			Name:     h.displayName(l.Name),
			Color:    l.Color,
			Quantity: l.Quantity,
			Amount:   models.FormatUSD(l.Amount()),
		})
	}
	h.render(w, "cart.html", page)
}

func (h *Storefront) header(cartID string) pageHeader {
	count, _ := Totals(h.store.Lines(cartID))
	return pageHeader{CartCount: count}
}

func (h *Storefront) lookup(rawID string) (Product, bool) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return Product{}, false
	}
	p, ok := h.products[id]
	return p, ok
}

// cartID returns the request's cart session, starting one if needed
func (h *Storefront) cartID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CartCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: CartCookieName, Value: id, Path: "/", HttpOnly: true})
	return id
}

func (h *Storefront) displayName(name string) string {
	limit := h.opts.TruncateNamesAt
	runes := []rune(name)
	if limit <= 0 || len(runes) <= limit {
		return name
	}
	return string(runes[:limit]) + "..."
}

func (h *Storefront) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("failed to render storefront page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
