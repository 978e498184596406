// Package uitest provides an in-memory storefront that implements ui.Driver
// for tests. Rendering delays are modelled in driver calls ("ticks") rather
// than wall-clock time, so tests stay deterministic.
package uitest

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/themizzi/cartverify/internal/models"
	"github.com/themizzi/cartverify/internal/ui"
)

// Product is an item the fake storefront sells
type Product struct {
	Name     string
	Category string
	Price    float64
	Colors   []string
}

// Line is a rendered cart line
type Line struct {
	Name      string
	Color     string
	Quantity  int
	UnitPrice float64
}

// Options tune how the fake storefront renders
type Options struct {
	// InitialQuantity is the quantity input value when a product page opens.
	// The live storefront starts at 1.
	InitialQuantity int
	// IncrementLag is how many driver calls pass before an increment shows
	IncrementLag int
	// CommitLag delays the cart update after "add to cart"
	CommitLag int
	// RemoveLag delays removal of a cart line after its remove control is clicked
	RemoveLag int
	// RowsLag delays cart rows after the cart view opens
	RowsLag int
	// TruncateNamesAt cuts rendered cart names longer than this, adding "…"
	TruncateNamesAt int
	// BlankRows renders rows with an empty name ahead of the real ones
	BlankRows int
}

type page int

const (
	pageHome page = iota
	pageCategory
	pageProduct
	pageCart
)

type event struct {
	at    int
	apply func()
}

// Storefront is a scriptable fake of the storefront UI
type Storefront struct {
	mu sync.Mutex

	products []Product
	opts     Options

	tick   int
	events []event

	page          page
	category      string
	product       *Product
	color         string
	quantity      int
	rowsReadyAt   int
	lines         []Line
	navigations   []string
	clicks        map[ui.Kind]int
	calls         int
	quantityValue string
	priceOverride map[string]float64
	missing       map[ui.Kind]bool
	stuckRemove   bool
	failure       error
}

// NewStorefront creates a fake storefront on its home page
func NewStorefront(products []Product, opts Options) *Storefront {
	return &Storefront{
		products:      products,
		opts:          opts,
		clicks:        make(map[ui.Kind]int),
		priceOverride: make(map[string]float64),
		missing:       make(map[ui.Kind]bool),
	}
}

// DemoProducts mirrors the Advantage Online Shopping items used by the suite
func DemoProducts() []Product {
	return []Product{
		{Name: "HP ZBook 17 G2 Mobile Workstation", Category: "laptopsImg", Price: 1799.00, Colors: []string{"GRAY", "BLACK"}},
		{Name: "HP Z8000 Bluetooth Mouse", Category: "miceImg", Price: 50.99, Colors: []string{"BLACK", "WHITE", "RED"}},
		{Name: "HP Elite x2 1011 G1 Tablet", Category: "tabletsImg", Price: 1279.00, Colors: []string{"BLACK"}},
	}
}

// SeedCart replaces the cart contents, e.g. leftovers from a previous run
func (s *Storefront) SeedCart(lines ...Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append([]Line(nil), lines...)
}

// Lines returns a snapshot of the cart contents
func (s *Storefront) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

// Clicks returns how many clicks landed on elements of kind
func (s *Storefront) Clicks(kind ui.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks[kind]
}

// Calls returns how many driver calls were made
func (s *Storefront) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Navigations returns the URLs passed to Navigate
func (s *Storefront) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

// SetQuantityValue makes the quantity input render raw instead of a number
func (s *Storefront) SetQuantityValue(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quantityValue = raw
}

// OverridePrice makes cart lines for name bill unitPrice instead of the list price
func (s *Storefront) OverridePrice(name string, unitPrice float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priceOverride[name] = unitPrice
}

// Remove makes every element of kind disappear
func (s *Storefront) Remove(kind ui.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missing[kind] = true
}

// StickRemove makes remove clicks do nothing, like a hung UI
func (s *Storefront) StickRemove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stuckRemove = true
}

// Fail makes every subsequent driver call return err
func (s *Storefront) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// Navigate implements ui.Driver
func (s *Storefront) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advance(ctx); err != nil {
		return err
	}
	s.navigations = append(s.navigations, url)
	s.page = pageHome
	return nil
}

// Count implements ui.Driver
func (s *Storefront) Count(ctx context.Context, loc ui.Locator) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advance(ctx); err != nil {
		return 0, err
	}
	return s.count(loc), nil
}

// Visible implements ui.Driver
func (s *Storefront) Visible(ctx context.Context, loc ui.Locator) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advance(ctx); err != nil {
		return false, err
	}
	return s.visible(loc), nil
}

// Clickable implements ui.Driver
func (s *Storefront) Clickable(ctx context.Context, loc ui.Locator) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advance(ctx); err != nil {
		return false, err
	}
	return s.visible(loc), nil
}

// Text implements ui.Driver
func (s *Storefront) Text(ctx context.Context, loc ui.Locator) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advance(ctx); err != nil {
		return "", err
	}
	if s.count(loc) == 0 {
		return "", ui.ErrNotFound
	}
	return s.text(loc), nil
}

// Value implements ui.Driver
func (s *Storefront) Value(ctx context.Context, loc ui.Locator) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advance(ctx); err != nil {
		return "", err
	}
	if loc.Kind != ui.KindQuantityInput || s.count(loc) == 0 {
		return "", ui.ErrNotFound
	}
	if s.quantityValue != "" {
		return s.quantityValue, nil
	}
	return strconv.Itoa(s.quantity), nil
}

// Click implements ui.Driver
func (s *Storefront) Click(ctx context.Context, loc ui.Locator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advance(ctx); err != nil {
		return err
	}
	if !s.visible(loc) {
		return ui.ErrNotFound
	}
	s.clicks[loc.Kind]++
	s.click(loc)
	return nil
}

// PageContains implements ui.Driver
func (s *Storefront) PageContains(ctx context.Context, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advance(ctx); err != nil {
		return false, err
	}
	if text == ui.EmptyCartText {
		return s.page == pageCart && len(s.lines) == 0, nil
	}
	return false, nil
}

// advance counts a driver call and applies any rendering that became due
func (s *Storefront) advance(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failure != nil {
		return s.failure
	}
	s.calls++
	s.tick++

	pending := s.events[:0]
	var due []event
	for _, e := range s.events {
		if e.at <= s.tick {
			due = append(due, e)
		} else {
			pending = append(pending, e)
		}
	}
	s.events = pending
	for _, e := range due {
		e.apply()
	}
	return nil
}

func (s *Storefront) schedule(lag int, apply func()) {
	if lag <= 0 {
		apply()
		return
	}
	s.events = append(s.events, event{at: s.tick + lag, apply: apply})
}

func (s *Storefront) rowsRendered() bool {
	return s.page == pageCart && s.tick >= s.rowsReadyAt
}

func (s *Storefront) count(loc ui.Locator) int {
	if s.missing[loc.Kind] {
		return 0
	}

	switch loc.Kind {
	case ui.KindHomeLink, ui.KindCartIcon, ui.KindCartBadge:
		return 1
	case ui.KindProductsLandmark:
		return boolCount(s.page == pageHome)
	case ui.KindCategory:
		return boolCount(s.page == pageHome && s.hasCategory(loc.Arg))
	case ui.KindProductLink:
		return boolCount(s.page == pageCategory && s.findProduct(s.category, loc.Arg) != nil)
	case ui.KindColorSelector:
		return boolCount(s.page == pageProduct && s.productColor(loc.Arg) != "")
	case ui.KindQuantityInput, ui.KindIncrement, ui.KindSaveToCart:
		return boolCount(s.page == pageProduct)
	case ui.KindCartContainer:
		return boolCount(s.page == pageCart && len(s.lines) > 0)
	case ui.KindCartTotal:
		return boolCount(s.page == pageCart && len(s.lines) > 0)
	case ui.KindRemoveButton:
		if s.page != pageCart {
			return 0
		}
		return len(s.lines)
	case ui.KindCartRow:
		if !s.rowsRendered() || len(s.lines) == 0 {
			return 0
		}
		return s.opts.BlankRows + len(s.lines)
	case ui.KindRowName:
		return boolCount(s.rowIndexValid(loc.Row))
	case ui.KindRowQuantity, ui.KindRowColor, ui.KindRowPrice:
		_, ok := s.row(loc.Row)
		return boolCount(ok)
	}
	return 0
}

func (s *Storefront) visible(loc ui.Locator) bool {
	if s.count(loc) == 0 {
		return false
	}
	if loc.Kind == ui.KindCartBadge {
		return len(s.lines) > 0
	}
	return true
}

func (s *Storefront) text(loc ui.Locator) string {
	switch loc.Kind {
	case ui.KindCartBadge:
		if len(s.lines) == 0 {
			return ""
		}
		total := 0
		for _, l := range s.lines {
			total += l.Quantity
		}
		return strconv.Itoa(total)
	case ui.KindCartTotal:
		total := 0.0
		for _, l := range s.lines {
			total += l.UnitPrice * float64(l.Quantity)
		}
		return models.FormatUSD(total)
	case ui.KindRowName:
		if l, ok := s.row(loc.Row); ok {
			return s.renderName(l.Name)
		}
		return ""
	case ui.KindRowQuantity:
		l, _ := s.row(loc.Row)
		return "QTY: " + strconv.Itoa(l.Quantity)
	case ui.KindRowColor:
		l, _ := s.row(loc.Row)
		return l.Color
	case ui.KindRowPrice:
		l, _ := s.row(loc.Row)
		return models.FormatUSD(l.UnitPrice * float64(l.Quantity))
	}
	return loc.Arg
}

func (s *Storefront) click(loc ui.Locator) {
	switch loc.Kind {
	case ui.KindHomeLink:
		s.page = pageHome
	case ui.KindCategory:
		s.page = pageCategory
		s.category = loc.Arg
	case ui.KindProductLink:
		s.page = pageProduct
		s.product = s.findProduct(s.category, loc.Arg)
		s.color = ""
		if len(s.product.Colors) > 0 {
			s.color = s.product.Colors[0]
		}
		s.quantity = s.opts.InitialQuantity
	case ui.KindColorSelector:
		s.color = s.productColor(loc.Arg)
	case ui.KindIncrement:
		s.schedule(s.opts.IncrementLag, func() { s.quantity++ })
	case ui.KindSaveToCart:
		p, color, qty := s.product, s.color, s.quantity
		s.schedule(s.opts.CommitLag, func() { s.addLine(p, color, qty) })
	case ui.KindCartIcon:
		s.page = pageCart
		s.rowsReadyAt = s.tick + s.opts.RowsLag
	case ui.KindRemoveButton:
		if s.stuckRemove {
			return
		}
		s.schedule(s.opts.RemoveLag, func() {
			if len(s.lines) > 0 {
				s.lines = s.lines[1:]
			}
		})
	}
}

func (s *Storefront) addLine(p *Product, color string, qty int) {
	price := p.Price
	if override, ok := s.priceOverride[p.Name]; ok {
		price = override
	}
	for i := range s.lines {
		if s.lines[i].Name == p.Name && s.lines[i].Color == color {
			s.lines[i].Quantity += qty
			return
		}
	}
	s.lines = append(s.lines, Line{Name: p.Name, Color: color, Quantity: qty, UnitPrice: price})
}

// row maps a 1-based rendered row to its cart line; blank rows have none
func (s *Storefront) row(n int) (Line, bool) {
	if !s.rowIndexValid(n) {
		return Line{}, false
	}
	i := n - 1 - s.opts.BlankRows
	if i < 0 {
		return Line{}, false
	}
	return s.lines[i], true
}

func (s *Storefront) rowIndexValid(n int) bool {
	return s.rowsRendered() && n >= 1 && n <= s.opts.BlankRows+len(s.lines)
}

func (s *Storefront) renderName(name string) string {
	limit := s.opts.TruncateNamesAt
	if limit > 0 && len([]rune(name)) > limit {
		return string([]rune(name)[:limit]) + "…"
	}
	return name
}

func (s *Storefront) hasCategory(key string) bool {
	for _, p := range s.products {
		if p.Category == key {
			return true
		}
	}
	return false
}

func (s *Storefront) findProduct(category, name string) *Product {
	for i := range s.products {
		if s.products[i].Category == category && s.products[i].Name == name {
			return &s.products[i]
		}
	}
	return nil
}

func (s *Storefront) productColor(label string) string {
	if s.product == nil {
		return ""
	}
	for _, c := range s.product.Colors {
		if strings.EqualFold(c, label) {
			return c
		}
	}
	return ""
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ErrBrowserGone is a convenient non-transient failure for Fail
var ErrBrowserGone = errors.New("browser connection closed")

var _ ui.Driver = (*Storefront)(nil)
