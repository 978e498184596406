package handlers

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store errors
var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrUnknownColor    = errors.New("color not offered for product")
)

// Product is an item the fixture storefront sells
type Product struct {
	ID       int
	Name     string
	Category string
	Price    float64
	Colors   []string
}

// HasColor reports whether the product is offered in color, ignoring case
func (p Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if strings.EqualFold(c, color) {
			return true
		}
	}
	return false
}

// CartLine is one product and color combination in a cart
type CartLine struct {
	ID        string
	ProductID int
	Name      string
	Color     string
	Quantity  int
	UnitPrice float64
}

// Amount is the line total
func (l CartLine) Amount() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Store keeps carts in memory, keyed by cart session ID
type Store struct {
	mu    sync.Mutex
	carts map[string][]CartLine
}

// NewStore creates an empty cart store
func NewStore() *Store {
	return &Store{carts: make(map[string][]CartLine)}
}

// Lines returns a copy of the lines in the cart
func (s *Store) Lines(cartID string) []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CartLine(nil), s.carts[cartID]...)
}

// Add puts quantity units of product in color into the cart. Adding a product
// and color already in the cart raises that line's quantity. An empty color
// picks the product's first color.
func (s *Store) Add(cartID string, p Product, color string, quantity int) (CartLine, error) {
	if quantity < 1 {
		return CartLine{}, ErrInvalidQuantity
	}

	color = strings.ToUpper(strings.TrimSpace(color))
	if color == "" && len(p.Colors) > 0 {
		color = strings.ToUpper(p.Colors[0])
	}
	if color != "" && !p.HasColor(color) {
		return CartLine{}, fmt.Errorf("%w: %s in %s", ErrUnknownColor, color, p.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[cartID]
	for i := range lines {
		if lines[i].ProductID == p.ID && lines[i].Color == color {
			lines[i].Quantity += quantity
			return lines[i], nil
		}
	}

	line := CartLine{
		ID:        uuid.New().String(),
		ProductID: p.ID,
		Name:      p.Name,
		Color:     color,
		Quantity:  quantity,
		UnitPrice: p.Price,
	}
	s.carts[cartID] = append(lines, line)
	return line, nil
}

// Remove deletes a line from the cart. It reports whether the line existed.
func (s *Store) Remove(cartID, lineID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[cartID]
	for i, l := range lines {
		if l.ID == lineID {
			s.carts[cartID] = append(lines[:i:i], lines[i+1:]...)
			return true
		}
	}
	return false
}

// Totals sums quantity and amount over lines
func Totals(lines []CartLine) (quantity int, amount float64) {
	for _, l := range lines {
		quantity += l.Quantity
		amount += l.Amount()
	}
	return quantity, amount
}
