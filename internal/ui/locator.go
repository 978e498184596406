package ui

import (
	"fmt"
	"strings"
)

// Kind names a logical region of the storefront UI
type Kind int

// UI regions the verifier interacts with
const (
	KindHomeLink Kind = iota + 1
	KindProductsLandmark
	KindCategory
	KindProductLink
	KindColorSelector
	KindQuantityInput
	KindIncrement
	KindSaveToCart
	KindCartIcon
	KindCartContainer
	KindCartRow
	KindRowName
	KindRowQuantity
	KindRowColor
	KindRowPrice
	KindRemoveButton
	KindCartBadge
	KindCartTotal
)

var kindNames = map[Kind]string{
	KindHomeLink:         "home link",
	KindProductsLandmark: "our products section",
	KindCategory:         "category entry",
	KindProductLink:      "product link",
	KindColorSelector:    "color selector",
	KindQuantityInput:    "quantity input",
	KindIncrement:        "quantity increment",
	KindSaveToCart:       "add to cart button",
	KindCartIcon:         "cart icon",
	KindCartContainer:    "shopping cart container",
	KindCartRow:          "cart row",
	KindRowName:          "cart row name",
	KindRowQuantity:      "cart row quantity",
	KindRowColor:         "cart row color",
	KindRowPrice:         "cart row price",
	KindRemoveButton:     "remove button",
	KindCartBadge:        "cart quantity badge",
	KindCartTotal:        "cart total",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// EmptyCartText is the marker the storefront renders for an empty cart
const EmptyCartText = "Your shopping cart is empty"

// Locator is a named reference to a UI region. Kind, Arg and Row identify the
// region logically; XPath is how browser engines find it.
type Locator struct {
	Kind  Kind
	Arg   string
	Row   int
	XPath string
}

func (l Locator) String() string {
	s := l.Kind.String()
	if l.Arg != "" {
		s += " " + l.Arg
	}
	if l.Row > 0 {
		s += fmt.Sprintf(" #%d", l.Row)
	}
	return s
}

const cartRowsXPath = "//tr[@id='product']"

// HomeLink is the HOME navigation link
func HomeLink() Locator {
	return Locator{Kind: KindHomeLink, XPath: "//a[@translate='HOME']"}
}

// ProductsLandmark is the home page section that signals the page is ready
func ProductsLandmark() Locator {
	return Locator{Kind: KindProductsLandmark, XPath: "//*[@id='our_products']"}
}

// Category is the home page entry point for a category key such as "miceImg"
func Category(key string) Locator {
	return Locator{Kind: KindCategory, Arg: key, XPath: fmt.Sprintf("//*[@id=%s]", xpathLiteral(key))}
}

// ProductLink is a product link matched by its exact visible text
func ProductLink(name string) Locator {
	return Locator{Kind: KindProductLink, Arg: name, XPath: fmt.Sprintf("//a[text()=%s]", xpathLiteral(name))}
}

// ColorSelector is the color swatch whose title matches label, ignoring case
func ColorSelector(label string) Locator {
	upper := strings.ToUpper(strings.TrimSpace(label))
	return Locator{
		Kind:  KindColorSelector,
		Arg:   upper,
		XPath: fmt.Sprintf("//span[translate(@title,'abcdefghijklmnopqrstuvwxyz','ABCDEFGHIJKLMNOPQRSTUVWXYZ')=%s]", xpathLiteral(upper)),
	}
}

// QuantityInput is the product page quantity field
func QuantityInput() Locator {
	return Locator{Kind: KindQuantityInput, XPath: "//input[@name='quantity']"}
}

// Increment is the "+" control next to the quantity field
func Increment() Locator {
	return Locator{Kind: KindIncrement, XPath: "//div[@class='plus' and @increment-value-attr='+']"}
}

// SaveToCart is the "add to cart" button on the product page
func SaveToCart() Locator {
	return Locator{Kind: KindSaveToCart, XPath: "//*[@name='save_to_cart']"}
}

// CartIcon opens the cart view
func CartIcon() Locator {
	return Locator{Kind: KindCartIcon, XPath: "//*[@id='menuCart']"}
}

// CartContainer is present only when the cart has items
func CartContainer() Locator {
	return Locator{Kind: KindCartContainer, XPath: "//*[@id='shoppingCartContainer']"}
}

// CartRows matches every rendered cart line
func CartRows() Locator {
	return Locator{Kind: KindCartRow, XPath: cartRowsXPath}
}

// RowName is the name heading of the n-th (1-based) cart row
func RowName(row int) Locator {
	return rowChild(KindRowName, row, "//h3")
}

// RowQuantity is the "QTY:" label of the n-th cart row
func RowQuantity(row int) Locator {
	return rowChild(KindRowQuantity, row, "//label[contains(text(),'QTY')]")
}

// RowColor is the color value of the n-th cart row
func RowColor(row int) Locator {
	return rowChild(KindRowColor, row, "//label[contains(text(),'Color')]/span")
}

// RowPrice is the line amount of the n-th cart row
func RowPrice(row int) Locator {
	return rowChild(KindRowPrice, row, "//p[contains(@class,'price')]")
}

// RemoveButton is a cart line delete control
func RemoveButton() Locator {
	return Locator{Kind: KindRemoveButton, XPath: "//a[@class='remove']"}
}

// CartBadge is the cart-wide item counter next to the cart icon
func CartBadge() Locator {
	return Locator{Kind: KindCartBadge, XPath: "//span[@ng-show='cart.productsInCart.length > 0']"}
}

// CartTotal is the cart-wide total amount
func CartTotal() Locator {
	return Locator{Kind: KindCartTotal, XPath: "//span[contains(@class,'cart-total')]"}
}

func rowChild(kind Kind, row int, rel string) Locator {
	return Locator{Kind: kind, Row: row, XPath: fmt.Sprintf("(%s)[%d]%s", cartRowsXPath, row, rel)}
}

// xpathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so strings holding both quote kinds are built with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}
