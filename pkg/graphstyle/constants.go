package graphstyle

import (
	"errors"
	"fmt"
	"strings"
)

// Category is an entity kind drawn by the ledger graph renderer.
type Category string

const (
	Wallet      Category = "WALLET"
	Transaction Category = "TRANSACTION"
	Ledger      Category = "LEDGER"
	Payment     Category = "PAYMENT"
	Link        Category = "LINK"
	Particle    Category = "PARTICLE"
)

var ErrUnknownCategory = errors.New("unknown graph category")

// categories keeps declaration order for listings and JSON output.
var categories = []Category{Wallet, Transaction, Ledger, Payment, Link, Particle}

// graphColors maps each category to a theme reference or an RGBA literal.
var graphColors = map[Category]string{
	Wallet:      "primary.main",
	Transaction: "secondary.main",
	Ledger:      "success.main",
	Payment:     "warning.main",
	Link:        "rgba(255, 255, 255, 0.2)",
	Particle:    "rgba(255, 215, 0, 0.8)",
}

// nodeSizes holds node radii in pixels. Links and particles are not nodes.
var nodeSizes = map[Category]int{
	Wallet:      8,
	Transaction: 5,
	Ledger:      12,
	Payment:     6,
}

// IsValid checks if the Category is one of the predefined categories
func (c Category) IsValid() bool {
	_, ok := graphColors[c]
	return ok
}

// IsNode reports whether the category is drawn as a sized node.
func (c Category) IsNode() bool {
	_, ok := nodeSizes[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a category name, ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Categories returns all categories in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
