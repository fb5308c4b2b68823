// Package macro implements template substitution for outbound notification
// URLs. Two token families exist: ${OPENRTB_*} and ${AUCTION_*}; which get
// registered depends on the namespace the replacer is constructed with.
// Tokens outside the selected namespace are left verbatim in the output.
package macro

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Namespace selects which token families a Replacer registers.
type Namespace string

const (
	NamespaceOpenRTB Namespace = "openrtb"
	NamespaceAuction Namespace = "auction"
	NamespaceBoth    Namespace = "both"
)

// Context holds the values macros resolve against. Nil pointer fields and
// empty strings render as "".
type Context struct {
	ID       string
	BidID    string
	ItemID   string
	SeatID   string
	Price    *float64
	Currency string
	MBR      *float64
	Loss     *int
	MinToWin *float64

	// openrtb namespace only
	MediaID string
	ItemQty *int64

	// auction namespace only
	AdID       string
	Multiplier *float64
	ImpTS      *int64
}

// merge overlays the set fields of other onto c, last write wins. Unset
// fields in other leave c untouched.
func (c *Context) merge(other Context) {
	if other.ID != "" {
		c.ID = other.ID
	}
	if other.BidID != "" {
		c.BidID = other.BidID
	}
	if other.ItemID != "" {
		c.ItemID = other.ItemID
	}
	if other.SeatID != "" {
		c.SeatID = other.SeatID
	}
	if other.Price != nil {
		c.Price = other.Price
	}
	if other.Currency != "" {
		c.Currency = other.Currency
	}
	if other.MBR != nil {
		c.MBR = other.MBR
	}
	if other.Loss != nil {
		c.Loss = other.Loss
	}
	if other.MinToWin != nil {
		c.MinToWin = other.MinToWin
	}
	if other.MediaID != "" {
		c.MediaID = other.MediaID
	}
	if other.ItemQty != nil {
		c.ItemQty = other.ItemQty
	}
	if other.AdID != "" {
		c.AdID = other.AdID
	}
	if other.Multiplier != nil {
		c.Multiplier = other.Multiplier
	}
	if other.ImpTS != nil {
		c.ImpTS = other.ImpTS
	}
}

// Extractor resolves one macro token against the current context.
type Extractor func(ctx Context) (string, error)

// Replacer substitutes registered macro tokens in URL templates.
type Replacer struct {
	macros  map[string]Extractor
	context Context
}

// New builds a Replacer with the given initial context and namespace.
func New(initial Context, ns Namespace) *Replacer {
	r := &Replacer{
		macros:  make(map[string]Extractor),
		context: initial,
	}
	r.register(ns)
	return r
}

func (r *Replacer) register(ns Namespace) {
	common := map[string]Extractor{
		"ID":         func(ctx Context) (string, error) { return ctx.ID, nil },
		"BID_ID":     func(ctx Context) (string, error) { return ctx.BidID, nil },
		"SEAT_ID":    func(ctx Context) (string, error) { return ctx.SeatID, nil },
		"PRICE":      func(ctx Context) (string, error) { return formatFloat(ctx.Price), nil },
		"CURRENCY":   func(ctx Context) (string, error) { return ctx.Currency, nil },
		"MBR":        func(ctx Context) (string, error) { return formatFloat(ctx.MBR), nil },
		"LOSS":       func(ctx Context) (string, error) { return formatInt(ctx.Loss), nil },
		"MIN_TO_WIN": func(ctx Context) (string, error) { return formatFloat(ctx.MinToWin), nil },
	}

	if ns == NamespaceBoth || ns == NamespaceOpenRTB {
		for name, fn := range common {
			r.macros["${OPENRTB_"+name+"}"] = fn
		}
		r.macros["${OPENRTB_ITEM_ID}"] = func(ctx Context) (string, error) { return ctx.ItemID, nil }
		r.macros["${OPENRTB_MEDIA_ID}"] = func(ctx Context) (string, error) { return ctx.MediaID, nil }
		r.macros["${OPENRTB_ITEM_QTY}"] = func(ctx Context) (string, error) { return formatInt64(ctx.ItemQty), nil }
	}
	if ns == NamespaceBoth || ns == NamespaceAuction {
		for name, fn := range common {
			r.macros["${AUCTION_"+name+"}"] = fn
		}
		r.macros["${AUCTION_IMP_ID}"] = func(ctx Context) (string, error) { return ctx.ItemID, nil }
		r.macros["${AUCTION_AD_ID}"] = func(ctx Context) (string, error) { return ctx.AdID, nil }
		r.macros["${AUCTION_MULTIPLIER}"] = func(ctx Context) (string, error) { return formatFloat(ctx.Multiplier), nil }
		r.macros["${AUCTION_IMP_TS}"] = func(ctx Context) (string, error) { return formatInt64(ctx.ImpTS), nil }
	}
}

// UpdateContext merges new values into the current context. Fields left unset
// keep their previous value.
func (r *Replacer) UpdateContext(partial Context) {
	r.context.merge(partial)
}

// Replace substitutes every registered macro appearing in the template.
// Unregistered tokens stay in the output verbatim. An error is returned only
// when an extractor fails, which the built-in extractors never do.
func (r *Replacer) Replace(template string) (string, error) {
	result := template
	for token, extract := range r.macros {
		if !strings.Contains(result, token) {
			continue
		}
		value, err := extract(r.context)
		if err != nil {
			return "", fmt.Errorf("replacing macro %s: %w", token, err)
		}
		result = strings.ReplaceAll(result, token, value)
	}
	return result, nil
}

// SupportedMacros lists the token names registered for this namespace.
func (r *Replacer) SupportedMacros() []string {
	names := make([]string, 0, len(r.macros))
	for token := range r.macros {
		names = append(names, token)
	}
	sort.Strings(names)
	return names
}

// Context returns a copy of the current context values.
func (r *Replacer) Context() Context {
	return r.context
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// Float64 returns a pointer to v, for populating optional Context fields.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v, for populating optional Context fields.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v, for populating optional Context fields.
func Int64(v int64) *int64 { return &v }
