package kraken

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// PriceData is a flattened ticker record with numbers parsed from Kraken's
// string fields. Timestamp, LastPrice and Volume are always set; the rest
// are nil when the upstream ticker omitted them.
type PriceData struct {
	Pair      string    `json:"pair"`             // WebSocket pair name, e.g. "XBT/USD"
	Source    Source    `json:"source,omitempty"` // transport that produced the record
	Timestamp time.Time `json:"timestamp"`
	LastPrice float64   `json:"lastPrice"`
	Volume    float64   `json:"volume"` // last 24 hours, in lots

	Open   *float64 `json:"open,omitempty"`
	High   *float64 `json:"high,omitempty"`
	Low    *float64 `json:"low,omitempty"`
	Close  *float64 `json:"close,omitempty"`
	VWAP   *float64 `json:"vwap,omitempty"`
	Trades *int64   `json:"trades,omitempty"`
	Bid    *float64 `json:"bid,omitempty"`
	Ask    *float64 `json:"ask,omitempty"`
}

// Normalize flattens the ticker into a PriceData stamped with ts.
// The last trade ("c") and volume ("v") fields are required; rolling
// values are taken from their last-24-hours slot.
func (t TickerInfo) Normalize(pair string, ts time.Time) (PriceData, error) {
	if t.LastTradeClosed == nil {
		return PriceData{}, fmt.Errorf("%w: c (last trade closed)", ErrMissingField)
	}
	if t.Volume == nil {
		return PriceData{}, fmt.Errorf("%w: v (volume)", ErrMissingField)
	}

	last, err := parseNumber("c", t.LastTradeClosed.Price)
	if err != nil {
		return PriceData{}, err
	}
	volume, err := parseNumber("v", t.Volume.Last24Hours)
	if err != nil {
		return PriceData{}, err
	}

	p := PriceData{
		Pair:      pair,
		Timestamp: ts,
		LastPrice: last,
		Volume:    volume,
		Close:     &last,
	}

	if t.Open != nil {
		if p.Open, err = parseOptional("o", t.Open.Today); err != nil {
			return PriceData{}, err
		}
	}
	if t.High != nil {
		if p.High, err = parseOptional("h", t.High.Last24Hours); err != nil {
			return PriceData{}, err
		}
	}
	if t.Low != nil {
		if p.Low, err = parseOptional("l", t.Low.Last24Hours); err != nil {
			return PriceData{}, err
		}
	}
	if t.VWAP != nil {
		if p.VWAP, err = parseOptional("p", t.VWAP.Last24Hours); err != nil {
			return PriceData{}, err
		}
	}
	if t.Bid != nil {
		if p.Bid, err = parseOptional("b", t.Bid.Price); err != nil {
			return PriceData{}, err
		}
	}
	if t.Ask != nil {
		if p.Ask, err = parseOptional("a", t.Ask.Price); err != nil {
			return PriceData{}, err
		}
	}
	if t.NumberOfTrades != nil {
		trades := t.NumberOfTrades.Last24Hours
		p.Trades = &trades
	}

	return p, nil
}

// Validate checks the required fields and that every number is finite.
func (p PriceData) Validate() error {
	if p.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidPrice)
	}
	if !isFinite(p.LastPrice) || p.LastPrice < 0 {
		return fmt.Errorf("%w: lastPrice %v", ErrInvalidPrice, p.LastPrice)
	}
	if !isFinite(p.Volume) || p.Volume < 0 {
		return fmt.Errorf("%w: volume %v", ErrInvalidPrice, p.Volume)
	}

	optional := []struct {
		name  string
		value *float64
	}{
		{"open", p.Open}, {"high", p.High}, {"low", p.Low}, {"close", p.Close},
		{"vwap", p.VWAP}, {"bid", p.Bid}, {"ask", p.Ask},
	}
	for _, f := range optional {
		if f.value != nil && !isFinite(*f.value) {
			return fmt.Errorf("%w: %s %v", ErrInvalidPrice, f.name, *f.value)
		}
	}
	if p.Trades != nil && *p.Trades < 0 {
		return fmt.Errorf("%w: trades %d", ErrInvalidPrice, *p.Trades)
	}
	return nil
}

// Spread returns ask minus bid when both sides are known.
func (p PriceData) Spread() (float64, bool) {
	if p.Bid == nil || p.Ask == nil {
		return 0, false
	}
	return *p.Ask - *p.Bid, true
}

func parseNumber(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformedField, field, s)
	}
	return v, nil
}

func parseOptional(field, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := parseNumber(field, s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
