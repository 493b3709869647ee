package kraken

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// KrakenResponse is the envelope returned by every Kraken REST endpoint.
type KrakenResponse struct {
	Error  []string        `json:"error"`  // empty on success
	Result json.RawMessage `json:"result"` // Delay decoding // payload varies per endpoint
}

// ServerTime is the result of /0/public/Time.
type ServerTime struct {
	UnixTime int64  `json:"unixtime"`
	RFC1123  string `json:"rfc1123"`
}

// TickerInfo mirrors the ticker object Kraken sends over REST and WebSocket.
// Every field is optional because the feed may omit any of them.
type TickerInfo struct {
	Ask             *BookLevel  `json:"a,omitempty"` // [price, whole lot volume, lot volume]
	Bid             *BookLevel  `json:"b,omitempty"` // [price, whole lot volume, lot volume]
	LastTradeClosed *LastTrade  `json:"c,omitempty"` // [price, lot volume]
	Volume          *DailyValue `json:"v,omitempty"` // [today, last 24 hours]
	VWAP            *DailyValue `json:"p,omitempty"` // [today, last 24 hours]
	NumberOfTrades  *DailyCount `json:"t,omitempty"` // [today, last 24 hours]
	Low             *DailyValue `json:"l,omitempty"` // [today, last 24 hours]
	High            *DailyValue `json:"h,omitempty"` // [today, last 24 hours]
	Open            *OpenPrice  `json:"o,omitempty"` // string on REST, pair on WebSocket
}

type BookLevel struct {
	Price          string
	WholeLotVolume string
	LotVolume      string
}

type LastTrade struct {
	Price     string
	LotVolume string
}

type DailyValue struct {
	Today       string
	Last24Hours string
}

// OpenPrice is the opening price. REST sends today's value alone, the
// WebSocket feed sends [today, last 24 hours].
type OpenPrice struct {
	Today       string
	Last24Hours string
}

type DailyCount struct {
	Today       int64
	Last24Hours int64
}

func (b *BookLevel) UnmarshalJSON(data []byte) error {
	v, err := decodeArray(data, 3)
	if err != nil {
		return err
	}
	b.Price, b.WholeLotVolume, b.LotVolume = v[0], v[1], v[2]
	return nil
}

func (b BookLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{b.Price, b.WholeLotVolume, b.LotVolume})
}

func (l *LastTrade) UnmarshalJSON(data []byte) error {
	v, err := decodeArray(data, 2)
	if err != nil {
		return err
	}
	l.Price, l.LotVolume = v[0], v[1]
	return nil
}

func (l LastTrade) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{l.Price, l.LotVolume})
}

func (d *DailyValue) UnmarshalJSON(data []byte) error {
	v, err := decodeArray(data, 2)
	if err != nil {
		return err
	}
	d.Today, d.Last24Hours = v[0], v[1]
	return nil
}

func (d DailyValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{d.Today, d.Last24Hours})
}

// UnmarshalJSON accepts either a single value or a [today, last24h] pair.
func (o *OpenPrice) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '[' {
		s, err := decodeScalar(trimmed)
		if err != nil {
			return err
		}
		o.Today, o.Last24Hours = s, ""
		return nil
	}

	v, err := decodeArray(trimmed, 2)
	if err != nil {
		return err
	}
	o.Today, o.Last24Hours = v[0], v[1]
	return nil
}

func (o OpenPrice) MarshalJSON() ([]byte, error) {
	if o.Last24Hours == "" {
		return json.Marshal(o.Today)
	}
	return json.Marshal([]string{o.Today, o.Last24Hours})
}

func (d *DailyCount) UnmarshalJSON(data []byte) error {
	v, err := decodeArray(data, 2)
	if err != nil {
		return err
	}
	today, err := strconv.ParseInt(v[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w | trade count %q", ErrUnexpectedJSONInput, v[0])
	}
	last24, err := strconv.ParseInt(v[1], 10, 64)
	if err != nil {
		return fmt.Errorf("%w | trade count %q", ErrUnexpectedJSONInput, v[1])
	}
	d.Today, d.Last24Hours = today, last24
	return nil
}

func (d DailyCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int64{d.Today, d.Last24Hours})
}

// decodeArray reads a JSON array of exactly n strings or numbers and
// returns every element in its textual form.
func decodeArray(data []byte, n int) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w | %w", ErrUnexpectedJSONInput, err)
	}
	if len(raw) != n {
		return nil, fmt.Errorf("%w | incorrect length: got %d, want %d", ErrUnexpectedJSONInput, len(raw), n)
	}

	out := make([]string, n)
	for i, elem := range raw {
		s, err := scalarString(elem)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func decodeScalar(data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return "", fmt.Errorf("%w | %w", ErrUnexpectedJSONInput, err)
	}
	return scalarString(raw)
}

func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	default:
		return "", fmt.Errorf("%w | unexpected element type %T", ErrUnexpectedJSONInput, v)
	}
}
