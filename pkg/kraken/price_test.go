package kraken

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

// go test -v --run TestPriceData_Validate
func TestPriceData_Validate(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	nan := math.NaN()
	negTrades := int64(-1)

	tests := []struct {
		name    string
		p       PriceData
		wantErr bool
	}{
		{"required only", PriceData{Timestamp: ts, LastPrice: 1.2, Volume: 100}, false},
		{"zero values allowed", PriceData{Timestamp: ts}, false},
		{"missing timestamp", PriceData{LastPrice: 1, Volume: 1}, true},
		{"negative price", PriceData{Timestamp: ts, LastPrice: -1, Volume: 1}, true},
		{"infinite volume", PriceData{Timestamp: ts, LastPrice: 1, Volume: math.Inf(1)}, true},
		{"NaN optional", PriceData{Timestamp: ts, LastPrice: 1, Volume: 1, High: &nan}, true},
		{"negative trades", PriceData{Timestamp: ts, LastPrice: 1, Volume: 1, Trades: &negTrades}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPrice) {
					t.Errorf("expected ErrInvalidPrice, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// go test -v --run TestPriceData_ValidateReportsFirstField
func TestPriceData_ValidateReportsFirstField(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(-1)
	p := PriceData{
		Timestamp: time.Now(),
		LastPrice: 1,
		Volume:    1,
		Open:      &nan,
		Low:       &inf,
		Ask:       &nan,
	}

	// Field order must not depend on map iteration.
	for i := 0; i < 20; i++ {
		err := p.Validate()
		if err == nil || !strings.Contains(err.Error(), "open") {
			t.Fatalf("expected open to be reported first, got %v", err)
		}
	}
}

// go test -v --run TestAltName
func TestAltName(t *testing.T) {
	if got := AltName("XBT/USD"); got != "XBTUSD" {
		t.Errorf("AltName(XBT/USD) = %s", got)
	}
	if got := AltName("xrp/eur"); got != "XRPEUR" {
		t.Errorf("AltName(xrp/eur) = %s", got)
	}
}
