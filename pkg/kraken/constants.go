package kraken

import "strings"

const (
	DefaultRESTBaseURL = "https://api.kraken.com"
	DefaultWSURL       = "wss://ws.kraken.com"

	publicPrefix = "/0/public/"
)

// ChannelTicker is the public WebSocket channel carrying ticker updates.
const ChannelTicker = "ticker"

// EventType is the "event" field of WebSocket control messages.
type EventType string

const (
	EventHeartbeat          EventType = "heartbeat"
	EventSystemStatus       EventType = "systemStatus"
	EventSubscriptionStatus EventType = "subscriptionStatus"
	EventSubscribe          EventType = "subscribe"
	EventUnsubscribe        EventType = "unsubscribe"
	EventPing               EventType = "ping"
	EventPong               EventType = "pong"
	EventError              EventType = "error"
)

// Source records which transport produced a price record.
type Source string

const (
	SourceREST Source = "rest"
	SourceWS   Source = "ws"
)

// AltName converts a WebSocket pair name ("XBT/USD") into the REST
// altname form ("XBTUSD").
func AltName(wsName string) string {
	return strings.ToUpper(strings.ReplaceAll(wsName, "/", ""))
}
