package kraken

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Event is a WebSocket control message such as a heartbeat or a
// subscription acknowledgement.
type Event struct {
	Event        EventType     `json:"event"`
	Status       string        `json:"status,omitempty"`       // "online", "subscribed", "error", ...
	ErrorMessage string        `json:"errorMessage,omitempty"` // set when Status is "error"
	ChannelName  string        `json:"channelName,omitempty"`
	Pair         string        `json:"pair,omitempty"`
	Version      string        `json:"version,omitempty"`
	ConnectionID uint64        `json:"connectionID,omitempty"`
	ReqID        int64         `json:"reqid,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

type Subscription struct {
	Name string `json:"name"`
}

// SubscribeRequest is sent to open or close a public channel.
type SubscribeRequest struct {
	Event        EventType    `json:"event"`
	Pair         []string     `json:"pair"`
	Subscription Subscription `json:"subscription"`
	ReqID        int64        `json:"reqid,omitempty"`
}

// TickerMessage is a ticker channel frame:
// [channelID, {ticker}, "ticker", "XBT/USD"].
type TickerMessage struct {
	ChannelID   int64
	Ticker      TickerInfo
	ChannelName string
	Pair        string
}

// Message is a classified WebSocket frame. Exactly one of Event and
// Ticker is set for frames this package understands; other channel data
// only carries ChannelName.
type Message struct {
	Event       *Event
	Ticker      *TickerMessage
	ChannelName string
}

func (m *TickerMessage) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w | %w", ErrUnexpectedJSONInput, err)
	}
	if len(raw) != 4 {
		return fmt.Errorf("%w | ticker frame length %d", ErrUnexpectedJSONInput, len(raw))
	}
	if err := json.Unmarshal(raw[0], &m.ChannelID); err != nil {
		return fmt.Errorf("%w | channel id: %w", ErrUnexpectedJSONInput, err)
	}
	if err := json.Unmarshal(raw[1], &m.Ticker); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[2], &m.ChannelName); err != nil {
		return fmt.Errorf("%w | channel name: %w", ErrUnexpectedJSONInput, err)
	}
	if err := json.Unmarshal(raw[3], &m.Pair); err != nil {
		return fmt.Errorf("%w | pair: %w", ErrUnexpectedJSONInput, err)
	}
	return nil
}

// ParseMessage classifies a raw WebSocket frame.
func ParseMessage(msg []byte) (Message, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 {
		return Message{}, fmt.Errorf("%w | empty frame", ErrUnexpectedJSONInput)
	}

	switch trimmed[0] {
	case '{':
		var ev Event
		if err := json.Unmarshal(trimmed, &ev); err != nil {
			return Message{}, fmt.Errorf("%w | event: %w", ErrUnexpectedJSONInput, err)
		}
		if ev.Event == "" {
			return Message{}, fmt.Errorf("%w | object without event field", ErrUnexpectedJSONInput)
		}
		return Message{Event: &ev}, nil

	case '[':
		// Channel name sits second to last in every public channel frame.
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return Message{}, fmt.Errorf("%w | %w", ErrUnexpectedJSONInput, err)
		}
		if len(raw) < 4 {
			return Message{}, fmt.Errorf("%w | channel frame length %d", ErrUnexpectedJSONInput, len(raw))
		}
		var channel string
		if err := json.Unmarshal(raw[len(raw)-2], &channel); err != nil {
			return Message{}, fmt.Errorf("%w | channel name: %w", ErrUnexpectedJSONInput, err)
		}
		if channel != ChannelTicker {
			return Message{ChannelName: channel}, nil
		}

		var tm TickerMessage
		if err := json.Unmarshal(trimmed, &tm); err != nil {
			return Message{}, err
		}
		return Message{Ticker: &tm, ChannelName: channel}, nil

	default:
		return Message{}, fmt.Errorf("%w | unexpected frame start %q", ErrUnexpectedJSONInput, trimmed[0])
	}
}
