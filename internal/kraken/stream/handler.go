package stream

import (
	"context"
	"time"

	"ledgerviz/internal/kraken/memorystore"
	"ledgerviz/pkg/kraken"

	"go.uber.org/zap"
)

// PriceSink receives every record that made it into the memory store.
type PriceSink interface {
	SavePrice(ctx context.Context, p kraken.PriceData) error
}

// PriceSinkFunc is a function adapter for PriceSink.
type PriceSinkFunc func(context.Context, kraken.PriceData) error

func (f PriceSinkFunc) SavePrice(ctx context.Context, p kraken.PriceData) error {
	return f(ctx, p)
}

// MakeMessageHandler returns a function that handles incoming WebSocket
// messages by normalizing ticker frames and storing them in memory and in
// the sink. The receive time stamps each record since ticker frames carry
// none of their own.
func MakeMessageHandler(logger *zap.Logger, store *memorystore.MemoryPriceStore,
	sink PriceSink) func(msg []byte) {
	return func(msg []byte) {
		received := time.Now().UTC()

		parsed, err := kraken.ParseMessage(msg)
		if err != nil {
			logger.Warn("failed to parse message", zap.Error(err), zap.ByteString("raw", msg))
			return
		}

		if parsed.Event != nil {
			handleEvent(logger, parsed.Event)
			return
		}
		if parsed.Ticker == nil {
			return // Ignore other channels
		}

		price, err := parsed.Ticker.Ticker.Normalize(parsed.Ticker.Pair, received)
		if err != nil {
			logger.Warn("failed to normalize ticker", zap.String("pair", parsed.Ticker.Pair), zap.Error(err))
			return
		}
		price.Source = kraken.SourceWS

		Store(logger, store, sink, price)
	}
}

// Store validates p and hands it to the memory store and the sink.
func Store(logger *zap.Logger, store *memorystore.MemoryPriceStore, sink PriceSink, p kraken.PriceData) {
	if err := p.Validate(); err != nil {
		logger.Warn("dropping invalid price record", zap.String("pair", p.Pair), zap.Error(err))
		return
	}

	store.Add(p)

	if sink == nil {
		return
	}
	if err := sink.SavePrice(context.Background(), p); err != nil {
		logger.Warn("failed to persist price record",
			zap.String("pair", p.Pair),
			zap.String("source", string(p.Source)),
			zap.Error(err))
	}
}

func handleEvent(logger *zap.Logger, ev *kraken.Event) {
	switch ev.Event {
	case kraken.EventHeartbeat, kraken.EventPong:
		return
	case kraken.EventSystemStatus:
		logger.Info("system status",
			zap.String("status", ev.Status),
			zap.String("version", ev.Version),
			zap.Uint64("connection_id", ev.ConnectionID))
	case kraken.EventSubscriptionStatus:
		if ev.Status == "error" {
			logger.Error("subscription failed",
				zap.String("pair", ev.Pair),
				zap.String("error", ev.ErrorMessage))
			return
		}
		logger.Info("subscription status",
			zap.String("pair", ev.Pair),
			zap.String("channel", ev.ChannelName),
			zap.String("status", ev.Status))
	case kraken.EventError:
		logger.Error("websocket error event", zap.String("error", ev.ErrorMessage))
	default:
		logger.Debug("unhandled event", zap.String("event", string(ev.Event)))
	}
}
