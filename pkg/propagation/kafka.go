package propagation

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageCarrier adapts the headers of a kafka-go message to the Carrier
// interface so trace identity rides broker hops alongside the envelope
// payload.
type MessageCarrier struct {
	msg *kafka.Message
}

// NewMessageCarrier wraps msg. The message must outlive the carrier.
func NewMessageCarrier(msg *kafka.Message) MessageCarrier {
	return MessageCarrier{msg: msg}
}

func (c MessageCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c MessageCarrier) Set(key, value string) {
	for i, h := range c.msg.Headers {
		if h.Key == key {
			c.msg.Headers[i].Value = []byte(value)
			return
		}
	}
	c.msg.Headers = append(c.msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

// InjectMessage stamps an outbound kafka message with the active trace
// context and the send timestamp.
func (p *Propagator) InjectMessage(ctx context.Context, msg *kafka.Message) {
	c := NewMessageCarrier(msg)
	p.Inject(ctx, c)
	c.Set(SendTimestampExtension, formatMilli(now()))
}

// ExtractMessage resumes the trace context carried by a consumed kafka
// message and computes consumer lag from its send timestamp header,
// falling back to the broker-assigned message time when the header is
// absent.
func (p *Propagator) ExtractMessage(ctx context.Context, msg *kafka.Message) (out context.Context, lag time.Duration, ok bool) {
	c := NewMessageCarrier(msg)
	out = p.Extract(ctx, c)

	if sent := c.Get(SendTimestampExtension); sent != "" {
		if sentMilli, err := parseMilli(sent); err == nil {
			return out, clampLag(now().UnixMilli() - sentMilli), true
		}
		p.logger.Warn("ignoring malformed sendtimestamp header",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	}
	if !msg.Time.IsZero() {
		return out, clampLag(now().UnixMilli() - msg.Time.UnixMilli()), true
	}
	return out, 0, false
}

func clampLag(milli int64) time.Duration {
	if milli < 0 {
		return 0
	}
	return time.Duration(milli) * time.Millisecond
}
