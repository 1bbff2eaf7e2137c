package propagation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SendTimestampExtension carries the producer-side send time in Unix
// milliseconds, used by consumers to compute lag.
const SendTimestampExtension = "sendtimestamp"

// ConsumerLagAttribute is the span attribute recording how long a message
// waited between send and receive.
const ConsumerLagAttribute = "messaging.consumer_lag_ms"

// now is stubbed in tests.
var now = time.Now

// Envelope is a CloudEvents 1.0 event in JSON format with the trace
// propagation extension attributes spelled out. Extension attribute names
// are lowercase per the CloudEvents attribute naming rules.
type Envelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time,omitempty"`
	DataContentType string          `json:"datacontenttype,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`

	Traceparent   string `json:"traceparent,omitempty"`
	Tracestate    string `json:"tracestate,omitempty"`
	SendTimestamp string `json:"sendtimestamp,omitempty"`
}

// NewEnvelope creates an envelope with a fresh event id and the current
// time.
func NewEnvelope(source, eventType string, data []byte) *Envelope {
	return &Envelope{
		SpecVersion:     "1.0",
		ID:              uuid.NewString(),
		Source:          source,
		Type:            eventType,
		Time:            now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// Get implements Carrier over the envelope's extension attributes.
func (e *Envelope) Get(key string) string {
	switch key {
	case TraceparentHeader:
		return e.Traceparent
	case TracestateHeader:
		return e.Tracestate
	case SendTimestampExtension:
		return e.SendTimestamp
	default:
		return ""
	}
}

// Set implements Carrier over the envelope's extension attributes.
func (e *Envelope) Set(key, value string) {
	switch key {
	case TraceparentHeader:
		e.Traceparent = value
	case TracestateHeader:
		e.Tracestate = value
	case SendTimestampExtension:
		e.SendTimestamp = value
	}
}

// Validate checks the required CloudEvents context attributes.
func (e *Envelope) Validate() error {
	if e.SpecVersion != "1.0" {
		return fmt.Errorf("cloudevent: unsupported specversion %q", e.SpecVersion)
	}
	if e.ID == "" {
		return fmt.Errorf("cloudevent: missing id")
	}
	if e.Source == "" {
		return fmt.Errorf("cloudevent: missing source")
	}
	if e.Type == "" {
		return fmt.Errorf("cloudevent: missing type")
	}
	return nil
}

// InjectEnvelope writes the active trace context and the send timestamp
// into the envelope. Producers call this immediately before publishing.
func (p *Propagator) InjectEnvelope(ctx context.Context, e *Envelope) {
	p.Inject(ctx, e)
	e.SendTimestamp = formatMilli(now())
}

func formatMilli(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMilli(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// ExtractEnvelope reads the trace context out of a consumed envelope and
// computes consumer lag from the sendtimestamp extension. The returned
// lag is zero when the extension is absent or malformed, and ok reports
// whether a lag could be computed. Clock skew can make the raw difference
// negative; it is clamped to zero.
func (p *Propagator) ExtractEnvelope(ctx context.Context, e *Envelope) (out context.Context, lag time.Duration, ok bool) {
	out = p.Extract(ctx, e)

	if e.SendTimestamp == "" {
		return out, 0, false
	}
	sentMilli, err := parseMilli(e.SendTimestamp)
	if err != nil {
		p.logger.Warn("ignoring malformed sendtimestamp extension",
			"event_id", e.ID, "event_type", e.Type, "sendtimestamp", e.SendTimestamp)
		return out, 0, false
	}

	return out, clampLag(now().UnixMilli() - sentMilli), true
}
