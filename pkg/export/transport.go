package export

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding/gzip"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"

	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"

	"bloco-hq/tracehub/pkg/config"
)

// transport ships one OTLP request to a single backend.
type transport interface {
	send(ctx context.Context, rs *tracepb.ResourceSpans) error
	close() error
}

// newTransport builds the transport for a backend configuration. The
// endpoint grammar was already validated at configuration load time.
func newTransport(cfg config.BackendConfig) (transport, error) {
	switch cfg.Transport {
	case "grpc":
		return newGRPCTransport(cfg)
	case "http":
		return newHTTPTransport(cfg)
	default:
		return nil, fmt.Errorf("backend %q: unsupported transport %q", cfg.Name, cfg.Transport)
	}
}

type grpcTransport struct {
	conn    *grpc.ClientConn
	client  coltracepb.TraceServiceClient
	headers map[string]string
}

func newGRPCTransport(cfg config.BackendConfig) (*grpcTransport, error) {
	creds := credentials.NewTLS(&tls.Config{})
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}
	conn, err := grpc.NewClient(cfg.Endpoint,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.UseCompressor(gzip.Name)),
	)
	if err != nil {
		return nil, fmt.Errorf("backend %q: dial %s: %w", cfg.Name, cfg.Endpoint, err)
	}
	return &grpcTransport{
		conn:    conn,
		client:  coltracepb.NewTraceServiceClient(conn),
		headers: cfg.Headers,
	}, nil
}

func (t *grpcTransport) send(ctx context.Context, rs *tracepb.ResourceSpans) error {
	if len(t.headers) > 0 {
		ctx = metadata.NewOutgoingContext(ctx, metadata.New(t.headers))
	}
	_, err := t.client.Export(ctx, &coltracepb.ExportTraceServiceRequest{
		ResourceSpans: []*tracepb.ResourceSpans{rs},
	})
	return err
}

func (t *grpcTransport) close() error {
	return t.conn.Close()
}

// defaultTracesPath is the OTLP/HTTP traces resource path, appended when
// the configured endpoint has no explicit path.
const defaultTracesPath = "/v1/traces"

type httpTransport struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
}

func newHTTPTransport(cfg config.BackendConfig) (*httpTransport, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("backend %q: endpoint %s: %w", cfg.Name, cfg.Endpoint, err)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = defaultTracesPath
	}
	return &httpTransport{
		endpoint: u.String(),
		headers:  cfg.Headers,
		client:   &http.Client{},
	}, nil
}

func (t *httpTransport) send(ctx context.Context, rs *tracepb.ResourceSpans) error {
	body, err := proto.Marshal(&coltracepb.ExportTraceServiceRequest{
		ResourceSpans: []*tracepb.ResourceSpans{rs},
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-protobuf")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}

func (t *httpTransport) close() error {
	t.client.CloseIdleConnections()
	return nil
}
