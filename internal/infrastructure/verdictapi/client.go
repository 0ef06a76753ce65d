package verdictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/halalcheck/client/internal/domain"
)

const (
	// DefaultTimeout bounds every round trip to the analysis service.
	DefaultTimeout = 60 * time.Second

	analyzePath = "/api/analyze"
	chatPath    = "/api/chat"
	userAgent   = "HalalCheck-Web/1.0"

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 4 << 20
)

// Client handles communication with the remote analysis service.
// It holds no mutable state, so concurrent callers are independent.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new analysis service client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Analyze uploads a label image and returns the verdict
func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if err := domain.ValidateThreshold(req.ConfidenceThreshold); err != nil {
		return nil, err
	}

	body, contentType, err := buildMultipart(req.File)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload body: %w", err)
	}

	params := url.Values{}
	params.Set("confidence_threshold", strconv.FormatFloat(req.ConfidenceThreshold, 'f', -1, 64))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, analyzePath, params.Encode())

	var resp analysisResponse
	if err := c.post(ctx, reqURL, contentType, body, &resp); err != nil {
		return nil, err
	}

	return MapAnalysis(&resp), nil
}

// Chat asks the knowledge base a free-text question
func (c *Client) Chat(ctx context.Context, question string) (*domain.ChatResult, error) {
	payload, err := json.Marshal(chatRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to encode question: %w", err)
	}

	var resp chatResponse
	if err := c.post(ctx, c.baseURL+chatPath, "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}

	return MapChat(&resp), nil
}

// post executes one POST round trip and decodes a 2xx body into out
func (c *Client) post(ctx context.Context, reqURL, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &domain.NetworkError{Timeout: isTimeout(err), Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.TransportError{
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &domain.NetworkError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}

// buildMultipart writes the image under the "file" field
func buildMultipart(file domain.Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := file.Name
	if name == "" {
		name = "upload" + mimetype.Detect(file.Data).Extension()
	}
	ct := file.ContentType
	if ct == "" {
		ct = mimetype.Detect(file.Data).String()
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
