package upload

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mintly-cc/mintly/wallet/metadata"
)

const (
	DefaultAPIURL     = "http://127.0.0.1:5001"
	DefaultGatewayURL = "https://ipfs.io"

	userAgentHeader = "User-Agent"
	clientUserAgent = "mintly uploader"

	documentFileName = "metadata.json"
)

var ErrUpload = errors.New("upload failed")

type (
	// Client uploads files to IPFS node (or pinning service) using the Kubo RPC API
	// and returns gateway URIs of the uploaded content.
	Client struct {
		api     url.URL
		gateway string
		token   string
		hc      *http.Client
		log     *slog.Logger
	}

	Option func(*Client)

	addResponse struct {
		Name string `json:"Name"`
		Hash string `json:"Hash"`
		Size string `json:"Size"`
	}

	errorResponse struct {
		Message string `json:"Message"`
		Code    int    `json:"Code"`
	}
)

// WithBearerToken sets token sent in the Authorization header (pinning services require it).
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

func NewClient(apiURL, gatewayURL string, log *slog.Logger, opts ...Option) (*Client, error) {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if gatewayURL == "" {
		gatewayURL = DefaultGatewayURL
	}
	if !strings.Contains(apiURL, "://") {
		apiURL = "http://" + apiURL
	}
	api, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parsing upload API URL: %w", err)
	}
	if _, err := url.Parse(gatewayURL); err != nil {
		return nil, fmt.Errorf("parsing gateway URL: %w", err)
	}

	c := &Client{
		api:     *api,
		gateway: strings.TrimSuffix(gatewayURL, "/"),
		hc:      &http.Client{Timeout: 2 * time.Minute},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

/*
Upload uploads the image and then the metadata document referencing the image.
Returns URI of the metadata document. Any failure is reported as ErrUpload.
*/
func (c *Client) Upload(ctx context.Context, image *Asset, d *metadata.Descriptor, creator string) (string, error) {
	imageURI, err := c.add(ctx, image.FileName, image.ContentType, image.Data)
	if err != nil {
		return "", fmt.Errorf("%w: uploading image: %w", ErrUpload, err)
	}
	c.log.InfoContext(ctx, "image uploaded", slog.String("uri", imageURI))

	doc, err := json.Marshal(NewDocument(d, imageURI, image.ContentType, creator))
	if err != nil {
		return "", fmt.Errorf("%w: encoding metadata document: %w", ErrUpload, err)
	}
	docURI, err := c.add(ctx, documentFileName, "application/json", doc)
	if err != nil {
		return "", fmt.Errorf("%w: uploading metadata document: %w", ErrUpload, err)
	}
	c.log.InfoContext(ctx, "metadata document uploaded", slog.String("uri", docURI))
	return docURI, nil
}

func (c *Client) add(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("creating multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("writing multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	addr := c.api.JoinPath("api", "v0", "add")
	q := addr.Query()
	q.Set("pin", "true")
	q.Set("cid-version", "1")
	addr.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr.String(), body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(userAgentHeader, clientUserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rsp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return "", decodeError(rsp)
	}

	// response is a stream of JSON objects, one per added file
	var added addResponse
	scanner := bufio.NewScanner(rsp.Body)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := json.Unmarshal(line, &added); err != nil {
			return "", fmt.Errorf("decoding response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if added.Hash == "" {
		return "", errors.New("response doesn't contain content identifier")
	}
	c.log.DebugContext(ctx, "file added", slog.String("name", fileName), slog.String("cid", added.Hash), slog.String("size", added.Size))
	return c.gateway + "/ipfs/" + added.Hash, nil
}

func decodeError(rsp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(rsp.Body, 4096))
	if err != nil {
		return fmt.Errorf("status %s: reading response body: %w", rsp.Status, err)
	}
	er := &errorResponse{}
	if err := json.Unmarshal(data, er); err == nil && er.Message != "" {
		return fmt.Errorf("status %s: %s", rsp.Status, er.Message)
	}
	return fmt.Errorf("status %s: %s", rsp.Status, strings.TrimSpace(string(data)))
}
