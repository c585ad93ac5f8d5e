// Package inference talks to the external inference worker service that
// runs the face detector and embedder models. It implements the pipeline's
// InferenceWorker interface over HTTP, keeping the core free of any model
// runtime coupling.
package inference

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/kozaktomas/face-indexer/internal/geometry"
)

const defaultWorkerURL = "http://localhost:8500"

// Client computes detector and embedder outputs using the inference worker.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new inference worker client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultWorkerURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// tensorResponse is the worker's reply for both endpoints: a flat float
// tensor.
type tensorResponse struct {
	Output []float32 `json:"output"`
}

// postTensor sends a binary payload to the given endpoint and decodes the
// flat float tensor from the JSON response.
func (c *Client) postTensor(ctx context.Context, endpoint string, body []byte, headers map[string]string) ([]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("worker error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var tensor tensorResponse
	if err := json.Unmarshal(respBody, &tensor); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(tensor.Output) == 0 {
		return nil, errors.New("empty tensor returned")
	}

	return tensor.Output, nil
}

// DetectFaces runs the detector over a raw RGBA buffer. The worker
// letterboxes the image to the model canvas and normalizes the input; the
// response is the flat [25200, 16] output tensor.
func (c *Client) DetectFaces(ctx context.Context, pixels []byte, dims geometry.Dimensions) ([]float32, error) {
	headers := map[string]string{
		"X-Image-Width":  strconv.Itoa(dims.Width),
		"X-Image-Height": strconv.Itoa(dims.Height),
	}
	return c.postTensor(ctx, "/v1/detect", pixels, headers)
}

// ComputeFaceEmbeddings embeds count aligned face crops. The crops travel
// as little-endian float32 bytes; the response is a flat [count, 192]
// tensor.
func (c *Client) ComputeFaceEmbeddings(ctx context.Context, crops []float32, count int) ([]float32, error) {
	body := make([]byte, len(crops)*4)
	for i, v := range crops {
		binary.LittleEndian.PutUint32(body[i*4:], math.Float32bits(v))
	}
	headers := map[string]string{
		"X-Face-Count": strconv.Itoa(count),
	}
	return c.postTensor(ctx, "/v1/embed", body, headers)
}
