// Package estimator talks to the remote R model runner over HTTP.
package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"maiveui/domain/dataset"
	"maiveui/domain/params"
	"maiveui/domain/results"
	"maiveui/internal/errors"
)

// Client runs models against the estimator service
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an estimator client; timeout bounds a single model run
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// runRequest is the wire payload: both fields are JSON-encoded strings
type runRequest struct {
	FileData   string `json:"file_data"`
	Parameters string `json:"parameters"`
}

type runResponse struct {
	Data  *results.ModelResults `json:"data"`
	Error string                `json:"error"`
}

// RunModel submits the prepared rows and parameters and decodes the results.
// Failures map to typed estimator error codes so callers can distinguish a
// user cancel from a timeout from a model rejection.
func (c *Client) RunModel(ctx context.Context, rows []dataset.NormalizedRow, parameters params.ModelParameters) (*results.ModelResults, error) {
	fileData, err := json.Marshal(rows)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode dataset")
	}
	paramData, err := json.Marshal(parameters)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode parameters")
	}

	body, err := json.Marshal(runRequest{
		FileData:   string(fileData),
		Parameters: string(paramData),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode run request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run-model", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build run request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, errors.EstimatorUnreachable(err)
	}

	var decoded runResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, errors.EstimatorRejected(fmt.Sprintf("estimator returned an unreadable response (status %d)", resp.StatusCode))
	}
	if decoded.Error != "" {
		return nil, errors.EstimatorRejected(decoded.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.EstimatorRejected(fmt.Sprintf("estimator returned status %d", resp.StatusCode))
	}
	if decoded.Data == nil {
		return nil, errors.EstimatorRejected("estimator returned no results")
	}
	return decoded.Data, nil
}

// Ping checks that the estimator service is reachable
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return errors.Wrap(err, "failed to build ping request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	resp.Body.Close()
	return nil
}

func classifyTransportError(ctx context.Context, err error) error {
	switch {
	case stderrors.Is(ctx.Err(), context.Canceled), stderrors.Is(err, context.Canceled):
		return errors.EstimatorAborted(err)
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded), stderrors.Is(err, context.DeadlineExceeded):
		return errors.EstimatorTimeout(err)
	default:
		return errors.EstimatorUnreachable(err)
	}
}
