// Package client talks to the external puzzle service that serves figures,
// checks submitted solutions and carves or solves generated piece sets.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/monitoring"
	"github.com/piwi3910/SomaCube/internal/yass"
)

// ErrServer marks a non-2xx answer or an error body from the service.
var ErrServer = errors.New("server error")

// Client calls the puzzle service rooted at BaseURL.
type Client struct {
	baseURL string
	http    HTTPClient
}

// New returns a client for baseURL. A nil hc uses http.DefaultClient.
func New(baseURL string, hc HTTPClient) *Client {
	if hc == nil {
		hc = NewStandardClient(nil)
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ShapeInfo describes one figure offered by the service.
type ShapeInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	File string `json:"file"`
}

// CheckResult is the checker's verdict on a submitted grid.
type CheckResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ListShapes returns the figures the service can serve.
func (c *Client) ListShapes(ctx context.Context) ([]ShapeInfo, error) {
	var shapes []ShapeInfo
	if err := c.getJSON(ctx, "/api/shapes", &shapes); err != nil {
		return nil, fmt.Errorf("listing shapes: %w", err)
	}
	return shapes, nil
}

// LoadShape fetches and decodes the figure with the given id.
func (c *Client) LoadShape(ctx context.Context, shapeID string) (*model.GridModel, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/soma/"+url.PathEscape(shapeID)+".soma", "", nil)
	if err != nil {
		return nil, fmt.Errorf("loading shape %s: %w", shapeID, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("loading shape %s: %w", shapeID, err)
	}
	g, err := yass.ReadPuzzle(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("loading shape %s: %w", shapeID, err)
	}
	return g, nil
}

// CheckSolution submits grid text for validation. A 400 answer that carries
// a verdict is returned as that verdict rather than as an error.
func (c *Client) CheckSolution(ctx context.Context, gridState, shapeID string) (CheckResult, error) {
	payload, err := json.Marshal(map[string]string{"grid_state": gridState, "shape_id": shapeID})
	if err != nil {
		return CheckResult{}, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/check-solution", "application/json", bytes.NewReader(payload))
	if err != nil {
		return CheckResult{}, fmt.Errorf("checking solution: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return CheckResult{}, fmt.Errorf("checking solution: %w", err)
	}
	var result CheckResult
	decodeErr := json.Unmarshal(body, &result)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if decodeErr != nil {
			return CheckResult{}, fmt.Errorf("checking solution: decoding response: %w", decodeErr)
		}
		return result, nil
	case resp.StatusCode == http.StatusBadRequest && decodeErr == nil && result.Message != "":
		return result, nil
	}
	return CheckResult{}, fmt.Errorf("checking solution: %w", statusError(resp.StatusCode, body))
}

// SolutionCount returns how many distinct solutions have been found for
// the shape. A non-2xx answer counts as zero.
func (c *Client) SolutionCount(ctx context.Context, shapeID string) (int, error) {
	var solutions []json.RawMessage
	err := c.getJSON(ctx, "/api/solutions/"+url.PathEscape(shapeID), &solutions)
	if errors.Is(err, ErrServer) {
		monitoring.Logf("solution count for %s: %v", shapeID, err)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counting solutions: %w", err)
	}
	return len(solutions), nil
}

// TotalSolutions returns the number of solutions the shape has in total.
// A non-2xx answer counts as zero.
func (c *Client) TotalSolutions(ctx context.Context, shapeID string) (int, error) {
	var body struct {
		Total flexInt `json:"total_solutions"`
	}
	err := c.getJSON(ctx, "/api/total-solutions/"+url.PathEscape(shapeID), &body)
	if errors.Is(err, ErrServer) {
		monitoring.Logf("total solutions for %s: %v", shapeID, err)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("total solutions: %w", err)
	}
	return int(body.Total), nil
}

// GenerateShapes asks the service to carve an X×Y×Z box following rules.
// The answer maps piece size to the carved shapes of that size.
func (c *Client) GenerateShapes(ctx context.Context, rules string, dims model.Dimensions) (map[int][][]model.Vec3, error) {
	raw, err := c.postRules(ctx, "/api/generateShapes", rules, dims)
	if err != nil {
		return nil, fmt.Errorf("generating shapes: %w", err)
	}
	out := make(map[int][][]model.Vec3, len(raw))
	for key, val := range raw {
		size, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("generating shapes: bad size key %q", key)
		}
		var shapes [][]model.Vec3
		if err := json.Unmarshal(val, &shapes); err != nil {
			return nil, fmt.Errorf("generating shapes: size %d: %w", size, err)
		}
		out[size] = shapes
	}
	return out, nil
}

// SolveGenerated asks the service to solve the carved set and returns the
// solution as grid text.
func (c *Client) SolveGenerated(ctx context.Context, rules string, dims model.Dimensions) (string, error) {
	raw, err := c.postRules(ctx, "/api/solveGenerated", rules, dims)
	if err != nil {
		return "", fmt.Errorf("solving generated: %w", err)
	}
	var solution string
	if err := json.Unmarshal(raw["solution"], &solution); err != nil || solution == "" {
		return "", fmt.Errorf("solving generated: %w: response has no solution", ErrServer)
	}
	return solution, nil
}

// postRules sends the rules file and box size as a multipart form and
// returns the top-level JSON object of the answer.
func (c *Client) postRules(ctx context.Context, path, rules string, dims model.Dimensions) (map[string]json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("rules", "rules.txt")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(fw, rules); err != nil {
		return nil, err
	}
	for name, v := range map[string]int{"X": dims.Width, "Y": dims.Height, "Z": dims.Depth} {
		if err := w.WriteField(name, strconv.Itoa(v)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, path, w.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if jsonErr := json.Unmarshal(body, &raw); jsonErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, statusError(resp.StatusCode, body)
		}
		return nil, fmt.Errorf("decoding response: %w", jsonErr)
	}
	if msg, ok := raw["error"]; ok {
		return nil, fmt.Errorf("%w: %s", ErrServer, errorText(msg, raw["details"]))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	monitoring.Debugf("%s %s", method, req.URL)
	return c.http.Do(req)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return statusError(resp.StatusCode, body)
}

func statusError(code int, body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return fmt.Errorf("%w: %s (status %d)", ErrServer, e.Error, code)
	}
	return fmt.Errorf("%w: status %d", ErrServer, code)
}

func errorText(msg, details json.RawMessage) string {
	var s string
	if json.Unmarshal(msg, &s) != nil {
		s = string(msg)
	}
	if len(details) > 0 && string(details) != "null" {
		s += ": " + string(details)
	}
	return s
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("total_solutions %s is not an integer", data)
	}
	*f = flexInt(n)
	return nil
}
