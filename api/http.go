package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// doJSON issues one JSON request and decodes the response into out (when
// out is non-nil). Non-2xx responses are decoded into an *APIError; a
// bearer token is attached only when one is supplied.
func doJSON(ctx context.Context, hc *http.Client, method, url, bearerToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "[doJSON] failed to encode request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.Wrap(err, "[doJSON] failed to build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "[doJSON] request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "[doJSON] failed to decode response body")
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(resp.Body)
	if err == nil && len(data) > 0 {
		// Best effort; an undecodable payload still yields the status code.
		_ = json.Unmarshal(data, apiErr)
	}
	return apiErr
}
