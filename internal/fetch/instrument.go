package fetch

import (
	"log/slog"

	"github.com/go-resty/resty/v2"
)

func instrumentClient(client *resty.Client) {
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		slog.DebugContext(req.Context(), "Fetching page", "method", req.Method, "url", req.URL)
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		slog.DebugContext(res.Request.Context(), "Fetched page",
			"url", res.Request.URL,
			"status", res.StatusCode(),
			"bytes", len(res.Body()),
			"duration", res.Time(),
		)
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		slog.DebugContext(req.Context(), "Page request failed", "url", req.URL, "error", err)
	})
}
