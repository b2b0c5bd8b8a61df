// Package netbox adapts the go-netbox API client to the DCIM and IPAM
// collections the reconciler reads and writes.
package netbox

import (
	"net/http"
	"strings"
	"time"

	nb "github.com/netbox-community/go-netbox/v4"
	log "github.com/sirupsen/logrus"
)

// pageSize is the limit requested per list page.
const pageSize int32 = 100

// Client - NetBox API client using token authentication.
type Client struct {
	baseURL string
	api     *nb.APIClient
}

// NewClient - Create a client. A zero timeout means no timeout.
func NewClient(baseURL string, token string, timeout time.Duration) *Client {
	root := sanitizeBaseURL(baseURL)
	api := nb.NewAPIClientFor(root, token)
	api.GetConfig().HTTPClient = &http.Client{Timeout: timeout}
	return &Client{
		baseURL: root,
		api:     api,
	}
}

// BaseURL - The NetBox root the client talks to, without "/api".
func (c *Client) BaseURL() string {
	return c.baseURL
}

// listAll fetches every page of a list operation using limit and offset.
// The next links NetBox returns are not followed, so paging stays on the configured host.
func listAll[T any](operation string, fetch func(limit int32, offset int32) ([]T, int32, *http.Response, error)) ([]T, error) {
	var results []T
	var offset int32
	for {
		log.WithFields(log.Fields{
			"operation": operation,
			"offset":    offset,
		}).Trace("NetBox list")

		items, count, response, err := fetch(pageSize, offset)
		if err != nil {
			return nil, wrapError(err, response, http.MethodGet, operation)
		}
		results = append(results, items...)
		offset += int32(len(items))
		if len(items) == 0 || offset >= count {
			return results, nil
		}
	}
}

// logWrite traces a write before it is sent.
func logWrite(method string, operation string, fields log.Fields) {
	fields["method"] = method
	fields["operation"] = operation
	log.WithFields(fields).Trace("NetBox request")
}

// sanitizeBaseURL normalizes the configured URL to the NetBox root, with or without "/api" given.
// The library adds "/api" to every path.
func sanitizeBaseURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	trimmed = strings.TrimSuffix(trimmed, "/api")
	return strings.TrimRight(trimmed, "/")
}
