package variant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/store"
)

// maxResponseBytes bounds the size of a remote variant list.
const maxResponseBytes = 4 << 20

// remoteVariant is one element of the JSON array served by a variant endpoint.
type remoteVariant struct {
	Name   string `json:"name"`
	Markup string `json:"markup"`
}

// HTTP returns a FetchFunc that GETs a JSON array of {name, markup} from url.
// A nil client uses http.DefaultClient.
func HTTP(client *http.Client, url string, kind model.Kind) store.FetchFunc {
	if client == nil {
		client = http.DefaultClient
	}

	return func(ctx context.Context) ([]model.Variant, error) {
		if _, err := dirName(kind); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %ss: %w", kind, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("failed to fetch %ss: %s returned %s", kind, url, resp.Status)
		}

		var remote []remoteVariant
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&remote); err != nil {
			return nil, fmt.Errorf("failed to decode %ss: %w", kind, err)
		}

		variants := make([]model.Variant, 0, len(remote))
		for i, r := range remote {
			variants, err = appendVariant(variants, kind, r.Name, r.Markup, fmt.Sprintf("%s[%d]", url, i))
			if err != nil {
				return nil, fmt.Errorf("%s %d: %w", kind, i, err)
			}
		}
		return variants, nil
	}
}
