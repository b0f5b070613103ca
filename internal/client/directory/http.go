// Package directory looks up public recovery meetings from the hosted
// directory API. Results are plain data; the meeting cache in front of this
// client is what keeps searches usable offline.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/common"
)

type meetingDoc struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Day     string  `json:"day"`
	Time    string  `json:"time"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// HTTPDirectory queries a JSON meeting-search endpoint:
// GET {base}/meetings?lat=..&lng=..&radius=..
type HTTPDirectory struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *HTTPDirectory) Search(ctx context.Context, lat, lng float64, radiusMiles int) ([]models.CachedMeeting, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(radiusMiles))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/meetings?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: directory status %d", common.ErrNetwork, resp.StatusCode)
	}

	var docs []meetingDoc
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, err
	}

	meetings := make([]models.CachedMeeting, 0, len(docs))
	for _, m := range docs {
		meetings = append(meetings, models.CachedMeeting{
			ID:      m.ID,
			Name:    m.Name,
			Day:     m.Day,
			Time:    m.Time,
			Address: m.Address,
			Lat:     m.Lat,
			Lng:     m.Lng,
		})
	}
	return meetings, nil
}
