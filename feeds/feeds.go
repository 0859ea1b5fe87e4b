// Package feeds fetches the near-Earth object and fireball lists shown next to the orrery.
// Nothing here takes part in the orbital computation.
package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"
	"github.com/papo1011/orrery"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const fireballDateFormat = "2006-01-02 15:04:05"

// NEO is a near-Earth object of the NeoWs feed.
type NEO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Fireball is one record of the JPL fireball API.
type Fireball struct {
	Date    time.Time `json:"date"`
	Energy  float64   `json:"energy"`   // Radiated energy, 10^10 J.
	ImpactE float64   `json:"impact_e"` // Impact energy, kt.
}

// Client fetches both feeds with bounded retries.
type Client struct {
	conf    orrery.FeedsConfig
	http    *retryablehttp.Client
	logger  kitlog.Logger
	metrics *orrery.Metrics
	now     func() time.Time
}

// NewClient returns a new feed client. The logger and metrics may be nil.
func NewClient(conf orrery.FeedsConfig, logger kitlog.Logger, metrics *orrery.Metrics) *Client {
	if conf.NEOURL == "" {
		conf.NEOURL = orrery.DefaultNEOURL
	}
	if conf.FireballURL == "" {
		conf.FireballURL = orrery.DefaultFireballURL
	}
	if conf.APIKey == "" {
		conf.APIKey = "DEMO_KEY"
	}
	if conf.FireballLimit <= 0 {
		conf.FireballLimit = 20
	}
	if conf.Timeout <= 0 {
		conf.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = conf.Retries
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = conf.Timeout
	rc.Logger = nil
	return &Client{conf: conf, http: rc, logger: kitlog.With(logger, "subsys", "feeds"), metrics: metrics, now: time.Now}
}

func (c *Client) get(ctx context.Context, u string, v interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

type neoFeed struct {
	ElementCount     int              `json:"element_count"`
	NearEarthObjects map[string][]NEO `json:"near_earth_objects"`
}

// NEOs returns today's near-Earth objects, ordered by date then feed order, without duplicates.
func (c *Client) NEOs(ctx context.Context) (neos []NEO, err error) {
	defer func() {
		c.metrics.RecordFeedFetch("neo", err)
	}()
	day := c.now().UTC().Format("2006-01-02")
	q := url.Values{}
	q.Set("start_date", day)
	q.Set("end_date", day)
	q.Set("api_key", c.conf.APIKey)
	var feed neoFeed
	if err = c.get(ctx, c.conf.NEOURL+"?"+q.Encode(), &feed); err != nil {
		return nil, fmt.Errorf("neo feed: %s", err)
	}
	days := make([]string, 0, len(feed.NearEarthObjects))
	for d := range feed.NearEarthObjects {
		days = append(days, d)
	}
	sort.Strings(days)
	seen := make(map[string]bool)
	for _, d := range days {
		for _, neo := range feed.NearEarthObjects[d] {
			if seen[neo.ID] {
				continue
			}
			seen[neo.ID] = true
			neos = append(neos, neo)
		}
	}
	return neos, nil
}

type fireballFeed struct {
	Fields []string    `json:"fields"`
	Data   [][]*string `json:"data"`
}

// Fireballs returns the most recent fireballs, newest first.
func (c *Client) Fireballs(ctx context.Context) (fireballs []Fireball, err error) {
	defer func() {
		c.metrics.RecordFeedFetch("fireball", err)
	}()
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.conf.FireballLimit))
	var feed fireballFeed
	if err = c.get(ctx, c.conf.FireballURL+"?"+q.Encode(), &feed); err != nil {
		return nil, fmt.Errorf("fireball feed: %s", err)
	}
	return parseFireballs(feed)
}

func parseFireballs(feed fireballFeed) ([]Fireball, error) {
	idx := map[string]int{"date": -1, "energy": -1, "impact-e": -1}
	for i, f := range feed.Fields {
		if _, ok := idx[f]; ok {
			idx[f] = i
		}
	}
	for f, i := range idx {
		if i < 0 {
			return nil, fmt.Errorf("fireball feed: missing field %q", f)
		}
	}
	fireballs := make([]Fireball, 0, len(feed.Data))
	for row, rec := range feed.Data {
		if len(rec) < len(feed.Fields) {
			return nil, fmt.Errorf("fireball feed: row %d has %d values, want %d", row, len(rec), len(feed.Fields))
		}
		var fb Fireball
		if rec[idx["date"]] == nil {
			continue
		}
		dt, err := time.Parse(fireballDateFormat, *rec[idx["date"]])
		if err != nil {
			return nil, fmt.Errorf("fireball feed: row %d: %s", row, err)
		}
		fb.Date = dt.UTC()
		if fb.Energy, err = optFloat(rec[idx["energy"]]); err != nil {
			return nil, fmt.Errorf("fireball feed: row %d energy: %s", row, err)
		}
		if fb.ImpactE, err = optFloat(rec[idx["impact-e"]]); err != nil {
			return nil, fmt.Errorf("fireball feed: row %d impact-e: %s", row, err)
		}
		fireballs = append(fireballs, fb)
	}
	sort.SliceStable(fireballs, func(i, j int) bool { return fireballs[i].Date.After(fireballs[j].Date) })
	return fireballs, nil
}

func optFloat(s *string) (float64, error) {
	if s == nil {
		return 0, nil
	}
	return strconv.ParseFloat(*s, 64)
}
