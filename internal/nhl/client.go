package nhl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/pkg/logger"
	"github.com/fortuna/faceoff/pkg/metrics"
)

const DefaultBaseURL = "https://api-web.nhle.com"

var (
	// ErrNotFound is returned for a 404 from the upstream API.
	ErrNotFound = errors.New("not found upstream")
	// ErrUpstream is returned for any other non-2xx response.
	ErrUpstream = errors.New("upstream error")
)

// ClientConfig tunes the upstream client.
type ClientConfig struct {
	BaseURL         string
	Timeout         time.Duration
	RateLimitPerSec float64
	Breaker         bool
	FailureRatio    float64
	BreakerTimeout  time.Duration
}

// Client fetches schedules, box scores and player pages. It does not retry;
// a failed call is returned to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Entry
	metrics *metrics.Manager
}

// NewClient builds a client. log and m may be nil.
func NewClient(cfg ClientConfig, log *logrus.Entry, m *metrics.Manager) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithField("component", "nhl-client")

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
		metrics: m,
	}

	if cfg.RateLimitPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), 1)
	}

	if cfg.Breaker {
		ratio := cfg.FailureRatio
		if ratio <= 0 {
			ratio = 0.6
		}
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "nhl-api",
			Timeout: cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= ratio
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("Circuit breaker state changed")
			},
		})
	}

	return c
}

// Schedule returns a team's full season schedule in upstream order.
func (c *Client) Schedule(ctx context.Context, team string, season int) ([]GameStub, error) {
	data, err := c.fetch(ctx, "schedule", fmt.Sprintf("/v1/club-schedule-season/%s/%d", team, season))
	if err != nil {
		return nil, fmt.Errorf("schedule %s %d: %w", team, season, err)
	}
	return ParseSchedule(data), nil
}

// DailySchedule returns the games listed for one calendar day.
func (c *Client) DailySchedule(ctx context.Context, date time.Time) ([]GameStub, error) {
	day := date.Format("2006-01-02")
	data, err := c.fetch(ctx, "daily_schedule", "/v1/schedule/"+day)
	if err != nil {
		return nil, fmt.Errorf("daily schedule %s: %w", day, err)
	}
	return ParseDailySchedule(data, day), nil
}

// BoxScore returns the per-game detail.
func (c *Client) BoxScore(ctx context.Context, gameID int) (*BoxScore, error) {
	data, err := c.fetch(ctx, "box_score", fmt.Sprintf("/v1/gamecenter/%d/boxscore", gameID))
	if err != nil {
		return nil, fmt.Errorf("box score %d: %w", gameID, err)
	}
	return ParseBoxScore(data)
}

// Player returns a player's status, bio and stat totals.
func (c *Client) Player(ctx context.Context, playerID int) (*PlayerCareerStats, error) {
	data, err := c.fetch(ctx, "player", fmt.Sprintf("/v1/player/%d/landing", playerID))
	if err != nil {
		return nil, fmt.Errorf("player %d: %w", playerID, err)
	}
	return ParsePlayer(data)
}

func (c *Client) fetch(ctx context.Context, op, path string) (stats.Record, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var (
		data stats.Record
		err  error
	)
	if c.breaker != nil {
		var out interface{}
		out, err = c.breaker.Execute(func() (interface{}, error) {
			return c.get(ctx, path)
		})
		if err == nil {
			data = out.(stats.Record)
		}
	} else {
		data, err = c.get(ctx, path)
	}

	if c.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.UpstreamFetch(op, outcome)
	}
	return data, err
}

func (c *Client) get(ctx context.Context, path string) (stats.Record, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	c.log.WithField("url", url).Debug("GET")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrUpstream, path, resp.StatusCode, string(body))
	}

	var result stats.Record
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return result, nil
}
