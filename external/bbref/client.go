package bbref

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hooplake/hooplake/internal/platform/logging"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logging.Logger
}

// Client fetches reference-site box score pages. It exposes the fetch and
// table-extraction seam; interpreting table contents is left to callers.
type Client struct {
	cfg     Config
	httpCli *http.Client
	logger  *logging.Logger
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, crerr.New("bbref: base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		cfg: cfg,
		httpCli: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}, nil
}

// GameID builds the reference-site game ID: date plus home tricode, e.g.
// "202401150LAL" for the 2024-01-15 game hosted by LAL.
func GameID(date, homeTricode string) (string, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", crerr.Wrapf(err, "bbref: invalid date %q", date)
	}
	tricode := strings.ToUpper(strings.TrimSpace(homeTricode))
	if len(tricode) != 3 {
		return "", crerr.Newf("bbref: invalid home tricode %q", homeTricode)
	}
	return parsed.Format("20060102") + "0" + tricode, nil
}

// BoxScoreHTML fetches the box score page for a reference-site game ID.
func (c *Client) BoxScoreHTML(ctx context.Context, brefGameID string) (string, error) {
	fullURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/boxscores/" + brefGameID + ".html"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", crerr.Wrap(err, "bbref: build request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", crerr.Wrap(err, "bbref: execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", crerr.Newf("bbref: status %d for %s", resp.StatusCode, brefGameID)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", crerr.Wrap(err, "bbref: read body")
	}
	return string(body), nil
}
