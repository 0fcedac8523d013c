package gamebook

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/fasthttp"

	"github.com/hooplake/hooplake/internal/platform/logging"
)

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	CacheDir    string
	Concurrency int
	Logger      *logging.Logger
}

// Client lists and downloads official gamebook PDFs. Downloads are cached on
// disk keyed by URL, so re-harvesting a date does not refetch.
type Client struct {
	cfg     Config
	httpCli *fasthttp.Client
	logger  *logging.Logger
}

var pdfLinkPattern = regexp.MustCompile(`href="([^"]+\.pdf)"`)

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, crerr.New("gamebook: base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	if strings.TrimSpace(cfg.CacheDir) == "" {
		return nil, crerr.New("gamebook: cache dir is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		cfg: cfg,
		httpCli: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// ListPDFs fetches the listing page for a date and returns absolute PDF URLs.
func (c *Client) ListPDFs(date string) ([]string, error) {
	listingURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/?date=" + date
	body, err := c.fetch(listingURL)
	if err != nil {
		return nil, crerr.Wrapf(err, "gamebook: list pdfs for %s", date)
	}

	matches := pdfLinkPattern.FindAllStringSubmatch(string(body), -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		href := m[1]
		if strings.HasPrefix(href, "/") {
			href = strings.TrimRight(c.cfg.BaseURL, "/") + href
		}
		if _, dup := seen[href]; dup {
			continue
		}
		seen[href] = struct{}{}
		out = append(out, href)
	}
	return out, nil
}

// Download fetches each URL through a bounded worker pool and returns the
// local path per URL. Cached files are not refetched.
func (c *Client) Download(ctx context.Context, urls []string) (map[string]string, error) {
	if err := os.MkdirAll(c.cfg.CacheDir, 0o755); err != nil {
		return nil, crerr.Wrapf(err, "gamebook: create cache dir %s", c.cfg.CacheDir)
	}

	var mu sync.Mutex
	paths := make(map[string]string, len(urls))

	p := pool.New().WithMaxGoroutines(c.cfg.Concurrency).WithErrors().WithContext(ctx)
	for _, pdfURL := range urls {
		pdfURL := pdfURL
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := c.downloadOne(pdfURL)
			if err != nil {
				return err
			}
			mu.Lock()
			paths[pdfURL] = path
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return paths, err
	}
	return paths, nil
}

func (c *Client) downloadOne(pdfURL string) (string, error) {
	path := filepath.Join(c.cfg.CacheDir, cacheKey(pdfURL)+".pdf")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	body, err := c.fetch(pdfURL)
	if err != nil {
		return "", crerr.Wrapf(err, "gamebook: download %s", pdfURL)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return "", crerr.Wrapf(err, "gamebook: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", crerr.Wrapf(err, "gamebook: rename %s", path)
	}
	return path, nil
}

func (c *Client) fetch(fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")

	if err := c.httpCli.DoTimeout(req, resp, c.cfg.Timeout); err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, crerr.Newf("status %d", resp.StatusCode())
	}
	return append([]byte(nil), resp.Body()...), nil
}

func cacheKey(pdfURL string) string {
	sum := sha1.Sum([]byte(pdfURL))
	return hex.EncodeToString(sum[:])
}
