package device

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	goxerrors "github.com/mdobak/go-xerrors"
	"golang.org/x/xerrors"
)

type httpService struct {
	URL    string
	Client *http.Client
}

// NewHTTP posts the count as a text/plain body to url.
func NewHTTP(url string, timeout time.Duration) IService {
	return &httpService{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (svc *httpService) Update(ctx context.Context, count int) Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.URL, strings.NewReader(strconv.Itoa(count)))
	if err != nil {
		return Result{Outcome: Failed, Err: goxerrors.WithStackTrace(xerrors.Errorf("building device request: %w", err), 0)}
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := svc.Client.Do(req)
	if err != nil {
		return Result{Outcome: classify(err), Err: goxerrors.WithStackTrace(err, 0), Elapsed: time.Since(start)}
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	result := Result{StatusCode: resp.StatusCode, Elapsed: time.Since(start)}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Outcome = StatusRejected
		result.Err = goxerrors.WithStackTrace(xerrors.Errorf("device returned status code %d", resp.StatusCode), 0)
		return result
	}

	result.Outcome = Delivered
	return result
}

func (svc *httpService) Close() error {
	svc.Client.CloseIdleConnections()
	return nil
}

func classify(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return TimedOut
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimedOut
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ConnectionFailed
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ConnectionFailed
	}

	return Failed
}
