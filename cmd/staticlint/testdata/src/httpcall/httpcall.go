package httpcall

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

func unbounded() {
	_, _ = http.Get("http://example.com")                                  // want `http.Get has no timeout`
	_, _ = http.Head("http://example.com")                                 // want `http.Head has no timeout`
	_, _ = http.Post("http://example.com", "text/plain", strings.NewReader("")) // want `http.Post has no timeout`
	_, _ = http.PostForm("http://example.com", url.Values{})               // want `http.PostForm has no timeout`
	_ = http.DefaultClient                                                 // want `http.DefaultClient has no timeout`
}

func bounded(ctx context.Context) {
	client := &http.Client{Timeout: time.Second}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.com", nil)
	_, _ = client.Do(req)
	_, _ = client.Get("http://example.com")
}
