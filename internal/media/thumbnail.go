package media

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/burrowtv/burrow/internal/library"
	gocache "github.com/patrickmn/go-cache"
)

// ThumbnailProxy fetches and memoizes grid thumbnails so the child-facing
// page never talks to the upstream image host directly. A failed fetch
// returns 404 and the frontend hides the broken image.
type ThumbnailProxy struct {
	client  *http.Client
	cache   *gocache.Cache
	urlTmpl string
}

func NewThumbnailProxy() *ThumbnailProxy {
	return &ThumbnailProxy{
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   gocache.New(12*time.Hour, 1*time.Hour),
		urlTmpl: "https://i.ytimg.com/vi/%s/hqdefault.jpg",
	}
}

func (p *ThumbnailProxy) ServeHTTP(w http.ResponseWriter, r *http.Request, id string) {
	if !library.ValidID(id) {
		http.NotFound(w, r)
		return
	}

	if cached, ok := p.cache.Get(id); ok {
		writeThumb(w, cached.([]byte))
		return
	}

	resp, err := p.client.Get(fmt.Sprintf(p.urlTmpl, id))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	p.cache.Set(id, body, gocache.DefaultExpiration)
	writeThumb(w, body)
}

func writeThumb(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(body)
}
