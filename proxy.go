package hubconsole

import (
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/sfi2k7/hubconsole/config"
	"go.uber.org/zap"
)

// Proxy forwards the API prefixes to the hub backend so the UI can be
// served from its own port.
type Proxy struct {
	targets []config.ProxyTarget
	proxies map[string]*httputil.ReverseProxy
	log     *zap.Logger
	metrics *Metrics
}

func NewProxy(targets []config.ProxyTarget, log *zap.Logger, m *Metrics) *Proxy {
	p := &Proxy{
		targets: targets,
		proxies: make(map[string]*httputil.ReverseProxy, len(targets)),
		log:     log,
		metrics: m,
	}
	for _, t := range targets {
		p.proxies[t.Prefix] = p.reverseProxy(t)
	}
	return p
}

func (p *Proxy) reverseProxy(t config.ProxyTarget) *httputil.ReverseProxy {
	target := t.Target
	prefix := t.Prefix
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			p.metrics.proxyError(prefix)
			p.log.Warn("proxy request failed",
				zap.String("prefix", prefix),
				zap.String("target", target.String()),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			writeError(w, &HTTPError{Code: http.StatusBadGateway, Message: "backend unavailable", Err: err})
		},
	}
}

// Mount registers one catch-all route per prefix that no shorter prefix
// covers. Nested prefixes, like /api/ and /api/v3/, share the route of the
// outer one and are told apart by ServeHTTP.
func (p *Proxy) Mount(r *Router) {
	for _, prefix := range p.roots() {
		r.Any(strings.TrimSuffix(prefix, "/")+"/*path", p)
	}
}

func (p *Proxy) roots() []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range p.targets {
		if seen[t.Prefix] {
			continue
		}
		seen[t.Prefix] = true
		covered := false
		for _, o := range p.targets {
			if o.Prefix != t.Prefix && strings.HasPrefix(t.Prefix, o.Prefix) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, t.Prefix)
		}
	}
	return out
}

// ServeHTTP forwards req to the target of the longest matching prefix.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	best := ""
	for _, t := range p.targets {
		if strings.HasPrefix(req.URL.Path, t.Prefix) && len(t.Prefix) > len(best) {
			best = t.Prefix
		}
	}
	if best == "" {
		writeError(w, &HTTPError{Code: http.StatusNotFound, Message: "no backend for " + req.URL.Path})
		return
	}
	p.proxies[best].ServeHTTP(w, req)
}
