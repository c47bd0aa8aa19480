package hubconsole

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const indexFile = "index.html"

type StaticConfig struct {
	// Root is the directory holding the built UI.
	Root string
	// BasePath is where the UI routes live. Paths below it without a file
	// extension are answered with index.html.
	BasePath string
	// PublicPath is where the built assets are requested from.
	PublicPath string
	// Settings is served as BasePath + "settings.json".
	Settings interface{}
	MaxAge   time.Duration
	// IndexSnippet is inserted before </body> of index.html.
	IndexSnippet string
}

type cachedFile struct {
	data    []byte
	etag    string
	modTime time.Time
}

// Static serves the single page application.
type Static struct {
	cfg      StaticConfig
	fs       http.FileSystem
	settings []byte
	log      *zap.Logger

	mu    sync.RWMutex
	cache map[string]*cachedFile
}

func NewStatic(cfg StaticConfig, log *zap.Logger) (*Static, error) {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	settings, err := json.Marshal(cfg.Settings)
	if err != nil {
		return nil, errors.Wrap(err, "encoding settings")
	}
	return &Static{
		cfg:      cfg,
		fs:       http.Dir(cfg.Root),
		settings: settings,
		log:      log,
		cache:    map[string]*cachedFile{},
	}, nil
}

// Handler is s with gzip compression.
func (s *Static) Handler() http.Handler {
	return gziphandler.GzipHandler(s)
}

// Invalidate drops every cached file.
func (s *Static) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = map[string]*cachedFile{}
}

func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, &HTTPError{Code: http.StatusMethodNotAllowed, Message: "Method Not Allowed"})
		return
	}

	p := path.Clean("/" + r.URL.Path)
	if strings.HasSuffix(r.URL.Path, "/") && p != "/" {
		p += "/"
	}

	switch {
	case s.cfg.PublicPath != "" && strings.HasPrefix(p, s.cfg.PublicPath):
		s.serveAsset(w, r, strings.TrimPrefix(p, s.cfg.PublicPath))
	case strings.HasPrefix(p, s.cfg.BasePath) || p+"/" == s.cfg.BasePath:
		rel := ""
		if strings.HasPrefix(p, s.cfg.BasePath) {
			rel = p[len(s.cfg.BasePath):]
		}
		switch {
		case rel == "settings.json":
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Cache-Control", "no-cache")
			_, _ = w.Write(s.settings)
		case path.Ext(rel) != "":
			s.serveAsset(w, r, rel)
		default:
			s.serveIndex(w, r)
		}
	default:
		writeError(w, &HTTPError{Code: http.StatusNotFound, Message: "Not Found"})
	}
}

func (s *Static) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := s.load(indexFile)
	if err != nil {
		s.fail(w, indexFile, err)
		return
	}
	if s.cfg.IndexSnippet != "" {
		f = injectSnippet(f, s.cfg.IndexSnippet)
	}
	w.Header().Set("Cache-Control", "no-cache")
	s.serve(w, r, indexFile, f)
}

func injectSnippet(f *cachedFile, snippet string) *cachedFile {
	data := f.data
	i := bytes.LastIndex(data, []byte("</body>"))
	if i < 0 {
		i = len(data)
	}
	out := make([]byte, 0, len(data)+len(snippet))
	out = append(out, data[:i]...)
	out = append(out, snippet...)
	out = append(out, data[i:]...)
	return &cachedFile{
		data:    out,
		etag:    strings.TrimSuffix(f.etag, `"`) + `-r"`,
		modTime: f.modTime,
	}
}

func (s *Static) serveAsset(w http.ResponseWriter, r *http.Request, rel string) {
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		writeError(w, &HTTPError{Code: http.StatusNotFound, Message: "Not Found"})
		return
	}
	f, err := s.load(rel)
	if err != nil {
		s.fail(w, rel, err)
		return
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.cfg.MaxAge.Seconds())))
	s.serve(w, r, rel, f)
}

func (s *Static) serve(w http.ResponseWriter, r *http.Request, name string, f *cachedFile) {
	w.Header().Set("ETag", f.etag)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, name, f.modTime, bytes.NewReader(f.data))
}

func (s *Static) fail(w http.ResponseWriter, name string, err error) {
	if os.IsNotExist(errors.Cause(err)) {
		writeError(w, &HTTPError{Code: http.StatusNotFound, Message: "Not Found"})
		return
	}
	s.log.Error("serving static file", zap.String("file", name), zap.Error(err))
	writeError(w, &HTTPError{Code: http.StatusInternalServerError, Message: "Internal Server Error", Err: err})
}

// load reads name from the root, reusing the cached copy while the file
// is unchanged.
func (s *Static) load(name string) (*cachedFile, error) {
	f, err := s.fs.Open("/" + name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	if info.IsDir() {
		return nil, os.ErrNotExist
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok && cached.modTime.Equal(info.ModTime()) {
		return cached, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	sum := sha256.Sum256(data)
	cached = &cachedFile{
		data:    data,
		etag:    fmt.Sprintf(`"%x"`, sum[:16]),
		modTime: info.ModTime(),
	}

	s.mu.Lock()
	s.cache[name] = cached
	s.mu.Unlock()
	return cached, nil
}
