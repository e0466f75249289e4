package cli

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitodl/downloader"
	apperrors "hitodl/errors"
	"hitodl/library"
	"hitodl/sites"
)

const (
	galleryPath = "/galleries/foo-japanese-123456.html"
	galleryDir  = "夏|japanese"
	fileBytes   = "avif-bytes"
)

const galleryHTML = `<html><body><div class="gallery">
<h2><ul><li><a href="/artist/yamada-all.html">yamada</a></li></ul></h2>
<div class="gallery-info"><table>
<tr><td>Group</td><td></td></tr>
<tr><td>Type</td><td><a>doujinshi</a></td></tr>
<tr><td>Language</td><td><a>japanese</a></td></tr>
<tr><td>Series</td><td><ul><li><a>original</a></li></ul></td></tr>
<tr><td>Characters</td><td><ul><li><a>alice</a></li></ul></td></tr>
<tr><td>Tags</td><td><ul><li><a>full color</a></li><li><a>big breasts ♀</a></li></ul></td></tr>
</table></div></div></body></html>`

const manifestJS = `var galleryinfo = {"id":"123456","title":"Natsu","japanese_title":"夏","language":"japanese",
"files":[{"hash":"0123456789abc","name":"001.jpg","hasavif":1,"haswebp":1}]}`

// rewriteTransport sends every request to the test server and remembers
// the host it was meant for.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	out := r.Clone(r.Context())
	out.Header.Set("X-Original-Host", r.URL.Host)
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = ""
	return http.DefaultTransport.RoundTrip(out)
}

type origin struct {
	*httptest.Server
	fileRequests atomic.Int64
	failFiles    atomic.Bool

	mu        sync.Mutex
	fileHosts []string
	referrers []string
}

func newOrigin(t *testing.T) *origin {
	t.Helper()
	o := &origin{}
	o.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/galleries/123456.js":
			w.Write([]byte(manifestJS))
		case galleryPath:
			w.Write([]byte(galleryHTML))
		case "/avif/b/bc/0123456789abc.avif":
			o.fileRequests.Add(1)
			o.mu.Lock()
			o.fileHosts = append(o.fileHosts, r.Header.Get("X-Original-Host"))
			o.referrers = append(o.referrers, r.Header.Get("Referer"))
			o.mu.Unlock()
			if o.failFiles.Load() {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			w.Write([]byte(fileBytes))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(o.Close)
	return o
}

type harness struct {
	t      *testing.T
	root   string
	origin *origin
	site   *sites.HitomiSite
	stdout bytes.Buffer
	stderr bytes.Buffer

	clipboard func() (string, error)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	o := newOrigin(t)
	h := &harness{
		t:      t,
		root:   t.TempDir(),
		origin: o,
		site:   sites.NewHitomiSiteAt(o.URL, o.URL, "hitomi.test"),
	}
	require.NoError(t, h.run("", "--init"))
	h.write("authors.yml", "yamada: 山田\n")
	h.write("series.yml", "original: オリジナル\n")
	h.write("tags.yml", "full color: フルカラー\n")
	return h
}

func (h *harness) write(name, content string) {
	h.t.Helper()
	require.NoError(h.t, os.WriteFile(filepath.Join(h.root, name), []byte(content), 0644))
}

func (h *harness) read(name string) string {
	h.t.Helper()
	data, err := os.ReadFile(filepath.Join(h.root, name))
	require.NoError(h.t, err)
	return string(data)
}

func (h *harness) galleryURL() string {
	return h.origin.URL + galleryPath
}

// run executes the command with input as the operator's answers.
func (h *harness) run(input string, args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()

	target, _ := url.Parse(h.origin.URL)
	env := &Environment{
		Stdin:     strings.NewReader(input),
		Stdout:    &h.stdout,
		Stderr:    &h.stderr,
		Transport: rewriteTransport{target: target},
		Lookup: func(string) (downloader.SitePlugin, error) {
			return h.site, nil
		},
		Clipboard: h.clipboard,
	}

	cmd := NewRootCmd(env)
	cmd.SetArgs(append([]string{"--root", h.root, "--log-level", "debug"}, args...))
	return cmd.Execute()
}

func (h *harness) assertLink(category, name string) {
	h.t.Helper()
	path := filepath.Join(h.root, category, name, galleryDir)
	target, err := os.Readlink(path)
	require.NoError(h.t, err, path)
	assert.Equal(h.t, filepath.Join("..", "..", "_data", galleryDir), target)
}

func (h *harness) galleries() []string {
	h.t.Helper()
	got, err := library.New(filepath.Join(h.root, "_data"), nil, nil).Galleries()
	require.NoError(h.t, err)
	return got
}

func TestInit(t *testing.T) {
	h := newHarness(t)

	for _, dir := range []string{"_data", "authors", "groups", "series", "characters", "tags"} {
		assert.DirExists(t, filepath.Join(h.root, dir))
	}
	assert.FileExists(t, filepath.Join(h.root, "characters.yml"))

	require.NoError(t, h.run("", "--init"))
	assert.Equal(t, "yamada: 山田\n", h.read("authors.yml"), "init never truncates")
}

func TestRun_RequiresWorkspace(t *testing.T) {
	cmd := NewRootCmd(&Environment{Stdin: strings.NewReader(""), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	cmd.SetArgs([]string{"--root", t.TempDir(), "https://hitomi.la/galleries/foo-english-1.html"})
	assert.ErrorIs(t, cmd.Execute(), apperrors.ErrConfig)
}

func TestRun_InvalidConfig(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.run("", "--format", "png", h.galleryURL()), apperrors.ErrConfig)
	assert.ErrorIs(t, h.run("", "-j", "0", h.galleryURL()), apperrors.ErrConfig)
}

func TestRun_Download(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("アリス\n\n", h.galleryURL()))

	data, err := os.ReadFile(filepath.Join(h.root, "_data", galleryDir, "001.avif"))
	require.NoError(t, err)
	assert.Equal(t, fileBytes, string(data))

	assert.Equal(t, []string{"ca.hitomi.test"}, h.origin.fileHosts)
	assert.Equal(t, []string{h.origin.URL + "/reader/123456.html"}, h.origin.referrers)

	meta, err := library.ReadMetadata(filepath.Join(h.root, "_data", galleryDir))
	require.NoError(t, err)
	assert.Equal(t, "夏", meta.Title)
	assert.Equal(t, []string{"山田"}, meta.Authors)
	assert.Equal(t, []string{"アリス"}, meta.Characters)
	assert.Equal(t, []string{"full color", "big breasts"}, meta.TagsRaw)
	assert.Equal(t, "123456", meta.Source.ID)
	assert.Equal(t, h.galleryURL(), meta.Source.URL)

	h.assertLink("authors", "山田")
	h.assertLink("series", "オリジナル")
	h.assertLink("characters", "アリス")
	h.assertLink("tags", "フルカラー")
	assert.NoDirExists(t, filepath.Join(h.root, "tags", "big breasts"))

	assert.Contains(t, h.read("characters.yml"), "alice: アリス")
	assert.Contains(t, h.stdout.String(), "What is the original name of character 'alice'?")
	assert.Contains(t, h.stdout.String(), "Is the title correct?")
	assert.Contains(t, h.stderr.String(), "Downloading: 001.avif")
	assert.Contains(t, h.stderr.String(), "Finished downloading to:")
}

func TestRun_DownloadAgainReusesDirectory(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("アリス\n\n", h.galleryURL()))
	h.origin.fileRequests.Store(0)

	// title confirmation, then the duplicate question with its default
	require.NoError(t, h.run("\n\n", h.galleryURL()))

	assert.Zero(t, h.origin.fileRequests.Load())
	assert.Equal(t, []string{galleryDir}, h.galleries())
	assert.Contains(t, h.stdout.String(), "was already downloaded")
}

func TestRun_DuplicateAbortSucceeds(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("アリス\n\n", h.galleryURL()))

	require.NoError(t, h.run("\na\n", h.galleryURL()))
	assert.Equal(t, []string{galleryDir}, h.galleries())
}

func TestRun_DuplicateNewCopy(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("アリス\n\n", h.galleryURL()))

	require.NoError(t, h.run("\ny\n", h.galleryURL()))
	assert.Equal(t, []string{galleryDir, galleryDir + "_1"}, h.galleries())
}

func TestRun_MetadataOnlyThenUpdateLinks(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("アリス\n\n", "-m", h.galleryURL()))
	assert.Zero(t, h.origin.fileRequests.Load())
	assert.FileExists(t, filepath.Join(h.root, "_data", galleryDir, library.InfoFileName))
	h.assertLink("authors", "山田")

	require.NoError(t, os.RemoveAll(filepath.Join(h.root, "authors")))
	require.NoError(t, os.WriteFile(filepath.Join(h.root, "_data", ".DS_Store"), nil, 0644))

	require.NoError(t, h.run("", "--update-links"))
	h.assertLink("authors", "山田")
}

func TestRun_FileFailureExitsWithError(t *testing.T) {
	h := newHarness(t)
	h.origin.failFiles.Store(true)

	err := h.run("アリス\n\n", h.galleryURL())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDownload)

	var statusErr *downloader.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)

	h.assertLink("authors", "山田")
}

func TestRun_TranslationsSavedOnFailure(t *testing.T) {
	h := newHarness(t)

	// answers the character prompt, then stdin ends before the title question
	err := h.run("アリス\n", h.galleryURL())
	require.Error(t, err)

	assert.Contains(t, h.read("characters.yml"), "alice: アリス")
	assert.Empty(t, h.galleries())
}

func TestRun_InvalidURL(t *testing.T) {
	h := newHarness(t)

	err := h.run("", h.origin.URL+"/galleries/not-a-gallery")
	assert.ErrorIs(t, err, apperrors.ErrInvalidURL)
	assert.Zero(t, h.origin.fileRequests.Load())
}

func TestRun_ClipboardFallback(t *testing.T) {
	h := newHarness(t)
	h.clipboard = func() (string, error) { return "  " + h.galleryURL() + "\n", nil }

	require.NoError(t, h.run("アリス\n\n", "-m"))
	assert.Equal(t, []string{galleryDir}, h.galleries())
	assert.Contains(t, h.stderr.String(), "Using URL from clipboard")

	h.clipboard = func() (string, error) { return "", errors.New("no display") }
	assert.ErrorIs(t, h.run(""), apperrors.ErrInvalidURL)
}

func TestRun_Debug(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("", "--debug"))
	assert.Contains(t, h.stdout.String(), "yamada")
	assert.Contains(t, h.stdout.String(), "full color")
}
