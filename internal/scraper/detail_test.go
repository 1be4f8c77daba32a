package scraper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fullDetailPage = `<html><body>
	<h1 id="ad-title"> Орон сууц 2 өрөө </h1>
	<meta itemprop="price" content="250000000">
	<span itemprop="sku">1234567</span>
	<span itemprop="address">УБ, Баянзүрх</span>
	<span>Нийтэлсэн: Өнөөдөр 14:30</span>
	<ul class="chars-column">
		<li><span class="key-chars">Талбай:</span><span class="value-chars">50 м²</span></li>
		<li><span class="key-chars">Өрөө:</span><span class="value-chars">2</span></li>
		<li><span class="key-chars">no value</span></li>
	</ul>
</body></html>`

const detailLink = "https://www.unegui.mn/adv/1234567-oron-suuts"

func TestFetchDetailFullPage(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[detailLink] = fullDetailPage

	s := newTestScraper(t, fetcher)
	rec, err := s.FetchDetail(context.Background(), detailLink)
	require.NoError(t, err)

	require.Equal(t, "Орон сууц 2 өрөө", rec.Title)
	require.Equal(t, "250000000", rec.Price)
	require.Equal(t, "1234567", rec.AdID)
	require.Equal(t, "УБ, Баянзүрх", rec.Location)
	require.Equal(t, "2024-01-02 14:30", rec.Date, "relative date resolved against the clock")
	require.Equal(t, detailLink, rec.URL)

	require.Equal(t, []string{"Талбай", "Өрөө"}, rec.Characteristics.Keys(), "row order preserved, colon stripped")
	area, ok := rec.Characteristics.Get("Талбай")
	require.True(t, ok)
	require.Equal(t, "50 м²", area)
	rooms, ok := rec.Characteristics.Get("Өрөө")
	require.True(t, ok)
	require.Equal(t, "2", rooms)
}

func TestFetchDetailMissingTitleIsNotAnError(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[detailLink] = `<html><body>
		<meta itemprop="price" content="95000000">
		<span itemprop="sku">7654321</span>
		<span itemprop="address">Хан-Уул</span>
		<span>Нийтэлсэн: 2023-05-01 10:00</span>
	</body></html>`

	s := newTestScraper(t, fetcher)
	rec, err := s.FetchDetail(context.Background(), detailLink)
	require.NoError(t, err, "a missing field never fails the record")

	require.Empty(t, rec.Title)
	require.Equal(t, "95000000", rec.Price)
	require.Equal(t, "7654321", rec.AdID)
	require.Equal(t, "Хан-Уул", rec.Location)
	require.Equal(t, "2023-05-01 10:00", rec.Date, "absolute dates pass through")
	require.Equal(t, detailLink, rec.URL)
}

func TestFetchDetailEmptyPage(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[detailLink] = `<html><body><p>nothing to see</p></body></html>`

	s := newTestScraper(t, fetcher)
	rec, err := s.FetchDetail(context.Background(), detailLink)
	require.NoError(t, err)

	require.Empty(t, rec.Title)
	require.Empty(t, rec.Price)
	require.Empty(t, rec.AdID)
	require.Empty(t, rec.Location)
	require.Empty(t, rec.Date)
	require.Zero(t, rec.Characteristics.Len())
	require.Equal(t, detailLink, rec.URL, "the URL identity is always set")
}

func TestFetchDetailLocationFallback(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[detailLink] = `<html><body>
		<h1 id="ad-title">Гараж</h1>
		<div id="show-post-render-app">
			<a href="/location/123"><span>Сүхбаатар дүүрэг</span></a>
		</div>
	</body></html>`

	s := newTestScraper(t, fetcher)
	rec, err := s.FetchDetail(context.Background(), detailLink)
	require.NoError(t, err)
	require.Equal(t, "Сүхбаатар дүүрэг", rec.Location)
}

func TestFetchDetailDuplicateCharacteristicLastWins(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[detailLink] = `<html><body>
		<h1 id="ad-title">Зар</h1>
		<ul class="chars-column">
			<li><span class="key-chars">Шал:</span><span class="value-chars">паркет</span></li>
			<li><span class="key-chars">Шал:</span><span class="value-chars">ламинат</span></li>
		</ul>
	</body></html>`

	s := newTestScraper(t, fetcher)
	rec, err := s.FetchDetail(context.Background(), detailLink)
	require.NoError(t, err)

	require.Equal(t, []string{"Шал"}, rec.Characteristics.Keys())
	floor, _ := rec.Characteristics.Get("Шал")
	require.Equal(t, "ламинат", floor)
}

func TestFetchDetailFetchFailure(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.errs[detailLink] = errFetch

	s := newTestScraper(t, fetcher)
	_, err := s.FetchDetail(context.Background(), detailLink)
	require.ErrorIs(t, err, errFetch)
}

// fakeRenderer returns a canned rendered body, or an error.
type fakeRenderer struct {
	body  string
	err   error
	calls int
}

func (r *fakeRenderer) Render(_ context.Context, rawURL string) (Page, error) {
	r.calls++
	if r.err != nil {
		return Page{}, r.err
	}
	return Page{URL: rawURL, FinalURL: rawURL, StatusCode: 200, Body: []byte(r.body), Rendered: true}, nil
}

func TestFetchDetailRenderEscalation(t *testing.T) {
	t.Parallel()

	shell := `<html><body><div id="show-post-render-app"></div></body></html>`
	fetcher := newFakeFetcher()
	fetcher.pages[detailLink] = shell
	renderer := &fakeRenderer{body: fullDetailPage}

	ref := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	s, err := New(testConfig(), fetcher, renderer, nil, nil, fixedClock{now: ref}, zap.NewNop())
	require.NoError(t, err)

	rec, err := s.FetchDetail(context.Background(), detailLink)
	require.NoError(t, err)
	require.Equal(t, 1, renderer.calls)
	require.Equal(t, "Орон сууц 2 өрөө", rec.Title, "record comes from the rendered DOM")
}

func TestFetchDetailRenderFailureKeepsStaticBody(t *testing.T) {
	t.Parallel()

	shell := `<html><body><div id="show-post-render-app"><a href="/l"><span>Баянгол</span></a></div></body></html>`
	fetcher := newFakeFetcher()
	fetcher.pages[detailLink] = shell
	renderer := &fakeRenderer{err: errFetch}

	ref := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	s, err := New(testConfig(), fetcher, renderer, nil, nil, fixedClock{now: ref}, zap.NewNop())
	require.NoError(t, err)

	rec, err := s.FetchDetail(context.Background(), detailLink)
	require.NoError(t, err, "render escalation is best-effort")
	require.Equal(t, "Баянгол", rec.Location)
}

func TestFetchDetailStaticPageSkipsRenderer(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[detailLink] = fullDetailPage
	renderer := &fakeRenderer{body: `<html><body></body></html>`}

	ref := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	s, err := New(testConfig(), fetcher, renderer, nil, nil, fixedClock{now: ref}, zap.NewNop())
	require.NoError(t, err)

	_, err = s.FetchDetail(context.Background(), detailLink)
	require.NoError(t, err)
	require.Zero(t, renderer.calls, "pages with a static title are not escalated")
}

// recordingArchive captures archived objects under a mutex.
type recordingArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (a *recordingArchive) Save(_ context.Context, objectName string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.objects == nil {
		a.objects = make(map[string][]byte)
	}
	a.objects[objectName] = append([]byte(nil), data...)
	return nil
}

type fixedHasher struct{}

func (fixedHasher) Hash([]byte) (string, error) {
	return "0123456789abcdef0123456789abcdef", nil
}

func TestFetchDetailArchivesRawBody(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[detailLink] = fullDetailPage
	arch := &recordingArchive{}

	ref := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	s, err := New(testConfig(), fetcher, nil, arch, fixedHasher{}, fixedClock{now: ref}, zap.NewNop())
	require.NoError(t, err)

	_, err = s.FetchDetail(context.Background(), detailLink)
	require.NoError(t, err)

	arch.mu.Lock()
	defer arch.mu.Unlock()
	require.Len(t, arch.objects, 1)
	body, ok := arch.objects["2024-01-02/0123456789abcdef.html"]
	require.True(t, ok, "objects are keyed by day and body digest")
	require.Equal(t, fullDetailPage, string(body))
}
