package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectLinksAcrossPages(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[testCategoryBase+"?page=1"] = `<html><body>
		<a class="mask" href="/adv/1-first">first</a>
		<a class="mask" href="/adv/2-second">second</a>
		<a class="mask" href="/news/article">wrong prefix</a>
		<a href="/adv/3-no-class">no mask class</a>
	</body></html>`
	fetcher.pages[testCategoryBase+"?page=2"] = `<html><body>
		<a class="mask" href="/adv/4-third">third</a>
	</body></html>`

	s := newTestScraper(t, fetcher)
	links, err := s.CollectLinks(context.Background(), testCategoryBase, 2)
	require.NoError(t, err)

	require.Equal(t, []string{
		"https://www.unegui.mn/adv/1-first",
		"https://www.unegui.mn/adv/2-second",
		"https://www.unegui.mn/adv/4-third",
	}, links, "page 1 links precede page 2, document order within a page")
}

func TestCollectLinksSinglePage(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[testCategoryBase+"?page=1"] = `<html><body>
		<a class="mask" href="/adv/1-only">only</a>
	</body></html>`

	s := newTestScraper(t, fetcher)
	links, err := s.CollectLinks(context.Background(), testCategoryBase, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"https://www.unegui.mn/adv/1-only"}, links)
	require.Equal(t, 0, fetcher.fetchCount(testCategoryBase+"?page=2"))
}

func TestCollectLinksPageFailureAborts(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[testCategoryBase+"?page=1"] = `<html><body>
		<a class="mask" href="/adv/1-first">first</a>
	</body></html>`
	fetcher.errs[testCategoryBase+"?page=2"] = errFetch

	s := newTestScraper(t, fetcher)
	links, err := s.CollectLinks(context.Background(), testCategoryBase, 3)
	require.ErrorIs(t, err, errFetch, "a partial link set is not accepted")
	require.Nil(t, links)
	require.Equal(t, 0, fetcher.fetchCount(testCategoryBase+"?page=3"), "collection stops at the failing page")
}

func TestAbsoluteListingURL(t *testing.T) {
	t.Parallel()

	origin := "https://www.unegui.mn"
	require.Equal(t, "https://www.unegui.mn/adv/1-x", absoluteListingURL(origin, "/adv/1-x"))
	require.Equal(t, "https://cdn.example.com/adv/2-y", absoluteListingURL(origin, "https://cdn.example.com/adv/2-y"))
}

func TestListingPageURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, testCategoryBase+"?page=3", listingPageURL(testCategoryBase, 3))
}
