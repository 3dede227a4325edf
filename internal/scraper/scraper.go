// Package scraper extracts track listings from WQXR daily playlist pages.
//
// The selectors are coupled to the station's current markup and will break
// without notice when the page is redesigned. They are deliberately collected
// in one place so an update never touches pipeline logic.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/shared"
)

// Selector constants for the daily playlist page markup.
const (
	itemSelector     = "div.playlist-item"
	titleSelector    = "ul.playlist-item-info li.playlist-item__title"
	composerSelector = "ul.playlist-item-info li.playlist-item__composer"
)

// PageURL builds the daily playlist page URL for a given date.
// Month is the station's lowercase three-letter form, e.g. "jun".
func PageURL(baseURL, year, month, day string) string {
	return fmt.Sprintf("%s/music/playlists/daily-playlist/%s/%s/%s/", strings.TrimRight(baseURL, "/"), year, month, day)
}

// Scrape extracts title/composer pairs from one page of markup.
//
// Rows missing either field after whitespace trimming are silently dropped.
// Zero extracted rows is not an error; the caller decides what emptiness means.
func Scrape(r io.Reader) ([]models.ScrapedTrack, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: playlist page markup: %v", shared.ErrParse, err)
	}

	var tracks []models.ScrapedTrack
	doc.Find(itemSelector).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(titleSelector).First().Text())
		composer := strings.TrimSpace(sel.Find(composerSelector).First().Text())
		if title == "" || composer == "" {
			return
		}
		tracks = append(tracks, models.ScrapedTrack{Title: title, Composer: composer})
	})

	return tracks, nil
}

// Fetch retrieves and scrapes the daily playlist page for a date.
//
// A network failure or non-2xx status is fatal for the fetch and wrapped as
// [shared.ErrFetch]; it is not retried.
func Fetch(ctx context.Context, client *http.Client, baseURL, year, month, day string) ([]models.ScrapedTrack, error) {
	if client == nil {
		client = http.DefaultClient
	}

	pageURL := PageURL(baseURL, year, month, day)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", shared.ErrFetch, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrFetch, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: status %d", shared.ErrFetch, pageURL, resp.StatusCode)
	}

	return Scrape(resp.Body)
}
