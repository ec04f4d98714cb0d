package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Sternrassler/cloudplaya/pkg/criteria"
	"github.com/Sternrassler/cloudplaya/pkg/library"
	"github.com/Sternrassler/cloudplaya/pkg/pagination"
	"github.com/Sternrassler/cloudplaya/pkg/payload"
)

// Operation names.
const (
	OpSearchLibrary       = "searchLibrary"
	OpSelectTrackMetadata = "selectTrackMetadata"
	OpGetStreamURLs       = "getStreamUrls"
)

// SearchRequest describes one paginated library search.
type SearchRequest struct {
	// ReturnType is TRACKS, ALBUMS or ARTISTS.
	ReturnType string

	Search  []criteria.Criterion
	Sort    []criteria.Sort
	Columns []string

	// PageSize overrides Config.PageSize when > 0.
	PageSize int
}

// SearchLibrary returns a lazy iterator over raw result items. No call is
// made until the first Next; each further page is fetched only once the
// previous one is used up. The request slices are copied, so the caller
// may reuse them.
func (c *Client) SearchLibrary(req SearchRequest) *pagination.Iterator[payload.Object] {
	req.Search = criteria.Join(req.Search)
	req.Sort = criteria.Join(req.Sort)
	req.Columns = criteria.Join(req.Columns)
	if req.PageSize <= 0 {
		req.PageSize = c.config.PageSize
	}

	return pagination.NewIterator[payload.Object](pagination.FetchFunc[payload.Object](
		func(ctx context.Context, token string) (pagination.Page[payload.Object], error) {
			return c.fetchSearchPage(ctx, req, token)
		}))
}

func (c *Client) fetchSearchPage(ctx context.Context, req SearchRequest, token string) (pagination.Page[payload.Object], error) {
	params := criteria.Params{
		"searchReturnType":              req.ReturnType,
		"albumArtUrlsSizeList.member.1": c.config.AlbumArtSize,
		"sortCriteriaList":              "",
		"maxResults":                    strconv.Itoa(req.PageSize),
		"nextResultsToken":              token,
	}
	params.Merge(criteria.EncodeSearch(criteria.PrefixSearchCriteria, req.Search))
	params.Merge(criteria.EncodeColumns(req.Columns))
	params.Merge(criteria.EncodeSort(criteria.PrefixSortCriteria, req.Sort))

	data, err := c.Call(ctx, OpSearchLibrary, params)
	if err != nil {
		return pagination.Page[payload.Object]{}, err
	}

	result, err := payload.NavigateObject(data, OpSearchLibrary+"Response", OpSearchLibrary+"Result")
	if err != nil {
		return pagination.Page[payload.Object]{}, c.payloadError(OpSearchLibrary, err)
	}

	items, err := c.items(OpSearchLibrary, result, "searchReturnItemList")
	if err != nil {
		return pagination.Page[payload.Object]{}, err
	}

	next, err := nextToken(result)
	if err != nil {
		return pagination.Page[payload.Object]{}, c.payloadError(OpSearchLibrary, err)
	}

	return pagination.Page[payload.Object]{Items: items, NextToken: next}, nil
}

// nextToken reads nextResultsToken; absent or null means no more pages.
func nextToken(result payload.Object) (string, error) {
	switch v := result["nextResultsToken"].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("nextResultsToken is %T, not a string", v)
	}
}

// TrackList fetches every track of album in a single call. The page size is
// the album's track count, so no continuation is needed.
func (c *Client) TrackList(ctx context.Context, album library.Album) ([]library.Song, error) {
	maxResults := album.NumTracks
	if maxResults <= 0 {
		maxResults = c.config.PageSize
	}

	params := criteria.Params{
		"sortCriteriaList": "",
		"maxResults":       strconv.Itoa(maxResults),
		"nextResultsToken": "0",
		"distinctOnly":     "false",
		"countOnly":        "false",
	}
	params.Merge(criteria.EncodeSearch(criteria.PrefixSelectCriteria, library.TrackListSearch(album)))
	params.Merge(criteria.EncodeColumns(library.SongColumns()))
	params.Merge(criteria.EncodeSort(criteria.PrefixSortCriteria, library.TrackListSort()))

	data, err := c.Call(ctx, OpSelectTrackMetadata, params)
	if err != nil {
		return nil, err
	}

	items, err := c.items(OpSelectTrackMetadata, data,
		OpSelectTrackMetadata+"Response", OpSelectTrackMetadata+"Result", "trackInfoList")
	if err != nil {
		return nil, err
	}

	songs := make([]library.Song, len(items))
	for i, item := range items {
		songs[i] = library.NewSong(item)
	}
	return songs, nil
}

// StreamURLs resolves playable URLs for the given track object ids, in
// request order.
func (c *Client) StreamURLs(ctx context.Context, trackIDs []string) ([]string, error) {
	data, err := c.Call(ctx, OpGetStreamURLs, criteria.EncodeList(criteria.PrefixTrackIDs, trackIDs))
	if err != nil {
		return nil, err
	}

	items, err := c.items(OpGetStreamURLs, data,
		OpGetStreamURLs+"Response", OpGetStreamURLs+"Result", "trackStreamUrlList")
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(items))
	for i, item := range items {
		if _, err := payload.Navigate(item, "url"); err != nil {
			return nil, c.payloadError(OpGetStreamURLs, err)
		}
		urls[i] = payload.String(item, "url")
	}
	return urls, nil
}

// items navigates to an item list and normalises it.
func (c *Client) items(operation string, data any, keys ...string) ([]payload.Object, error) {
	raw, err := payload.Navigate(data, keys...)
	if err != nil {
		return nil, c.payloadError(operation, err)
	}
	items, err := payload.Items(raw)
	if err != nil {
		return nil, c.payloadError(operation, err)
	}
	return items, nil
}

// payloadError records a response shape mismatch. The error is returned
// unwrapped so callers can match *payload.MissingKeyError directly.
func (c *Client) payloadError(operation string, err error) error {
	errorsTotal.WithLabelValues(kindPayload).Inc()
	c.logger.Warn().Err(err).Str("operation", operation).Msg("Unexpected response shape")
	return err
}
