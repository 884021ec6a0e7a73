// Package lastfm wraps the Last.fm web API: similar-artist lists for
// the similarity graph, and artist lookup/search for validating names
// the LLM invents.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/musecraft/musecraft/internal/core/model"
)

const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(apiKey, baseURL string, timeout time.Duration, perSecond float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if perSecond == 0 {
		perSecond = 5
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1),
	}
}

type similarResponse struct {
	SimilarArtists struct {
		Artist []struct {
			Name  string `json:"name"`
			Match string `json:"match"`
		} `json:"artist"`
	} `json:"similarartists"`
	Error int `json:"error"`
}

// GetSimilar returns up to limit artists similar to name, ordered by
// descending match as Last.fm ranks them.
func (c *Client) GetSimilar(ctx context.Context, name string, limit int) ([]model.SimilarArtist, error) {
	params := url.Values{
		"method": {"artist.getsimilar"},
		"artist": {name},
		"limit":  {strconv.Itoa(limit)},
	}

	var resp similarResponse
	if err := c.call(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != 0 {
		return nil, nil
	}

	similar := make([]model.SimilarArtist, 0, len(resp.SimilarArtists.Artist))
	for _, a := range resp.SimilarArtists.Artist {
		match, err := strconv.ParseFloat(a.Match, 64)
		if err != nil {
			continue
		}
		similar = append(similar, model.SimilarArtist{Name: a.Name, Match: match})
	}
	return similar, nil
}

type infoResponse struct {
	Artist *struct {
		Name  string `json:"name"`
		URL   string `json:"url"`
		Stats struct {
			Listeners string `json:"listeners"`
			Playcount string `json:"playcount"`
		} `json:"stats"`
		Bio *struct {
			Summary string `json:"summary"`
		} `json:"bio"`
		Tags *struct {
			Tag []struct {
				Name string `json:"name"`
			} `json:"tag"`
		} `json:"tags"`
	} `json:"artist"`
	Error int `json:"error"`
}

// GetArtist looks up an artist by exact name. Returns (nil, nil) when
// Last.fm does not know the name.
func (c *Client) GetArtist(ctx context.Context, name string) (*model.ArtistInfo, error) {
	params := url.Values{
		"method": {"artist.getinfo"},
		"artist": {name},
	}

	var resp infoResponse
	if err := c.call(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != 0 || resp.Artist == nil {
		return nil, nil
	}

	artist := &model.ArtistInfo{
		Name:      resp.Artist.Name,
		URL:       resp.Artist.URL,
		Listeners: atoi(resp.Artist.Stats.Listeners),
		Playcount: atoi(resp.Artist.Stats.Playcount),
	}
	if resp.Artist.Bio != nil {
		artist.Bio = resp.Artist.Bio.Summary
	}
	if resp.Artist.Tags != nil {
		for _, t := range resp.Artist.Tags.Tag {
			artist.Tags = append(artist.Tags, t.Name)
		}
	}
	return artist, nil
}

type searchResponse struct {
	Results struct {
		ArtistMatches struct {
			Artist []struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"artistmatches"`
	} `json:"results"`
}

// SearchArtist fuzzy-matches a query and resolves the best hit to full
// info. Returns (nil, nil) when nothing matches.
func (c *Client) SearchArtist(ctx context.Context, query string) (*model.ArtistInfo, error) {
	params := url.Values{
		"method": {"artist.search"},
		"artist": {query},
		"limit":  {"1"},
	}

	var resp searchResponse
	if err := c.call(ctx, params, &resp); err != nil {
		return nil, err
	}
	matches := resp.Results.ArtistMatches.Artist
	if len(matches) == 0 {
		return nil, nil
	}
	return c.GetArtist(ctx, matches[0].Name)
}

func (c *Client) call(ctx context.Context, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lastfm: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
