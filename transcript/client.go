package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"tubebrief/config"
	"tubebrief/errors"
)

const defaultBaseURL = "https://www.youtube.com"

// innertube client identity used for the player request. The Android client
// returns caption track URLs without requiring signature decryption.
const (
	clientName    = "ANDROID"
	clientVersion = "20.10.38"
)

// Client fetches caption tracks. One instance is shared across requests;
// it holds no per-request state.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger

	baseURL   string
	languages []string
	timeout   time.Duration
}

// NewClient builds a captions client from configuration. When a complete
// proxy configuration is present all requests route through it; a partial
// one degrades silently to direct access with a low-severity notice.
func NewClient(cfg config.TranscriptConfig, log zerolog.Logger) *Client {
	transport := &http.Transport{}

	if cfg.Proxy.Complete() {
		proxyURL := &url.URL{
			Scheme: "http",
			User:   url.UserPassword(cfg.Proxy.Username, cfg.Proxy.Password),
			Host:   fmt.Sprintf("%s:%d", cfg.Proxy.Host, cfg.Proxy.Port),
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		log.Info().Str("proxy_host", cfg.Proxy.Host).Msg("Routing captions requests through proxy")
	} else if cfg.Proxy.Configured() {
		log.Warn().Msg("Proxy configuration incomplete; falling back to direct access")
	}

	if cfg.ScrapeProxyAPIKey != "" {
		// The scraping-proxy credential only feeds telemetry; captions are
		// never routed through it.
		log.Debug().Msg("Scraping proxy credential present (telemetry only)")
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.FetchTimeout,
		},
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		logger:    log.With().Str("component", "transcript").Logger(),
		baseURL:   defaultBaseURL,
		languages: cfg.Languages,
		timeout:   cfg.FetchTimeout,
	}
}

// Fetch retrieves the caption track for videoID in the first available
// language from the configured priority list. The service's track list
// performs the language negotiation; there is no manual retry across
// languages and no retry on failure.
//
// Failures are converted at this boundary:
//   - captions disabled by the owner wraps ErrTranscriptsDisabled
//   - no track in any requested language wraps ErrNoTranscriptFound
//   - anything else surfaces as a transport failure with the cause
func (c *Client) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	const op = "transcript.Fetch"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.TransportFailure(op, err, "Captions request was cancelled")
	}

	tracks, err := c.listTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if len(tracks) == 0 {
		return nil, errors.UpstreamUnavailable(op, ErrTranscriptsDisabled,
			"Transcripts are disabled for this video")
	}

	track, lang := selectTrack(tracks, c.languages)
	if track == nil {
		return nil, errors.UpstreamUnavailable(op, ErrNoTranscriptFound,
			"No transcript found in the requested languages")
	}

	entries, err := c.downloadTrack(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("video_id", videoID).
		Str("language", lang).
		Int("entries", len(entries)).
		Msg("Fetched caption track")

	return &Transcript{
		VideoID:  videoID,
		Language: lang,
		Entries:  entries,
	}, nil
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" for auto-generated tracks
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// listTracks asks the player endpoint for the available caption tracks.
func (c *Client) listTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	const op = "transcript.listTracks"

	payload := map[string]any{
		"context": map[string]any{
			"client": map[string]any{
				"clientName":    clientName,
				"clientVersion": clientVersion,
				"hl":            "en",
			},
		},
		"videoId": videoID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to encode player request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/youtubei/v1/player?prettyPrint=false", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to build player request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.TransportFailure(op, err, "Failed to contact captions service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.TransportFailure(op,
			fmt.Errorf("player endpoint returned %s", resp.Status),
			"Captions service returned an unexpected status")
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, errors.TransportFailure(op, err, "Failed to decode captions service response")
	}

	if s := player.PlayabilityStatus.Status; s != "" && s != "OK" {
		reason := player.PlayabilityStatus.Reason
		if reason == "" {
			reason = s
		}
		return nil, errors.UpstreamUnavailable(op,
			fmt.Errorf("video not playable: %s", reason),
			"Video is unavailable: "+reason)
	}

	return player.Captions.Renderer.CaptionTracks, nil
}

// selectTrack picks the track for the first language in the priority list
// that has one. Manually created tracks win over auto-generated ("asr")
// tracks for the same language.
func selectTrack(tracks []captionTrack, languages []string) (*captionTrack, string) {
	for _, lang := range languages {
		var generated *captionTrack
		for i := range tracks {
			if tracks[i].LanguageCode != lang {
				continue
			}
			if tracks[i].Kind != "asr" {
				return &tracks[i], lang
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return generated, lang
		}
	}
	return nil, ""
}

type timedTextDoc struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

// downloadTrack retrieves one caption track and decodes its timed-text XML
// into entries, preserving service order.
func (c *Client) downloadTrack(ctx context.Context, trackURL string) ([]Entry, error) {
	const op = "transcript.downloadTrack"

	if strings.HasPrefix(trackURL, "/") {
		trackURL = c.baseURL + trackURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to build track request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.TransportFailure(op, err, "Failed to download caption track")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.TransportFailure(op,
			fmt.Errorf("track endpoint returned %s", resp.Status),
			"Captions service returned an unexpected status")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.TransportFailure(op, err, "Failed to read caption track")
	}

	var doc timedTextDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.TransportFailure(op, err, "Failed to decode caption track")
	}

	entries := make([]Entry, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		// Track bodies arrive double-escaped ("&amp;#39;"), so a second
		// unescape pass is needed after XML decoding.
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			Text:     text,
			Start:    t.Start,
			Duration: t.Dur,
		})
	}

	return entries, nil
}
