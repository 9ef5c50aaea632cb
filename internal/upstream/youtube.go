package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ExtractVideoID pulls the video id out of a youtube.com/watch or youtu.be
// link. The host is matched exactly so lookalike domains are rejected.
func ExtractVideoID(youtubeURL string) (string, error) {
	raw := youtubeURL
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse youtube url: %w", err)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "youtube.com":
		if u.Path != "/watch" {
			return "", fmt.Errorf("not a valid youtube url: %q", youtubeURL)
		}
		id := u.Query().Get("v")
		if id == "" {
			return "", fmt.Errorf("no video id in url %q", youtubeURL)
		}
		return id, nil
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if i := strings.IndexByte(id, '/'); i >= 0 {
			id = id[:i]
		}
		if id == "" {
			return "", fmt.Errorf("no video id in url %q", youtubeURL)
		}
		return id, nil
	default:
		return "", fmt.Errorf("not a valid youtube url: %q", youtubeURL)
	}
}

// TranscriptClient fetches video transcripts from the RapidAPI transcript
// service used upstream of quiz generation.
type TranscriptClient struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

func NewTranscriptClient(host, apiKey string) *TranscriptClient {
	return &TranscriptClient{
		host:       host,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
}

// FetchTranscript returns the transcript (or pre-built summary) for a video
// id. The service sometimes answers with unstructured text; that text is
// returned as-is and fed into the generation prompt.
func (c *TranscriptClient) FetchTranscript(ctx context.Context, videoID string) (string, error) {
	endpoint := fmt.Sprintf("https://%s/api/v1/get-transcript-v2?video_id=%s&platform=youtube", c.host, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript request failed with status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}

	var parsed transcriptResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Transcript != "" {
			return parsed.Transcript, nil
		}
		if parsed.Summary != "" {
			return parsed.Summary, nil
		}
	}
	return string(body), nil
}
