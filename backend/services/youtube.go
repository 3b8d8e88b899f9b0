package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"learntube/backend/utils"
)

// YouTubeService imports playlist metadata from the YouTube Data API v3.
type YouTubeService struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewYouTubeService(apiKey string) *YouTubeService {
	return &YouTubeService{
		APIKey:  apiKey,
		BaseURL: "https://www.googleapis.com/youtube/v3",
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ImportedLesson is one playlist entry in playlist order.
type ImportedLesson struct {
	YoutubeID string `json:"youtubeId"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Duration  int    `json:"duration"` // minutes
}

type ImportedPlaylist struct {
	Title      string           `json:"title"`
	Instructor string           `json:"instructor"`
	Thumbnail  string           `json:"thumbnail"`
	Lessons    []ImportedLesson `json:"lessons"`
}

type ytThumbnail struct {
	URL string `json:"url"`
}

type ytSnippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	Thumbnails   struct {
		Medium ytThumbnail `json:"medium"`
	} `json:"thumbnails"`
}

type ytPlaylistResponse struct {
	Items []struct {
		Snippet ytSnippet `json:"snippet"`
	} `json:"items"`
}

type ytPlaylistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet        ytSnippet `json:"snippet"`
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type ytVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// ImportPlaylist resolves a playlist URL or bare playlist ID into ordered
// lesson metadata, paging through the playlist and batch-fetching video
// durations.
func (ys *YouTubeService) ImportPlaylist(ref string) (*ImportedPlaylist, error) {
	playlistID, err := ExtractPlaylistID(ref)
	if err != nil {
		return nil, err
	}

	var listResp ytPlaylistResponse
	listURL := fmt.Sprintf("%s/playlists?part=snippet&id=%s&key=%s", ys.BaseURL, playlistID, ys.APIKey)
	if err := ys.getJSON(listURL, &listResp); err != nil {
		return nil, err
	}

	result := &ImportedPlaylist{}
	if len(listResp.Items) > 0 {
		info := listResp.Items[0].Snippet
		result.Title = info.Title
		result.Instructor = info.ChannelTitle
		result.Thumbnail = info.Thumbnails.Medium.URL
	}

	items, err := ys.fetchAllPlaylistItems(playlistID)
	if err != nil {
		return nil, err
	}

	durations, err := ys.fetchDurations(items.ids)
	if err != nil {
		return nil, err
	}

	for i, id := range items.ids {
		duration, ok := durations[id]
		if !ok || duration <= 0 {
			duration = defaultDurationMin
		}
		result.Lessons = append(result.Lessons, ImportedLesson{
			YoutubeID: id,
			Title:     items.titles[i],
			Thumbnail: items.thumbnails[i],
			Duration:  duration,
		})
	}

	return result, nil
}

type playlistItems struct {
	ids        []string
	titles     []string
	thumbnails []string
}

func (ys *YouTubeService) fetchAllPlaylistItems(playlistID string) (*playlistItems, error) {
	items := &playlistItems{}
	pageToken := ""

	for {
		itemsURL := fmt.Sprintf("%s/playlistItems?part=snippet,contentDetails&playlistId=%s&maxResults=50&key=%s",
			ys.BaseURL, playlistID, ys.APIKey)
		if pageToken != "" {
			itemsURL += "&pageToken=" + pageToken
		}

		var resp ytPlaylistItemsResponse
		if err := ys.getJSON(itemsURL, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			items.ids = append(items.ids, item.ContentDetails.VideoID)
			items.titles = append(items.titles, item.Snippet.Title)
			items.thumbnails = append(items.thumbnails, item.Snippet.Thumbnails.Medium.URL)
		}

		if resp.NextPageToken == "" {
			return items, nil
		}
		pageToken = resp.NextPageToken
	}
}

// fetchDurations resolves video durations in batches of 50, the API's
// per-request id limit.
func (ys *YouTubeService) fetchDurations(videoIDs []string) (map[string]int, error) {
	durations := make(map[string]int, len(videoIDs))

	for i := 0; i < len(videoIDs); i += 50 {
		end := i + 50
		if end > len(videoIDs) {
			end = len(videoIDs)
		}

		videosURL := fmt.Sprintf("%s/videos?part=contentDetails&id=%s&key=%s",
			ys.BaseURL, strings.Join(videoIDs[i:end], ","), ys.APIKey)

		var resp ytVideosResponse
		if err := ys.getJSON(videosURL, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			durations[item.ID] = ParseISODuration(item.ContentDetails.Duration)
		}
	}

	return durations, nil
}

func (ys *YouTubeService) getJSON(rawURL string, out interface{}) error {
	resp, err := ys.Client.Get(rawURL)
	if err != nil {
		return fmt.Errorf("youtube request: %v: %w", err, utils.ErrCollaborator)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube responded with %d: %w", resp.StatusCode, utils.ErrCollaborator)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube response: %v: %w", err, utils.ErrCollaborator)
	}

	return nil
}

// ExtractPlaylistID pulls the playlist ID out of a full YouTube URL, or
// passes a bare ID straight through.
func ExtractPlaylistID(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("playlist reference is required: %w", utils.ErrValidation)
	}

	if !strings.Contains(ref, "youtube.com") && !strings.Contains(ref, "youtu.be") {
		return ref, nil
	}

	if parsed, err := url.Parse(ref); err == nil {
		if id := parsed.Query().Get("list"); id != "" {
			return id, nil
		}
	}

	if _, after, found := strings.Cut(ref, "list="); found {
		if id, _, _ := strings.Cut(after, "&"); id != "" {
			return id, nil
		}
	}

	return "", fmt.Errorf("invalid playlist URL: %w", utils.ErrValidation)
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO-8601 duration (PT1H2M10S) to whole
// minutes, rounding up past 30 seconds. Anything unparsable falls back to
// the 10-minute default.
func ParseISODuration(duration string) int {
	match := isoDurationRe.FindStringSubmatch(duration)
	if match == nil {
		return defaultDurationMin
	}

	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	seconds, _ := strconv.Atoi(match[3])

	total := hours*60 + minutes
	if seconds > 30 {
		total++
	}
	return total
}
