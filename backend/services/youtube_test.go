package services

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"learntube/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"PLabc123", "PLabc123", false},
		{"https://www.youtube.com/playlist?list=PLxyz", "PLxyz", false},
		{"https://www.youtube.com/watch?v=abc&list=PLdef&index=2", "PLdef", false},
		{"https://youtu.be/abc?list=PLghi", "PLghi", false},
		{"https://www.youtube.com/watch?v=abc", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ExtractPlaylistID(tt.ref)
		if tt.wantErr {
			assert.True(t, errors.Is(err, utils.ErrValidation), "ref %q", tt.ref)
			continue
		}
		require.NoError(t, err, "ref %q", tt.ref)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseISODuration(t *testing.T) {
	assert.Equal(t, 62, ParseISODuration("PT1H2M10S"))
	assert.Equal(t, 63, ParseISODuration("PT1H2M45S")) // >30s rounds up
	assert.Equal(t, 4, ParseISODuration("PT4M"))
	assert.Equal(t, 120, ParseISODuration("PT2H"))
	assert.Equal(t, 0, ParseISODuration("PT15S"))
	assert.Equal(t, 10, ParseISODuration(""))
	assert.Equal(t, 10, ParseISODuration("garbage"))
}

func TestImportPlaylist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/playlists":
			fmt.Fprint(w, `{"items":[{"snippet":{"title":"Go Course","channelTitle":"Gopher Academy","thumbnails":{"medium":{"url":"http://img/pl.jpg"}}}}]}`)
		case "/playlistItems":
			if r.URL.Query().Get("pageToken") == "" {
				fmt.Fprint(w, `{"nextPageToken":"p2","items":[{"snippet":{"title":"Intro","thumbnails":{"medium":{"url":"http://img/1.jpg"}}},"contentDetails":{"videoId":"vid1"}}]}`)
			} else {
				fmt.Fprint(w, `{"items":[{"snippet":{"title":"Channels","thumbnails":{"medium":{"url":"http://img/2.jpg"}}},"contentDetails":{"videoId":"vid2"}}]}`)
			}
		case "/videos":
			fmt.Fprint(w, `{"items":[{"id":"vid1","contentDetails":{"duration":"PT12M40S"}},{"id":"vid2","contentDetails":{"duration":"PT8M"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	svc := NewYouTubeService("test-key")
	svc.BaseURL = server.URL

	playlist, err := svc.ImportPlaylist("https://www.youtube.com/playlist?list=PLgo")
	require.NoError(t, err)

	assert.Equal(t, "Go Course", playlist.Title)
	assert.Equal(t, "Gopher Academy", playlist.Instructor)
	assert.Equal(t, "http://img/pl.jpg", playlist.Thumbnail)

	require.Len(t, playlist.Lessons, 2)
	assert.Equal(t, "vid1", playlist.Lessons[0].YoutubeID)
	assert.Equal(t, "Intro", playlist.Lessons[0].Title)
	assert.Equal(t, 13, playlist.Lessons[0].Duration)
	assert.Equal(t, "vid2", playlist.Lessons[1].YoutubeID)
	assert.Equal(t, 8, playlist.Lessons[1].Duration)
}

func TestImportPlaylistUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	svc := NewYouTubeService("test-key")
	svc.BaseURL = server.URL

	_, err := svc.ImportPlaylist("PLgo")
	assert.True(t, errors.Is(err, utils.ErrCollaborator))
}
