package poll

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinefirst/uiatrace/pkg/buffer"
)

func TestURLFromTitle(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
		ok    bool
	}{
		{name: "url with marker", title: "https://example.com/docs - Google Chrome", want: "https://example.com/docs", ok: true},
		{name: "url without marker", title: "http://localhost:8080/admin", want: "http://localhost:8080/admin", ok: true},
		{name: "plain page title", title: "Inbox (4) - Google Chrome", ok: false},
		{name: "empty title", title: "", ok: false},
		{name: "marker only", title: " - Google Chrome", ok: false},
		{name: "ftp scheme rejected", title: "ftp://example.com - Google Chrome", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := urlFromTitle(tc.title, DefaultTitleSuffix)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBrowserTickAppendsAndDeduplicates(t *testing.T) {
	agg := buffer.NewAggregator()
	title := "https://example.com/a - Google Chrome"
	task, err := NewBrowserTask(BrowserOptions{
		Window: func() (BrowserWindow, error) {
			return BrowserWindow{Title: title, ProcessName: "chrome"}, nil
		},
		Sink:   agg,
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, task.Tick(ctx))
	require.NoError(t, task.Tick(ctx))
	require.NoError(t, task.Tick(ctx))

	title = "https://example.com/b - Google Chrome"
	require.NoError(t, task.Tick(ctx))

	urls := agg.SnapshotURLs()
	require.Len(t, urls, 2)
	assert.Equal(t, "https://example.com/a", urls[0].URL)
	assert.Equal(t, "https://example.com/b", urls[1].URL)
	assert.Equal(t, "chrome", urls[0].ProcessName)
}

func TestBrowserTickIgnoresNonURLTitles(t *testing.T) {
	agg := buffer.NewAggregator()
	task, err := NewBrowserTask(BrowserOptions{
		Window: func() (BrowserWindow, error) {
			return BrowserWindow{Title: "New Tab - Google Chrome", ProcessName: "chrome"}, nil
		},
		Sink:   agg,
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, task.Tick(context.Background()))
	assert.Empty(t, agg.SnapshotURLs())
}

func TestBrowserTickWindowFailure(t *testing.T) {
	agg := buffer.NewAggregator()
	task, err := NewBrowserTask(BrowserOptions{
		Window: func() (BrowserWindow, error) { return BrowserWindow{}, errors.New("window not found") },
		Sink:   agg,
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	err = task.Tick(context.Background())
	assert.Error(t, err)
	assert.Empty(t, agg.SnapshotURLs())
}

func TestNewBrowserTaskValidation(t *testing.T) {
	_, err := NewBrowserTask(BrowserOptions{Sink: buffer.NewAggregator()})
	assert.Error(t, err)

	_, err = NewBrowserTask(BrowserOptions{Window: func() (BrowserWindow, error) { return BrowserWindow{}, nil }})
	assert.Error(t, err)
}
