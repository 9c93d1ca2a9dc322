package translation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]Response
	readErr error
}

func (m *memoryCache) Get(_ context.Context, key string) (Response, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return Response{}, false, m.readErr
	}
	resp, ok := m.entries[key]
	return resp, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, resp Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]Response)
	}
	m.entries[key] = resp
	return nil
}

type countingAPI struct {
	API
	translations int
}

func (c *countingAPI) Translate(ctx context.Context, req Request) (Response, error) {
	c.translations++
	return c.API.Translate(ctx, req)
}

func TestCachedAPI_ServesRepeatsFromCache(t *testing.T) {
	t.Parallel()

	inner := &countingAPI{API: NewService(NewStubTranslator(nil), nil)}
	api := WithCache(inner, &memoryCache{}, zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	req := Request{Text: "hello", TargetLanguage: "fr"}
	first, err := api.Translate(ctx, req)
	require.NoError(t, err)
	second, err := api.Translate(ctx, req)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, "bonjour", second.TranslatedText)
	require.Equal(t, 1, inner.translations)
}

func TestCachedAPI_ReadFailureFallsThrough(t *testing.T) {
	t.Parallel()

	inner := &countingAPI{API: NewService(NewStubTranslator(nil), nil)}
	api := WithCache(inner, &memoryCache{readErr: errors.New("redis down")}, nil)

	resp, err := api.Translate(context.Background(), Request{Text: "hello", SourceLanguage: "en", TargetLanguage: "de"})
	require.NoError(t, err)
	require.Equal(t, "hallo", resp.TranslatedText)
	require.Equal(t, 1, inner.translations)
}

func TestCachedAPI_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	cache := &memoryCache{}
	api := WithCache(NewService(NewStubTranslator(nil), nil), cache, nil)

	_, err := api.Translate(context.Background(), Request{Text: "", TargetLanguage: "de"})
	require.ErrorIs(t, err, ErrEmptyText)
	require.Empty(t, cache.entries)
}

func TestCacheKeyDistinguishesLanguages(t *testing.T) {
	t.Parallel()

	a := CacheKey(Request{Text: "hello", SourceLanguage: "auto", TargetLanguage: "es"})
	b := CacheKey(Request{Text: "hello", SourceLanguage: "auto", TargetLanguage: "fr"})
	c := CacheKey(Request{Text: "hello", SourceLanguage: "en", TargetLanguage: "es"})
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
	require.Equal(t, a, CacheKey(Request{Text: "hello", SourceLanguage: "auto", TargetLanguage: "es"}))
}
