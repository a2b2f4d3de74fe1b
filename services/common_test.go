package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanAIResponseText(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                        `{"a":1}`,
		"```json\n{\"a\":1}\n```":        `{"a":1}`,
		"```JSON\n{\"a\":1}\n```":        `{"a":1}`,
		"```\n{\"a\":1}\n```":            `{"a":1}`,
		"Sure!\n```json\n{\"a\":1}```ok": `{"a":1}`,
		"  {\"a\":1}  \n":                `{"a":1}`,
		"```json\n{\"a\":1}":             `{"a":1}`,
	}
	for input, want := range cases {
		assert.Equal(t, want, CleanAIResponseText(input), input)
	}
}

func TestReadFileFromUrl(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Write([]byte("content"))
	}))
	defer server.Close()

	body, err := ReadFileFromUrl(context.Background(), nil, server.URL+"/file")
	require.NoError(t, err)
	assert.Equal(t, "content", string(body))

	_, err = ReadFileFromUrl(context.Background(), nil, server.URL+"/missing")
	assert.ErrorContains(t, err, "404")
}

func TestStrPointer(t *testing.T) {
	assert.Nil(t, StrPointer(""))
	assert.Equal(t, "navy", *StrPointer("navy"))
}
