// Package extractor fetches a source article URL and extracts its plain text
// so the generator can base a draft on real reporting.
package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"marketpulse/logger"
)

var httpClient = &http.Client{Timeout: 20 * time.Second}

// FetchArticleText downloads url and returns the extracted plain text.
func FetchArticleText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extractor: unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	return ExtractText(string(body))
}

// ExtractText pulls the main article text out of an HTML document.
// Readability runs first; trafilatura is the fallback when readability
// returns nothing usable.
func ExtractText(htmlStr string) (string, error) {
	if text, err := extractWithReadability(htmlStr); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	} else if err != nil {
		logger.Log.Debugf("readability extraction failed, trying trafilatura: %v", err)
	}

	text, err := extractWithTrafilatura(htmlStr)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("extractor: no article text found")
	}
	return text, nil
}

func extractWithReadability(htmlStr string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func extractWithTrafilatura(htmlStr string) (string, error) {
	article, err := trafilatura.Extract(strings.NewReader(htmlStr), trafilatura.Options{})
	if err != nil {
		return "", err
	}
	return article.ContentText, nil
}
