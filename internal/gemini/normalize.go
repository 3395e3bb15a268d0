package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Normalize converts a raw response into a Result.
//
// Only the first candidate is read. A missing narrative is replaced by FallbackText.
// Missing candidates, grounding metadata or chunks yield an empty place list.
// Chunks are kept as-is, including those without a title.
func Normalize(resp *Response) *Result {
	result := &Result{
		Text:   FallbackText,
		Places: []Place{},
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return result
	}
	first := resp.Candidates[0]

	if text := candidateText(first); text != "" {
		result.Text = text
	}

	if first.GroundingMetadata == nil {
		return result
	}
	for _, chunk := range first.GroundingMetadata.GroundingChunks {
		result.Places = append(result.Places, placeFromChunk(chunk))
	}

	return result
}

// candidateText concatenates the non-thought text parts of a candidate.
func candidateText(c *Candidate) string {
	if c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// placeFromChunk reads the optional maps fields of a grounding chunk.
func placeFromChunk(chunk *GroundingChunk) Place {
	var p Place
	if chunk == nil || chunk.Maps == nil {
		return p
	}
	m := chunk.Maps

	p.URI = deref(m.URI)
	p.Title = deref(m.Title)

	if m.PlaceAnswerSources != nil && len(m.PlaceAnswerSources.ReviewSnippets) > 0 {
		if s := m.PlaceAnswerSources.ReviewSnippets[0]; s != nil {
			p.ReviewSnippet = deref(s.Title)
		}
	}

	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// fromGenAI re-reads an SDK response through its JSON form into the
// optional-field record used by Normalize.
func fromGenAI(res *genai.GenerateContentResponse) (*Response, error) {
	if res == nil {
		return &Response{}, nil
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encoding SDK response: %w", err)
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}
