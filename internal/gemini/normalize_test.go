package gemini

import "testing"

func ptr(s string) *string { return &s }

func textCandidate(text string) *Candidate {
	return &Candidate{Content: &Content{Parts: []*Part{{Text: text}}}}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		resp       *Response
		wantText   string
		wantPlaces []Place
	}{
		{
			name:       "nil response",
			resp:       nil,
			wantText:   FallbackText,
			wantPlaces: []Place{},
		},
		{
			name:       "no candidates",
			resp:       &Response{},
			wantText:   FallbackText,
			wantPlaces: []Place{},
		},
		{
			name:       "candidate without grounding metadata",
			resp:       &Response{Candidates: []*Candidate{textCandidate("Try these places.")}},
			wantText:   "Try these places.",
			wantPlaces: []Place{},
		},
		{
			name: "grounding metadata without chunks",
			resp: &Response{Candidates: []*Candidate{{
				Content:           &Content{Parts: []*Part{{Text: "Answer"}}},
				GroundingMetadata: &GroundingMetadata{},
			}}},
			wantText:   "Answer",
			wantPlaces: []Place{},
		},
		{
			name: "empty text uses fallback",
			resp: &Response{Candidates: []*Candidate{{
				Content: &Content{Parts: []*Part{{Text: ""}}},
			}}},
			wantText:   FallbackText,
			wantPlaces: []Place{},
		},
		{
			name: "thought parts are skipped and text parts joined",
			resp: &Response{Candidates: []*Candidate{{
				Content: &Content{Parts: []*Part{
					{Text: "thinking...", Thought: true},
					{Text: "Line one\n"},
					{Text: "Line two"},
				}},
			}}},
			wantText:   "Line one\nLine two",
			wantPlaces: []Place{},
		},
		{
			name: "places read from first candidate only",
			resp: &Response{Candidates: []*Candidate{
				{
					Content: &Content{Parts: []*Part{{Text: "First"}}},
					GroundingMetadata: &GroundingMetadata{GroundingChunks: []*GroundingChunk{
						{Maps: &MapsChunk{
							URI:   ptr("https://maps.google.com/?cid=1"),
							Title: ptr("Din Tai Fung"),
							PlaceAnswerSources: &PlaceAnswerSources{ReviewSnippets: []*ReviewSnippet{
								{Title: ptr("Best dumplings in town")},
								{Title: ptr("Second review")},
							}},
						}},
						{Maps: &MapsChunk{URI: ptr("https://maps.google.com/?cid=2")}},
						{},
					}},
				},
				{
					Content: &Content{Parts: []*Part{{Text: "Second"}}},
					GroundingMetadata: &GroundingMetadata{GroundingChunks: []*GroundingChunk{
						{Maps: &MapsChunk{Title: ptr("Ignored")}},
					}},
				},
			}},
			wantText: "First",
			wantPlaces: []Place{
				{URI: "https://maps.google.com/?cid=1", Title: "Din Tai Fung", ReviewSnippet: "Best dumplings in town"},
				{URI: "https://maps.google.com/?cid=2"},
				{},
			},
		},
		{
			name: "review resource name is never shown",
			resp: &Response{Candidates: []*Candidate{{
				GroundingMetadata: &GroundingMetadata{GroundingChunks: []*GroundingChunk{
					{Maps: &MapsChunk{
						Title: ptr("Raohe Night Market"),
						PlaceAnswerSources: &PlaceAnswerSources{ReviewSnippets: []*ReviewSnippet{
							{Review: ptr("places/ChIJraohe/reviews/ChZDSUhN"), ReviewID: ptr("ChZDSUhN")},
						}},
					}},
				}},
			}}},
			wantText: FallbackText,
			wantPlaces: []Place{
				{Title: "Raohe Night Market"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.resp)

			if got.Text != tt.wantText {
				t.Errorf("Normalize() text = %q, want %q", got.Text, tt.wantText)
			}
			if got.Text == "" {
				t.Error("Normalize() returned empty text")
			}
			if got.Places == nil {
				t.Fatal("Normalize() returned nil places")
			}
			if len(got.Places) != len(tt.wantPlaces) {
				t.Fatalf("Normalize() got %d places, want %d", len(got.Places), len(tt.wantPlaces))
			}
			for i, p := range got.Places {
				if p != tt.wantPlaces[i] {
					t.Errorf("Normalize() place[%d] = %+v, want %+v", i, p, tt.wantPlaces[i])
				}
			}
		})
	}
}

func TestPlaceHasTitle(t *testing.T) {
	if (Place{URI: "https://maps.google.com"}).HasTitle() {
		t.Error("HasTitle() = true for untitled place")
	}
	if !(Place{Title: "Cafe"}).HasTitle() {
		t.Error("HasTitle() = false for titled place")
	}
}
