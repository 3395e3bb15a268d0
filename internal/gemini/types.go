package gemini

// Result is a normalized recommendation answer.
type Result struct {
	Text   string  `json:"text"`   // Narrative answer; never empty
	Places []Place `json:"places"` // Grounded places in service order; never nil
}

// Place is a map-grounded place reference. Empty fields are absent in the response.
type Place struct {
	URI           string `json:"uri,omitempty"`
	Title         string `json:"title,omitempty"`
	ReviewSnippet string `json:"review_snippet,omitempty"`
}

// HasTitle reports whether the place can be rendered.
func (p Place) HasTitle() bool {
	return p.Title != ""
}

// ============================================================================
// generateContent response
// ============================================================================

// Response is the subset of a generateContent response used for normalization.
// Every nested level is optional.
type Response struct {
	Candidates []*Candidate `json:"candidates,omitempty"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content           *Content           `json:"content,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// Content holds the parts of a generated answer.
type Content struct {
	Role  string  `json:"role,omitempty"`
	Parts []*Part `json:"parts,omitempty"`
}

// Part is a piece of generated content.
type Part struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

// GroundingMetadata carries the evidence attached to a candidate.
type GroundingMetadata struct {
	GroundingChunks []*GroundingChunk `json:"groundingChunks,omitempty"`
}

// GroundingChunk is a single piece of evidence. Only map chunks are used.
type GroundingChunk struct {
	Maps *MapsChunk `json:"maps,omitempty"`
}

// MapsChunk references a Google Maps place.
type MapsChunk struct {
	URI                *string             `json:"uri,omitempty"`
	Title              *string             `json:"title,omitempty"`
	PlaceAnswerSources *PlaceAnswerSources `json:"placeAnswerSources,omitempty"`
}

// PlaceAnswerSources lists the review excerpts backing a place.
type PlaceAnswerSources struct {
	ReviewSnippets []*ReviewSnippet `json:"reviewSnippets,omitempty"`
}

// ReviewSnippet is an excerpt of a place review. Title holds the review text;
// Review is a resource name and never shown.
type ReviewSnippet struct {
	Title    *string `json:"title,omitempty"`
	Review   *string `json:"review,omitempty"`
	ReviewID *string `json:"reviewId,omitempty"`
}
