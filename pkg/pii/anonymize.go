package pii

import (
	"context"
	"sort"

	"github.com/scanforge/engine/pkg/entropy"
)

// Anonymize returns a copy of text with every entity the regex backend can
// find replaced by its masked form. It always uses
// the deterministic regex backend regardless of which backend an Analyzer
// was constructed with, since anonymization needs exact character spans to
// splice, not an NLP model's span estimate.
func Anonymize(text string) string {
	backend := NewRegexBackend()
	entities, err := backend.Detect(context.Background(), text)
	if err != nil || len(entities) == 0 {
		return text
	}

	sort.Slice(entities, func(i, j int) bool { return entities[i].Start < entities[j].Start })

	out := []byte(text)
	// Replace from the end so earlier byte offsets stay valid as the
	// string is rebuilt back-to-front.
	for i := len(entities) - 1; i >= 0; i-- {
		e := entities[i]
		masked := entropy.Mask(e.Value)
		out = append(out[:e.Start], append([]byte(masked), out[e.End:]...)...)
	}
	return string(out)
}
