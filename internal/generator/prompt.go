package generator

import (
	"fmt"
	"strings"

	"photoframe/internal/textcache"
)

// PoemProbability is the chance the prompt prefers an original poem over a
// quotation.
const PoemProbability = 0.3

// ChooseKind maps a uniform draw in [0,1) to the preferred kind.
func ChooseKind(r float64) textcache.Kind {
	if r < PoemProbability {
		return textcache.KindPoem
	}
	return textcache.KindQuote
}

// BuildPrompt returns the instruction sent alongside the image. The
// preference is soft; the model may return the other kind if it fits the
// image better. When exclude is non-empty the model is told not to repeat it.
func BuildPrompt(prefer textcache.Kind, exclude string) string {
	var b strings.Builder

	b.WriteString("Look at this photo and write a short text to display beside it on a picture frame.\n")
	b.WriteString("Either compose an original poem of at most four short lines, ")
	b.WriteString("or choose a real, well-known quotation whose author you are certain of.\n")

	switch prefer {
	case textcache.KindPoem:
		b.WriteString("An original poem is preferred for this photo, but use a quotation if it clearly fits better.\n")
	default:
		b.WriteString("A quotation is preferred for this photo, but write a poem if nothing fits well.\n")
	}

	b.WriteString("Match the mood and subject of the image. Do not describe the image literally.\n")

	if exclude != "" {
		fmt.Fprintf(&b, "Do not use the following text, it is already shown with another photo:\n%q\n", exclude)
	}

	b.WriteString("Reply with a single JSON object and nothing else, in this exact shape:\n")
	b.WriteString(`{"content": "<the text>", "type": "poem" or "quote", "author": "<author>" or null}`)
	b.WriteString("\nUse null for the author of an original poem.")

	return b.String()
}
