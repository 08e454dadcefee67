package drafter

import "fmt"

// Kind tags one asset type of a teaching pack. Drafters are dispatched by
// kind through a lookup table, one drafter per kind.
type Kind string

const (
	KindSlides   Kind = "slides"
	KindQuiz     Kind = "quiz"
	KindPractice Kind = "practice"
	KindVideo    Kind = "video"
)

// AllKinds returns every asset kind in generation order.
func AllKinds() []Kind {
	return []Kind{KindSlides, KindQuiz, KindPractice, KindVideo}
}

// ParseKind validates a kind string from an external request.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSlides, KindQuiz, KindPractice, KindVideo:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown asset kind: %q", s)
}
