// Package chapter describes the three words of the journey and everything
// that differs between them: the gesture each one asks for, how the hand
// drives its visuals and which sounds it makes.
package chapter

// Color is a hue/saturation/brightness triple on 360/100/100 scales.
type Color struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	B float64 `json:"b"`
}

// Chapter is the immutable text and colour of one word.
type Chapter struct {
	Number        int    `json:"number"`
	Word          string `json:"word"`
	Native        string `json:"native"`
	Pronunciation string `json:"pronunciation"`
	Origin        string `json:"origin"`
	Meaning       string `json:"meaning"`
	Instruction   string `json:"instruction"`
	Narrative     string `json:"narrative"`
	Color         Color  `json:"color"`
}

// Count is the number of chapters in the journey.
const Count = 3

const (
	Hygge    = 0
	Komorebi = 1
	Fernweh  = 2
)

var chapters = [Count]Chapter{
	{
		Number:        1,
		Word:          "HYGGE",
		Native:        "hygge",
		Pronunciation: "HOO-gah",
		Origin:        "Danish",
		Meaning:       "The warmth of being together",
		Instruction:   "Show an open palm for 5 seconds",
		Narrative:     "You begin at home. The fire is lit. There is warmth here.",
		Color:         Color{H: 15, S: 75, B: 70},
	},
	{
		Number:        2,
		Word:          "KOMOREBI",
		Native:        "木漏れ日",
		Pronunciation: "koh-moh-REH-bee",
		Origin:        "Japanese",
		Meaning:       "Sunlight filtering through leaves",
		Instruction:   "Spread your fingers open to let light through",
		Narrative:     "You step outside. Light filters through the canopy above.",
		Color:         Color{H: 45, S: 65, B: 80},
	},
	{
		Number:        3,
		Word:          "FERNWEH",
		Native:        "Fernweh",
		Pronunciation: "FERN-vey",
		Origin:        "German",
		Meaning:       "An ache for distant places",
		Instruction:   "Reach toward the camera for 5 seconds",
		Narrative:     "The road stretches ahead. Something calls you forward.",
		Color:         Color{H: 255, S: 50, B: 65},
	},
}

// Get returns the chapter at index i, clamped into range.
func Get(i int) Chapter {
	if i < 0 {
		i = 0
	}
	if i >= Count {
		i = Count - 1
	}
	return chapters[i]
}

// All returns every chapter in journey order.
func All() []Chapter {
	out := make([]Chapter, Count)
	copy(out, chapters[:])
	return out
}
