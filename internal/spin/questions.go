package spin

type QuestionKind string

const (
	KindSingle   QuestionKind = "single"
	KindMultiple QuestionKind = "multiple"
	KindMatrix   QuestionKind = "matrix"
)

type Question struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Kind    QuestionKind `json:"kind"`
	Options []string     `json:"options,omitempty"`
	Rows    []string     `json:"rows,omitempty"`
	Columns []string     `json:"columns,omitempty"`
}

// QuestionSet is one survey; Category labels the stored responses.
type QuestionSet struct {
	Category  string     `json:"category"`
	Questions []Question `json:"questions"`
}

// DefaultSets rotate across a user's successive spins.
var DefaultSets = []QuestionSet{
	{
		Category: "Overall Experience",
		Questions: []Question{
			{ID: "rating", Prompt: "How would you rate your overall Youthopia experience?", Kind: KindSingle, Options: []string{"1", "2", "3", "4", "5"}},
			{ID: "favorite_aspect", Prompt: "What did you enjoy most about the engagement activities?", Kind: KindSingle, Options: []string{"Events", "Prizes", "Community", "Organization", "Other"}},
			{ID: "would_recommend", Prompt: "Would you recommend Youthopia to your friends?", Kind: KindSingle, Options: []string{"Yes", "Maybe", "No"}},
		},
	},
	{
		Category: "Engagement Activities",
		Questions: []Question{
			{ID: "activities", Prompt: "Which activities did you take part in?", Kind: KindMultiple, Options: []string{"Competitions", "Workshops", "Performances", "Stalls", "Games"}},
			{ID: "logistics", Prompt: "How did these go for you?", Kind: KindMatrix, Rows: []string{"Registration", "Venue", "Schedule"}, Columns: []string{"Poor", "Okay", "Great"}},
			{ID: "discovery", Prompt: "How did you hear about Youthopia?", Kind: KindSingle, Options: []string{"College", "Friends", "Social Media", "Other"}},
		},
	},
	{
		Category: "Prizes & Rewards",
		Questions: []Question{
			{ID: "wheel_fairness", Prompt: "How fair does the spin wheel feel?", Kind: KindSingle, Options: []string{"Very fair", "Fair", "Unfair"}},
			{ID: "goodies", Prompt: "Which goodies would you like to redeem?", Kind: KindMultiple, Options: []string{"Diary", "Sipper", "Keychain", "Badge"}},
			{ID: "clarity", Prompt: "How clear were these?", Kind: KindMatrix, Rows: []string{"Spin wheel", "Redemption", "Points"}, Columns: []string{"Confusing", "Clear"}},
		},
	},
}

// SetIndex returns the question set used for a user's nth spin.
func SetIndex(ordinal, numSets int) int {
	if numSets <= 0 {
		return 0
	}
	i := ordinal % numSets
	if i < 0 {
		i += numSets
	}
	return i
}
