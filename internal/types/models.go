package types

// Audio is an uploaded call recording. Filename and ContentType are optional
// container hints forwarded to the speech-to-text service.
type Audio struct {
	Data        []byte `json:"-"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// Transcript is plain text produced by transcription or a reshaping stage.
type Transcript string

func (t Transcript) String() string { return string(t) }

// StageResult is the text returned by one evaluation stage, JSON for the
// structured stages.
type StageResult string

func (r StageResult) String() string { return string(r) }

// Category labels one of the five evaluated aspects of a call.
type Category string

const (
	CategoryCompany          Category = "自社紹介"
	CategoryApproach         Category = "アプローチ"
	CategoryCallLength       Category = "通話時間"
	CategoryCustomerReaction Category = "顧客反応"
	CategoryManner           Category = "マナー"
)

var categories = [...]Category{
	CategoryCompany,
	CategoryApproach,
	CategoryCallLength,
	CategoryCustomerReaction,
	CategoryManner,
}

// Categories returns the five categories in aggregation order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories[:])
	return out
}

func (c Category) index() int {
	for i, v := range categories {
		if v == c {
			return i
		}
	}
	return -1
}
