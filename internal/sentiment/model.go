package sentiment

import "time"

// Analysis is the stored and served result for one video. CommentsData is
// [classified total, positive, neutral, negative]; consumers chart the last
// three segments.
type Analysis struct {
	VideoID           string    `json:"videoId"`
	Summary           string    `json:"summary"`
	Verdict           int       `json:"verdict"`
	RealTotalComments int64     `json:"real_total_comments"`
	MostHelpful       []string  `json:"most_helpful_comments"`
	CommentsData      []int     `json:"comments_data"`
	CreatedAt         time.Time `json:"created_at"`
}
