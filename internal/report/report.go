package report

import (
	"marquee/internal/dataset"
	"marquee/internal/model"
)

// DefaultTopN bounds the ranked listings.
const DefaultTopN = 10

// Report gathers every aggregate of one cleaned table.
type Report struct {
	Overview       Overview        `json:"overview"`
	Releases       []Count         `json:"releases_by_year"`
	Genres         []Count         `json:"genres"`
	Actors         []Count         `json:"top_actors"`
	Directors      []Count         `json:"top_directors"`
	DurationRating []Point         `json:"-"`
	GenreRatings   []Average       `json:"genre_ratings"`
	TopRated       []RatedMovie    `json:"top_rated"`
	Collaborations []Collaboration `json:"collaborations"`
	Terms          []Count         `json:"terms"`
	RatingTrend    []Point         `json:"rating_trend"`
	Predictions    []Point         `json:"-"`
}

// Build computes every aggregate of t. topN bounds the ranked listings;
// zero or less uses DefaultTopN.
func Build(t *dataset.Table, topN int) *Report {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Report{
		Overview:       NewOverview(t),
		Releases:       ReleasesByYear(t),
		Genres:         GenreDistribution(t, topN),
		Actors:         TopActors(t, topN),
		Directors:      TopDirectors(t, topN),
		DurationRating: DurationVsRating(t),
		GenreRatings:   GenreRatings(t),
		TopRated:       TopRated(t, topN),
		Collaborations: Collaborations(t, topN),
		Terms:          TermFrequencies(t, topN*3),
		RatingTrend:    RatingTrend(t),
	}
}

// AddEvaluation records the held-out predictions for the actual-vs-predicted
// chart.
func (r *Report) AddEvaluation(eval model.Evaluation) {
	r.Predictions = ActualVsPredicted(eval)
}
