package models

type Criterion struct {
	ID       int    `json:"id" db:"id" mapstructure:"id"`
	Title    string `json:"title" db:"title" mapstructure:"title"`
	MaxScore int    `json:"max_score" db:"max_score" mapstructure:"max_score"`
}

// Clamp bounds a recorded score to [0, MaxScore].
func (c Criterion) Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if c.MaxScore >= 0 && score > c.MaxScore {
		return c.MaxScore
	}
	return score
}
