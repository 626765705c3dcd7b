package news

import (
	"math"
	"strings"
)

// Sentiment lexicon tuned for finance headlines. Weights roughly follow
// valence intensity: strongly directional words score higher than mild ones.
var lexicon = map[string]float64{
	// positive
	"gain":        1.5,
	"gains":       1.5,
	"surge":       2.5,
	"surges":      2.5,
	"rally":       2.0,
	"rallies":     2.0,
	"jump":        1.8,
	"jumps":       1.8,
	"soar":        2.5,
	"soars":       2.5,
	"rise":        1.2,
	"rises":       1.2,
	"record":      1.0,
	"beat":        1.8,
	"beats":       1.8,
	"profit":      1.5,
	"profits":     1.5,
	"growth":      1.5,
	"strong":      1.3,
	"upgrade":     2.0,
	"upgraded":    2.0,
	"buy":         1.0,
	"bullish":     2.0,
	"outperform":  1.8,
	"expansion":   1.2,
	"dividend":    0.8,
	"wins":        1.5,
	"approval":    1.0,
	"breakthrough": 1.8,

	// negative
	"fall":       -1.2,
	"falls":      -1.2,
	"drop":       -1.5,
	"drops":      -1.5,
	"plunge":     -2.5,
	"plunges":    -2.5,
	"crash":      -3.0,
	"crashes":    -3.0,
	"slump":      -2.0,
	"slumps":     -2.0,
	"loss":       -1.8,
	"losses":     -1.8,
	"weak":       -1.3,
	"miss":       -1.5,
	"misses":     -1.5,
	"downgrade":  -2.0,
	"downgraded": -2.0,
	"sell":       -1.0,
	"bearish":    -2.0,
	"fraud":      -3.0,
	"probe":      -1.5,
	"penalty":    -1.5,
	"lawsuit":    -1.5,
	"default":    -2.5,
	"debt":       -0.8,
	"cut":        -1.0,
	"cuts":       -1.0,
	"layoff":     -2.0,
	"layoffs":    -2.0,
	"decline":    -1.3,
	"declines":   -1.3,
	"warning":    -1.5,
}

// Analyzer scores headline text on a [-1, 1] scale.
type Analyzer struct{}

// NewAnalyzer creates a lexicon-based sentiment analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// ScoreHeadline returns the compound sentiment of one headline. The raw
// valence sum is squashed so a single strong word cannot saturate the scale.
func (a *Analyzer) ScoreHeadline(headline string) float64 {
	var sum float64
	for _, word := range strings.Fields(strings.ToLower(headline)) {
		word = strings.Trim(word, ".,;:!?'\"()")
		if v, ok := lexicon[word]; ok {
			sum += v
		}
	}
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+15)
}

// ScoreHeadlines averages the compound score over the given headlines. An
// empty slice is neutral.
func (a *Analyzer) ScoreHeadlines(headlines []string) float64 {
	if len(headlines) == 0 {
		return 0
	}
	var total float64
	for _, h := range headlines {
		total += a.ScoreHeadline(h)
	}
	return total / float64(len(headlines))
}
