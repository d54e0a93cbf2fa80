package csv

import (
	"strings"
)

var candidates = []Delimiter{DelimiterComma, DelimiterSemicolon, DelimiterTab, DelimiterPipe}

// DetectDelimiter picks the separator that occurs most consistently across
// the first non-empty lines of content. Comma wins ties and empty input.
func DetectDelimiter(content string) Delimiter {
	if len(content) > 4096 {
		content = content[:4096]
	}

	sample := make([]string, 0, 5)
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			sample = append(sample, trimmed)
			if len(sample) == 5 {
				break
			}
		}
	}
	// A truncated final line skews the counts
	if len(sample) > 1 && len(content) == 4096 {
		sample = sample[:len(sample)-1]
	}
	if len(sample) == 0 {
		return DelimiterComma
	}

	best := DelimiterComma
	bestScore := 0.0
	for _, d := range candidates {
		sum := 0
		counts := make([]int, len(sample))
		for i, line := range sample {
			counts[i] = strings.Count(line, string(rune(d)))
			sum += counts[i]
		}
		avg := float64(sum) / float64(len(counts))
		if avg == 0 {
			continue
		}

		variance := 0.0
		for _, c := range counts {
			diff := float64(c) - avg
			variance += diff * diff
		}
		variance /= float64(len(counts))

		if score := avg / (1 + variance); score > bestScore {
			bestScore = score
			best = d
		}
	}
	return best
}
