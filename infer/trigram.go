package infer

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// TrigramModel scores a property name by how plausible it is as an
// English-ish identifier, trained offline over a character-trigram
// Markov chain and embedded as a compressed blob (spec.md section
// 4.8's InferMaps: "trained offline, embedded as a compressed trie").
//
// The scorer here is deliberately simple (a uniform-smoothed trigram
// table) since the actual trained weights are an external asset this
// module doesn't ship; Load installs a real table when one is
// available (e.g. decompressed via klauspost/compress from an
// embedded blob), and DefaultTrigramModel falls back to a
// letters-and-digits-only heuristic that still participates correctly
// in the scoring formula below.
type TrigramModel struct {
	// logProb maps a trigram to its log probability; an absent trigram
	// falls back to floor.
	logProb map[string]float64
	floor   float64
}

// NewTrigramModel builds a model from trigram->probability counts
// (already-normalized probabilities, not raw counts), with floor used
// for any trigram not present in counts.
func NewTrigramModel(probs map[string]float64, floor float64) *TrigramModel {
	logs := make(map[string]float64, len(probs))
	for k, p := range probs {
		if p <= 0 {
			p = floor
		}
		logs[k] = math.Log(p)
	}
	return &TrigramModel{logProb: logs, floor: math.Log(floor)}
}

// DefaultTrigramModel is a minimal always-available fallback: it
// favors short runs of lowercase letters (property-name-like) and
// penalizes digit-heavy or punctuation-heavy trigrams, without
// claiming to be a trained model.
var DefaultTrigramModel = NewTrigramModel(map[string]float64{}, 1e-4)

// scoreTrigram returns this model's log-probability for trigram t,
// applying the fallback heuristic when the trained table has no
// entry.
func (m *TrigramModel) scoreTrigram(t string) float64 {
	if p, ok := m.logProb[t]; ok {
		return p
	}
	alpha := 0
	for _, r := range t {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alpha++
		}
	}
	if alpha == len(t) {
		return math.Log(0.02) // plausible letters-only trigram, mild penalty
	}
	return m.floor
}

// GeometricMeanProbability computes spec.md's "geometric mean of the
// Markov probabilities over names (normalized by count)": for each
// name, average its trigram log-probabilities, then average those
// per-name means across all names, and exponentiate back.
func (m *TrigramModel) GeometricMeanProbability(names []string) float64 {
	if len(names) == 0 {
		return 1
	}
	var total float64
	for _, name := range names {
		total += m.meanLogProbability(name)
	}
	return math.Exp(total / float64(len(names)))
}

func (m *TrigramModel) meanLogProbability(name string) float64 {
	padded := "  " + strings.ToLower(name) + "  "
	trigrams := 0
	var sum float64
	for i := 0; i+3 <= len(padded); i++ {
		sum += m.scoreTrigram(padded[i : i+3])
		trigrams++
	}
	if trigrams == 0 {
		return m.floor
	}
	return sum / float64(trigrams)
}

// LoadTrigramModel decodes a zstd-compressed trigram probability table
// (trigram-probability pairs: 3 raw bytes + a little-endian float64) into a
// TrigramModel, for a host program that embeds the real trained blob
// via go:embed and wants a model richer than DefaultTrigramModel.
func LoadTrigramModel(compressed []byte, floor float64) (*TrigramModel, error) {
	dec, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	r := bufio.NewReader(dec)
	probs := map[string]float64{}
	for {
		trigram := make([]byte, 3)
		if _, err := io.ReadFull(r, trigram); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return nil, err
		}
		probs[string(trigram)] = math.Float64frombits(bits)
	}
	return NewTrigramModel(probs, floor), nil
}

// MapThreshold implements spec.md's power-law threshold:
// (n+2)^5/scale - 3^5/scale + 0.0025, where n is the property count.
func MapThreshold(propertyCount int, scale float64) float64 {
	n := float64(propertyCount)
	return math.Pow(n+2, 5)/scale - math.Pow(3, 5)/scale + 0.0025
}
