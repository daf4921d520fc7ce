package analytics

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/konivrer-insights/internal/stats"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// SynergyRecord describes a card pair whose joint win rate beats the rate
// expected from the two cards independently.
type SynergyRecord struct {
	Card1           string  `json:"card1" yaml:"card1"`
	Card2           string  `json:"card2" yaml:"card2"`
	SynergyScore    float64 `json:"synergy_score" yaml:"synergy_score"`
	Confidence      float64 `json:"confidence" yaml:"confidence"`
	PairWinRate     float64 `json:"pair_win_rate" yaml:"pair_win_rate"`
	ExpectedWinRate float64 `json:"expected_win_rate" yaml:"expected_win_rate"`
	SampleSize      int     `json:"sample_size" yaml:"sample_size"` // matches played by decks holding both cards
	Occurrences     int     `json:"occurrences" yaml:"occurrences"` // decks holding both cards
}

// DeckSuggestion is a card worth adding to a deck because it pairs well with
// a card already in it.
type DeckSuggestion struct {
	CardID       string  `json:"card_id" yaml:"card_id"`
	SynergyWith  string  `json:"synergy_with" yaml:"synergy_with"`
	SynergyScore float64 `json:"synergy_score" yaml:"synergy_score"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
	PairWinRate  float64 `json:"pair_win_rate" yaml:"pair_win_rate"`
}

// tally accumulates wins over matches played.
type tally struct {
	wins    int
	matches int
}

func (t tally) rate(fallback float64) float64 {
	return stats.Rate(t.wins, t.matches, fallback)
}

type pairTally struct {
	tally
	decks int
}

// SynergyAnalyzer scores card pairs by win-rate uplift.
type SynergyAnalyzer struct {
	params Parameters
	logger *logrus.Entry
}

// NewSynergyAnalyzer creates a new synergy analyzer.
func NewSynergyAnalyzer(params Parameters, logger *logrus.Entry) *SynergyAnalyzer {
	return &SynergyAnalyzer{params: params, logger: orDiscard(logger)}
}

// Analyze computes synergy records from deck lists and the matches those decks played.
// Results are sorted by synergy score, highest first.
func (a *SynergyAnalyzer) Analyze(decks []models.Deck, matches []models.Match) []SynergyRecord {
	deckResults := a.deckResults(decks, matches)

	cardTallies := make(map[string]tally)
	pairTallies := make(map[cardPair]pairTally)

	seenDecks := make(map[string]bool, len(decks))
	for _, deck := range decks {
		result, ok := deckResults[deck.ID]
		if !ok || result.matches == 0 || seenDecks[deck.ID] {
			continue
		}
		seenDecks[deck.ID] = true

		cards := uniqueCards(deck.Cards)
		for i, card := range cards {
			t := cardTallies[card]
			t.wins += result.wins
			t.matches += result.matches
			cardTallies[card] = t

			for _, other := range cards[i+1:] {
				key := newCardPair(card, other)
				p := pairTallies[key]
				p.wins += result.wins
				p.matches += result.matches
				p.decks++
				pairTallies[key] = p
			}
		}
	}

	cardRates := make(map[string]float64, len(cardTallies))
	for card, t := range cardTallies {
		if t.matches >= a.params.MinSynergySupport {
			cardRates[card] = t.rate(0.5)
		}
	}

	records := make([]SynergyRecord, 0)
	for pair, t := range pairTallies {
		if t.matches < a.params.MinSynergySupport {
			continue
		}

		pairWinRate := t.rate(0.5)
		expected := (rateOr(cardRates, pair.A) + rateOr(cardRates, pair.B)) / 2
		score := pairWinRate - expected
		confidence := 1 - 1/math.Sqrt(float64(t.matches))

		if score <= 0 || confidence < a.params.MinSynergyConfidence {
			continue
		}

		records = append(records, SynergyRecord{
			Card1:           pair.A,
			Card2:           pair.B,
			SynergyScore:    score,
			Confidence:      confidence,
			PairWinRate:     pairWinRate,
			ExpectedWinRate: expected,
			SampleSize:      t.matches,
			Occurrences:     t.decks,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].SynergyScore != records[j].SynergyScore {
			return records[i].SynergyScore > records[j].SynergyScore
		}
		if records[i].Card1 != records[j].Card1 {
			return records[i].Card1 < records[j].Card1
		}
		return records[i].Card2 < records[j].Card2
	})

	a.logger.WithFields(logrus.Fields{
		"decks":   len(decks),
		"pairs":   len(pairTallies),
		"records": len(records),
	}).Debug("Card synergy analysis complete")

	return records
}

// deckResults tallies wins and matches played per known deck.
// Pending matches and references to unknown decks are skipped.
func (a *SynergyAnalyzer) deckResults(decks []models.Deck, matches []models.Match) map[string]tally {
	results := make(map[string]tally, len(decks))
	for _, deck := range decks {
		if deck.ID == "" {
			continue
		}
		results[deck.ID] = tally{}
	}

	dangling := 0
	for i := range matches {
		match := &matches[i]
		if match.IsPending() {
			continue
		}

		for _, side := range []models.Side{models.SideA, models.SideB} {
			deckID := match.Participant(side).DeckID
			if deckID == "" {
				continue
			}
			t, ok := results[deckID]
			if !ok {
				dangling++
				continue
			}
			t.matches++
			if match.Won(side) {
				t.wins++
			}
			results[deckID] = t
		}
	}

	if dangling > 0 {
		a.logger.WithField("references", dangling).Debug("Skipped match references to unknown decks")
	}

	return results
}

// SuggestCards returns up to n cards not yet in the deck that have synergy
// with a card already in it, best first. Each suggested card appears once,
// carrying its strongest synergy.
func SuggestCards(synergies []SynergyRecord, deck models.Deck, n int) []DeckSuggestion {
	if n <= 0 || len(synergies) == 0 || len(deck.Cards) == 0 {
		return []DeckSuggestion{}
	}

	inDeck := make(map[string]bool, len(deck.Cards))
	for _, card := range deck.Cards {
		inDeck[card] = true
	}

	best := make(map[string]DeckSuggestion)
	for _, rec := range synergies {
		var partner, anchor string
		switch {
		case inDeck[rec.Card1] && !inDeck[rec.Card2]:
			anchor, partner = rec.Card1, rec.Card2
		case inDeck[rec.Card2] && !inDeck[rec.Card1]:
			anchor, partner = rec.Card2, rec.Card1
		default:
			continue
		}

		current, seen := best[partner]
		if seen && (current.SynergyScore > rec.SynergyScore ||
			(current.SynergyScore == rec.SynergyScore && current.SynergyWith <= anchor)) {
			continue
		}
		best[partner] = DeckSuggestion{
			CardID:       partner,
			SynergyWith:  anchor,
			SynergyScore: rec.SynergyScore,
			Confidence:   rec.Confidence,
			PairWinRate:  rec.PairWinRate,
		}
	}

	suggestions := make([]DeckSuggestion, 0, len(best))
	for _, s := range best {
		suggestions = append(suggestions, s)
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].SynergyScore != suggestions[j].SynergyScore {
			return suggestions[i].SynergyScore > suggestions[j].SynergyScore
		}
		return suggestions[i].CardID < suggestions[j].CardID
	})

	if len(suggestions) > n {
		suggestions = suggestions[:n]
	}
	return suggestions
}

func uniqueCards(cards []string) []string {
	seen := make(map[string]bool, len(cards))
	unique := make([]string, 0, len(cards))
	for _, card := range cards {
		if card == "" || seen[card] {
			continue
		}
		seen[card] = true
		unique = append(unique, card)
	}
	sort.Strings(unique)
	return unique
}

func rateOr(rates map[string]float64, card string) float64 {
	if r, ok := rates[card]; ok {
		return r
	}
	return 0.5
}
