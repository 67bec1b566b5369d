// internal/nlu/classifier/classifier.go
package classifier

import (
	"context"
	"time"

	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/common/metrics"
	"childcare-assistant/internal/models"
	"childcare-assistant/internal/nlu/slots"
)

// ModelClassifier is the optional external-model fallback. When the rule
// table stays below the confidence threshold and a fallback is configured,
// the classifier delegates; on any fallback error it degrades to the
// heuristic result instead of failing the turn.
type ModelClassifier interface {
	Classify(ctx context.Context, utterance string, conv models.ConversationContext) (models.Intent, error)
}

// Config holds classifier tuning.
type Config struct {
	ConfidenceThreshold float64
}

// Classifier maps an utterance plus conversation context to a typed Intent.
// Classification is a pure function of (utterance, context, rule table);
// malformed text never errors, it degrades to IntentUnknown.
type Classifier struct {
	config   Config
	rules    []rule
	fallback ModelClassifier
	logger   logger.Logger
}

func New(config Config, fallback ModelClassifier, log logger.Logger) *Classifier {
	if config.ConfidenceThreshold == 0 {
		config.ConfidenceThreshold = 0.5
	}
	return &Classifier{
		config:   config,
		rules:    defaultRules,
		fallback: fallback,
		logger:   log.WithFields(map[string]interface{}{"component": "classifier"}),
	}
}

type candidate struct {
	intent    models.IntentType
	band      matchBand
	slots     map[string]interface{}
	score     float64
	ruleIndex int
}

// Classify evaluates the ordered rule table over the normalized utterance.
// Ties break by confidence band, then extracted slot count, then rule
// declaration order, making the result reproducible for identical input.
func (c *Classifier) Classify(ctx context.Context, utterance string, conv models.ConversationContext) models.Intent {
	start := time.Now()
	result := c.classifyRules(utterance, conv)

	if result.Type == models.IntentUnknown && c.fallback != nil {
		if modelResult, err := c.fallback.Classify(ctx, utterance, conv); err == nil &&
			modelResult.Confidence >= c.config.ConfidenceThreshold {
			result = modelResult
		} else if err != nil {
			c.logger.Warn("model fallback failed, keeping heuristic result", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	metrics.UtterancesClassified.WithLabelValues(string(result.Type)).Inc()
	metrics.ClassifyDuration.Observe(time.Since(start).Seconds())

	c.logger.Debug("classified utterance", map[string]interface{}{
		"intentType": result.Type,
		"confidence": result.Confidence,
		"slotCount":  len(result.Slots),
	})

	return result
}

func (c *Classifier) classifyRules(utterance string, conv models.ConversationContext) models.Intent {
	text := Normalize(utterance)
	if text == "" {
		return unknownIntent(utterance)
	}

	var best *candidate
	for i, r := range c.rules {
		band := r.match(text)
		if band == bandNone {
			continue
		}

		extracted := slots.Extract(text, r.intent, conv)
		cand := &candidate{
			intent:    r.intent,
			band:      band,
			slots:     extracted,
			score:     scoreFor(band, len(extracted)),
			ruleIndex: i,
		}

		if best == nil || better(cand, best) {
			best = cand
		}
	}

	if best == nil || best.score < c.config.ConfidenceThreshold {
		return unknownIntent(utterance)
	}

	return models.Intent{
		Type:       best.intent,
		Confidence: best.score,
		Slots:      best.slots,
		RawText:    utterance,
	}
}

// better implements the deterministic tie-break: band, slot count, earlier
// declaration. Rules are scanned in order, so on full ties the earlier rule
// (already held in best) wins.
func better(a, b *candidate) bool {
	if a.band != b.band {
		return a.band > b.band
	}
	if len(a.slots) != len(b.slots) {
		return len(a.slots) > len(b.slots)
	}
	return false
}

func scoreFor(band matchBand, slotCount int) float64 {
	s := bandScores[band]
	score := s.base + 0.02*float64(slotCount)
	if score > s.cap {
		score = s.cap
	}
	return score
}

func unknownIntent(raw string) models.Intent {
	return models.Intent{
		Type:       models.IntentUnknown,
		Confidence: 0,
		Slots:      map[string]interface{}{},
		RawText:    raw,
	}
}
