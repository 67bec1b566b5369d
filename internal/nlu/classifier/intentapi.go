// internal/nlu/classifier/intentapi.go
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	commonhttp "childcare-assistant/internal/common/http"
	"childcare-assistant/internal/models"
)

var (
	ErrIntentParsingFailed = errors.New("INTENT_PARSING_FAILED")
	ErrIntentAPITimeout    = errors.New("INTENT_API_TIMEOUT")
)

// IntentAPIClient calls an external model service implementing the parse-intent
// contract. Used as the ModelClassifier fallback; the caller treats any error
// as "keep the heuristic result".
type IntentAPIClient struct {
	baseURL string
	client  *commonhttp.Client
}

func NewIntentAPIClient(baseURL string, timeout time.Duration) *IntentAPIClient {
	return &IntentAPIClient{
		baseURL: baseURL,
		client:  commonhttp.NewClient(timeout),
	}
}

func (c *IntentAPIClient) Classify(ctx context.Context, utterance string, conv models.ConversationContext) (models.Intent, error) {
	requestBody := map[string]interface{}{
		"query": utterance,
	}
	if len(conv.Turns) > 0 {
		requestBody["context"] = conv
	}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/ai/parse-intent", bytes.NewBuffer(body))
	if err != nil {
		return models.Intent{}, fmt.Errorf("%w: %v", ErrIntentParsingFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.Intent{}, ErrIntentAPITimeout
		}
		return models.Intent{}, fmt.Errorf("%w: %v", ErrIntentParsingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Intent{}, fmt.Errorf("%w: status %d", ErrIntentParsingFailed, resp.StatusCode)
	}

	var apiResponse struct {
		Intent     string                 `json:"intent"`
		Confidence float64                `json:"confidence"`
		Slots      map[string]interface{} `json:"slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return models.Intent{}, fmt.Errorf("%w: decode error: %v", ErrIntentParsingFailed, err)
	}

	intentType := models.IntentType(apiResponse.Intent)
	if !validIntentType(intentType) {
		return models.Intent{}, fmt.Errorf("%w: unknown intent %q", ErrIntentParsingFailed, apiResponse.Intent)
	}

	slots := apiResponse.Slots
	if slots == nil {
		slots = map[string]interface{}{}
	}

	return models.Intent{
		Type:       intentType,
		Confidence: apiResponse.Confidence,
		Slots:      slots,
		RawText:    utterance,
	}, nil
}

func validIntentType(t models.IntentType) bool {
	switch t {
	case models.IntentSearch, models.IntentCompare, models.IntentRecommend,
		models.IntentWaitlistJoin, models.IntentInterestAdd, models.IntentInterestRemove,
		models.IntentSubscriptionCancel, models.IntentUnknown:
		return true
	}
	return false
}
