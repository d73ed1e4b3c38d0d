package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 400
	defaultAPIURL    = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
)

// ClaudeExtractor extracts booking intent by asking the Claude
// Messages API for a JSON rendering of the request. Errors are
// returned to the caller so the composite can fall back to rules.
type ClaudeExtractor struct {
	apiKey    string
	model     string
	maxTokens int
	apiURL    string
	client    *http.Client
	now       func() time.Time
}

// NewClaudeExtractor creates a Claude-backed extractor with the given
// configuration. Empty model and non-positive maxTokens fall back to
// defaults.
func NewClaudeExtractor(apiKey, modelName string, maxTokens int) *ClaudeExtractor {
	if modelName == "" {
		modelName = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &ClaudeExtractor{
		apiKey:    apiKey,
		model:     modelName,
		maxTokens: maxTokens,
		apiURL:    defaultAPIURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiResponse struct {
	Content []apiContentBlock `json:"content"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// extractedFields is the JSON shape the model is asked to return.
type extractedFields struct {
	IsBooking bool   `json:"is_booking"`
	GuestName string `json:"guest_name"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	RoomType  string `json:"room_type"`
	Adults    int    `json:"num_adults"`
	Children  int    `json:"num_children"`
}

// Extract sends the message body to the Claude API and classifies the
// returned fields.
func (e *ClaudeExtractor) Extract(ctx context.Context, in Input) (Result, error) {
	raw, err := e.callAPI(ctx, e.buildPrompt(in))
	if err != nil {
		return Result{}, err
	}

	parsed, err := parseModelJSON(raw)
	if err != nil {
		return Result{}, err
	}

	if !parsed.IsBooking {
		return Result{Kind: KindNotABooking}, nil
	}

	now := e.now()
	f := fields{
		GuestName: strings.TrimSpace(parsed.GuestName),
		Adults:    parsed.Adults,
		Children:  parsed.Children,
	}

	// The model can hallucinate a room name; only catalog names pass
	// through, anything else goes through the synonym map.
	f.RoomType = canonicalRoomType(parsed.RoomType)

	if d, ok := normalizeDate(parsed.CheckIn, now); ok {
		f.CheckIn = d
	}
	if d, ok := normalizeDate(parsed.CheckOut, now); ok {
		f.CheckOut = d
	}

	return classify(f, in), nil
}

// buildPrompt renders the extraction instruction for one message.
func (e *ClaudeExtractor) buildPrompt(in Input) string {
	now := e.now()
	today := now.Format("2006-01-02")

	var sb strings.Builder
	sb.WriteString("Extract hotel booking details from this email.\n")
	fmt.Fprintf(&sb, "Today's date is %s. Current year is %d.\n\n", today, now.Year())
	sb.WriteString("EMAIL:\n")
	sb.WriteString(in.Body)
	sb.WriteString("\n\nReturn ONLY valid JSON with these exact keys ")
	sb.WriteString("(empty string or 0 for missing):\n")
	sb.WriteString(`{
  "is_booking": true or false,
  "guest_name": "string",
  "check_in": "YYYY-MM-DD",
  "check_out": "YYYY-MM-DD",
  "room_type": "one of: Premium Suite, Deluxe Room, Executive Room, Family Suite, Deluxe Sea View Room, Presidential Suite",
  "num_adults": integer,
  "num_children": integer
}` + "\n\n")
	sb.WriteString("Rules:\n")
	fmt.Fprintf(&sb, "- A date with no year is in %d, or %d if already past\n",
		now.Year(), now.Year()+1)
	fmt.Fprintf(&sb, "- Resolve relative dates like \"tomorrow\" from today (%s)\n", today)
	sb.WriteString("- is_booking is false when the email is not a room-booking request\n")
	sb.WriteString("- Default num_adults=1, num_children=0 if not mentioned\n")
	if in.SenderName != "" {
		fmt.Fprintf(&sb, "- If no guest name is found, use %q\n", in.SenderName)
	}
	sb.WriteString("- Return ONLY the JSON object, no other text")

	return sb.String()
}

// callAPI makes a single request to the Claude Messages API and
// returns the text of the first content block.
func (e *ClaudeExtractor) callAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := apiRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, e.apiURL, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var textParts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	if len(textParts) == 0 {
		return "", fmt.Errorf("empty model response")
	}

	return strings.Join(textParts, ""), nil
}

// codeFencePattern strips markdown fences the model sometimes wraps
// around the JSON.
var codeFencePattern = regexp.MustCompile("```(?:json)?")

// parseModelJSON decodes the model's JSON output, tolerating code
// fences.
func parseModelJSON(raw string) (extractedFields, error) {
	cleaned := strings.TrimSpace(codeFencePattern.ReplaceAllString(raw, ""))

	var parsed extractedFields
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return extractedFields{}, fmt.Errorf("decoding model output: %w", err)
	}
	return parsed, nil
}

// canonicalRoomType maps a model-produced room string onto the catalog
// name, via the synonym table when it is not already canonical.
func canonicalRoomType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if mapped := extractRoomType(s); mapped != "" {
		return mapped
	}
	return s
}
