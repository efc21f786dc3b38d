// Package estimator calls the Gemini generative language API to produce
// advisory cost breakdowns for a described project. Results are suggestions
// for the client UI; nothing here feeds the persisted cost fields.
package estimator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/jengaest/estimation-api/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrNotConfigured means no API key is set
	ErrNotConfigured = errors.New("estimator api key not configured")
	// ErrBadResponse means the model reply carried no parseable JSON
	ErrBadResponse = errors.New("estimator returned no parseable result")
)

// ProjectDetails describes the project the model should estimate.
type ProjectDetails struct {
	BuildingType       string
	TotalArea          string
	LocationName       string
	ConstructionType   string
	ProjectDescription string
}

// Suggestion is the parsed model output.
type Suggestion struct {
	CostAnalysis    map[string]any `json:"cost_analysis"`
	Breakdown       map[string]any `json:"breakdown"`
	Recommendations []string       `json:"recommendations"`
	RiskFactors     []string       `json:"risk_factors"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the Gemini API.
type Client struct {
	http   *resty.Client
	model  string
	apiKey string
	logger *zap.Logger
}

// NewClient builds a Gemini client from configuration.
func NewClient(cfg *config.EstimatorConfig, logger *zap.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.TimeoutDuration()).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   http,
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// Estimate asks the model for a cost analysis of the described project.
func (c *Client) Estimate(ctx context.Context, details ProjectDetails) (*Suggestion, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(details)}}}},
	}

	var resp generateResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(req).
		SetResult(&resp).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		return nil, fmt.Errorf("estimator request failed: %w", err)
	}
	if res.IsError() {
		if resp.Error != nil {
			return nil, fmt.Errorf("estimator api error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		return nil, fmt.Errorf("estimator api error: status %d", res.StatusCode())
	}

	text := firstCandidateText(&resp)
	if text == "" {
		return nil, ErrBadResponse
	}

	suggestion, err := parseSuggestion(text)
	if err != nil {
		c.logger.Warn("estimator reply was not valid JSON", zap.Error(err))
		return nil, ErrBadResponse
	}
	return suggestion, nil
}

func firstCandidateText(resp *generateResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// parseSuggestion extracts the JSON object embedded in the model reply,
// tolerating surrounding prose or markdown fences.
func parseSuggestion(text string) (*Suggestion, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func buildPrompt(details ProjectDetails) string {
	var b strings.Builder
	b.WriteString("As a construction cost estimation expert, analyze the following project details and provide a detailed cost breakdown:\n\n")
	fmt.Fprintf(&b, "Project Type: %s\n", details.BuildingType)
	fmt.Fprintf(&b, "Total Area: %s square meters\n", details.TotalArea)
	fmt.Fprintf(&b, "Location: %s\n", details.LocationName)
	fmt.Fprintf(&b, "Construction Type: %s\n", details.ConstructionType)
	fmt.Fprintf(&b, "Project Description: %s\n\n", details.ProjectDescription)
	b.WriteString(`Provide a detailed response in the following JSON format:
{
  "cost_analysis": {
    "base_cost_per_sqm": float,
    "location_multiplier": float,
    "adjusted_cost_per_sqm": float
  },
  "breakdown": {
    "materials": {"total": float, "details": [{"item": "concrete", "cost": float, "percentage": float}]},
    "labor": {"total": float, "details": [{"category": "skilled", "cost": float, "percentage": float}]},
    "equipment": {"total": float, "description": "string"}
  },
  "recommendations": ["string"],
  "risk_factors": ["string"]
}

Base your estimates on current local construction market rates and consider regional factors.`)
	return b.String()
}
