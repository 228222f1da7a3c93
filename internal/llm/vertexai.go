package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/fmuoria/resume-reviser/internal/apperr"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// findCredentials looks up application default credentials
var findCredentials = google.FindDefaultCredentials

// VertexAIClient wraps the Vertex AI Gemini API
type VertexAIClient struct {
	client    *genai.Client
	opts      Options
	projectID string
	location  string
}

// NewVertexAIClient creates a new Vertex AI client. When credentialsPath is
// empty, application default credentials must be available.
func NewVertexAIClient(ctx context.Context, projectID, location, credentialsPath string, opts Options) (*VertexAIClient, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, apperr.New(apperr.MissingCredential, "Google Cloud project is not configured. Set GOOGLE_CLOUD_PROJECT.")
	}
	if location == "" {
		location = "us-central1"
	}

	var clientOpts []option.ClientOption
	if credentialsPath != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsPath))
	} else {
		creds, err := findCredentials(ctx, cloudPlatformScope)
		if err != nil {
			return nil, apperr.Wrap(apperr.MissingCredential,
				"Google Cloud credentials not found. Run 'gcloud auth application-default login' or set GOOGLE_APPLICATION_CREDENTIALS.", err)
		}
		clientOpts = append(clientOpts, option.WithCredentials(creds))
	}

	client, err := genai.NewClient(ctx, projectID, location, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexAIClient{
		client:    client,
		opts:      opts,
		projectID: projectID,
		location:  location,
	}, nil
}

// GenerateJSON implements Client
func (v *VertexAIClient) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error) {
	model := v.client.GenerativeModel(v.opts.Model)
	model.SetTemperature(v.opts.Temperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema.toVertex()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp.UsageMetadata != nil {
		logUsage("vertex", v.opts.Model, &Usage{
			PromptTokens:    resp.UsageMetadata.PromptTokenCount,
			CandidateTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:     resp.UsageMetadata.TotalTokenCount,
		})
	} else {
		logUsage("vertex", v.opts.Model, nil)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates returned")
	}

	// Extract text from response
	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result.WriteString(string(text))
		}
	}

	return CleanJSONBlock(result.String()), nil
}

// Close closes the Vertex AI client
func (v *VertexAIClient) Close() error {
	return v.client.Close()
}
