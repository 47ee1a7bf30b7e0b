package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediawatch/internal/config"
	"mediawatch/internal/domain"
	"mediawatch/internal/ports"
)

const maxFormsResponseBytes = 4 << 20 // 4MB

// NetlifyForms lists pending form submissions from the Netlify API, grouped by
// the fixed set of intake form names. Read-only: approval and rejection happen
// elsewhere.
type NetlifyForms struct {
	client  *http.Client
	baseURL string
	siteID  string
	token   string
}

var _ ports.SubmissionSource = (*NetlifyForms)(nil)

// NewNetlifyForms builds a client from configuration.
func NewNetlifyForms(cfg config.FormsConfig, client *http.Client) *NetlifyForms {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.netlify.com"
	}
	return &NetlifyForms{
		client:  client,
		baseURL: baseURL,
		siteID:  cfg.SiteID,
		token:   cfg.Token,
	}
}

type netlifySubmission struct {
	ID        string         `json:"id"`
	Number    int            `json:"number"`
	FormName  string         `json:"form_name"`
	Data      map[string]any `json:"data"`
	Email     string         `json:"email"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListPending fetches all submissions and groups them by form name. Unknown
// form names are dropped; the total still counts every fetched submission.
func (n *NetlifyForms) ListPending(ctx context.Context) (map[string][]domain.Submission, int, error) {
	if n.siteID == "" || n.token == "" {
		return nil, 0, fmt.Errorf("forms client misconfigured: missing site id or token")
	}

	endpoint := fmt.Sprintf("%s/api/v1/sites/%s/submissions", n.baseURL, n.siteID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("list submissions: unexpected status %d", resp.StatusCode)
	}

	var raw []netlifySubmission
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFormsResponseBytes)).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("decode submissions: %w", err)
	}

	grouped := make(map[string][]domain.Submission, len(domain.FormNames))
	for _, name := range domain.FormNames {
		grouped[name] = []domain.Submission{}
	}

	for _, entry := range raw {
		if _, ok := grouped[entry.FormName]; !ok {
			continue
		}
		grouped[entry.FormName] = append(grouped[entry.FormName], domain.Submission{
			ID:        entry.ID,
			Number:    entry.Number,
			FormName:  entry.FormName,
			Data:      entry.Data,
			Email:     entry.Email,
			CreatedAt: entry.CreatedAt,
		})
	}

	return grouped, len(raw), nil
}
