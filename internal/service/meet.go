package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cloudmeet/agent-bot-go/internal/config"
	apperrors "github.com/cloudmeet/agent-bot-go/internal/errors"
	"github.com/cloudmeet/agent-bot-go/internal/model"
)

// MeetAPI is the remote meeting-authorization service. It is the source of
// truth for whether a code is currently consumed by a live meeting; all calls
// are bounded by the client timeout and failures are never fatal to a request.
type MeetAPI interface {
	ListCodes(ctx context.Context) ([]model.RemoteCodeStatus, error)
	ReleaseCode(ctx context.Context, code string) error
}

type MeetClient struct {
	baseURL string
	client  *http.Client
}

func NewMeetClient(baseURL string, timeout time.Duration) *MeetClient {
	return &MeetClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListCodes fetches live status for the whole inventory in a single page.
// One batched call keeps the query latency bounded regardless of pool size.
func (c *MeetClient) ListCodes(ctx context.Context) ([]model.RemoteCodeStatus, error) {
	url := fmt.Sprintf("%s/api/admin-code?action=list&limit=%d", c.baseURL, config.RemoteListLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Warn().Err(err).Dur("elapsed", elapsed).Msg("meet api list failed")
		return nil, apperrors.RemoteUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("meet api list returned non-200")
		return nil, apperrors.RemoteUnavailable(fmt.Errorf("status %d", resp.StatusCode))
	}

	var list model.RemoteCodeList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, apperrors.RemoteUnavailable(fmt.Errorf("decode response: %w", err))
	}

	log.Debug().Int("codes", len(list.Codes)).Dur("elapsed", elapsed).Msg("meet api list ok")
	return list.Codes, nil
}

// ReleaseCode force-ends the live session bound to a code.
func (c *MeetClient) ReleaseCode(ctx context.Context, code string) error {
	url := c.baseURL + "/api/admin-code?action=release"

	body, err := json.Marshal(map[string]string{"code": model.NormalizeCode(code)})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Warn().Err(err).Str("code", code).Dur("elapsed", elapsed).Msg("meet api release failed")
		return apperrors.RemoteUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("code", code).Msg("meet api release returned non-2xx")
		return apperrors.RemoteUnavailable(fmt.Errorf("status %d", resp.StatusCode))
	}

	log.Info().Str("code", code).Dur("elapsed", elapsed).Msg("meeting session released remotely")
	return nil
}

// The meet service expects browser-shaped requests.
func (c *MeetClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Origin", c.baseURL)
}
