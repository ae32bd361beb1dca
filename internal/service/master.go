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

	"github.com/cloudmeet/agent-bot-go/internal/audit"
)

const masterRegisterTimeout = 10 * time.Second

// MasterClient registers this agent with the master bot so the master knows
// which owner runs which agent. Registration is a one-shot startup side
// effect with no local state; failures are logged and never fatal.
type MasterClient struct {
	baseURL string
	client  *http.Client
}

func NewMasterClient(baseURL string) *MasterClient {
	return &MasterClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: masterRegisterTimeout,
		},
	}
}

// RegisterAgentParams identifies this agent instance to the master.
type RegisterAgentParams struct {
	OwnerID     int64  `json:"owner_id"`
	DisplayName string `json:"display_name"`
	Endpoint    string `json:"endpoint"`
}

// RegisterAgent upserts this agent in the master's registry. Best-effort:
// a missing or unreachable master degrades to standalone operation.
func (c *MasterClient) RegisterAgent(ctx context.Context, params RegisterAgentParams) error {
	if c.baseURL == "" {
		log.Info().Msg("master registration skipped: MASTER_API_BASE_URL not configured")
		return nil
	}

	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/agents/register", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("register with master: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("master registration returned status %d", resp.StatusCode)
	}

	audit.Log(audit.Event{Type: audit.EventAgentRegister, UserID: params.OwnerID})
	log.Info().Int64("ownerId", params.OwnerID).Msg("registered with master bot")
	return nil
}
