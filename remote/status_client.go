package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/leaseauth/internal/transport"
	"github.com/MrEthical07/leaseauth/session"
)

type statusRequest struct {
	GameKey     string `json:"game_key"`
	GameVersion string `json:"game_version"`
	LeaseCode   string `json:"lease_code"`
	Nonce       string `json:"nonce"`
}

type statusResponse struct {
	LeaseStatus      Status `json:"lease_status"`
	SessionToken     string `json:"session_token"`
	RefreshToken     string `json:"refresh_token"`
	PlayerIdentifier string `json:"player_identifier"`
	PlayerID         int64  `json:"player_id"`
	PlayerULID       string `json:"player_ulid"`
	PlayerName       string `json:"player_name"`
	PublicUID        string `json:"public_uid"`
	SeenBefore       bool   `json:"seen_before"`
}

// Outcome is the result of one status check. Credentials is set only when
// Status is [StatusAuthorized].
type Outcome struct {
	Status      Status
	Credentials *session.Credentials
}

// StatusClient checks (and thereby advances) a remote lease.
type StatusClient struct {
	http *transport.Client
	cfg  Config
	now  func() time.Time
}

func NewStatusClient(cfg Config) *StatusClient {
	return &StatusClient{
		http: transport.New(cfg.HTTPClient, cfg.BaseURL, cfg.UserAgent),
		cfg:  cfg,
		now:  time.Now,
	}
}

// CheckLease reports the current status of the lease identified by code and
// nonce. Non-2xx responses are returned as *APIError.
func (c *StatusClient) CheckLease(ctx context.Context, code, nonce string) (Outcome, error) {
	req := statusRequest{
		GameKey:     c.cfg.GameKey,
		GameVersion: c.cfg.GameVersion,
		LeaseCode:   code,
		Nonce:       nonce,
	}
	var resp statusResponse
	if err := c.http.PostJSON(ctx, c.cfg.statusPath(), req, &resp); err != nil {
		return Outcome{}, err
	}

	switch resp.LeaseStatus {
	case StatusUnknown:
		return Outcome{}, fmt.Errorf("%w: missing lease_status", ErrMalformedResponse)
	case StatusAuthorized:
		if resp.SessionToken == "" {
			return Outcome{}, fmt.Errorf("%w: authorized lease without session token", ErrMalformedResponse)
		}
		playerIdentifier := resp.PlayerIdentifier
		if playerIdentifier == "" {
			playerIdentifier = resp.PlayerULID
		}
		return Outcome{
			Status: StatusAuthorized,
			Credentials: &session.Credentials{
				SessionToken:     resp.SessionToken,
				RefreshToken:     resp.RefreshToken,
				PlayerIdentifier: playerIdentifier,
				PlayerID:         resp.PlayerID,
				PlayerULID:       resp.PlayerULID,
				PlayerName:       resp.PlayerName,
				PublicUID:        resp.PublicUID,
				SeenBefore:       resp.SeenBefore,
				ReceivedAt:       c.now().UTC(),
			},
		}, nil
	case StatusCancelled, StatusTimedOut, StatusFailed:
		return Outcome{}, fmt.Errorf("%w: lease %s", ErrLeaseRejected, resp.LeaseStatus)
	default:
		return Outcome{Status: resp.LeaseStatus}, nil
	}
}
