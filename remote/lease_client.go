package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/MrEthical07/leaseauth/internal/transport"
)

type leaseRequest struct {
	GameKey     string `json:"game_key"`
	GameVersion string `json:"game_version"`
}

type leaseResponse struct {
	Code                string `json:"code"`
	Nonce               string `json:"nonce"`
	RedirectURL         string `json:"redirect_url"`
	RedirectURLQRBase64 string `json:"redirect_url_qr_base64"`
	DisplayURL          string `json:"display_url"`
	Status              Status `json:"status"`
}

// LeaseClient creates remote session leases.
type LeaseClient struct {
	http *transport.Client
	cfg  Config
}

func NewLeaseClient(cfg Config) *LeaseClient {
	return &LeaseClient{
		http: transport.New(cfg.HTTPClient, cfg.BaseURL, cfg.UserAgent),
		cfg:  cfg,
	}
}

// CreateLease asks the platform for a new pending handshake. Failures are not
// retried.
func (c *LeaseClient) CreateLease(ctx context.Context) (Descriptor, error) {
	var resp leaseResponse
	req := leaseRequest{GameKey: c.cfg.GameKey, GameVersion: c.cfg.GameVersion}
	if err := c.http.PostJSON(ctx, c.cfg.leasePath(), req, &resp); err != nil {
		return Descriptor{}, err
	}

	if resp.Code == "" || resp.Nonce == "" {
		return Descriptor{}, fmt.Errorf("%w: lease without code or nonce", ErrMalformedResponse)
	}
	if resp.Status == StatusUnknown {
		resp.Status = StatusCreated
	}
	if resp.Status.IsTerminal() {
		return Descriptor{}, fmt.Errorf("%w: new lease reported %s", ErrLeaseRejected, resp.Status)
	}

	var qr []byte
	if encoded := stripDataURI(resp.RedirectURLQRBase64); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: qr code: %v", ErrMalformedResponse, err)
		}
		qr = decoded
	}

	return Descriptor{
		Code:        resp.Code,
		Nonce:       resp.Nonce,
		DisplayURL:  resp.DisplayURL,
		RedirectURL: resp.RedirectURL,
		QRCode:      qr,
		Status:      resp.Status,
	}, nil
}

// stripDataURI drops a "data:image/png;base64," prefix if the platform sent one.
func stripDataURI(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}
