package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"ari-backend/models"
)

// DemoRelay forwards "book a demo" submissions to Web3Forms, which emails
// them to the team.
type DemoRelay struct {
	endpoint  string
	accessKey string
	client    *http.Client
}

type relayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewDemoRelay(endpoint, accessKey string, timeout time.Duration) *DemoRelay {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DemoRelay{
		endpoint:  endpoint,
		accessKey: accessKey,
		client:    &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an access key is configured.
func (r *DemoRelay) Enabled() bool {
	return r != nil && r.accessKey != ""
}

// Relay submits the request as multipart form data. Web3Forms reports
// failures in the JSON body, so the success flag is checked as well as the
// status code.
func (r *DemoRelay) Relay(ctx context.Context, d *models.DemoRequest) error {
	phone := "Not provided"
	if d.Phone != nil && *d.Phone != "" {
		phone = *d.Phone
	}
	message := "No message provided"
	if d.Message != nil && *d.Message != "" {
		message = *d.Message
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := [][2]string{
		{"access_key", r.accessKey},
		{"name", d.Name},
		{"email", d.Email},
		{"phone", phone},
		{"eventType", d.EventType},
		{"message", message},
		{"subject", "New Demo Request from " + d.Name},
		{"from_name", "ARI Website"},
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	if err := form.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("web3forms returned %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		return fmt.Errorf("web3forms error (%d): %s", resp.StatusCode, envelope.Message)
	}
	return nil
}
