package client

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// FeedbackDevice talks to the stoplight feedback device over plain
// HTTP on a fixed local port.
type FeedbackDevice struct {
	baseURL string
	client  *http.Client
}

// NewFeedbackDevice creates a client for the feedback device
// (e.g. "http://localhost:8080").
func NewFeedbackDevice(baseURL string) *FeedbackDevice {
	return &FeedbackDevice{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Health probes the device.
func (d *FeedbackDevice) Health() error {
	resp, err := d.client.Get(d.baseURL + "/health-check")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("feedback device health: %d", resp.StatusCode)
	}
	return nil
}

// PlayBeep makes the device emit its test sound.
func (d *FeedbackDevice) PlayBeep() error {
	resp, err := d.client.Get(d.baseURL + "/play-beep")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("play beep: %d", resp.StatusCode)
	}
	return nil
}

// PlayClip makes the device play a named audio clip through the
// participant's headphones.
func (d *FeedbackDevice) PlayClip(name string) error {
	resp, err := d.client.Get(d.baseURL + "/play-clip?name=" + url.QueryEscape(name))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("play clip %s: %d", name, resp.StatusCode)
	}
	return nil
}
