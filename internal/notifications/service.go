package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scrapurr/internal/config"
)

const userAgent = "scrapurr/0.1"

// Event names a recorder milestone.
type Event string

const (
	EventStreamLive    Event = "stream_live"
	EventArtifactSaved Event = "artifact_saved"
	EventError         Event = "error"
	EventTest          Event = "test"
)

// Payload carries event-specific values. Keys are documented per event in format.
type Payload map[string]any

// Service defines the notification surface exposed to recorder components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventStreamLive:    cfg.Notifications.StreamLive,
			EventArtifactSaved: cfg.Notifications.ArtifactSaved,
			EventError:         cfg.Notifications.Errors,
			EventTest:          true,
		},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	if n == nil || !n.enabled[event] {
		return nil
	}
	msg, ok := format(event, data)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, data Payload) (payload, bool) {
	switch event {
	case EventStreamLive:
		channel := stringValue(data, "channel")
		return payload{
			title:   "scrapurr - Live",
			message: fmt.Sprintf("🔴 %s is live, recording started", channel),
			tags:    []string{"scrapurr", "live", "recording"},
		}, true
	case EventArtifactSaved:
		message := fmt.Sprintf("💾 Saved: %s", stringValue(data, "path"))
		if sheet := stringValue(data, "contactSheet"); sheet != "" {
			message = fmt.Sprintf("%s\nContact sheet: %s", message, sheet)
		}
		return payload{
			title:   "scrapurr - Saved",
			message: message,
			tags:    []string{"scrapurr", "artifact", "saved"},
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if label := stringValue(data, "context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		if errText := stringValue(data, "error"); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return payload{
			title:    "scrapurr - Error",
			message:  builder.String(),
			tags:     []string{"scrapurr", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return payload{
			title:    "scrapurr - Test",
			message:  "🧪 Notification system test",
			tags:     []string{"scrapurr", "test"},
			priority: "low",
		}, true
	default:
		return payload{}, false
	}
}

func stringValue(data Payload, key string) string {
	if data == nil {
		return ""
	}
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
