package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
)

// Dispatcher delivers a push message to a set of device tokens. It never
// fails for individual tokens; it returns the tokens that are permanently
// invalid and should be pruned from storage.
type Dispatcher interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error)
}

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCMDispatcher sends notifications through the FCM HTTP v1 API. It is
// constructed once at startup from a service-account credentials file and
// injected into the notification service.
type FCMDispatcher struct {
	client    *http.Client
	projectID string
	log       *logrus.Logger
}

// NewFCMDispatcher builds a dispatcher from a Google service-account JSON
// key file. The underlying OAuth2 client refreshes its access token as
// needed; there is nothing to tear down beyond dropping the dispatcher.
func NewFCMDispatcher(credentialsFile, projectID string, log *logrus.Logger) (*FCMDispatcher, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read FCM credentials: %w", err)
	}

	config, err := google.JWTConfigFromJSON(creds, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("parse FCM credentials: %w", err)
	}

	client := config.Client(context.Background())
	client.Timeout = 10 * time.Second

	return &FCMDispatcher{
		client:    client,
		projectID: projectID,
		log:       log,
	}, nil
}

type fcmMessage struct {
	Message struct {
		Token        string            `json:"token"`
		Notification map[string]string `json:"notification"`
		Data         map[string]string `json:"data,omitempty"`
	} `json:"message"`
}

type fcmErrorResponse struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Details []struct {
			Type      string `json:"@type"`
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

// Send posts one message per token and aggregates the outcome. Transient
// delivery failures are logged and ignored; only tokens FCM reports as
// unregistered or malformed come back as invalid.
func (d *FCMDispatcher) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	endpoint := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", d.projectID)

	var invalid []string
	for _, token := range tokens {
		var msg fcmMessage
		msg.Message.Token = token
		msg.Message.Notification = map[string]string{"title": title, "body": body}
		msg.Message.Data = data

		payload, err := json.Marshal(msg)
		if err != nil {
			return invalid, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return invalid, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return invalid, ctx.Err()
			}
			d.log.WithError(err).Warn("FCM request failed")
			continue
		}

		if resp.StatusCode != http.StatusOK && d.tokenInvalid(resp) {
			invalid = append(invalid, token)
		}
		resp.Body.Close()
	}

	return invalid, nil
}

// tokenInvalid decides whether an FCM error response means the token is
// gone for good. 404/UNREGISTERED covers uninstalled apps, 400 with an
// INVALID_ARGUMENT error code covers malformed tokens.
func (d *FCMDispatcher) tokenInvalid(resp *http.Response) bool {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return false
	}

	var fcmErr fcmErrorResponse
	if err := json.Unmarshal(raw, &fcmErr); err != nil {
		d.log.WithField("status", resp.StatusCode).Warn("unparseable FCM error response")
		return false
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return true
	case http.StatusBadRequest:
		for _, detail := range fcmErr.Error.Details {
			if detail.ErrorCode == "UNREGISTERED" || detail.ErrorCode == "INVALID_ARGUMENT" {
				return true
			}
		}
	}

	d.log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"fcm":     fcmErr.Error.Status,
		"message": fcmErr.Error.Message,
	}).Warn("FCM delivery failed")
	return false
}

// LogDispatcher is used when no FCM credentials are configured. It logs the
// would-be notification and reports every delivery as successful.
type LogDispatcher struct {
	log *logrus.Logger
}

func NewLogDispatcher(log *logrus.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	d.log.WithFields(logrus.Fields{
		"tokens": len(tokens),
		"title":  title,
		"type":   data["type"],
	}).Info("push dispatch skipped (no FCM credentials)")
	return nil, nil
}

var _ Dispatcher = (*FCMDispatcher)(nil)
var _ Dispatcher = (*LogDispatcher)(nil)
