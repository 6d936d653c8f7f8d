// Package notify sends push notifications to the mobile app.
package notify

import (
	"context"
	"sync"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	log "github.com/sirupsen/logrus"
)

type Notification struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Notifier delivers notifications on a best-effort basis; failures are
// logged, never returned.
type Notifier interface {
	Send(ctx context.Context, notifications []Notification)
}

type ExpoNotifier struct {
	client *expo.PushClient
}

func NewExpoNotifier() *ExpoNotifier {
	return &ExpoNotifier{client: expo.NewPushClient(nil)}
}

func (n *ExpoNotifier) Send(ctx context.Context, notifications []Notification) {
	if len(notifications) == 0 {
		log.Debug("no push notifications to send")
		return
	}

	waitGroup := new(sync.WaitGroup)
	for _, notification := range notifications {
		token, err := expo.NewExponentPushToken(notification.Token)
		if err != nil {
			log.Errorf("invalid expo token %q", notification.Token)
			continue
		}
		waitGroup.Add(1)
		go n.publish(waitGroup, token, notification)
	}
	waitGroup.Wait()
}

func (n *ExpoNotifier) publish(waitGroup *sync.WaitGroup, token expo.ExponentPushToken, notification Notification) {
	defer waitGroup.Done()

	response, err := n.client.Publish(&expo.PushMessage{
		To:       []expo.ExponentPushToken{token},
		Body:     notification.Body,
		Sound:    "default",
		Title:    notification.Title,
		Priority: expo.HighPriority,
		Data:     notification.Data,
	})
	if err != nil {
		log.Error(err)
		return
	}

	if response.ValidateResponse() != nil {
		log.Error(response.PushMessage.To, "failed")
	}
}

// LogNotifier only logs; it is used when push is disabled and in tests.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, notifications []Notification) {
	for _, n := range notifications {
		log.WithFields(log.Fields{"title": n.Title, "category": n.Data["category"]}).Debug("push notification skipped")
	}
}

// ValidToken reports whether token looks like an Expo push token.
func ValidToken(token string) bool {
	_, err := expo.NewExponentPushToken(token)
	return err == nil
}
