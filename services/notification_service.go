package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/famtrack/expense_backend/models"
	"github.com/famtrack/expense_backend/websocket"
	"github.com/sirupsen/logrus"
)

// Notifier is the family service's view of notification fan-out. None of
// the methods return errors: delivery problems must never fail the
// membership mutation that triggered them.
type Notifier interface {
	InviteSent(family *models.Family, sender *models.User, invitee *models.User, email, message string)
	JoinRequested(family *models.Family, requester *models.User, request *models.JoinRequest)
	JoinAccepted(family *models.Family, requester *models.User, request *models.JoinRequest)
	JoinRejected(family *models.Family, requester *models.User, request *models.JoinRequest)
	JoinCancelled(family *models.Family, requester *models.User, request *models.JoinRequest)
	MemberJoined(family *models.Family, member *models.User)
	MemberRemoved(family *models.Family, removed *models.User, message string)
}

// NotificationService turns domain events into push notifications and inbox
// records. Tokens the dispatcher reports as permanently invalid are pruned
// from device storage.
type NotificationService struct {
	dispatcher    Dispatcher
	tokens        DeviceTokenStore
	notifications NotificationStore
	members       interface {
		MemberIDs(familyID string) ([]string, error)
	}
	users UserStore
	hub   *websocket.Hub // nil when the realtime stream is disabled
	log   *logrus.Logger

	// dispatchTimeout bounds a single fan-out; the triggering request has
	// already been answered by the time this matters.
	dispatchTimeout time.Duration
}

func NewNotificationService(dispatcher Dispatcher, tokens DeviceTokenStore, notifications NotificationStore, families FamilyStore, users UserStore, hub *websocket.Hub, log *logrus.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:      dispatcher,
		tokens:          tokens,
		notifications:   notifications,
		members:         families,
		users:           users,
		hub:             hub,
		log:             log,
		dispatchTimeout: 30 * time.Second,
	}
}

func (s *NotificationService) InviteSent(family *models.Family, sender *models.User, invitee *models.User, email, message string) {
	body := fmt.Sprintf("%s invited you to join the family \"%s\"", sender.AliasName, family.Name)
	if message != "" {
		body = body + ": " + message
	}

	n := &models.Notification{
		SenderID: sender.ID,
		FamilyID: family.ID,
		Type:     models.NotificationInvite,
		Title:    "Family invitation",
		Body:     body,
	}

	if invitee == nil {
		// Invited address has no account yet; nothing to deliver to.
		s.log.WithFields(logrus.Fields{"family": family.ID, "email": email}).
			Info("invite recorded for unregistered email")
		return
	}

	n.ReceiverID = invitee.ID
	s.deliver(n, invitee)
}

func (s *NotificationService) JoinRequested(family *models.Family, requester *models.User, request *models.JoinRequest) {
	body := fmt.Sprintf("%s asked to join your family", requester.AliasName)
	if request.Message != "" {
		body = body + ": " + request.Message
	}

	s.notifyUser(&models.Notification{
		SenderID:      requester.ID,
		ReceiverID:    family.HeadID,
		FamilyID:      family.ID,
		JoinRequestID: request.ID,
		Type:          models.NotificationJoinRequest,
		Title:         "Join request",
		Body:          body,
	})
}

func (s *NotificationService) JoinAccepted(family *models.Family, requester *models.User, request *models.JoinRequest) {
	s.notifyUser(&models.Notification{
		SenderID:      family.HeadID,
		ReceiverID:    requester.ID,
		FamilyID:      family.ID,
		JoinRequestID: request.ID,
		Type:          models.NotificationJoinAccepted,
		Title:         "Request accepted",
		Body:          fmt.Sprintf("You are now a member of \"%s\"", family.Name),
	})
}

func (s *NotificationService) JoinRejected(family *models.Family, requester *models.User, request *models.JoinRequest) {
	s.notifyUser(&models.Notification{
		SenderID:      family.HeadID,
		ReceiverID:    requester.ID,
		FamilyID:      family.ID,
		JoinRequestID: request.ID,
		Type:          models.NotificationJoinRejected,
		Title:         "Request declined",
		Body:          fmt.Sprintf("Your request to join \"%s\" was declined", family.Name),
	})
}

func (s *NotificationService) JoinCancelled(family *models.Family, requester *models.User, request *models.JoinRequest) {
	s.notifyUser(&models.Notification{
		SenderID:      requester.ID,
		ReceiverID:    family.HeadID,
		FamilyID:      family.ID,
		JoinRequestID: request.ID,
		Type:          models.NotificationJoinCancelled,
		Title:         "Request withdrawn",
		Body:          fmt.Sprintf("%s withdrew their request to join your family", requester.AliasName),
	})
}

// MemberJoined fans out to every existing member except the one who joined.
func (s *NotificationService) MemberJoined(family *models.Family, member *models.User) {
	memberIDs, err := s.members.MemberIDs(family.ID)
	if err != nil {
		s.log.WithError(err).WithField("family", family.ID).Error("failed to load members for fan-out")
		return
	}

	for _, id := range memberIDs {
		if id == member.ID {
			continue
		}
		s.notifyUser(&models.Notification{
			SenderID:   member.ID,
			ReceiverID: id,
			FamilyID:   family.ID,
			Type:       models.NotificationMemberJoined,
			Title:      "New family member",
			Body:       fmt.Sprintf("%s joined \"%s\"", member.AliasName, family.Name),
		})
	}
}

func (s *NotificationService) MemberRemoved(family *models.Family, removed *models.User, message string) {
	body := fmt.Sprintf("You were removed from \"%s\"", family.Name)
	if message != "" {
		body = body + ": " + message
	}

	s.notifyUser(&models.Notification{
		SenderID:   family.HeadID,
		ReceiverID: removed.ID,
		FamilyID:   family.ID,
		Type:       models.NotificationMemberRemoved,
		Title:      "Removed from family",
		Body:       body,
	})
}

// notifyUser resolves the receiver and delivers a single notification.
func (s *NotificationService) notifyUser(n *models.Notification) {
	receiver, err := s.users.FindByID(n.ReceiverID)
	if err != nil {
		s.log.WithError(err).WithField("user", n.ReceiverID).Error("notification receiver not found")
		return
	}
	s.deliver(n, receiver)
}

// deliver persists the inbox record, pushes the realtime event, dispatches
// to the receiver's devices and prunes tokens reported invalid. Every step
// is best-effort.
func (s *NotificationService) deliver(n *models.Notification, receiver *models.User) {
	if err := s.notifications.Create(n); err != nil {
		s.log.WithError(err).WithField("type", n.Type).Error("failed to persist notification")
	}

	if s.hub != nil {
		s.hub.SendToUser(n.ReceiverID, n.Type, n)
	}

	tokens := s.deviceTokens(receiver)
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{
		"type":      n.Type,
		"family_id": n.FamilyID,
	}
	if n.JoinRequestID != 0 {
		data["join_request_id"] = strconv.FormatUint(uint64(n.JoinRequestID), 10)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.dispatchTimeout)
	defer cancel()

	invalid, err := s.dispatcher.Send(ctx, tokens, n.Title, n.Body, data)
	if err != nil {
		s.log.WithError(err).WithField("type", n.Type).Warn("push dispatch failed")
	}

	if len(invalid) > 0 {
		if err := s.tokens.DeleteByTokens(invalid); err != nil {
			s.log.WithError(err).Error("failed to prune invalid device tokens")
		} else {
			s.log.WithFields(logrus.Fields{"count": len(invalid), "user": receiver.ID}).
				Info("pruned invalid device tokens")
		}
	}
}

// deviceTokens collects the receiver's registered device tokens, folding in
// the legacy single-token field for accounts that predate multi-device
// support.
func (s *NotificationService) deviceTokens(receiver *models.User) []string {
	records, err := s.tokens.FindByUserID(receiver.ID)
	if err != nil {
		s.log.WithError(err).WithField("user", receiver.ID).Error("failed to load device tokens")
		records = nil
	}

	tokens := make([]string, 0, len(records)+1)
	seen := make(map[string]bool, len(records)+1)
	for _, record := range records {
		if !seen[record.Token] {
			tokens = append(tokens, record.Token)
			seen[record.Token] = true
		}
	}
	if receiver.FCMToken != "" && !seen[receiver.FCMToken] {
		tokens = append(tokens, receiver.FCMToken)
	}
	return tokens
}

var _ Notifier = (*NotificationService)(nil)
