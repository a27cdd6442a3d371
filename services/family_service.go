package services

import (
	"errors"
	"strings"
	"time"

	"github.com/famtrack/expense_backend/models"
	"github.com/famtrack/expense_backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// joinRequestWindow is the trailing period over which join attempts
	// are counted.
	joinRequestWindow = 7 * 24 * time.Hour

	// maxJoinAttempts is the number of non-cancelled attempts allowed per
	// (requester, family) pair inside the window: the initial request plus
	// four resends.
	maxJoinAttempts = 5

	// aliasRetries bounds the alias collision loop at creation time.
	aliasRetries = 10
)

// FamilyService owns every family membership state transition: creation,
// invitations, the join-request lifecycle and member removal.
type FamilyService struct {
	users         UserStore
	families      FamilyStore
	requests      JoinRequestStore
	notifications NotificationStore
	notifier      Notifier
	log           *logrus.Logger

	// now is injectable so the throttle window is testable.
	now func() time.Time
}

func NewFamilyService(users UserStore, families FamilyStore, requests JoinRequestStore, notifications NotificationStore, notifier Notifier, log *logrus.Logger) *FamilyService {
	return &FamilyService{
		users:         users,
		families:      families,
		requests:      requests,
		notifications: notifications,
		notifier:      notifier,
		log:           log,
		now:           time.Now,
	}
}

// CreateFamily allocates a family with a fresh alias and the caller as head
// and sole member.
func (s *FamilyService) CreateFamily(userID, name string) (*models.Family, error) {
	if strings.TrimSpace(name) == "" {
		return nil, Validation("Family name must not be blank")
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	if user.FamilyID != nil {
		return nil, Conflict("You already belong to a family")
	}

	alias, err := s.freshAlias()
	if err != nil {
		return nil, err
	}

	family := &models.Family{
		ID:        uuid.NewString(),
		AliasName: alias,
		Name:      strings.TrimSpace(name),
		HeadID:    userID,
		MaxSize:   models.DefaultMaxFamilySize,
	}
	if err := s.families.Create(family); err != nil {
		return nil, err
	}
	if err := s.families.AddMember(family.ID, userID); err != nil {
		return nil, err
	}

	updated := *user
	updated.FamilyID = &family.ID
	if err := s.users.Save(&updated); err != nil {
		return nil, err
	}

	return family, nil
}

// JoinFamily adds the caller to the family behind an alias, typically in
// response to an invitation. notificationID, when non-zero, is the inbox
// entry that carried the invite and is marked handled.
func (s *FamilyService) JoinFamily(userID, alias string, notificationID uint) (*models.Family, error) {
	family, err := s.families.FindByAlias(alias)
	if err != nil {
		return nil, familyLookupError(err)
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	if user.FamilyID != nil {
		return nil, Conflict("You already belong to a family")
	}

	if err := s.addMember(family, user); err != nil {
		return nil, err
	}

	// A pending join request for this family is satisfied by the join.
	pending, err := s.requests.FindByRequesterAndFamilyAndStatus(userID, family.ID, models.JoinRequestPending)
	if err == nil {
		for i := range pending {
			s.transition(&pending[i], models.JoinRequestAccepted)
		}
	}

	if notificationID != 0 {
		if err := s.notifications.MarkRead(notificationID, userID); err != nil {
			s.log.WithError(err).Warn("failed to mark invite notification handled")
		}
	}

	s.notifier.MemberJoined(family, user)
	return family, nil
}

// InviteMember records a pending invitation for an email address and
// notifies the invitee if they already have an account.
func (s *FamilyService) InviteMember(userID, email, message string) error {
	sender, family, err := s.memberAndFamily(userID)
	if err != nil {
		return err
	}

	invitee, err := s.userByEmail(email)
	if err != nil {
		return err
	}
	if invitee != nil {
		isMember, err := s.families.IsMember(family.ID, invitee.ID)
		if err != nil {
			return err
		}
		if isMember {
			return Conflict("This email already belongs to a family member")
		}
	}

	existing, err := s.families.FindInvite(family.ID, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return Conflict("An invitation is already pending for this email")
	}

	if err := s.families.AddInvite(&models.FamilyInvite{
		FamilyID:  family.ID,
		Email:     email,
		InvitedBy: userID,
		Message:   message,
	}); err != nil {
		return err
	}
	s.touch(family)

	s.notifier.InviteSent(family, sender, invitee, email, message)
	return nil
}

// ResendInvitation re-sends the invite payload for an email that is already
// pending, without creating duplicate pending state.
func (s *FamilyService) ResendInvitation(userID, email, message string) error {
	sender, family, err := s.memberAndFamily(userID)
	if err != nil {
		return err
	}

	existing, err := s.families.FindInvite(family.ID, email)
	if err != nil {
		return err
	}
	if existing == nil {
		return Conflict("No pending invitation exists for this email")
	}

	invitee, err := s.userByEmail(email)
	if err != nil {
		return err
	}

	if message == "" {
		message = existing.Message
	}
	s.notifier.InviteSent(family, sender, invitee, email, message)
	return nil
}

// RemoveMember removes a member and clears their family reference. Only the
// head may remove members, and the head cannot remove themself.
func (s *FamilyService) RemoveMember(userID, email, message string) error {
	_, family, err := s.memberAndFamily(userID)
	if err != nil {
		return err
	}
	if family.HeadID != userID {
		return Forbidden("Only the family head can remove members")
	}

	target, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("No user exists with this email")
		}
		return err
	}
	if target.ID == userID {
		return Validation("The family head cannot remove themself")
	}

	isMember, err := s.families.IsMember(family.ID, target.ID)
	if err != nil {
		return err
	}
	if !isMember {
		return NotFound("This user is not a member of your family")
	}

	if err := s.families.RemoveMember(family.ID, target.ID); err != nil {
		return err
	}
	updated := *target
	updated.FamilyID = nil
	if err := s.users.Save(&updated); err != nil {
		return err
	}
	s.touch(family)

	s.notifier.MemberRemoved(family, target, message)
	return nil
}

// RequestToJoinFamily creates the first join-request attempt against a
// family, subject to the attempt throttle.
func (s *FamilyService) RequestToJoinFamily(userID, alias, message string, notificationID uint) (*models.JoinRequest, error) {
	family, err := s.families.FindByAlias(alias)
	if err != nil {
		return nil, familyLookupError(err)
	}

	request, err := s.attemptJoinRequest(userID, family, message, false)
	if err != nil {
		return nil, err
	}

	if notificationID != 0 {
		if err := s.notifications.MarkRead(notificationID, userID); err != nil {
			s.log.WithError(err).Warn("failed to mark notification handled")
		}
	}
	return request, nil
}

// ResendJoinRequest creates a fresh attempt against the family behind an
// alias, retiring the previous pending attempt.
func (s *FamilyService) ResendJoinRequest(userID, alias, message string) (*models.JoinRequest, error) {
	family, err := s.families.FindByAlias(alias)
	if err != nil {
		return nil, familyLookupError(err)
	}
	return s.attemptJoinRequest(userID, family, message, true)
}

// ResendJoinRequestByID resends against the family of an earlier request.
func (s *FamilyService) ResendJoinRequestByID(userID string, requestID uint, message string) (*models.JoinRequest, error) {
	previous, err := s.requests.FindByID(requestID)
	if err != nil {
		return nil, requestLookupError(err)
	}
	if previous.RequesterID != userID {
		return nil, Forbidden("This join request belongs to another user")
	}

	family, err := s.families.FindByID(previous.FamilyID)
	if err != nil {
		return nil, familyLookupError(err)
	}
	return s.attemptJoinRequest(userID, family, message, true)
}

// CancelOwnJoinRequest withdraws the caller's pending request for a family.
// Cancelled attempts stop counting toward the throttle.
func (s *FamilyService) CancelOwnJoinRequest(userID, alias string) error {
	family, err := s.families.FindByAlias(alias)
	if err != nil {
		return familyLookupError(err)
	}

	pending, err := s.requests.FindByRequesterAndFamilyAndStatus(userID, family.ID, models.JoinRequestPending)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return NotFound("You have no pending request for this family")
	}

	request := &pending[0]
	if err := s.transition(request, models.JoinRequestCancelled); err != nil {
		return err
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		return userLookupError(err)
	}
	s.notifier.JoinCancelled(family, user, request)
	return nil
}

// GetOwnPendingJoinRequests returns, per distinct family the caller has
// targeted, the single most-recent pending request.
func (s *FamilyService) GetOwnPendingJoinRequests(userID string) ([]models.JoinRequest, error) {
	pending, err := s.requests.FindByRequesterAndStatus(userID, models.JoinRequestPending)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]models.JoinRequest)
	for _, request := range pending {
		current, ok := latest[request.FamilyID]
		if !ok || request.CreatedAt.After(current.CreatedAt) {
			latest[request.FamilyID] = request
		}
	}

	result := make([]models.JoinRequest, 0, len(latest))
	for _, request := range latest {
		result = append(result, request)
	}
	return result, nil
}

// IncomingJoinRequests lists pending requests against the caller's family.
// Head-only, like accept and reject.
func (s *FamilyService) IncomingJoinRequests(userID string) ([]models.JoinRequest, error) {
	_, family, err := s.memberAndFamily(userID)
	if err != nil {
		return nil, err
	}
	if family.HeadID != userID {
		return nil, Forbidden("Only the family head can review join requests")
	}
	return s.requests.FindByFamilyAndStatus(family.ID, models.JoinRequestPending)
}

// AcceptJoinRequest lets the family head accept a pending request. The
// requester goes through the same membership mutation as a direct join.
func (s *FamilyService) AcceptJoinRequest(userID string, requestID uint) error {
	request, family, err := s.headAndRequest(userID, requestID)
	if err != nil {
		return err
	}

	requester, err := s.users.FindByID(request.RequesterID)
	if err != nil {
		return userLookupError(err)
	}
	if requester.FamilyID != nil {
		// Requester joined a family while this request sat in the queue.
		return Conflict("The requester already belongs to a family")
	}

	if err := s.addMember(family, requester); err != nil {
		return err
	}
	if err := s.transition(request, models.JoinRequestAccepted); err != nil {
		return err
	}

	s.notifier.JoinAccepted(family, requester, request)
	s.notifier.MemberJoined(family, requester)
	return nil
}

// RejectJoinRequest lets the family head decline a pending request.
func (s *FamilyService) RejectJoinRequest(userID string, requestID uint) error {
	request, family, err := s.headAndRequest(userID, requestID)
	if err != nil {
		return err
	}

	if err := s.transition(request, models.JoinRequestRejected); err != nil {
		return err
	}

	requester, err := s.users.FindByID(request.RequesterID)
	if err != nil {
		return userLookupError(err)
	}
	s.notifier.JoinRejected(family, requester, request)
	return nil
}

// GetOwnFamily returns the caller's family.
func (s *FamilyService) GetOwnFamily(userID string) (*models.Family, error) {
	_, family, err := s.memberAndFamily(userID)
	return family, err
}

// attemptJoinRequest is the shared throttled insert behind first requests
// and resends. The capacity and membership checks run here, immediately
// before the write, so concurrent attempts against a nearly-full family are
// re-validated.
func (s *FamilyService) attemptJoinRequest(userID string, family *models.Family, message string, resend bool) (*models.JoinRequest, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	if user.FamilyID != nil {
		return nil, Conflict("You already belong to a family")
	}

	count, err := s.families.CountMembers(family.ID)
	if err != nil {
		return nil, err
	}
	if count >= int64(family.MaxSize) {
		return nil, Conflict("This family is already full")
	}

	attempts, err := s.requests.FindByRequesterAndFamily(userID, family.ID)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-joinRequestWindow)
	recent := 0
	var lastPending *models.JoinRequest
	for i := range attempts {
		attempt := &attempts[i]
		if attempt.Status == models.JoinRequestPending && lastPending == nil {
			lastPending = attempt
		}
		// Cancelled attempts never count; the window boundary is a hard
		// cutoff regardless of status.
		if attempt.Status == models.JoinRequestCancelled {
			continue
		}
		if attempt.CreatedAt.After(cutoff) {
			recent++
		}
	}

	if recent >= maxJoinAttempts {
		return nil, MaxRetries()
	}

	if !resend && lastPending != nil {
		return nil, Conflict("You already have a pending request for this family")
	}
	if resend && lastPending != nil {
		if err := s.transition(lastPending, models.JoinRequestRejected); err != nil {
			return nil, err
		}
	}

	request := &models.JoinRequest{
		RequesterID: userID,
		FamilyID:    family.ID,
		Message:     message,
		Status:      models.JoinRequestPending,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}
	if err := s.requests.Create(request); err != nil {
		return nil, err
	}

	s.notifier.JoinRequested(family, user, request)
	return request, nil
}

// addMember performs the membership mutation shared by JoinFamily and
// AcceptJoinRequest: capacity re-check, member row, family back-reference,
// matching pending invite cleanup.
func (s *FamilyService) addMember(family *models.Family, user *models.User) error {
	count, err := s.families.CountMembers(family.ID)
	if err != nil {
		return err
	}
	if count >= int64(family.MaxSize) {
		return Conflict("This family is already full")
	}

	if err := s.families.AddMember(family.ID, user.ID); err != nil {
		return err
	}

	updated := *user
	updated.FamilyID = &family.ID
	if err := s.users.Save(&updated); err != nil {
		return err
	}
	user.FamilyID = &family.ID

	if err := s.families.RemoveInvite(family.ID, user.Email); err != nil {
		s.log.WithError(err).Warn("failed to clear pending invite")
	}
	s.touch(family)
	return nil
}

// headAndRequest loads a pending request and verifies the caller heads the
// family it targets.
func (s *FamilyService) headAndRequest(userID string, requestID uint) (*models.JoinRequest, *models.Family, error) {
	request, err := s.requests.FindByID(requestID)
	if err != nil {
		return nil, nil, requestLookupError(err)
	}

	family, err := s.families.FindByID(request.FamilyID)
	if err != nil {
		return nil, nil, familyLookupError(err)
	}
	if family.HeadID != userID {
		return nil, nil, Forbidden("Only the family head can respond to join requests")
	}
	if request.Terminal() {
		return nil, nil, Conflict("This join request has already been handled")
	}
	return request, family, nil
}

// memberAndFamily resolves the caller and the family they belong to.
func (s *FamilyService) memberAndFamily(userID string) (*models.User, *models.Family, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, nil, userLookupError(err)
	}
	if user.FamilyID == nil {
		return nil, nil, Conflict("You do not belong to a family")
	}

	family, err := s.families.FindByID(*user.FamilyID)
	if err != nil {
		return nil, nil, familyLookupError(err)
	}
	return user, family, nil
}

// transition replaces a request's status with a terminal value.
func (s *FamilyService) transition(request *models.JoinRequest, status models.JoinRequestStatus) error {
	updated := *request
	updated.Status = status
	updated.UpdatedAt = s.now()
	if err := s.requests.Save(&updated); err != nil {
		return err
	}
	*request = updated
	return nil
}

// touch refreshes a family's updatedAt after a membership or invite
// mutation.
func (s *FamilyService) touch(family *models.Family) {
	updated := *family
	updated.UpdatedAt = s.now()
	if err := s.families.Save(&updated); err != nil {
		s.log.WithError(err).WithField("family", family.ID).Warn("failed to refresh family timestamp")
		return
	}
	*family = updated
}

// freshAlias draws alias codes until one is unused.
func (s *FamilyService) freshAlias() (string, error) {
	for i := 0; i < aliasRetries; i++ {
		alias, err := utils.GenerateAlias()
		if err != nil {
			return "", err
		}
		exists, err := s.families.AliasExists(alias)
		if err != nil {
			return "", err
		}
		if !exists {
			return alias, nil
		}
	}
	return "", errors.New("could not allocate a unique family alias")
}

// userByEmail is FindByEmail with not-found mapped to nil.
func (s *FamilyService) userByEmail(email string) (*models.User, error) {
	user, err := s.users.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func userLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("User not found")
	}
	return err
}

func familyLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Family not found")
	}
	return err
}

func requestLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Join request not found")
	}
	return err
}
