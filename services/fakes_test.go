package services

import (
	"io"
	"sort"
	"time"

	"github.com/famtrack/expense_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users     map[string]models.User
	saveCount int
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	store := &fakeUserStore{users: make(map[string]models.User)}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (s *fakeUserStore) FindByID(id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := user
	return &copied, nil
}

func (s *fakeUserStore) FindByEmail(email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) FindAll() ([]models.User, error) {
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, s.users[id])
	}
	return users, nil
}

func (s *fakeUserStore) Save(user *models.User) error {
	s.users[user.ID] = *user
	s.saveCount++
	return nil
}

// fakeFamilyStore is an in-memory FamilyStore.
type fakeFamilyStore struct {
	families map[string]models.Family
	members  map[string][]string
	invites  []models.FamilyInvite
	nextID   uint
}

func newFakeFamilyStore(families ...models.Family) *fakeFamilyStore {
	store := &fakeFamilyStore{
		families: make(map[string]models.Family),
		members:  make(map[string][]string),
		nextID:   1,
	}
	for _, family := range families {
		store.families[family.ID] = family
	}
	return store
}

func (s *fakeFamilyStore) FindByID(id string) (*models.Family, error) {
	family, ok := s.families[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := family
	return &copied, nil
}

func (s *fakeFamilyStore) FindByAlias(alias string) (*models.Family, error) {
	for _, family := range s.families {
		if family.AliasName == alias {
			copied := family
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeFamilyStore) ExistsByID(id string) (bool, error) {
	_, ok := s.families[id]
	return ok, nil
}

func (s *fakeFamilyStore) AliasExists(alias string) (bool, error) {
	for _, family := range s.families {
		if family.AliasName == alias {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeFamilyStore) Create(family *models.Family) error {
	s.families[family.ID] = *family
	return nil
}

func (s *fakeFamilyStore) Save(family *models.Family) error {
	s.families[family.ID] = *family
	return nil
}

func (s *fakeFamilyStore) AddMember(familyID, userID string) error {
	s.members[familyID] = append(s.members[familyID], userID)
	return nil
}

func (s *fakeFamilyStore) RemoveMember(familyID, userID string) error {
	kept := s.members[familyID][:0]
	for _, id := range s.members[familyID] {
		if id != userID {
			kept = append(kept, id)
		}
	}
	s.members[familyID] = kept
	return nil
}

func (s *fakeFamilyStore) MemberIDs(familyID string) ([]string, error) {
	return append([]string(nil), s.members[familyID]...), nil
}

func (s *fakeFamilyStore) CountMembers(familyID string) (int64, error) {
	return int64(len(s.members[familyID])), nil
}

func (s *fakeFamilyStore) IsMember(familyID, userID string) (bool, error) {
	for _, id := range s.members[familyID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeFamilyStore) AddInvite(invite *models.FamilyInvite) error {
	invite.ID = s.nextID
	s.nextID++
	s.invites = append(s.invites, *invite)
	return nil
}

func (s *fakeFamilyStore) RemoveInvite(familyID, email string) error {
	kept := s.invites[:0]
	for _, invite := range s.invites {
		if invite.FamilyID != familyID || invite.Email != email {
			kept = append(kept, invite)
		}
	}
	s.invites = kept
	return nil
}

func (s *fakeFamilyStore) FindInvite(familyID, email string) (*models.FamilyInvite, error) {
	for _, invite := range s.invites {
		if invite.FamilyID == familyID && invite.Email == email {
			copied := invite
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeFamilyStore) InvitesForFamily(familyID string) ([]models.FamilyInvite, error) {
	var invites []models.FamilyInvite
	for _, invite := range s.invites {
		if invite.FamilyID == familyID {
			invites = append(invites, invite)
		}
	}
	return invites, nil
}

// fakeJoinRequestStore is an in-memory JoinRequestStore.
type fakeJoinRequestStore struct {
	requests []models.JoinRequest
	nextID   uint
}

func newFakeJoinRequestStore() *fakeJoinRequestStore {
	return &fakeJoinRequestStore{nextID: 1}
}

func (s *fakeJoinRequestStore) Create(request *models.JoinRequest) error {
	request.ID = s.nextID
	s.nextID++
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	s.requests = append(s.requests, *request)
	return nil
}

func (s *fakeJoinRequestStore) Save(request *models.JoinRequest) error {
	for i := range s.requests {
		if s.requests[i].ID == request.ID {
			s.requests[i] = *request
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeJoinRequestStore) FindByID(id uint) (*models.JoinRequest, error) {
	for _, request := range s.requests {
		if request.ID == id {
			copied := request
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeJoinRequestStore) filter(match func(models.JoinRequest) bool) []models.JoinRequest {
	var result []models.JoinRequest
	for _, request := range s.requests {
		if match(request) {
			result = append(result, request)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *fakeJoinRequestStore) FindByRequesterAndFamily(requesterID, familyID string) ([]models.JoinRequest, error) {
	return s.filter(func(r models.JoinRequest) bool {
		return r.RequesterID == requesterID && r.FamilyID == familyID
	}), nil
}

func (s *fakeJoinRequestStore) FindByRequesterAndStatus(requesterID string, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	return s.filter(func(r models.JoinRequest) bool {
		return r.RequesterID == requesterID && r.Status == status
	}), nil
}

func (s *fakeJoinRequestStore) FindByRequesterAndFamilyAndStatus(requesterID, familyID string, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	return s.filter(func(r models.JoinRequest) bool {
		return r.RequesterID == requesterID && r.FamilyID == familyID && r.Status == status
	}), nil
}

func (s *fakeJoinRequestStore) FindByFamilyAndStatus(familyID string, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	return s.filter(func(r models.JoinRequest) bool {
		return r.FamilyID == familyID && r.Status == status
	}), nil
}

// fakeNotificationStore records created notifications and read marks.
type fakeNotificationStore struct {
	created []models.Notification
	read    []uint
	nextID  uint
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{nextID: 1}
}

func (s *fakeNotificationStore) Create(notification *models.Notification) error {
	notification.ID = s.nextID
	s.nextID++
	s.created = append(s.created, *notification)
	return nil
}

func (s *fakeNotificationStore) MarkRead(id uint, receiverID string) error {
	s.read = append(s.read, id)
	return nil
}

// fakeExpenseStore records DeleteByFamilyID calls.
type fakeExpenseStore struct {
	deleted   []string
	countByID map[string]int64
}

func newFakeExpenseStore(countByID map[string]int64) *fakeExpenseStore {
	if countByID == nil {
		countByID = make(map[string]int64)
	}
	return &fakeExpenseStore{countByID: countByID}
}

func (s *fakeExpenseStore) DeleteByFamilyID(familyID string) (int64, error) {
	s.deleted = append(s.deleted, familyID)
	count := s.countByID[familyID]
	s.countByID[familyID] = 0
	return count, nil
}

// fakeDeviceTokenStore serves and prunes tokens.
type fakeDeviceTokenStore struct {
	tokens map[string][]models.DeviceToken
	pruned []string
}

func newFakeDeviceTokenStore() *fakeDeviceTokenStore {
	return &fakeDeviceTokenStore{tokens: make(map[string][]models.DeviceToken)}
}

func (s *fakeDeviceTokenStore) FindByUserID(userID string) ([]models.DeviceToken, error) {
	return append([]models.DeviceToken(nil), s.tokens[userID]...), nil
}

func (s *fakeDeviceTokenStore) DeleteByTokens(tokens []string) error {
	s.pruned = append(s.pruned, tokens...)
	return nil
}

// recordingNotifier captures fan-out calls from the family service.
type recordingNotifier struct {
	invites  []string // invited emails
	events   []string // event type tags, in order
	accepted []uint
}

func (n *recordingNotifier) InviteSent(family *models.Family, sender *models.User, invitee *models.User, email, message string) {
	n.invites = append(n.invites, email)
	n.events = append(n.events, models.NotificationInvite)
}

func (n *recordingNotifier) JoinRequested(family *models.Family, requester *models.User, request *models.JoinRequest) {
	n.events = append(n.events, models.NotificationJoinRequest)
}

func (n *recordingNotifier) JoinAccepted(family *models.Family, requester *models.User, request *models.JoinRequest) {
	n.events = append(n.events, models.NotificationJoinAccepted)
	n.accepted = append(n.accepted, request.ID)
}

func (n *recordingNotifier) JoinRejected(family *models.Family, requester *models.User, request *models.JoinRequest) {
	n.events = append(n.events, models.NotificationJoinRejected)
}

func (n *recordingNotifier) JoinCancelled(family *models.Family, requester *models.User, request *models.JoinRequest) {
	n.events = append(n.events, models.NotificationJoinCancelled)
}

func (n *recordingNotifier) MemberJoined(family *models.Family, member *models.User) {
	n.events = append(n.events, models.NotificationMemberJoined)
}

func (n *recordingNotifier) MemberRemoved(family *models.Family, removed *models.User, message string) {
	n.events = append(n.events, models.NotificationMemberRemoved)
}
