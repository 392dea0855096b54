package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ppum-cafe/foodcourt/internal/notification"
	"github.com/ppum-cafe/foodcourt/internal/order"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]notification.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type recordingPublisher struct {
	events []notification.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event notification.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestNotificationService_OrderConfirmed_StoresAndPublishes(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	publisher := &recordingPublisher{}
	svc := notification.NewService(mockRepo, publisher)

	o := &order.Order{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      uuid.Must(uuid.NewV4()),
		OrderNumber: "1234",
	}

	var stored *notification.Notification
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*notification.Notification")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*notification.Notification)
		}).
		Return(nil).
		Once()

	svc.OrderConfirmed(context.Background(), o)

	require.NotNil(t, stored)
	assert.Equal(t, o.UserID, stored.UserID)
	assert.Equal(t, notification.TypeSuccess, stored.Type)
	assert.Contains(t, stored.Message, "1234")

	require.Len(t, publisher.events, 1)
	assert.Equal(t, stored.ID, publisher.events[0].NotificationID)
}

func TestNotificationService_FoodReady_MentionsItem(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	svc := notification.NewService(mockRepo, nil)

	o := &order.Order{ID: uuid.Must(uuid.NewV4()), UserID: uuid.Must(uuid.NewV4()), OrderNumber: "4321"}
	tracker := &order.FoodTracker{ID: uuid.Must(uuid.NewV4()), MenuItemName: "Nasi Lemak"}

	var stored *notification.Notification
	mockRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*notification.Notification)
		}).
		Return(nil).
		Once()

	svc.FoodReady(context.Background(), o, tracker)

	require.NotNil(t, stored)
	assert.Equal(t, notification.TypeFoodReady, stored.Type)
	assert.Contains(t, stored.Message, "Nasi Lemak")
	require.NotNil(t, stored.FoodTrackerID)
	assert.Equal(t, tracker.ID, *stored.FoodTrackerID)
}

// Broker and storage failures stay inside the notification path.
func TestNotificationService_FailuresAreSwallowed(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := notification.NewService(mockRepo, publisher)

	o := &order.Order{ID: uuid.Must(uuid.NewV4()), UserID: uuid.Must(uuid.NewV4())}

	mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once()
	svc.OrderConfirmed(context.Background(), o)

	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	svc.OrderConfirmed(context.Background(), o)

	assert.Empty(t, publisher.events)
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_MarkRead_OwnershipEnforced(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	svc := notification.NewService(mockRepo, nil)

	owner := uuid.Must(uuid.NewV4())
	stored := &notification.Notification{ID: uuid.Must(uuid.NewV4()), UserID: owner}

	mockRepo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil).Twice()
	mockRepo.On("MarkRead", mock.Anything, stored.ID).Return(nil).Once()

	err := svc.MarkRead(context.Background(), stored.ID, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, notification.ErrNotOwner)

	require.NoError(t, svc.MarkRead(context.Background(), stored.ID, owner))
	mockRepo.AssertExpectations(t)
}
